// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// Normalize linearly maps value in [min, max] to [0, 1], clipping
// values outside of the interval. If min == max, Normalize returns 1.
func Normalize(value, min, max float64) float64 {
	if max == min {
		return 1.0
	}
	return Clip((value-min)/(max-min), 0, 1)
}

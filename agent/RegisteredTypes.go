package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	EGreedyQLearningTabular Type = "EGreedyQLearning-Tabular"
)

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be unmarshalled.
//
// No Type's are registered wtih this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var (
	registeredTypes   = make(map[Type]reflect.Type)
	registeredTypesMu sync.RWMutex
)

// Register registers an agent's Type with a concrete Config type so
// that upon deserialization of a TypedConfig, Configs of type agentType
// are deserialized into the concrete type of config.
func Register(agentType Type, config Config) {
	registeredTypesMu.Lock()
	defer registeredTypesMu.Unlock()
	registeredTypes[agentType] = reflect.TypeOf(config)
}

// Registered returns whether a Config type has been registered for
// agentType
func Registered(agentType Type) bool {
	registeredTypesMu.RLock()
	defer registeredTypesMu.RUnlock()
	_, ok := registeredTypes[agentType]
	return ok
}

// TypedConfig wraps a Config so that it can be JSON marshalled and
// unmarshalled into its underlying concrete type
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig returns a new TypedConfig wrapping c
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	registeredTypesMu.RLock()
	ty, found := registeredTypes[raw.Type]
	registeredTypesMu.RUnlock()
	if !found {
		return fmt.Errorf("unmarshalJSON: no config registered for agent "+
			"type %q", raw.Type)
	}

	value := reflect.New(ty)
	if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	t.Type = raw.Type
	t.Config = value.Elem().Interface().(Config)
	return nil
}

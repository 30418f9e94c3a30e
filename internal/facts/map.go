package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered mapping from fact name to value.
// Each key is written once; a frozen map accepts no writes at all.
type Map struct {
	keys   []string
	values map[string]Value
	frozen bool
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set records a fact. It returns false, leaving the map unchanged, when the key
// was already recorded or the map is frozen.
func (m *Map) Set(key string, v Value) bool {
	if m.frozen {
		return false
	}
	if _, exists := m.values[key]; exists {
		return false
	}
	m.keys = append(m.keys, key)
	m.values[key] = v
	return true
}

// SetAny records a fact after coercing it with Any.
func (m *Map) SetAny(key string, v interface{}) bool {
	return m.Set(key, Any(v))
}

// Get returns the value recorded for key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key was recorded.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of facts.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Frozen reports whether the map rejects writes.
func (m *Map) Frozen() bool {
	if m == nil {
		return false
	}
	return m.frozen
}

// Freeze makes the map and every nested map immutable.
func (m *Map) Freeze() {
	if m == nil || m.frozen {
		return
	}
	m.frozen = true
	for _, key := range m.keys {
		freezeValue(m.values[key])
	}
}

func freezeValue(v Value) {
	switch v.kind {
	case KindMap:
		v.m.Freeze()
	case KindList:
		for _, item := range v.list {
			freezeValue(item)
		}
	}
}

// Equal reports whether both maps hold equal values under the same keys in the same order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for i, key := range m.keys {
		if other.keys[i] != key {
			return false
		}
		if !m.values[key].Equal(other.values[key]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key %q: %w", key, err)
		}
		valueJSON, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value of %q: %w", key, err)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML returns a mapping node in insertion order.
func (m *Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range m.Keys() {
		valueNode, err := m.values[key].yamlNode()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value of %q: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			valueNode,
		)
	}
	return node, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

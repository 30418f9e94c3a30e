// Package facts holds the data model shared by the collector and the renderers:
// write-once ordered maps of typed values grouped into sections of a snapshot.
package facts

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which member of the closed value set a Value holds.
type Kind int

const (
	// KindString is a text value.
	KindString Kind = iota
	// KindNumber is an integer or floating point value.
	KindNumber
	// KindBool is a boolean value.
	KindBool
	// KindList is an ordered sequence of values.
	KindList
	// KindMap is a nested ordered mapping.
	KindMap
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a single fact value. The zero Value is the empty string.
type Value struct {
	kind    Kind
	str     string
	integer int64
	float   float64
	isFloat bool
	boolean bool
	list    []Value
	m       *Map
}

// String creates a text value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Int creates an integer value.
func Int(i int64) Value {
	return Value{kind: KindNumber, integer: i}
}

// Uint creates an integer value from an unsigned quantity. Values above the
// int64 range are kept as floats.
func Uint(u uint64) Value {
	if u > 1<<63-1 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// Float creates a floating point value. NaN and the infinities have no JSON
// form and are stored as the strings "NaN", "+Inf" and "-Inf".
func Float(f float64) Value {
	switch {
	case math.IsNaN(f):
		return String("NaN")
	case math.IsInf(f, 1):
		return String("+Inf")
	case math.IsInf(f, -1):
		return String("-Inf")
	}
	return Value{kind: KindNumber, float: f, isFloat: true}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// List creates an ordered sequence value.
func List(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindList, list: copied}
}

// Strings creates a list value of strings.
func Strings(items []string) Value {
	values := make([]Value, 0, len(items))
	for _, item := range items {
		values = append(values, String(item))
	}
	return Value{kind: KindList, list: values}
}

// Object wraps a nested map. A nil map becomes an empty one.
func Object(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Any coerces an arbitrary Go value into the closed value set. Values outside
// the set (handles, structs, errors) are recorded as their string form so that
// every renderer, JSON included, can emit them.
func Any(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return String("None")
	case Value:
		return val
	case *Map:
		return Object(val)
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case int:
		return Int(int64(val))
	case int8:
		return Int(int64(val))
	case int16:
		return Int(int64(val))
	case int32:
		return Int(int64(val))
	case int64:
		return Int(val)
	case uint:
		return Uint(uint64(val))
	case uint8:
		return Uint(uint64(val))
	case uint16:
		return Uint(uint64(val))
	case uint32:
		return Uint(uint64(val))
	case uint64:
		return Uint(val)
	case float32:
		return Float(float64(val))
	case float64:
		return Float(val)
	case []string:
		return Strings(val)
	case []Value:
		return List(val...)
	case []interface{}:
		items := make([]Value, 0, len(val))
		for _, item := range val {
			items = append(items, Any(item))
		}
		return List(items...)
	case map[string]interface{}:
		m := NewMap()
		for _, key := range sortedKeys(val) {
			m.Set(key, Any(val[key]))
		}
		return Object(m)
	case error:
		return String(val.Error())
	case fmt.Stringer:
		return String(val.String())
	default:
		return String(fmt.Sprintf("%v", val))
	}
}

// Kind reports the value kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsScalar reports whether the value is a string, number or bool.
func (v Value) IsScalar() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

// Str returns the text of a string value.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// BoolValue returns the boolean of a bool value.
func (v Value) BoolValue() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// Items returns a copy of a list value's elements.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	items := make([]Value, len(v.list))
	copy(items, v.list)
	return items
}

// Map returns the nested map of a map value.
func (v Value) Map() (*Map, bool) {
	return v.m, v.kind == KindMap
}

// IsListOfMaps reports whether the value is a non-empty list whose elements are all maps.
func (v Value) IsListOfMaps() bool {
	if v.kind != KindList || len(v.list) == 0 {
		return false
	}
	for _, item := range v.list {
		if item.kind != KindMap {
			return false
		}
	}
	return true
}

// String renders the value for display. Lists of scalars are comma separated;
// maps render as key: value pairs in insertion order.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.isFloat {
			return strconv.FormatFloat(v.float, 'f', -1, 64)
		}
		return strconv.FormatInt(v.integer, 10)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, ", ")
	case KindMap:
		parts := make([]string, 0, v.m.Len())
		for _, key := range v.m.Keys() {
			item, _ := v.m.Get(key)
			parts = append(parts, key+": "+item.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ""
}

// Interface converts the value to plain Go types: string, int64, float64, bool,
// []interface{} or *Map.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.isFloat {
			return v.float
		}
		return v.integer
	case KindBool:
		return v.boolean
	case KindList:
		items := make([]interface{}, 0, len(v.list))
		for _, item := range v.list {
			items = append(items, item.Interface())
		}
		return items
	case KindMap:
		return v.m
	}
	return nil
}

// Equal reports deep equality of two values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.String() == other.String()
	case KindBool:
		return v.boolean == other.boolean
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(other.m)
	}
	return false
}

// MarshalJSON emits the underlying value, not a wrapper object.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMap:
		return v.m.MarshalJSON()
	case KindList:
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.Interface())
	}
}

// MarshalYAML emits the underlying value, keeping map order.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case KindMap:
		return v.m.MarshalYAML()
	case KindList:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.list {
			child, err := item.yamlNode()
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	default:
		return v.Interface(), nil
	}
}

func (v Value) yamlNode() (*yaml.Node, error) {
	out, err := v.MarshalYAML()
	if err != nil {
		return nil, err
	}
	if node, ok := out.(*yaml.Node); ok {
		return node, nil
	}
	node := &yaml.Node{}
	if err := node.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode yaml value: %w", err)
	}
	return node, nil
}

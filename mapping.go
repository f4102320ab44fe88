// Copyright (C) 2024 James Preed. All Rights Reserved.

package flatjson

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"go4.org/mem"

	"github.com/jamespreed/dot-flat-json/internal/escape"
)

// An Entry is a single key-value pair of a Mapping. The value is one of
// string, int64, float64, bool, or nil.
type Entry struct {
	Key   string
	Value any
}

// A Mapping is the flat decoding of a JSON document: a map from rendered
// path keys to the scalar values at those paths, ordered by document
// traversal. A Mapping is complete when Decode returns it and is not
// modified afterward by the decoder.
type Mapping struct {
	es  []Entry
	pos map[string]int
}

func newMapping() *Mapping { return &Mapping{pos: make(map[string]int)} }

// set inserts or overwrites the value for key. An overwritten key keeps its
// original position in the traversal order.
func (m *Mapping) set(key string, value any) {
	if i, ok := m.pos[key]; ok {
		m.es[i].Value = value
		return
	}
	m.pos[key] = len(m.es)
	m.es = append(m.es, Entry{Key: key, Value: value})
}

// Len reports the number of entries in m.
func (m *Mapping) Len() int { return len(m.es) }

// Get reports the value stored for key, and whether the key is present.
func (m *Mapping) Get(key string) (any, bool) {
	i, ok := m.pos[key]
	if !ok {
		return nil, false
	}
	return m.es[i].Value, true
}

// Keys returns the keys of m in document traversal order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.es))
	for i, e := range m.es {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries of m in document traversal order.
func (m *Mapping) Entries() []Entry { return slices.Clone(m.es) }

// MarshalJSON encodes m as a single-level JSON object whose members appear
// in document traversal order. Values that came from a floating-point
// literal keep a floating-point spelling, so a decode and re-encode does not
// turn 10.0 into 10.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, e := range m.es {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = escape.AppendQuote(buf, mem.S(e.Key))
		buf = append(buf, ':')
		switch v := e.Value.(type) {
		case nil:
			buf = append(buf, "null"...)
		case bool:
			buf = strconv.AppendBool(buf, v)
		case int64:
			buf = strconv.AppendInt(buf, v, 10)
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("value for %q is not a finite number", e.Key)
			}
			buf = appendFloat(buf, v)
		case string:
			buf = escape.AppendQuote(buf, mem.S(v))
		default:
			return nil, fmt.Errorf("value for %q has unencodable type %T", e.Key, v)
		}
	}
	return append(buf, '}'), nil
}

// String renders m in a JSON-like form for debugging.
func (m *Mapping) String() string {
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("#<mapping len=%d (%v)>", m.Len(), err)
	}
	return string(data)
}

// appendFloat appends v in its shortest decimal form, forcing a trailing
// ".0" onto values the shortest form would spell as an integer.
func appendFloat(buf []byte, v float64) []byte {
	p := len(buf)
	buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	if !strings.ContainsAny(string(buf[p:]), ".eE") {
		buf = append(buf, '.', '0')
	}
	return buf
}

// Package payload models the arbitrary key/value documents the gateway passes
// between HTTP callers and the engine. A Map keeps its keys in the order they
// were first set, so a document serializes the way the caller sent it.
package payload

// Map is an ordered mapping from field name to Value. The zero Map is empty and
// ready to use.
type Map struct {
	keys   []string
	values map[string]Value
}

func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores v under key. Replacing an existing key keeps its position.
func (m *Map) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a deep copy. It must not be called on a map that contains itself.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, m.values[k].clone())
	}
	return out
}

// Merge applies patch onto m the way a partial document update does: nested
// objects present on both sides are merged recursively, anything else is
// replaced by the patch value.
func (m *Map) Merge(patch *Map) {
	if patch == nil {
		return
	}
	for _, k := range patch.keys {
		pv := patch.values[k]
		if cur, ok := m.Get(k); ok && cur.kind == KindObject && pv.kind == KindObject {
			cur.obj.Merge(pv.obj)
			continue
		}
		m.Set(k, pv.clone())
	}
}

package payload

import (
	"fmt"
	"net/url"
	"strings"
)

// FromQuery decodes a raw query string into a Map of string values in the
// order the parameters appear. A repeated parameter keeps its first value and
// parameters with an empty name are skipped.
func FromQuery(rawQuery string) (*Map, error) {
	m := NewMap()
	for rawQuery != "" {
		var part string
		part, rawQuery, _ = strings.Cut(rawQuery, "&")
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("payload: query parameter %q: %w", k, err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("payload: query value for %q: %w", key, err)
		}
		if key == "" {
			continue
		}
		if _, seen := m.Get(key); seen {
			continue
		}
		m.Set(key, String(val))
	}
	return m, nil
}

package mapper

import (
	"encoding/json"
	"time"

	"github.com/lectern-dev/lectern/shared/forum"
)

// bag reads values with the three-tier fallback: attribute bag first, then
// the record body parsed as JSON, then the documented default. Every lookup
// is total; malformed input degrades to the default instead of failing.
type bag struct {
	attrs forum.Attrs
	body  map[string]any
	raw   string
}

func newBag(attrs forum.Attrs, body string) bag {
	b := bag{attrs: attrs, raw: body}
	if body != "" {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(body), &parsed); err == nil {
			b.body = parsed
		}
	}
	return b
}

func (b bag) lookup(key string) (any, bool) {
	if b.attrs != nil {
		if v, ok := b.attrs[key]; ok && v != nil {
			return v, true
		}
	}
	if b.body != nil {
		if v, ok := b.body[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (b bag) str(key, def string) string {
	v, ok := b.lookup(key)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func (b bag) boolean(key string, def bool) bool {
	v, ok := b.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return def
}

func (b bag) integer(key string, def int) int {
	v, ok := b.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

func (b bag) float(key string, def float64) float64 {
	v, ok := b.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return def
}

// timestamp accepts RFC3339 strings and unix-second numbers.
func (b bag) timestamp(key string, def time.Time) time.Time {
	v, ok := b.lookup(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	case float64:
		return time.Unix(int64(t), 0).UTC()
	case int64:
		return time.Unix(t, 0).UTC()
	case time.Time:
		return t
	}
	return def
}

func (b bag) strings(key string) []string {
	v, ok := b.lookup(key)
	if !ok {
		return []string{}
	}
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

// object returns a nested map value, used for structured notes sections.
func (b bag) object(key string) (map[string]any, bool) {
	v, ok := b.lookup(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

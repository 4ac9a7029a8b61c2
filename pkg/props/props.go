// Package props holds the property maps that reactors render from and
// synchronizers share.
package props

import (
	"reflect"
	"sort"

	"github.com/spf13/cast"
)

// Props maps property names to values.
type Props map[string]any

// Clone returns a deep copy of p. Nested maps and slices are copied so the
// clone never aliases caller-owned containers. A nil Props clones to nil.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Props:
		return t.Clone()
	case map[string]any:
		return map[string]any(Props(t).Clone())
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		return append([]string(nil), t...)
	}
	return v
}

// Keys returns the property names in sorted order.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is declared in p.
func (p Props) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Merge overwrites p's entries with deep copies of the entries in src and
// returns the keys whose values actually changed, sorted.
func (p Props) Merge(src Props) []string {
	var changed []string
	for _, k := range src.Keys() {
		v := src[k]
		if old, ok := p[k]; ok && Equal(old, v) {
			continue
		}
		p[k] = cloneValue(v)
		changed = append(changed, k)
	}
	return changed
}

// Eligible returns the entries of src whose keys are already declared in p
// and whose values differ from p's. Keys unknown to p are never returned.
// The result is nil when nothing differs.
func (p Props) Eligible(src Props) Props {
	var out Props
	for k, v := range src {
		old, ok := p[k]
		if !ok || Equal(old, v) {
			continue
		}
		if out == nil {
			out = make(Props)
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Equal compares two property values. Numbers compare by value across Go
// types, so int 5 equals a JSON-decoded float64 5.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNumber(a) && isNumber(b) {
		fa, errA := cast.ToFloat64E(a)
		fb, errB := cast.ToFloat64E(b)
		if errA == nil && errB == nil {
			return fa == fb
		}
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

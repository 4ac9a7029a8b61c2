package tmpl

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/net/html"

	"github.com/vango-dev/lance/pkg/props"
)

// Evaluator evaluates templates against property maps.
type Evaluator struct {
	// Escape HTML-escapes property values before substitution.
	Escape bool
}

// Evaluate replaces the first {key} in template for every key in p.
func Evaluate(template string, p props.Props) string {
	return Evaluator{}.Evaluate(template, p)
}

// Evaluate replaces the first {key} in template for every key in p.
func (e Evaluator) Evaluate(template string, p props.Props) string {
	out := template
	for _, key := range p.Keys() {
		token := "{" + key + "}"
		if !strings.Contains(out, token) {
			continue
		}
		value := Stringify(p[key])
		if e.Escape {
			value = html.EscapeString(value)
		}
		out = strings.Replace(out, token, value, 1)
	}
	return out
}

// Stringify converts a property value to its template text.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// Placeholders returns the distinct placeholder names in template in order
// of first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		rest = rest[open+1:]
		end := strings.IndexAny(rest, "{}")
		if end < 0 {
			return names
		}
		if rest[end] == '{' {
			rest = rest[end:]
			continue
		}
		name := rest[:end]
		rest = rest[end+1:]
		if !validName(name) || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
}

// Missing returns the placeholders in template that p has no key for.
func Missing(template string, p props.Props) []string {
	var missing []string
	for _, name := range Placeholders(template) {
		if !p.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r == ' ' || r == '\t' || r == '\n' || r == ':' || r == ';' {
			return false
		}
	}
	return true
}

package dom

import "strings"

// StyleProp is one inline style declaration.
type StyleProp struct {
	Name  string
	Value string
}

// Style is an ordered list of inline style declarations.
type Style []StyleProp

// ParseStyle parses a style attribute value ("color: red; width: 2px").
// Declarations without a colon are dropped. Names are lower-cased.
func ParseStyle(s string) Style {
	var out Style
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out = append(out, StyleProp{Name: name, Value: strings.TrimSpace(value)})
	}
	return out
}

// Get returns the value of property name.
func (s Style) Get(name string) (string, bool) {
	for _, p := range s {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Set updates property name in place, appending it when absent.
func (s *Style) Set(name, value string) {
	for i := range *s {
		if (*s)[i].Name == name {
			(*s)[i].Value = value
			return
		}
	}
	*s = append(*s, StyleProp{Name: name, Value: value})
}

// String formats the style back into attribute form.
func (s Style) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.Name + ": " + p.Value
	}
	return strings.Join(parts, "; ")
}

package props

import (
	"reflect"
	"testing"
)

func TestClone_Deep(t *testing.T) {
	nested := map[string]any{"name": "ada"}
	list := []any{1, map[string]any{"x": 1}}
	p := Props{"user": nested, "list": list, "n": 3}

	c := p.Clone()
	nested["name"] = "grace"
	list[1].(map[string]any)["x"] = 2

	if got := c["user"].(map[string]any)["name"]; got != "ada" {
		t.Errorf("clone aliased nested map: name = %v", got)
	}
	if got := c["list"].([]any)[1].(map[string]any)["x"]; got != 1 {
		t.Errorf("clone aliased nested slice: x = %v", got)
	}
	if c["n"] != 3 {
		t.Errorf("n = %v, want 3", c["n"])
	}

	if Props(nil).Clone() != nil {
		t.Error("nil Props should clone to nil")
	}
}

func TestMerge(t *testing.T) {
	p := Props{"text": "Hello", "count": 1}
	changed := p.Merge(Props{"text": "Bye", "count": 1, "extra": true})

	want := []string{"extra", "text"}
	if !reflect.DeepEqual(changed, want) {
		t.Errorf("changed = %v, want %v", changed, want)
	}
	if p["text"] != "Bye" || p["extra"] != true {
		t.Errorf("Merge result = %v", p)
	}
}

func TestEligible(t *testing.T) {
	declared := Props{"count": 0, "label": "x"}

	tests := []struct {
		name string
		src  Props
		want Props
	}{
		{"no diff", Props{"count": 0}, nil},
		{"changed key", Props{"count": 5}, Props{"count": 5}},
		{"unknown key ignored", Props{"other": 1}, nil},
		{"mixed", Props{"count": 0, "label": "y", "other": 2}, Props{"label": "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := declared.Eligible(tt.src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{1, 1, true},
		{1, 2, false},
		{1, int64(1), true},
		{5, float64(5), true},
		{5, 5.5, false},
		{uint8(3), int32(3), true},
		{"5", 5, false},
		{true, 1, false},
		{nil, nil, true},
		{nil, 0, false},
		{[]any{1}, []any{1}, true},
		{map[string]any{"a": 1}, map[string]any{"a": 2}, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestKeysSorted(t *testing.T) {
	got := Props{"b": 1, "a": 2, "c": 3}.Keys()
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestMergeAndEligible_NumericTypes(t *testing.T) {
	p := Props{"count": 5, "title": "a"}

	if changed := p.Merge(Props{"count": float64(5)}); len(changed) != 0 {
		t.Errorf("Merge(float64 5) changed = %v, want none", changed)
	}
	if got := p.Eligible(Props{"count": float64(5), "title": "b"}); !reflect.DeepEqual(got, Props{"title": "b"}) {
		t.Errorf("Eligible() = %v, want only title", got)
	}
	if got := p.Eligible(Props{"count": float64(6)}); !reflect.DeepEqual(got, Props{"count": float64(6)}) {
		t.Errorf("Eligible() = %v, want count 6", got)
	}
}

package tmpl

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vango-dev/lance/pkg/props"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		props    props.Props
		want     string
	}{
		{
			name:     "single placeholder",
			template: "<div>{text}</div>",
			props:    props.Props{"text": "Hello world!"},
			want:     "<div>Hello world!</div>",
		},
		{
			name:     "multiple keys",
			template: `<a href="{href}">{label}</a>`,
			props:    props.Props{"href": "/x", "label": "go"},
			want:     `<a href="/x">go</a>`,
		},
		{
			name:     "unknown key ignored",
			template: "<p>{a}</p>",
			props:    props.Props{"a": 1, "b": 2},
			want:     "<p>1</p>",
		},
		{
			name:     "first occurrence only",
			template: "<p>{a} and {a}</p>",
			props:    props.Props{"a": "x"},
			want:     "<p>x and {a}</p>",
		},
		{
			name:     "placeholder without property kept",
			template: "<p>{missing}</p>",
			props:    props.Props{},
			want:     "<p>{missing}</p>",
		},
		{
			name:     "non-string values",
			template: "<p>{n} {ok} {f} {nothing}</p>",
			props:    props.Props{"n": 5, "ok": true, "f": 1.5, "nothing": nil},
			want:     "<p>5 true 1.5 </p>",
		},
		{
			name:     "nil props",
			template: "<p>{a}</p>",
			props:    nil,
			want:     "<p>{a}</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.template, tt.props)
			if got != tt.want {
				t.Errorf("Evaluate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluate_NoRemainingTokens(t *testing.T) {
	template := `<div class="{cls}"><h1>{title}</h1><p>{body}</p></div>`
	p := props.Props{"cls": "card", "title": "T", "body": "B"}

	out := Evaluate(template, p)
	for key := range p {
		if strings.Contains(out, "{"+key+"}") {
			t.Errorf("output still contains {%s}: %s", key, out)
		}
	}
}

func TestEvaluate_SortedOrder(t *testing.T) {
	// "a" is applied before "b", so the {b} introduced by a's value is
	// substituted by b.
	got := Evaluate("<p>{a}</p>", props.Props{"a": "{b}", "b": "B"})
	if got != "<p>B</p>" {
		t.Errorf("Evaluate() = %q, want %q", got, "<p>B</p>")
	}
}

func TestEvaluator_Escape(t *testing.T) {
	e := Evaluator{Escape: true}
	got := e.Evaluate("<p>{v}</p>", props.Props{"v": `<b>"x"</b>`})
	want := "<p>&lt;b&gt;&#34;x&#34;&lt;/b&gt;</p>"
	if got != want {
		t.Errorf("Evaluate() = %q, want %q", got, want)
	}
}

func TestStringify(t *testing.T) {
	type point struct{ X, Y int }
	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{42, "42"},
		{int64(-1), "-1"},
		{false, "false"},
		{nil, ""},
		{point{1, 2}, "{1 2}"},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders(`<p style="color: red">{a} {b} {a} {{c}} { bad }</p>`)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders() = %v, want %v", got, want)
	}

	if got := Placeholders("no tokens"); got != nil {
		t.Errorf("Placeholders() = %v, want nil", got)
	}
}

func TestMissing(t *testing.T) {
	got := Missing("<p>{a}{b}</p>", props.Props{"a": 1})
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Missing() = %v, want [b]", got)
	}
}

package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/lance/internal/errors"
)

// bodyContext is the parsing context for template fragments.
var bodyContext = &html.Node{
	Type:     html.ElementNode,
	Data:     "body",
	DataAtom: atom.Body,
}

// Parse parses markup into a single detached root node. Surrounding
// whitespace is ignored; more than one top-level node is an error.
func Parse(markup string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(strings.TrimSpace(markup)), bodyContext)
	if err != nil {
		return nil, errors.New("L020").Wrap(err)
	}
	switch len(nodes) {
	case 0:
		return nil, errors.New("L021").WithDetail("template produced no nodes")
	case 1:
		return nodes[0], nil
	default:
		return nil, errors.New("L021").
			WithDetail(fmt.Sprintf("template produced %d top-level nodes", len(nodes)))
	}
}

// Render serializes n to HTML. A nil node renders to "".
func Render(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// Children returns n's child nodes in order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Attr returns the value of attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key on n, appending it if absent.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Detach removes n from its parent. Detaching a root is a no-op.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Find returns the first element in n's subtree (including n) with the given
// tag, or nil.
func Find(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Describe returns a short label for n used in tree paths.
func Describe(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return n.Data
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	case html.DoctypeNode:
		return "#doctype"
	default:
		return "#node"
	}
}

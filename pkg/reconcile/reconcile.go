package reconcile

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/vango-dev/lance/internal/errors"
	"github.com/vango-dev/lance/pkg/dom"
)

const styleAttr = "style"

// Reconcile copies differing content from fresh onto live and returns the
// changes made. It returns an L030 error, without modifying live, when the
// trees differ in shape.
func Reconcile(live, fresh *html.Node) ([]Change, error) {
	if err := CheckShape(live, fresh); err != nil {
		return nil, err
	}
	var changes []Change
	apply(live, fresh, dom.Describe(live), &changes)
	return changes, nil
}

// CheckShape reports whether live and fresh share node types, tags and
// child counts at every level.
func CheckShape(live, fresh *html.Node) error {
	if live == nil || fresh == nil {
		return errors.New("L030").WithDetail("nil tree")
	}
	return checkShape(live, fresh, dom.Describe(live))
}

func checkShape(live, fresh *html.Node, path string) error {
	if live.Type != fresh.Type {
		return errors.New("L030").WithPath(path).
			WithDetail(fmt.Sprintf("node kind %s != %s", dom.Describe(live), dom.Describe(fresh)))
	}
	if live.Type == html.ElementNode && live.Data != fresh.Data {
		return errors.New("L030").WithPath(path).
			WithDetail(fmt.Sprintf("tag %s != %s", live.Data, fresh.Data))
	}

	lc, fc := live.FirstChild, fresh.FirstChild
	for i := 0; lc != nil || fc != nil; i++ {
		if lc == nil || fc == nil {
			return errors.New("L030").WithPath(path).
				WithDetail(fmt.Sprintf("child count %d != %d", len(dom.Children(live)), len(dom.Children(fresh))))
		}
		if err := checkShape(lc, fc, childPath(path, lc, i)); err != nil {
			return err
		}
		lc, fc = lc.NextSibling, fc.NextSibling
	}
	return nil
}

func apply(live, fresh *html.Node, path string, changes *[]Change) {
	if live.Type == html.TextNode || live.Type == html.CommentNode {
		if live.Data != fresh.Data {
			live.Data = fresh.Data
			*changes = append(*changes, Change{Op: OpSetText, Path: path, Value: fresh.Data})
		}
		return
	}

	applyAttrs(live, fresh, path, changes)
	applyStyle(live, fresh, path, changes)

	lc, fc := live.FirstChild, fresh.FirstChild
	for i := 0; lc != nil && fc != nil; i++ {
		apply(lc, fc, childPath(path, lc, i), changes)
		lc, fc = lc.NextSibling, fc.NextSibling
	}
}

// applyAttrs walks attribute pairs by position until either side runs out.
func applyAttrs(live, fresh *html.Node, path string, changes *[]Change) {
	for i := 0; i < len(live.Attr) && i < len(fresh.Attr); i++ {
		la, fa := &live.Attr[i], fresh.Attr[i]
		if la.Key == styleAttr && fa.Key == styleAttr {
			continue
		}
		if la.Key == fa.Key && la.Namespace == fa.Namespace && la.Val == fa.Val {
			continue
		}
		*la = fa
		*changes = append(*changes, Change{Op: OpSetAttr, Path: path, Key: fa.Key, Value: fa.Val})
	}
}

// applyStyle copies style properties present on both nodes whose values
// differ. Properties only the live node has are kept.
func applyStyle(live, fresh *html.Node, path string, changes *[]Change) {
	liveRaw, ok := dom.Attr(live, styleAttr)
	if !ok {
		return
	}
	freshRaw, ok := dom.Attr(fresh, styleAttr)
	if !ok || liveRaw == freshRaw {
		return
	}

	liveStyle := dom.ParseStyle(liveRaw)
	freshStyle := dom.ParseStyle(freshRaw)
	dirty := false
	for _, p := range liveStyle {
		v, ok := freshStyle.Get(p.Name)
		if !ok || v == p.Value {
			continue
		}
		liveStyle.Set(p.Name, v)
		dirty = true
		*changes = append(*changes, Change{Op: OpSetStyle, Path: path, Key: p.Name, Value: v})
	}
	if dirty {
		dom.SetAttr(live, styleAttr, liveStyle.String())
	}
}

func childPath(parent string, child *html.Node, index int) string {
	return parent + "/" + dom.Describe(child) + "[" + strconv.Itoa(index) + "]"
}


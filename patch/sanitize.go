package patch

import (
	"strings"

	"github.com/dbaron/declarative-partial-updates/dom"
)

// Sanitizer transforms one parsed node batch before insertion.  It is
// invoked once per incrementally parsed batch and may only assume the
// well-formedness of the current batch, never access to the whole
// eventual subtree.  Returning an error drives the session to
// Errored; nodes inserted by earlier batches are not rolled back.
type Sanitizer interface {
	Transform(batch []*dom.Node) ([]*dom.Node, error)
}

type identity struct{}

func (identity) Transform(batch []*dom.Node) ([]*dom.Node, error) {
	return batch, nil
}

// Unsafe is the default sanitizer: it passes batches through
// unchanged.
var Unsafe Sanitizer = identity{}

type safe struct{}

// Safe returns a streaming-compatible allow-list sanitizer.  It
// filters each batch locally: scripting elements are dropped, event
// handler attributes and javascript: URLs are stripped.
func Safe() Sanitizer {
	return safe{}
}

var unsafeElements = map[string]bool{
	"script": true, "style": true, "iframe": true,
	"object": true, "embed": true, "base": true,
}

var urlAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
}

func (safe) Transform(batch []*dom.Node) ([]*dom.Node, error) {
	res := batch[:0]
	for _, n := range batch {
		if n.Type == dom.ElementNode && unsafeElements[n.Data] {
			continue
		}
		scrub(n)
		res = append(res, n)
	}
	return res, nil
}

func scrub(n *dom.Node) {
	if n.Type == dom.ElementNode {
		attrs := n.Attrs[:0]
		for _, a := range n.Attrs {
			if strings.HasPrefix(strings.ToLower(a.Key), "on") {
				continue
			}
			if urlAttrs[a.Key] && isJavascriptURL(a.Val) {
				continue
			}
			attrs = append(attrs, a)
		}
		n.Attrs = attrs
	}
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == dom.ElementNode && unsafeElements[c.Data] {
			n.Remove(c)
		} else {
			scrub(c)
		}
		c = next
	}
}

func isJavascriptURL(v string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(v)), "javascript:")
}

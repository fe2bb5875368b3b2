package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses b in fragment mode with ctx as the context
// node, so the context's content-model rules apply (a table-row
// context only accepts row-shaped children).  The returned nodes are
// detached.
//
// The parsing itself is delegated to golang.org/x/net/html; this
// package only translates between its node type and the live tree.
func ParseFragment(b []byte, ctx *Node) ([]*Node, error) {
	tag := "body"
	if ctx != nil && ctx.Type == ElementNode {
		tag = ctx.Data
	}
	hctx := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	hns, err := html.ParseFragment(bytes.NewReader(b), hctx)
	if err != nil {
		return nil, err
	}
	res := make([]*Node, 0, len(hns))
	for _, hn := range hns {
		res = append(res, importNode(hn))
	}
	return res, nil
}

// ParseDocument parses a whole document, materializing declarative
// shadow roots and picking up a declared <meta charset>.
func ParseDocument(r io.Reader) (*Document, error) {
	hn, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		doc.Root.Append(importNode(c))
	}
	expandShadows(doc.Root)
	if cs := declaredCharset(doc.Root); cs != "" {
		doc.Charset = cs
	}
	return doc, nil
}

func importNode(hn *html.Node) *Node {
	n := &Node{Data: hn.Data}
	switch hn.Type {
	case html.ElementNode:
		n.Type = ElementNode
		for _, a := range hn.Attr {
			n.Attrs = append(n.Attrs, Attribute{Key: a.Key, Val: a.Val})
		}
	case html.TextNode:
		n.Type = TextNode
	case html.CommentNode:
		n.Type = CommentNode
	case html.DoctypeNode:
		n.Type = DoctypeNode
	default:
		n.Type = DocumentNode
	}
	for hc := hn.FirstChild; hc != nil; hc = hc.NextSibling {
		n.Append(importNode(hc))
	}
	return n
}

// expandShadows turns <template shadowrootmode> children into shadow
// root scopes on their host elements.
func expandShadows(n *Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if isShadowTemplate(c) && n.Type == ElementNode && n.shadow == nil {
			sc := AttachShadow(n)
			for tc := c.FirstChild; tc != nil; tc = c.FirstChild {
				c.Remove(tc)
				sc.Root.Append(tc)
			}
			n.Remove(c)
			expandShadows(sc.Root)
		} else {
			expandShadows(c)
		}
		c = next
	}
}

func isShadowTemplate(n *Node) bool {
	if n.Type != ElementNode || n.Data != "template" {
		return false
	}
	_, ok := n.Attr("shadowrootmode")
	return ok
}

func declaredCharset(n *Node) string {
	var cs string
	walk(n, func(c *Node) bool {
		if c.Type == ElementNode && c.Data == "meta" {
			if v, ok := c.Attr("charset"); ok {
				cs = strings.ToLower(strings.TrimSpace(v))
				return false
			}
		}
		return true
	})
	return cs
}

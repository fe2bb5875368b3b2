package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render serializes n through golang.org/x/net/html.  Shadow roots
// are rendered in declarative form, as a leading
// <template shadowrootmode="open"> child of their host.
func Render(w io.Writer, n *Node) error {
	return html.Render(w, exportNode(n))
}

// RenderChildren serializes the children of n without n itself.
func RenderChildren(w io.Writer, n *Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// String renders n to a string, ignoring write errors; it is meant
// for debug output and tests.
func (n *Node) String() string {
	var sb strings.Builder
	Render(&sb, n)
	return sb.String()
}

func exportNode(n *Node) *html.Node {
	hn := &html.Node{Data: n.Data}
	switch n.Type {
	case ElementNode:
		hn.Type = html.ElementNode
		hn.DataAtom = atom.Lookup([]byte(n.Data))
		for _, a := range n.Attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	case TextNode:
		hn.Type = html.TextNode
	case CommentNode:
		hn.Type = html.CommentNode
	case DoctypeNode:
		hn.Type = html.DoctypeNode
	default:
		hn.Type = html.DocumentNode
	}
	if n.shadow != nil {
		tpl := &html.Node{
			Type:     html.ElementNode,
			Data:     "template",
			DataAtom: atom.Template,
			Attr: []html.Attribute{
				{Key: "shadowrootmode", Val: "open"},
			},
		}
		for c := n.shadow.Root.FirstChild; c != nil; c = c.NextSibling {
			tpl.AppendChild(exportNode(c))
		}
		hn.AppendChild(tpl)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		hn.AppendChild(exportNode(c))
	}
	return hn
}

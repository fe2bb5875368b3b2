package dom

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
	DoctypeNode
	DocumentNode
)

func (t NodeType) String() string {
	s, ok := map[NodeType]string{
		ElementNode:  "Element",
		TextNode:     "Text",
		CommentNode:  "Comment",
		DoctypeNode:  "Doctype",
		DocumentNode: "Document",
	}[t]
	if ok {
		return s
	}
	return "<unknown node type>"
}

type Attribute struct {
	Key, Val string
}

// Node is one node of a live tree.  Element and text nodes are created
// detached and join a tree scope on attach; the scope maintains the
// id index used for patch target resolution.
type Node struct {
	Type NodeType
	// Data is the tag name for elements, the text for text and
	// comment nodes.
	Data  string
	Attrs []Attribute

	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node

	shadow *Scope
	scope  *Scope
}

func NewElement(tag string, attrs ...Attribute) *Node {
	return &Node{Type: ElementNode, Data: tag, Attrs: attrs}
}

func NewText(text string) *Node {
	return &Node{Type: TextNode, Data: text}
}

func NewComment(text string) *Node {
	return &Node{Type: CommentNode, Data: text}
}

func (n *Node) Attr(key string) (string, bool) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			return n.Attrs[i].Val, true
		}
	}
	return "", false
}

func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Key: key, Val: val})
}

func (n *Node) ID() string {
	id, _ := n.Attr("id")
	return id
}

// Scope returns the tree scope n is attached to, or nil while
// detached.
func (n *Node) Scope() *Scope {
	return n.scope
}

// Shadow returns the shadow root hosted by n, if any.
func (n *Node) Shadow() *Scope {
	return n.shadow
}

func (n *Node) Append(c *Node) {
	n.insert(c, nil)
}

func (n *Node) InsertBefore(c, ref *Node) {
	n.insert(c, ref)
}

func (n *Node) insert(c, ref *Node) {
	if c.Parent != nil {
		c.Parent.Remove(c)
	}
	c.Parent = n
	if ref == nil {
		c.PrevSibling = n.LastChild
		if n.LastChild != nil {
			n.LastChild.NextSibling = c
		} else {
			n.FirstChild = c
		}
		n.LastChild = c
	} else {
		c.NextSibling = ref
		c.PrevSibling = ref.PrevSibling
		if ref.PrevSibling != nil {
			ref.PrevSibling.NextSibling = c
		} else {
			n.FirstChild = c
		}
		ref.PrevSibling = c
	}
	if n.scope != nil {
		n.scope.attach(c)
	}
}

func (n *Node) Remove(c *Node) {
	if c.Parent != n {
		return
	}
	if c.PrevSibling != nil {
		c.PrevSibling.NextSibling = c.NextSibling
	} else {
		n.FirstChild = c.NextSibling
	}
	if c.NextSibling != nil {
		c.NextSibling.PrevSibling = c.PrevSibling
	} else {
		n.LastChild = c.PrevSibling
	}
	c.Parent = nil
	c.PrevSibling = nil
	c.NextSibling = nil
	if n.scope != nil {
		n.scope.detach(c)
	}
}

// ReplaceChildren removes all of n's children and appends nodes in
// order.
func (n *Node) ReplaceChildren(nodes ...*Node) {
	for n.FirstChild != nil {
		n.Remove(n.FirstChild)
	}
	for _, c := range nodes {
		n.Append(c)
	}
}

func (n *Node) Children() []*Node {
	var res []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, c)
	}
	return res
}

// Text returns the concatenated text content of n's subtree.
func (n *Node) Text() string {
	if n.Type == TextNode {
		return n.Data
	}
	var res string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res += c.Text()
	}
	return res
}

// walk visits n and its subtree in document order, not descending
// into shadow roots.  Returning false stops the walk.
func walk(n *Node, f func(*Node) bool) bool {
	if !f(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, f) {
			return false
		}
	}
	return true
}

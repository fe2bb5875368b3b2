package dom

// Scope is a tree scope: a document or a shadow root.  Identifier
// resolution for patch targets happens per scope, with an id index
// maintained by the attach/detach lifecycle rather than a global
// registry.
type Scope struct {
	Root *Node
	host *Node
	ids  map[string][]*Node
}

// Document is the top-level tree scope.  Charset names the document's
// declared character encoding; patch sessions decode inbound bytes
// with it.
type Document struct {
	Scope
	Charset string
}

func NewDocument() *Document {
	doc := &Document{Charset: "utf-8"}
	doc.Root = &Node{Type: DocumentNode, Data: "#document"}
	doc.Root.scope = &doc.Scope
	doc.ids = map[string][]*Node{}
	return doc
}

// AttachShadow creates a shadow root scope hosted by host.  Content
// under the shadow root resolves ids in the shadow scope, not the
// host's.
func AttachShadow(host *Node) *Scope {
	sc := &Scope{
		Root: &Node{Type: DocumentNode, Data: "#shadow-root"},
		host: host,
		ids:  map[string][]*Node{},
	}
	sc.Root.scope = sc
	host.shadow = sc
	return sc
}

// Host returns the shadow host, or nil for a document scope.
func (s *Scope) Host() *Node {
	return s.host
}

// ElementByID resolves id in this scope.  With duplicate ids the
// first element in document order wins.
func (s *Scope) ElementByID(id string) *Node {
	if id == "" {
		return nil
	}
	nodes := s.ids[id]
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	}
	var res *Node
	walk(s.Root, func(n *Node) bool {
		if n.Type == ElementNode && n.ID() == id {
			res = n
			return false
		}
		return true
	})
	return res
}

func (s *Scope) attach(n *Node) {
	walk(n, func(c *Node) bool {
		c.scope = s
		if c.Type == ElementNode {
			if id := c.ID(); id != "" {
				s.ids[id] = append(s.ids[id], c)
			}
		}
		return true
	})
}

func (s *Scope) detach(n *Node) {
	walk(n, func(c *Node) bool {
		c.scope = nil
		if c.Type == ElementNode {
			if id := c.ID(); id != "" {
				s.removeID(id, c)
			}
		}
		return true
	})
}

func (s *Scope) removeID(id string, n *Node) {
	nodes := s.ids[id]
	for i, c := range nodes {
		if c == n {
			nodes = append(nodes[:i], nodes[i+1:]...)
			break
		}
	}
	if len(nodes) == 0 {
		delete(s.ids, id)
		return
	}
	s.ids[id] = nodes
}

package partial

import (
	"io"

	"github.com/dbaron/declarative-partial-updates/dom"
	"github.com/dbaron/declarative-partial-updates/patch"
	"github.com/dbaron/declarative-partial-updates/scan"
)

// Sink incrementally parses ordinary streamed markup and appends the
// resulting nodes to a container; it is the default destination for
// non-segment content.
type Sink struct {
	node *dom.Node
	sc   *scan.Scanner
}

func NewSink(container *dom.Node) *Sink {
	return &Sink{
		node: container,
		sc:   scan.New(scan.Context(container.Data)),
	}
}

func (s *Sink) Write(p []byte) (int, error) {
	if err := s.insert(s.sc.Feed(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Sink) Close() error {
	return s.insert(s.sc.Finish())
}

func (s *Sink) insert(evs []scan.Event) error {
	for _, ev := range evs {
		nodes, err := dom.ParseFragment(ev.Bytes, s.node)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			s.node.Append(n)
		}
	}
	return nil
}

// Apply streams r into doc: segments patch their targets through a
// registry-backed scheduler, everything else appends to doc's body.
// It returns the registry so callers can inspect sessions afterward.
func Apply(doc *dom.Document, r io.Reader, opts ...patch.OpenOpt) (*patch.Registry, error) {
	reg := patch.NewRegistry(doc)
	sink := NewSink(Body(doc))
	sched := reg.NewScheduler(&doc.Scope,
		patch.SchedOut(sink),
		patch.SchedOpen(opts...))
	if _, err := io.Copy(sched, r); err != nil {
		return reg, err
	}
	if err := sched.Close(); err != nil {
		return reg, err
	}
	return reg, sink.Close()
}

// Extract streams r through an interleaved patch sink bound to
// scopeNode's tree scope: only segments are applied, ordinary
// content is discarded.
func Extract(doc *dom.Document, scopeNode *dom.Node, r io.Reader, opts ...patch.OpenOpt) (*patch.Registry, error) {
	reg := patch.NewRegistry(doc)
	sched := reg.OpenInterleavedPatch(scopeNode, opts...)
	if _, err := io.Copy(sched, r); err != nil {
		return reg, err
	}
	return reg, sched.Close()
}

// Body returns doc's body element, falling back to the root for
// fragmentary documents.
func Body(doc *dom.Document) *dom.Node {
	var body *dom.Node
	for _, c := range elements(doc.Root) {
		if c.Data == "html" {
			for _, cc := range elements(c) {
				if cc.Data == "body" {
					body = cc
				}
			}
		}
		if c.Data == "body" {
			body = c
		}
	}
	if body == nil {
		return doc.Root
	}
	return body
}

func elements(n *dom.Node) []*dom.Node {
	var res []*dom.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == dom.ElementNode {
			res = append(res, c)
		}
	}
	return res
}

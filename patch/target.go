package patch

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/dbaron/declarative-partial-updates/debug"
	"github.com/dbaron/declarative-partial-updates/dom"
)

// Target is a live container node patches apply to.  A Target holds
// at most one active session; opening a new one supersedes the prior.
type Target struct {
	Node *dom.Node

	reg      *Registry
	session  *Session
	patching atomic.Bool
}

// Patching reports the observable patching status: true for the
// lifetime of an active session.  External style hooks key off this.
func (t *Target) Patching() bool {
	return t.patching.Load()
}

// Session returns the active session, nil if none.
func (t *Target) Session() *Session {
	if t.session != nil && t.session.Status().Terminal() {
		return nil
	}
	return t.session
}

// Registry maps identifiers to live Targets, scoped to one owning
// document.  Targets register on first reference and deregister when
// their node leaves its tree scope.
type Registry struct {
	doc *dom.Document

	mu      sync.Mutex
	targets map[*dom.Node]*Target
	subs    map[int]func(Event)
	nextSub int
}

func NewRegistry(doc *dom.Document) *Registry {
	return &Registry{
		doc:     doc,
		targets: map[*dom.Node]*Target{},
		subs:    map[int]func(Event){},
	}
}

// Document returns the owning document.
func (r *Registry) Document() *dom.Document {
	return r.doc
}

// Resolve resolves an identifier in scope at the moment a segment's
// target reference is parsed.  With duplicate identifiers the first
// element in document order wins.  Resolution failure is non-fatal
// for the stream; callers preserve the segment's literal content.
func (r *Registry) Resolve(id string, scope *dom.Scope) (*Target, error) {
	if scope == nil {
		scope = &r.doc.Scope
	}
	node := scope.ElementByID(id)
	if node == nil {
		if debug.Patch() {
			debug.Logf("patch: target %q not found\n", id)
		}
		return nil, &NotFoundError{ID: id}
	}
	return r.Target(node), nil
}

// Target registers node as a patch target, returning the existing
// registration if present.
func (r *Registry) Target(node *dom.Node) *Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.targets[node]; ok {
		return t
	}
	t := &Target{Node: node, reg: r}
	r.targets[node] = t
	return t
}

// CurrentSession returns node's active session, or nil.
func (r *Registry) CurrentSession(node *dom.Node) *Session {
	r.mu.Lock()
	t, ok := r.targets[node]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return t.Session()
}

// Subscribe registers a notification callback and returns its
// unsubscribe function.  All notifications produced by one write
// flush before that write returns.
func (r *Registry) Subscribe(fn func(Event)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Registry) emit(ev Event) {
	r.mu.Lock()
	fns := make([]func(Event), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// drop deregisters a target whose node left its tree scope.
func (r *Registry) drop(t *Target) {
	r.mu.Lock()
	delete(r.targets, t.Node)
	r.mu.Unlock()
}

package patch

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/dbaron/declarative-partial-updates/debug"
	"github.com/dbaron/declarative-partial-updates/dom"
	"github.com/dbaron/declarative-partial-updates/scan"
)

// Mode selects what the first inserted batch does to the target's
// existing children.
type Mode int

const (
	// ReplaceMode replaces the target's children with the first
	// successfully inserted batch; later batches append.
	ReplaceMode Mode = iota
	// AppendMode appends every batch.
	AppendMode
)

type OpenConfig struct {
	Sanitizer Sanitizer
	Mode      Mode
	Charset   string
}

type OpenOpt func(*OpenConfig)

func OpenSanitizer(s Sanitizer) OpenOpt {
	return func(c *OpenConfig) { c.Sanitizer = s }
}
func OpenMode(m Mode) OpenOpt {
	return func(c *OpenConfig) { c.Mode = m }
}

// OpenCharset overrides the owning document's character encoding for
// this session's chunk decoding.
func OpenCharset(name string) OpenOpt {
	return func(c *OpenConfig) { c.Charset = name }
}

// Session is one streaming patch session: decode, fragment-parse,
// sanitize, insert.  It implements io.WriteCloser; Close flushes and
// completes the session.
type Session struct {
	ID uuid.UUID

	target    *Target
	reg       *Registry
	mode      Mode
	sanitizer Sanitizer

	status   atomic.Int32
	dec      *decoder
	sc       *scan.Scanner
	replaced bool
	err      error
	done     chan struct{}
}

// OpenPatch opens a patch session on node.  If node already has an
// active session, that session is aborted, with its unparsed buffer
// discarded and its inserted nodes kept, before the new one starts.
func (r *Registry) OpenPatch(node *dom.Node, opts ...OpenOpt) (*Session, error) {
	cfg := &OpenConfig{Sanitizer: Unsafe, Charset: r.doc.Charset}
	for _, o := range opts {
		o(cfg)
	}
	dec, err := newDecoder(cfg.Charset)
	if err != nil {
		return nil, err
	}
	t := r.Target(node)
	if prev := t.Session(); prev != nil {
		prev.Abort(ErrSuperseded)
	}
	s := &Session{
		ID:        uuid.New(),
		target:    t,
		reg:       r,
		mode:      cfg.Mode,
		sanitizer: cfg.Sanitizer,
		dec:       dec,
		sc:        scan.New(scan.Context(node.Data)),
		done:      make(chan struct{}),
	}
	t.session = s
	t.patching.Store(true)
	if debug.Patch() {
		debug.Logf("patch: session %s open on %q\n", s.ID, node.ID())
	}
	r.emit(Event{
		Kind:     PatchStart,
		TargetID: node.ID(),
		Target:   node,
		Session:  s.ID,
	})
	return s, nil
}

func (s *Session) Status() Status {
	return Status(s.status.Load())
}

// Err returns the terminal error, if any.
func (s *Session) Err() error {
	return s.err
}

// Done is the session's completion signal; it closes on the terminal
// transition.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Target returns the session's owning target node.
func (s *Session) Target() *dom.Node {
	return s.target.Node
}

// Write feeds chunk bytes to the session.  Bytes are decoded with the
// document's character encoding and fed incrementally to the
// fragment parser seeded with the target as context node; each batch
// of completed nodes passes the sanitizer and is inserted before
// Write returns.  Only currently available bytes are processed.
func (s *Session) Write(p []byte) (int, error) {
	if s.Status().Terminal() {
		return 0, ErrClosed
	}
	s.status.CompareAndSwap(int32(Loading), int32(Streaming))
	if err := s.insert(s.sc.Feed(s.dec.write(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Abort terminates the session immediately and synchronously.  The
// buffered unparsed text is discarded; nodes inserted by earlier
// batches remain.
func (s *Session) Abort(reason error) {
	if s.Status().Terminal() {
		return
	}
	s.terminate(Aborted, reason)
}

// Close flushes remaining buffered text, closes the parser and
// completes the session.
func (s *Session) Close() error {
	if s.Status().Terminal() {
		return s.err
	}
	evs := s.sc.Feed(s.dec.finish())
	evs = append(evs, s.sc.Finish()...)
	if err := s.insert(evs); err != nil {
		return err
	}
	s.terminate(Complete, nil)
	return nil
}

func (s *Session) insert(evs []scan.Event) error {
	for _, ev := range evs {
		if ev.Kind != scan.Text {
			continue
		}
		nodes, err := dom.ParseFragment(ev.Bytes, s.target.Node)
		if err != nil {
			err = fmt.Errorf("parsing batch: %w", err)
			s.terminate(Errored, err)
			return err
		}
		nodes, err = s.sanitizer.Transform(nodes)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrSanitizationRejected, err)
			s.terminate(Errored, err)
			return err
		}
		if debug.Patch() {
			debug.Logf("patch: session %s inserting %d nodes\n", s.ID, len(nodes))
		}
		if len(nodes) == 0 {
			continue
		}
		if !s.replaced && s.mode == ReplaceMode {
			s.target.Node.ReplaceChildren(nodes...)
		} else {
			for _, n := range nodes {
				s.target.Node.Append(n)
			}
		}
		s.replaced = true
	}
	return nil
}

// fail drives the session to Errored; used for truncation at end of
// input.
func (s *Session) fail(err error) {
	if s.Status().Terminal() {
		return
	}
	s.terminate(Errored, err)
}

func (s *Session) terminate(st Status, err error) {
	s.status.Store(int32(st))
	s.err = err
	s.target.patching.Store(false)
	if s.target.session == s {
		s.target.session = nil
	}
	if s.target.Node.Scope() == nil {
		s.reg.drop(s.target)
	}
	if debug.Patch() {
		debug.Logf("patch: session %s -> %s (%v)\n", s.ID, st, err)
	}
	s.reg.emit(Event{
		Kind:     PatchEnd,
		TargetID: s.target.Node.ID(),
		Target:   s.target.Node,
		Session:  s.ID,
		Status:   st,
		Err:      err,
	})
	close(s.done)
}

package patch

import (
	"io"

	"github.com/dbaron/declarative-partial-updates/debug"
	"github.com/dbaron/declarative-partial-updates/dom"
	"github.com/dbaron/declarative-partial-updates/scan"
)

type SchedConfig struct {
	// Out receives all non-segment bytes verbatim, plus the literal
	// content of segments whose target does not resolve.  A nil Out
	// discards them.
	Out io.Writer
	// ResolveScope maps a segment's target reference to the tree
	// scope it should resolve in; nil resolves in the scheduler's
	// bound scope.  Markers encountered inside nested scopes hook
	// in here.
	ResolveScope func(ref string) *dom.Scope
	// Open configures the sessions the scheduler opens.
	Open []OpenOpt
}

type SchedOpt func(*SchedConfig)

func SchedOut(w io.Writer) SchedOpt {
	return func(c *SchedConfig) { c.Out = w }
}
func SchedResolveScope(f func(ref string) *dom.Scope) SchedOpt {
	return func(c *SchedConfig) { c.ResolveScope = f }
}
func SchedOpen(opts ...OpenOpt) SchedOpt {
	return func(c *SchedConfig) { c.Open = append(c.Open, opts...) }
}

// Scheduler demultiplexes one inbound stream into segments, routing
// each to a patch session resolved through the registry, and all
// other bytes to the configured default sink.  It implements
// io.WriteCloser; Close signals end of input.
type Scheduler struct {
	reg   *Registry
	scope *dom.Scope
	cfg   SchedConfig

	sc       *scan.Scanner
	cur      *Session
	notFound bool
	closed   bool
}

// NewScheduler binds a scheduler to scope.  Segment target references
// resolve in the tree scope in which their marker was encountered,
// this scope by default.
func (r *Registry) NewScheduler(scope *dom.Scope, opts ...SchedOpt) *Scheduler {
	cfg := SchedConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	return &Scheduler{
		reg:   r,
		scope: scope,
		cfg:   cfg,
		sc:    scan.New(scan.Segments()),
	}
}

// OpenInterleavedPatch returns a sink that extracts only segments
// targeted within scopeNode's tree scope from arbitrary piped
// markup; non-segment bytes are discarded.
func (r *Registry) OpenInterleavedPatch(scopeNode *dom.Node, opts ...OpenOpt) *Scheduler {
	scope := scopeNode.Shadow()
	if scope == nil {
		scope = scopeNode.Scope()
	}
	return r.NewScheduler(scope, SchedOpen(opts...))
}

func (d *Scheduler) Write(p []byte) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	d.dispatch(d.sc.Feed(p))
	return len(p), nil
}

// Close signals end of input.  A segment still open at that point is
// an abrupt close: its session goes to Errored; all other sessions
// and registry state are unaffected.
func (d *Scheduler) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.dispatch(d.sc.Finish())
	if d.cur != nil {
		if debug.Patch() {
			debug.Logf("patch: segment open at end of input\n")
		}
		d.cur.fail(ErrTruncatedSegment)
		d.cur = nil
		return ErrTruncatedSegment
	}
	return nil
}

// Abort terminates the scheduler immediately, aborting the session of
// any open segment.  Inserted nodes remain.
func (d *Scheduler) Abort(reason error) {
	if d.closed {
		return
	}
	d.closed = true
	if d.cur != nil {
		d.cur.Abort(reason)
		d.cur = nil
	}
}

func (d *Scheduler) dispatch(evs []scan.Event) {
	for _, ev := range evs {
		switch ev.Kind {
		case scan.Text:
			d.sink(ev.Bytes)
		case scan.SegmentStart:
			d.startSegment(ev)
		case scan.SegmentBody:
			if d.notFound {
				d.sink(ev.Bytes)
				continue
			}
			if d.cur != nil {
				// insertion failures are local to the session;
				// the stream keeps flowing
				d.cur.Write(ev.Bytes)
			}
		case scan.SegmentEnd:
			if d.notFound {
				d.sink(ev.Bytes)
				d.notFound = false
				continue
			}
			if d.cur != nil {
				d.cur.Close()
				d.cur = nil
			}
		}
	}
}

func (d *Scheduler) startSegment(ev scan.Event) {
	scope := d.scope
	if d.cfg.ResolveScope != nil {
		if sc := d.cfg.ResolveScope(ev.Target); sc != nil {
			scope = sc
		}
	}
	t, err := d.reg.Resolve(ev.Target, scope)
	if err != nil {
		// non-fatal: the segment's literal content is preserved as
		// ordinary content, and no later re-matching happens
		d.notFound = true
		d.reg.emit(Event{
			Kind:     TargetNotFound,
			TargetID: ev.Target,
			Err:      err,
		})
		d.sink(ev.Bytes)
		return
	}
	s, err := d.reg.OpenPatch(t.Node, d.cfg.Open...)
	if err != nil {
		d.notFound = true
		d.sink(ev.Bytes)
		return
	}
	d.cur = s
}

func (d *Scheduler) sink(p []byte) {
	if d.cfg.Out == nil || len(p) == 0 {
		return
	}
	d.cfg.Out.Write(p)
}

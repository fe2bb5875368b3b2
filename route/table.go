package route

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/expr-lang/expr/vm"

	"github.com/dbaron/declarative-partial-updates/debug"
	"github.com/dbaron/declarative-partial-updates/dom"
)

// RuleState is one rule's evaluated state: the active flag plus the
// parameters the matching pattern captured.
type RuleState struct {
	Active bool
	Params map[string]string
}

// MatchState maps rule keys to their state, recomputed atomically per
// navigation; it is never observed half-updated.
type MatchState map[string]RuleState

func (s MatchState) Active(key string) bool {
	return s[key].Active
}

// Change records one rule whose active flag changed across a
// navigation.
type Change struct {
	Rule   string
	Active bool
	Params map[string]string
}

type compiledRule struct {
	rule     *Rule
	key      string
	patterns []*compiledPattern
	from, to []*compiledPattern
	when     *vm.Program
}

// navigation is the span a transition rule can be active for.
type navigation struct {
	from, to *url.URL
}

// Table is an ordered, compiled rule set bound to a scope.  Compiled
// patterns are immutable; evaluation is pure apart from notification
// emission and never suspends.
type Table struct {
	scope *dom.Scope
	rules []*compiledRule
	names map[string]*compiledRule

	nav   *navigation
	state MatchState

	mu      sync.Mutex
	subs    map[int]func([]Change)
	nextSub int
}

// Compile validates and compiles rules into a table bound to scope
// (nil for a detached table).  Unknown pattern syntax and transition
// endpoints referencing undefined rule names fail here, not at match
// time.
func Compile(rules []*Rule, scope *dom.Scope) (*Table, error) {
	t := &Table{
		scope: scope,
		names: map[string]*compiledRule{},
		state: MatchState{},
		subs:  map[int]func([]Change){},
	}
	for i, r := range rules {
		cr := &compiledRule{rule: r, key: ruleKey(r, i)}
		if r.Name != "" {
			if _, ok := t.names[r.Name]; ok {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
			}
			t.names[r.Name] = cr
		}
		if r.Transition() {
			if r.From == nil || r.To == nil {
				return nil, fmt.Errorf("%w: transition rule %q needs both from and to", ErrBadRule, cr.key)
			}
		} else if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("%w: rule %q has no patterns", ErrBadRule, cr.key)
		}
		for _, p := range r.Patterns {
			cp, err := p.compile()
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", cr.key, err)
			}
			cr.patterns = append(cr.patterns, cp)
		}
		if r.When != "" {
			prog, err := compileWhen(r.When)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %q condition: %v", ErrBadRule, cr.key, err)
			}
			cr.when = prog
		}
		t.rules = append(t.rules, cr)
	}
	// endpoint references resolve after all names are known
	for _, cr := range t.rules {
		if !cr.rule.Transition() {
			continue
		}
		var err error
		if cr.from, err = t.compileEndpoint(cr.rule.From); err != nil {
			return nil, fmt.Errorf("rule %q from: %w", cr.key, err)
		}
		if cr.to, err = t.compileEndpoint(cr.rule.To); err != nil {
			return nil, fmt.Errorf("rule %q to: %w", cr.key, err)
		}
	}
	return t, nil
}

func ruleKey(r *Rule, i int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", i)
}

func (t *Table) compileEndpoint(e *Endpoint) ([]*compiledPattern, error) {
	if e.Rule != "" {
		ref, ok := t.names[e.Rule]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, e.Rule)
		}
		return ref.patterns, nil
	}
	if e.Pattern == nil {
		return nil, fmt.Errorf("%w: empty endpoint", ErrBadRule)
	}
	cp, err := e.Pattern.compile()
	if err != nil {
		return nil, err
	}
	return []*compiledPattern{cp}, nil
}

// Scope returns the scope the table is bound to.
func (t *Table) Scope() *dom.Scope {
	return t.scope
}

// Rules returns the table's rules in order.
func (t *Table) Rules() []*Rule {
	res := make([]*Rule, len(t.rules))
	for i, cr := range t.rules {
		res[i] = cr.rule
	}
	return res
}

// Evaluate computes the match state for url.  It is pure and
// idempotent: repeated calls with unchanged inputs and navigation
// state return identical results.  Multiple rules may be active at
// once; there is no exclusivity.
func (t *Table) Evaluate(u *url.URL) MatchState {
	next := make(MatchState, len(t.rules))
	for _, cr := range t.rules {
		next[cr.key] = t.evalRule(cr, u)
	}
	return next
}

func (t *Table) evalRule(cr *compiledRule, u *url.URL) RuleState {
	if cr.rule.Transition() {
		return t.evalTransition(cr)
	}
	for _, cp := range cr.patterns {
		ok, params := cp.match(u)
		if !ok {
			continue
		}
		if !evalWhen(cr.when, u, params) {
			break
		}
		return RuleState{Active: true, Params: params}
	}
	return RuleState{}
}

// evalTransition activates a from/to rule only while a navigation
// whose origin matches from and destination matches to is in flight.
func (t *Table) evalTransition(cr *compiledRule) RuleState {
	if t.nav == nil {
		return RuleState{}
	}
	var params map[string]string
	matched := false
	for _, cp := range cr.from {
		if ok, p := cp.match(t.nav.from); ok {
			matched = true
			params = p
			break
		}
	}
	if !matched {
		return RuleState{}
	}
	matched = false
	for _, cp := range cr.to {
		if ok, p := cp.match(t.nav.to); ok {
			matched = true
			for k, v := range p {
				if params == nil {
					params = map[string]string{}
				}
				params[k] = v
			}
			break
		}
	}
	if !matched {
		return RuleState{}
	}
	if !evalWhen(cr.when, t.nav.to, params) {
		return RuleState{}
	}
	return RuleState{Active: true, Params: params}
}

// BeginNavigation marks a navigation from one URL to another as in
// flight, recomputes the match state at the destination and notifies
// one batched change set.
func (t *Table) BeginNavigation(from, to *url.URL) MatchState {
	t.nav = &navigation{from: from, to: to}
	if debug.Route() {
		debug.Logf("route: navigation %s -> %s\n", from, to)
	}
	return t.apply(to)
}

// SettleNavigation auto-deactivates transition rules once their
// navigation settles, and notifies the resulting changes.
func (t *Table) SettleNavigation() MatchState {
	if t.nav == nil {
		return t.state
	}
	to := t.nav.to
	t.nav = nil
	return t.apply(to)
}

// Apply recomputes the state for u with no navigation in flight and
// notifies changes; it is the entry point for non-transition
// (initial or style-only) evaluation.
func (t *Table) Apply(u *url.URL) MatchState {
	t.nav = nil
	return t.apply(u)
}

func (t *Table) apply(u *url.URL) MatchState {
	prev := t.state
	next := t.Evaluate(u)
	t.state = next
	t.notify(prev, next)
	return next
}

// State returns the last applied match state.
func (t *Table) State() MatchState {
	return t.state
}

// Subscribe registers a change callback and returns its unsubscribe
// function.  Each navigation delivers at most one batched record
// set, with one entry per rule whose active flag changed; subscribers
// never observe partial state.
func (t *Table) Subscribe(fn func([]Change)) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (t *Table) notify(prev, next MatchState) {
	var changes []Change
	for _, cr := range t.rules {
		p, n := prev[cr.key], next[cr.key]
		if p.Active == n.Active {
			continue
		}
		changes = append(changes, Change{
			Rule:   cr.key,
			Active: n.Active,
			Params: n.Params,
		})
	}
	if len(changes) == 0 {
		return
	}
	t.mu.Lock()
	fns := make([]func([]Change), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(changes)
	}
}

// InterceptRule returns the first intercept-mode rule active at u,
// with its captured params.
func (t *Table) InterceptRule(u *url.URL) (*Rule, map[string]string) {
	for _, cr := range t.rules {
		if cr.rule.Mode != Intercept || cr.rule.Transition() {
			continue
		}
		st := t.evalRule(cr, u)
		if st.Active {
			return cr.rule, st.Params
		}
	}
	return nil, nil
}

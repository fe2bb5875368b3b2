// Package nav connects intercept-mode route rules to patch streams
// for same-document navigation.
package nav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"

	"github.com/dbaron/declarative-partial-updates/debug"
	"github.com/dbaron/declarative-partial-updates/dom"
	"github.com/dbaron/declarative-partial-updates/patch"
	"github.com/dbaron/declarative-partial-updates/route"
)

var ErrFetch = errors.New("patch source fetch failed")

// Fetcher is the network collaborator.  Cancellation of the passed
// context propagates to the sessions the response feeds.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

type FetchFunc func(ctx context.Context, u *url.URL) (io.ReadCloser, error)

func (f FetchFunc) Fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	return f(ctx, u)
}

// Interceptor glues a route table to the patch engine.  Navigate
// evaluates the table for every navigation; for an eligible
// same-document navigation matching an intercept rule it suppresses
// default navigation, fetches the rule's patch source and pipes the
// response into a patch scheduler bound to the rule's scope.
type Interceptor struct {
	table *route.Table
	reg   *patch.Registry
	fetch Fetcher

	cur     *url.URL
	history []*url.URL
}

func NewInterceptor(table *route.Table, reg *patch.Registry, fetch Fetcher, at *url.URL) *Interceptor {
	ic := &Interceptor{table: table, reg: reg, fetch: fetch, cur: at}
	if at != nil {
		ic.history = []*url.URL{at}
		table.Apply(at)
	}
	return ic
}

// Location returns the current URL.
func (ic *Interceptor) Location() *url.URL {
	return ic.cur
}

// History returns the session history list, current entry last.
func (ic *Interceptor) History() []*url.URL {
	return ic.history
}

// Navigate processes a navigation to the given URL.  The returned
// flag reports whether the navigation was intercepted; false means
// the caller should perform the default navigation.
func (ic *Interceptor) Navigate(ctx context.Context, to *url.URL) (bool, error) {
	from := ic.cur
	rule, params := ic.interceptRule(from, to)
	if rule == nil {
		ic.applyHistory(route.HistoryPush, to)
		ic.table.Apply(to)
		ic.cur = to
		return false, nil
	}
	if debug.Nav() {
		debug.Logf("nav: intercepting %s -> %s via rule %q\n", from, to, rule.Name)
	}
	// transition rules spanning this navigation activate here and
	// deactivate when the fetch settles
	ic.table.BeginNavigation(from, to)
	src := to
	if rule.PatchSource != "" {
		var err error
		src, err = ic.patchSource(rule, to, params)
		if err != nil {
			ic.table.SettleNavigation()
			return true, err
		}
	}
	err := ic.stream(ctx, src, rule)
	ic.table.SettleNavigation()
	ic.applyHistory(rule.History, to)
	ic.cur = to
	return true, err
}

func (ic *Interceptor) interceptRule(from, to *url.URL) (*route.Rule, map[string]string) {
	if !sameDocument(from, to) {
		return nil, nil
	}
	return ic.table.InterceptRule(to)
}

// sameDocument gates eligibility: only same-origin navigations are
// candidates for interception.
func sameDocument(from, to *url.URL) bool {
	if from == nil || to == nil {
		return false
	}
	return from.Scheme == to.Scheme && from.Host == to.Host
}

func (ic *Interceptor) stream(ctx context.Context, src *url.URL, rule *route.Rule) error {
	body, err := ic.fetch.Fetch(ctx, src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFetch, src, err)
	}
	defer body.Close()
	sched := ic.reg.NewScheduler(ic.scope())
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			// fetch cancellation aborts the sessions it feeds
			sched.Abort(err)
			return err
		}
		n, err := body.Read(buf)
		if n > 0 {
			sched.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			sched.Abort(err)
			return fmt.Errorf("%w: %s: %v", ErrFetch, src, err)
		}
	}
	return sched.Close()
}

func (ic *Interceptor) scope() *dom.Scope {
	if sc := ic.table.Scope(); sc != nil {
		return sc
	}
	return &ic.reg.Document().Scope
}

var sourceParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// patchSource resolves a rule's patch source against the navigated
// URL, substituting :name tokens with captured parameters.
func (ic *Interceptor) patchSource(rule *route.Rule, to *url.URL, params map[string]string) (*url.URL, error) {
	src := sourceParam.ReplaceAllStringFunc(rule.PatchSource, func(m string) string {
		if v, ok := params[m[1:]]; ok {
			return v
		}
		return m
	})
	ref, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("rule %q patch source: %w", rule.Name, err)
	}
	return to.ResolveReference(ref), nil
}

func (ic *Interceptor) applyHistory(mode route.HistoryMode, to *url.URL) {
	switch mode {
	case route.HistoryPush:
		ic.history = append(ic.history, to)
	case route.HistoryReplace:
		if len(ic.history) == 0 {
			ic.history = []*url.URL{to}
			return
		}
		ic.history[len(ic.history)-1] = to
	case route.HistoryNone:
	}
}

package nav

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/dbaron/declarative-partial-updates/dom"
	"github.com/dbaron/declarative-partial-updates/patch"
	"github.com/dbaron/declarative-partial-updates/route"
)

// mapFetcher serves canned response bodies by path.
type mapFetcher map[string]string

func (f mapFetcher) Fetch(_ context.Context, u *url.URL) (io.ReadCloser, error) {
	body, ok := f[u.Path]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func testSetup(t *testing.T, rules []*route.Rule) (*patch.Registry, *dom.Node, *route.Table) {
	t.Helper()
	doc := dom.NewDocument()
	body := dom.NewElement("body")
	doc.Root.Append(body)
	main := dom.NewElement("main", dom.Attribute{Key: "id", Val: "content"})
	main.Append(dom.NewText("home"))
	body.Append(main)
	tbl, err := route.Compile(rules, &doc.Scope)
	if err != nil {
		t.Fatal(err)
	}
	return patch.NewRegistry(doc), main, tbl
}

func interceptRules() []*route.Rule {
	return []*route.Rule{
		{Name: "home", Patterns: []route.Pattern{route.PathPattern("/")}},
		{
			Name:        "user",
			Patterns:    []route.Pattern{route.PathPattern("/users/:id")},
			Mode:        route.Intercept,
			PatchSource: "/partials/users/:id",
		},
	}
}

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestNavigateIntercepted(t *testing.T) {
	reg, main, tbl := testSetup(t, interceptRules())
	fetch := mapFetcher{
		"/partials/users/7": `<template patchfor="content"><h1>user 7</h1></template>`,
	}
	ic := NewInterceptor(tbl, reg, fetch, mustURL(t, "https://example.com/"))

	intercepted, err := ic.Navigate(context.Background(), mustURL(t, "https://example.com/users/7"))
	if err != nil {
		t.Fatal(err)
	}
	if !intercepted {
		t.Fatal("navigation should have been intercepted")
	}
	if got := main.Text(); got != "user 7" {
		t.Errorf("patched content: %q", got)
	}
	if got := ic.Location().Path; got != "/users/7" {
		t.Errorf("location: %q", got)
	}
	if !tbl.State().Active("user") {
		t.Error("destination rule inactive after navigation")
	}
}

func TestNavigateNotIntercepted(t *testing.T) {
	reg, main, tbl := testSetup(t, interceptRules())
	ic := NewInterceptor(tbl, reg, mapFetcher{}, mustURL(t, "https://example.com/"))

	// no intercept rule matches /about
	intercepted, err := ic.Navigate(context.Background(), mustURL(t, "https://example.com/about"))
	if err != nil {
		t.Fatal(err)
	}
	if intercepted {
		t.Fatal("navigation should not have been intercepted")
	}
	if got := main.Text(); got != "home" {
		t.Errorf("content changed: %q", got)
	}
	if got := ic.Location().Path; got != "/about" {
		t.Errorf("location: %q", got)
	}
}

func TestNavigateCrossOrigin(t *testing.T) {
	reg, _, tbl := testSetup(t, interceptRules())
	ic := NewInterceptor(tbl, reg, mapFetcher{}, mustURL(t, "https://example.com/"))

	intercepted, err := ic.Navigate(context.Background(), mustURL(t, "https://other.example/users/7"))
	if err != nil {
		t.Fatal(err)
	}
	if intercepted {
		t.Fatal("cross-origin navigation must not be intercepted")
	}
}

func TestNavigateFetchError(t *testing.T) {
	reg, main, tbl := testSetup(t, interceptRules())
	ic := NewInterceptor(tbl, reg, mapFetcher{}, mustURL(t, "https://example.com/"))

	intercepted, err := ic.Navigate(context.Background(), mustURL(t, "https://example.com/users/7"))
	if !intercepted {
		t.Fatal("navigation should have been intercepted")
	}
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err: %v", err)
	}
	if got := main.Text(); got != "home" {
		t.Errorf("content changed on failed fetch: %q", got)
	}
}

func TestNavigateHistory(t *testing.T) {
	rules := interceptRules()
	rules[1].History = route.HistoryReplace
	reg, _, tbl := testSetup(t, rules)
	fetch := mapFetcher{
		"/partials/users/7": `<template patchfor="content">u</template>`,
	}
	ic := NewInterceptor(tbl, reg, fetch, mustURL(t, "https://example.com/"))

	// a plain navigation pushes
	ic.Navigate(context.Background(), mustURL(t, "https://example.com/about"))
	if h := ic.History(); len(h) != 2 || h[1].Path != "/about" {
		t.Fatalf("history after push: %v", h)
	}
	// the intercept rule replaces
	ic.Navigate(context.Background(), mustURL(t, "https://example.com/users/7"))
	h := ic.History()
	if len(h) != 2 || h[1].Path != "/users/7" {
		t.Fatalf("history after replace: %v", h)
	}
}

func TestTransitionRuleDuringInterception(t *testing.T) {
	rules := append(interceptRules(), &route.Rule{
		Name: "loading-user",
		From: &route.Endpoint{Rule: "home"},
		To:   &route.Endpoint{Rule: "user"},
	})
	reg, _, tbl := testSetup(t, rules)

	var sawTransition bool
	fetch := FetchFunc(func(_ context.Context, u *url.URL) (io.ReadCloser, error) {
		// the fetch happens inside the navigation span
		sawTransition = tbl.State().Active("loading-user")
		return io.NopCloser(strings.NewReader(`<template patchfor="content">u</template>`)), nil
	})
	ic := NewInterceptor(tbl, reg, fetch, mustURL(t, "https://example.com/"))

	if _, err := ic.Navigate(context.Background(), mustURL(t, "https://example.com/users/7")); err != nil {
		t.Fatal(err)
	}
	if !sawTransition {
		t.Error("transition rule inactive during fetch")
	}
	if tbl.State().Active("loading-user") {
		t.Error("transition rule still active after navigation settled")
	}
}

func TestNavigateCancellation(t *testing.T) {
	reg, main, tbl := testSetup(t, interceptRules())
	ctx, cancel := context.WithCancel(context.Background())

	fetch := FetchFunc(func(_ context.Context, u *url.URL) (io.ReadCloser, error) {
		cancel()
		return io.NopCloser(strings.NewReader(`<template patchfor="content">u`)), nil
	})
	ic := NewInterceptor(tbl, reg, fetch, mustURL(t, "https://example.com/"))

	_, err := ic.Navigate(ctx, mustURL(t, "https://example.com/users/7"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err: %v", err)
	}
	if got := main.Text(); got != "home" {
		t.Errorf("content changed on cancelled fetch: %q", got)
	}
}

func TestPatchSourceSubstitution(t *testing.T) {
	reg, main, tbl := testSetup(t, interceptRules())
	var fetched string
	fetch := FetchFunc(func(_ context.Context, u *url.URL) (io.ReadCloser, error) {
		fetched = u.String()
		return io.NopCloser(strings.NewReader(`<template patchfor="content">u</template>`)), nil
	})
	ic := NewInterceptor(tbl, reg, fetch, mustURL(t, "https://example.com/"))

	if _, err := ic.Navigate(context.Background(), mustURL(t, "https://example.com/users/42")); err != nil {
		t.Fatal(err)
	}
	if fetched != "https://example.com/partials/users/42" {
		t.Errorf("fetched: %q", fetched)
	}
	if got := main.Text(); got != "u" {
		t.Errorf("patched content: %q", got)
	}
}

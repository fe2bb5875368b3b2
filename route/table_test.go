package route

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func siteRules() []*Rule {
	return []*Rule{
		{Name: "home", Patterns: []Pattern{PathPattern("/")}},
		{Name: "about", Patterns: []Pattern{PathPattern("/about")}},
		{Name: "user", Patterns: []Pattern{PathPattern("/users/:id")}},
	}
}

func TestTableEvaluate(t *testing.T) {
	tbl, err := Compile(siteRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	st := tbl.Evaluate(mustURL(t, "https://example.com/about"))
	if !st.Active("about") {
		t.Error("about should be active")
	}
	if st.Active("home") || st.Active("user") {
		t.Errorf("only about should be active: %v", st)
	}

	st = tbl.Evaluate(mustURL(t, "https://example.com/users/7"))
	if !st.Active("user") {
		t.Fatal("user should be active")
	}
	if got := st["user"].Params["id"]; got != "7" {
		t.Errorf("captured id: %q", got)
	}
}

func TestTableEvaluateIdempotent(t *testing.T) {
	tbl, err := Compile(siteRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	u := mustURL(t, "https://example.com/users/7")
	if d := cmp.Diff(tbl.Evaluate(u), tbl.Evaluate(u)); d != "" {
		t.Errorf("repeated evaluation differs:\n%s", d)
	}
}

func TestTableMultipleActiveRules(t *testing.T) {
	tbl, err := Compile([]*Rule{
		{Name: "any-user", Patterns: []Pattern{PathPattern("/users/*rest")}},
		{Name: "one-user", Patterns: []Pattern{PathPattern("/users/:id")}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	st := tbl.Evaluate(mustURL(t, "https://example.com/users/7"))
	if !st.Active("any-user") || !st.Active("one-user") {
		t.Errorf("overlapping rules should both be active: %v", st)
	}
}

func TestTableNotifyBatchesChanges(t *testing.T) {
	tbl, err := Compile(siteRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var batches [][]Change
	defer tbl.Subscribe(func(cs []Change) { batches = append(batches, cs) })()

	tbl.Apply(mustURL(t, "https://example.com/"))
	tbl.Apply(mustURL(t, "https://example.com/about"))

	if len(batches) != 2 {
		t.Fatalf("batches: %d", len(batches))
	}
	// first apply: home activates
	if len(batches[0]) != 1 || batches[0][0].Rule != "home" || !batches[0][0].Active {
		t.Errorf("first batch: %+v", batches[0])
	}
	// second apply: home deactivates and about activates, one batch
	if len(batches[1]) != 2 {
		t.Fatalf("second batch: %+v", batches[1])
	}
	if batches[1][0].Rule != "home" || batches[1][0].Active {
		t.Errorf("second batch home entry: %+v", batches[1][0])
	}
	if batches[1][1].Rule != "about" || !batches[1][1].Active {
		t.Errorf("second batch about entry: %+v", batches[1][1])
	}

	// re-applying the same URL changes nothing and stays silent
	tbl.Apply(mustURL(t, "https://example.com/about"))
	if len(batches) != 2 {
		t.Errorf("no-change apply notified: %+v", batches[2])
	}
}

func TestTransitionRuleSpan(t *testing.T) {
	rules := append(siteRules(), &Rule{
		Name: "home-to-about",
		From: &Endpoint{Rule: "home"},
		To:   &Endpoint{Rule: "about"},
	})
	tbl, err := Compile(rules, nil)
	if err != nil {
		t.Fatal(err)
	}
	tbl.Apply(mustURL(t, "https://example.com/"))
	if tbl.State().Active("home-to-about") {
		t.Fatal("transition active with no navigation in flight")
	}

	st := tbl.BeginNavigation(
		mustURL(t, "https://example.com/"),
		mustURL(t, "https://example.com/about"))
	if !st.Active("home-to-about") {
		t.Fatal("transition inactive during matching navigation")
	}
	if !st.Active("about") {
		t.Error("destination rule inactive during navigation")
	}

	st = tbl.SettleNavigation()
	if st.Active("home-to-about") {
		t.Fatal("transition still active after settle")
	}
	if !st.Active("about") {
		t.Error("destination rule deactivated by settle")
	}
}

func TestTransitionRuleOriginMustMatch(t *testing.T) {
	rules := append(siteRules(), &Rule{
		Name: "home-to-about",
		From: &Endpoint{Rule: "home"},
		To:   &Endpoint{Rule: "about"},
	})
	tbl, err := Compile(rules, nil)
	if err != nil {
		t.Fatal(err)
	}
	st := tbl.BeginNavigation(
		mustURL(t, "https://example.com/users/7"),
		mustURL(t, "https://example.com/about"))
	if st.Active("home-to-about") {
		t.Fatal("transition active for non-matching origin")
	}
	tbl.SettleNavigation()
}

func TestTransitionRuleInlinePatternParams(t *testing.T) {
	tbl, err := Compile([]*Rule{{
		Name: "to-user",
		From: &Endpoint{Pattern: &Pattern{Pathname: "/"}},
		To:   &Endpoint{Pattern: &Pattern{Pathname: "/users/:id"}},
	}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	st := tbl.BeginNavigation(
		mustURL(t, "https://example.com/"),
		mustURL(t, "https://example.com/users/9"))
	if !st.Active("to-user") {
		t.Fatal("transition inactive")
	}
	if got := st["to-user"].Params["id"]; got != "9" {
		t.Errorf("destination params: %q", got)
	}
}

func TestWhenCondition(t *testing.T) {
	tbl, err := Compile([]*Rule{{
		Name:     "answer",
		Patterns: []Pattern{PathPattern("/users/:id")},
		When:     `params.id == "42"`,
	}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Evaluate(mustURL(t, "https://example.com/users/42")).Active("answer") {
		t.Error("condition should pass for id 42")
	}
	if tbl.Evaluate(mustURL(t, "https://example.com/users/7")).Active("answer") {
		t.Error("condition should mask id 7")
	}
}

func TestWhenCompileError(t *testing.T) {
	_, err := Compile([]*Rule{{
		Name:     "bad",
		Patterns: []Pattern{PathPattern("/")},
		When:     "pathname ==",
	}}, nil)
	if !errors.Is(err, ErrBadRule) {
		t.Fatalf("compile: %v", err)
	}
}

func TestInterceptRule(t *testing.T) {
	tbl, err := Compile([]*Rule{
		{Name: "styled", Patterns: []Pattern{PathPattern("/users/:id")}},
		{Name: "first", Patterns: []Pattern{PathPattern("/users/:id")}, Mode: Intercept},
		{Name: "second", Patterns: []Pattern{PathPattern("/users/:id")}, Mode: Intercept},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	r, params := tbl.InterceptRule(mustURL(t, "https://example.com/users/3"))
	if r == nil || r.Name != "first" {
		t.Fatalf("intercept rule: %+v", r)
	}
	if params["id"] != "3" {
		t.Errorf("params: %v", params)
	}
	if r, _ := tbl.InterceptRule(mustURL(t, "https://example.com/nope")); r != nil {
		t.Errorf("intercept rule for non-matching url: %+v", r)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		rules []*Rule
		want  error
	}{
		{
			name: "duplicate name",
			rules: []*Rule{
				{Name: "a", Patterns: []Pattern{PathPattern("/")}},
				{Name: "a", Patterns: []Pattern{PathPattern("/x")}},
			},
			want: ErrDuplicateName,
		},
		{
			name:  "no patterns",
			rules: []*Rule{{Name: "a"}},
			want:  ErrBadRule,
		},
		{
			name: "transition missing endpoint",
			rules: []*Rule{{
				Name: "t",
				From: &Endpoint{Pattern: &Pattern{Pathname: "/"}},
			}},
			want: ErrBadRule,
		},
		{
			name: "unknown rule reference",
			rules: []*Rule{{
				Name: "t",
				From: &Endpoint{Rule: "ghost"},
				To:   &Endpoint{Pattern: &Pattern{Pathname: "/"}},
			}},
			want: ErrUnknownRule,
		},
		{
			name: "malformed pattern",
			rules: []*Rule{{
				Name:     "a",
				Patterns: []Pattern{PathPattern("/:id/:id")},
			}},
			want: ErrMalformedPattern,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.rules, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("compile: got %v, want %v", err, tc.want)
			}
		})
	}
}

package route

import (
	"testing"
)

func TestParseRules(t *testing.T) {
	const src = `
rules:
  - name: home
    match: /
  - name: about
    match:
      - pathname: /about/:section
        host: example.com
      - /about
  - name: home-to-about
    from: {rule: home}
    to: {rule: about}
    mode: intercept
    source: /partials/about
    history: replace
    when: 'host == "example.com"'
`
	rules, err := ParseRules([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 3 {
		t.Fatalf("rules: %d", len(rules))
	}

	home := rules[0]
	if home.Name != "home" || len(home.Patterns) != 1 || home.Patterns[0].Pathname != "/" {
		t.Errorf("home: %+v", home)
	}
	if home.Mode != StyleOnly || home.History != HistoryPush {
		t.Errorf("home defaults: mode %v history %v", home.Mode, home.History)
	}

	about := rules[1]
	if len(about.Patterns) != 2 {
		t.Fatalf("about patterns: %+v", about.Patterns)
	}
	if about.Patterns[0].Host != "example.com" || about.Patterns[0].Pathname != "/about/:section" {
		t.Errorf("about structured pattern: %+v", about.Patterns[0])
	}
	if about.Patterns[1].Pathname != "/about" {
		t.Errorf("about shorthand pattern: %+v", about.Patterns[1])
	}

	tr := rules[2]
	if !tr.Transition() {
		t.Fatal("third rule should be a transition")
	}
	if tr.From.Rule != "home" || tr.To.Rule != "about" {
		t.Errorf("transition endpoints: %+v %+v", tr.From, tr.To)
	}
	if tr.Mode != Intercept || tr.History != HistoryReplace {
		t.Errorf("transition mode/history: %v %v", tr.Mode, tr.History)
	}
	if tr.PatchSource != "/partials/about" || tr.When == "" {
		t.Errorf("transition source/when: %q %q", tr.PatchSource, tr.When)
	}

	// the parsed set must compile end to end
	if _, err := Compile(rules, nil); err != nil {
		t.Fatal(err)
	}
}

func TestParseRulesInlineTransitionPattern(t *testing.T) {
	const src = `
rules:
  - name: t
    from: /
    to:
      pathname: /users/:id
`
	rules, err := ParseRules([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	tr := rules[0]
	if tr.From.Pattern == nil || tr.From.Pattern.Pathname != "/" {
		t.Errorf("from: %+v", tr.From)
	}
	if tr.To.Pattern == nil || tr.To.Pattern.Pathname != "/users/:id" {
		t.Errorf("to: %+v", tr.To)
	}
}

func TestParseRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown mode", "rules:\n  - name: a\n    match: /\n    mode: teleport\n"},
		{"unknown history", "rules:\n  - name: a\n    match: /\n    history: rewind\n"},
		{"unknown pattern component", "rules:\n  - name: a\n    match:\n      port: \"8080\"\n"},
		{"non-string pattern", "rules:\n  - name: a\n    match: 7\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseRules([]byte(tc.src)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

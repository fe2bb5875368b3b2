package route

import "fmt"

// Mode selects what an active rule does on navigation.
type Mode int

const (
	// StyleOnly rules only surface their active flag; navigation
	// proceeds normally.
	StyleOnly Mode = iota
	// Intercept rules suppress default navigation and feed a patch
	// stream instead.
	Intercept
)

func (m Mode) String() string {
	s, ok := map[Mode]string{
		StyleOnly: "style-only",
		Intercept: "intercept",
	}[m]
	if ok {
		return s
	}
	return "<unknown mode>"
}

func (m *Mode) UnmarshalText(d []byte) error {
	v, ok := map[string]Mode{
		"":           StyleOnly,
		"style-only": StyleOnly,
		"intercept":  Intercept,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized mode %q", d)
	}
	*m = v
	return nil
}

type HistoryMode int

const (
	HistoryPush HistoryMode = iota
	HistoryReplace
	HistoryNone
)

func (h HistoryMode) String() string {
	s, ok := map[HistoryMode]string{
		HistoryPush:    "push",
		HistoryReplace: "replace",
		HistoryNone:    "none",
	}[h]
	if ok {
		return s
	}
	return "<unknown history mode>"
}

func (h *HistoryMode) UnmarshalText(d []byte) error {
	v, ok := map[string]HistoryMode{
		"":        HistoryPush,
		"push":    HistoryPush,
		"replace": HistoryReplace,
		"none":    HistoryNone,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized history mode %q", d)
	}
	*h = v
	return nil
}

// Endpoint is one side of a transition rule: either an inline
// pattern or a reference to another rule's patterns by name.
type Endpoint struct {
	Rule    string
	Pattern *Pattern
}

// Rule declares one route.  A plain rule carries one or more pattern
// descriptors; a transition rule carries a from/to endpoint pair and
// is active only for the span of one matching navigation.
type Rule struct {
	// Name is optional but unique within its table.
	Name     string
	Patterns []Pattern
	From, To *Endpoint
	Mode     Mode
	History  HistoryMode
	// PatchSource, when set on an intercept rule, is fetched in
	// place of the navigated URL.
	PatchSource string
	// When is an optional expr condition over the navigated URL's
	// components; an inactive condition masks the rule.
	When string
}

// Transition reports whether r is a from/to transition rule.
func (r *Rule) Transition() bool {
	return r.From != nil || r.To != nil
}

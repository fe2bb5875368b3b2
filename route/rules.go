package route

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// ParseRules reads a YAML rule set:
//
//	rules:
//	  - name: home
//	    match: /
//	  - name: about
//	    match:
//	      - pathname: /about/:section
//	        host: example.com
//	  - name: home-to-about
//	    from: {rule: home}
//	    to: {rule: about}
//	    mode: intercept
//	    source: /partials/about
//	    history: replace
//
// A bare string in match, from or to is pathname shorthand.
func ParseRules(b []byte) ([]*Rule, error) {
	var doc struct {
		Rules []ruleDoc `yaml:"rules"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	res := make([]*Rule, 0, len(doc.Rules))
	for i, rd := range doc.Rules {
		r, err := rd.rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		res = append(res, r)
	}
	return res, nil
}

type ruleDoc struct {
	Name    string       `yaml:"name"`
	Match   matchDoc     `yaml:"match"`
	From    *endpointDoc `yaml:"from"`
	To      *endpointDoc `yaml:"to"`
	Mode    string       `yaml:"mode"`
	History string       `yaml:"history"`
	Source  string       `yaml:"source"`
	When    string       `yaml:"when"`
}

func (rd *ruleDoc) rule() (*Rule, error) {
	r := &Rule{
		Name:        rd.Name,
		Patterns:    rd.Match.patterns,
		PatchSource: rd.Source,
		When:        rd.When,
	}
	if err := r.Mode.UnmarshalText([]byte(rd.Mode)); err != nil {
		return nil, err
	}
	if err := r.History.UnmarshalText([]byte(rd.History)); err != nil {
		return nil, err
	}
	if rd.From != nil {
		r.From = rd.From.endpoint()
	}
	if rd.To != nil {
		r.To = rd.To.endpoint()
	}
	return r, nil
}

type matchDoc struct {
	patterns []Pattern
}

func (m *matchDoc) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	if list, ok := v.([]any); ok {
		for _, item := range list {
			p, err := coercePattern(item)
			if err != nil {
				return err
			}
			m.patterns = append(m.patterns, p)
		}
		return nil
	}
	p, err := coercePattern(v)
	if err != nil {
		return err
	}
	m.patterns = []Pattern{p}
	return nil
}

type endpointDoc struct {
	rule    string
	pattern *Pattern
}

func (e *endpointDoc) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	if m := asStringMap(v); m != nil {
		if ref, ok := m["rule"].(string); ok {
			e.rule = ref
			return nil
		}
	}
	p, err := coercePattern(v)
	if err != nil {
		return err
	}
	e.pattern = &p
	return nil
}

func (e *endpointDoc) endpoint() *Endpoint {
	return &Endpoint{Rule: e.rule, Pattern: e.pattern}
}

func coercePattern(v any) (Pattern, error) {
	if s, ok := v.(string); ok {
		return PathPattern(s), nil
	}
	m := asStringMap(v)
	if m == nil {
		return Pattern{}, fmt.Errorf("pattern must be a string or a mapping, got %T", v)
	}
	var p Pattern
	for k, val := range m {
		s, ok := val.(string)
		if !ok {
			return Pattern{}, fmt.Errorf("pattern component %q must be a string", k)
		}
		switch k {
		case "protocol":
			p.Protocol = s
		case "host":
			p.Host = s
		case "pathname":
			p.Pathname = s
		case "search":
			p.Search = s
		default:
			return Pattern{}, fmt.Errorf("unknown pattern component %q", k)
		}
	}
	return p, nil
}

func asStringMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		res := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil
			}
			res[s] = val
		}
		return res
	}
	return nil
}

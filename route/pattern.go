package route

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Pattern is a structured URL-pattern descriptor.  Empty components
// match anything.  Pathname and host support :name single-segment
// parameters, *name freeform parameters and bare * wildcards, in the
// segment-wildcard style of request routers; compiled patterns are
// stdlib regexps underneath and immutable once compiled.
type Pattern struct {
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Pathname string `yaml:"pathname"`
	Search   string `yaml:"search"`
}

// PathPattern is the bare-string shorthand: the whole descriptor is a
// pathname.
func PathPattern(pathname string) Pattern {
	return Pattern{Pathname: pathname}
}

type compiledPattern struct {
	src      Pattern
	protocol *regexp.Regexp
	host     *regexp.Regexp
	pathname *regexp.Regexp
	// search is a set of required query keys, each with a segment
	// pattern for its value.
	search []searchTerm
}

type searchTerm struct {
	key string
	val *regexp.Regexp
}

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (p Pattern) compile() (*compiledPattern, error) {
	cp := &compiledPattern{src: p}
	var err error
	seen := map[string]bool{}
	anon := 0
	if cp.protocol, err = compileComponent(p.Protocol, "/", seen, &anon); err != nil {
		return nil, &PatternError{Component: "protocol", Src: p.Protocol, Err: err}
	}
	if cp.host, err = compileComponent(p.Host, ".", seen, &anon); err != nil {
		return nil, &PatternError{Component: "host", Src: p.Host, Err: err}
	}
	if cp.pathname, err = compileComponent(p.Pathname, "/", seen, &anon); err != nil {
		return nil, &PatternError{Component: "pathname", Src: p.Pathname, Err: err}
	}
	if cp.search, err = compileSearch(p.Search, seen, &anon); err != nil {
		return nil, &PatternError{Component: "search", Src: p.Search, Err: err}
	}
	return cp, nil
}

// compileComponent turns one component pattern into an anchored
// regexp with named capture groups for its parameters.
func compileComponent(src, sep string, seen map[string]bool, anon *int) (*regexp.Regexp, error) {
	if src == "" {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString("^")
	segs := strings.Split(src, sep)
	for i, seg := range segs {
		if i > 0 {
			sb.WriteString(regexp.QuoteMeta(sep))
		}
		switch {
		case seg == "*":
			// Go's regexp accepts all-digit capture names, so
			// anonymous wildcards number from 0 and cannot collide
			// with named parameters.
			fmt.Fprintf(&sb, `(?P<%d>.*)`, *anon)
			*anon++
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if err := addParam(name, seen); err != nil {
				return nil, err
			}
			fmt.Fprintf(&sb, `(?P<%s>[^%s]+)`, name, regexp.QuoteMeta(sep))
		case strings.HasPrefix(seg, "*"):
			name := seg[1:]
			if err := addParam(name, seen); err != nil {
				return nil, err
			}
			fmt.Fprintf(&sb, `(?P<%s>.*)`, name)
		case strings.ContainsAny(seg, ":*"):
			return nil, fmt.Errorf("wildcard not at segment start in %q", seg)
		default:
			sb.WriteString(regexp.QuoteMeta(seg))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

func addParam(name string, seen map[string]bool) error {
	if !paramName.MatchString(name) {
		return fmt.Errorf("bad parameter name %q", name)
	}
	if seen[name] {
		return fmt.Errorf("duplicate parameter name %q", name)
	}
	seen[name] = true
	return nil
}

// compileSearch parses "key=pattern&key2=pattern2"; each listed key
// must be present in the url's query with a matching value.
func compileSearch(src string, seen map[string]bool, anon *int) ([]searchTerm, error) {
	if src == "" {
		return nil, nil
	}
	var terms []searchTerm
	for _, piece := range strings.Split(strings.TrimPrefix(src, "?"), "&") {
		key, val, ok := strings.Cut(piece, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("search term %q is not key=pattern", piece)
		}
		re, err := compileComponent(val, "&", seen, anon)
		if err != nil {
			return nil, err
		}
		terms = append(terms, searchTerm{key: key, val: re})
	}
	return terms, nil
}

// match evaluates u against the compiled pattern, returning captured
// parameters on success.
func (cp *compiledPattern) match(u *url.URL) (bool, map[string]string) {
	params := map[string]string{}
	if !matchComponent(cp.protocol, u.Scheme, params) {
		return false, nil
	}
	if !matchComponent(cp.host, u.Hostname(), params) {
		return false, nil
	}
	if !matchComponent(cp.pathname, u.Path, params) {
		return false, nil
	}
	if len(cp.search) > 0 {
		q := u.Query()
		for _, term := range cp.search {
			vals, ok := q[term.key]
			if !ok || len(vals) == 0 {
				return false, nil
			}
			if !matchComponent(term.val, vals[0], params) {
				return false, nil
			}
		}
	}
	return true, params
}

func matchComponent(re *regexp.Regexp, v string, params map[string]string) bool {
	if re == nil {
		return true
	}
	m := re.FindStringSubmatch(v)
	if m == nil {
		return false
	}
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = m[i]
	}
	return true
}

package scan

import (
	"bytes"

	"golang.org/x/net/html"

	"github.com/dbaron/declarative-partial-updates/debug"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true,
	"wbr": true,
}

// rawTextElements mirrors the element set golang.org/x/net/html
// tokenizes as raw text; their content never contains tags.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true,
	"noscript": true, "plaintext": true, "script": true,
	"style": true, "textarea": true, "title": true, "xmp": true,
}

// Scanner incrementally scans streamed markup.  Feed never blocks:
// it reports what has become unambiguous and carries the rest to the
// next call.  The zero Scanner is not ready; use New.
type Scanner struct {
	opts scanOpts

	buf []byte
	// ctx is the raw-text element the carry begins inside, if any,
	// so re-tokenization resumes in the right state.
	ctx string

	inSeg    bool
	tplDepth int
}

func New(opts ...Opt) *Scanner {
	s := &Scanner{}
	for _, o := range opts {
		o(&s.opts)
	}
	if rawTextElements[s.opts.context] {
		s.ctx = s.opts.context
	}
	return s
}

// Open reports whether a segment is still open; after end of input
// this is the truncated-segment condition.
func (s *Scanner) Open() bool {
	return s.inSeg
}

// Buffered returns the number of carried bytes not yet reported.
func (s *Scanner) Buffered() int {
	return len(s.buf)
}

// Feed appends p and returns events for all input that has become
// unambiguous.  Event bytes alias the scanner's buffer and are valid
// until the next Feed or Finish call.
func (s *Scanner) Feed(p []byte) []Event {
	s.buf = append(s.buf, p...)
	if s.opts.segments {
		return s.scanSegments()
	}
	return s.scanUnits()
}

// Finish flushes the carry.  In unit mode the remaining bytes become
// one final Text event; in segment mode they flush as ordinary
// content or, with a segment still open, as its final body bytes.
func (s *Scanner) Finish() []Event {
	if len(s.buf) == 0 {
		return nil
	}
	kind := Text
	if s.opts.segments && s.inSeg {
		kind = SegmentBody
	}
	ev := Event{Kind: kind, Bytes: s.buf}
	s.buf = nil
	return []Event{ev}
}

// held reports whether a token ending at the buffer end could still
// grow with more input: trailing text always, comments and doctypes
// without their terminator.
func held(tt html.TokenType, raw []byte, tokEnd, bufLen int) bool {
	if tokEnd != bufLen {
		return false
	}
	switch tt {
	case html.TextToken:
		return true
	case html.CommentToken:
		return !bytes.HasSuffix(raw, []byte("-->"))
	case html.DoctypeToken:
		return !bytes.HasSuffix(raw, []byte(">"))
	}
	return false
}

func (s *Scanner) scanUnits() []Event {
	tz := html.NewTokenizerFragment(bytes.NewReader(s.buf), s.ctx)
	var (
		pos   int
		emit  int
		depth int
	)
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := tz.Raw()
		tokEnd := pos + len(raw)
		if held(tt, raw, tokEnd, len(s.buf)) {
			break
		}
		switch tt {
		case html.StartTagToken:
			name, _ := tz.TagName()
			if !voidElements[string(name)] {
				depth++
			}
		case html.EndTagToken:
			if depth > 0 {
				depth--
			}
		}
		pos = tokEnd
		if depth == 0 {
			emit = pos
		}
	}
	if emit == 0 {
		return nil
	}
	if debug.Scan() {
		debug.Logf("scan: unit flush %d of %d buffered bytes\n", emit, len(s.buf))
	}
	evs := []Event{{Kind: Text, Bytes: s.buf[:emit]}}
	s.buf = append([]byte(nil), s.buf[emit:]...)
	return evs
}

func (s *Scanner) scanSegments() []Event {
	tz := html.NewTokenizerFragment(bytes.NewReader(s.buf), s.ctx)
	var (
		evs       []Event
		pos, emit int
		flushFrom int
		curRaw    = s.ctx
	)
	inSeg, tplDepth := s.inSeg, s.tplDepth

	// flush emits the pending passthrough region ending at 'to'.
	flush := func(to int) {
		if to <= flushFrom {
			return
		}
		kind := Text
		if inSeg {
			kind = SegmentBody
		}
		evs = append(evs, Event{Kind: kind, Bytes: s.buf[flushFrom:to]})
		flushFrom = to
	}

	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			break
		}
		rawLen := len(tz.Raw())
		tokEnd := pos + rawLen
		if held(tt, s.buf[pos:tokEnd], tokEnd, len(s.buf)) {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tz.TagName()
			tag := string(name)
			switch {
			case !inSeg && tag == "template" && hasAttr:
				target, found := patchforAttr(tz)
				if !found {
					break
				}
				flush(pos)
				if debug.Scan() {
					debug.Logf("scan: segment start for %q\n", target)
				}
				evs = append(evs, Event{
					Kind:   SegmentStart,
					Bytes:  s.buf[pos:tokEnd],
					Target: target,
				})
				if tt == html.SelfClosingTagToken {
					evs = append(evs, Event{Kind: SegmentEnd})
				} else {
					inSeg = true
					tplDepth = 0
				}
				flushFrom = tokEnd
			case inSeg && tag == "template" && tt == html.StartTagToken:
				tplDepth++
			case rawTextElements[tag] && tt == html.StartTagToken:
				curRaw = tag
			}
		case html.EndTagToken:
			name, _ := tz.TagName()
			tag := string(name)
			if tag == curRaw {
				curRaw = ""
			}
			if inSeg && tag == "template" {
				if tplDepth > 0 {
					tplDepth--
					break
				}
				flush(pos)
				evs = append(evs, Event{
					Kind:  SegmentEnd,
					Bytes: s.buf[pos:tokEnd],
				})
				inSeg = false
				flushFrom = tokEnd
			}
		}
		pos = tokEnd
		emit = pos
	}
	flush(emit)
	s.inSeg, s.tplDepth, s.ctx = inSeg, tplDepth, curRaw
	s.buf = append([]byte(nil), s.buf[emit:]...)
	return evs
}

func patchforAttr(tz *html.Tokenizer) (string, bool) {
	var (
		target string
		found  bool
	)
	for {
		k, v, more := tz.TagAttr()
		if string(k) == "patchfor" {
			target = string(v)
			found = true
		}
		if !more {
			return target, found
		}
	}
}

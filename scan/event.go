package scan

type Kind int

const (
	// Text is ordinary content: a completed top-level unit in unit
	// mode, verbatim non-segment bytes in segment mode.
	Text Kind = iota
	// SegmentStart opens a segment; Target carries the patchfor
	// identifier and Bytes the literal start marker.
	SegmentStart
	// SegmentBody carries verbatim segment body bytes.
	SegmentBody
	// SegmentEnd closes a segment; Bytes is the literal end marker.
	SegmentEnd
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		Text:         "Text",
		SegmentStart: "SegmentStart",
		SegmentBody:  "SegmentBody",
		SegmentEnd:   "SegmentEnd",
	}[k]
	if ok {
		return s
	}
	return "<unknown event kind>"
}

// Event is one scanner observation.  Bytes aliases the scanner's
// buffer and is valid until the next Feed or Finish call; callers
// that keep it must copy.
type Event struct {
	Kind   Kind
	Bytes  []byte
	Target string
}

package patch

import "fmt"

// Status is a patch session's lifecycle state.  Transitions are
// monotonic; Complete, Aborted and Errored are terminal.
type Status int

const (
	Loading Status = iota
	Streaming
	Complete
	Aborted
	Errored
)

func (s Status) String() string {
	v, ok := map[Status]string{
		Loading:   "Loading",
		Streaming: "Streaming",
		Complete:  "Complete",
		Aborted:   "Aborted",
		Errored:   "Errored",
	}[s]
	if ok {
		return v
	}
	return "<unknown status>"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(d []byte) error {
	v, ok := map[string]Status{
		"Loading":   Loading,
		"Streaming": Streaming,
		"Complete":  Complete,
		"Aborted":   Aborted,
		"Errored":   Errored,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized status %q", d)
	}
	*s = v
	return nil
}

func (s Status) Terminal() bool {
	switch s {
	case Complete, Aborted, Errored:
		return true
	default:
		return false
	}
}

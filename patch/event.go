package patch

import (
	"github.com/google/uuid"

	"github.com/dbaron/declarative-partial-updates/dom"
)

type EventKind int

const (
	// PatchStart fires exactly once per session, on open.
	PatchStart EventKind = iota
	// PatchEnd fires exactly once per session, on its terminal
	// transition; Status and Err carry the outcome.
	PatchEnd
	// TargetNotFound fires once per segment whose target reference
	// did not resolve.  No session exists for it.
	TargetNotFound
)

func (k EventKind) String() string {
	s, ok := map[EventKind]string{
		PatchStart:     "patch-start",
		PatchEnd:       "patch-end",
		TargetNotFound: "target-not-found",
	}[k]
	if ok {
		return s
	}
	return "<unknown event kind>"
}

type Event struct {
	Kind EventKind
	// TargetID is the identifier the segment referenced; Target is
	// the resolved node, nil for TargetNotFound.
	TargetID string
	Target   *dom.Node
	Session  uuid.UUID
	Status   Status
	Err      error
}

// Package scan provides an incremental scanner over streamed markup.
//
// A Scanner accepts bytes as they arrive and reports, per Feed call,
// the portion of input that has become unambiguous.  Two modes exist:
// plain unit scanning, which reports completed top-level subtrees and
// holds back anything still open, and segment scanning, which
// additionally recognizes <template patchfor> framing and routes
// segment bodies separately from ordinary content.
package scan

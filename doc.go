// Package partial implements declarative partial document updates:
// out-of-order streaming of markup patches into named live targets,
// and declarative route matching over navigations.
//
// The subpackages carry the machinery: dom holds the live tree and
// its tree scopes, scan the incremental markup scanner, patch the
// session and scheduler state machines, route the URL pattern tables
// and nav the navigation interception glue.  This package wires them
// into whole-stream convenience entry points.
package partial

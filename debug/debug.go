package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Scan  bool
	Patch bool
	Route bool
	Nav   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Scan = boolEnv("PARTIAL_DEBUG_SCAN")
	d.Patch = boolEnv("PARTIAL_DEBUG_PATCH")
	d.Route = boolEnv("PARTIAL_DEBUG_ROUTE")
	d.Nav = boolEnv("PARTIAL_DEBUG_NAV")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Scan() bool {
	return d.Scan
}
func Patch() bool {
	return d.Patch
}
func Route() bool {
	return d.Route
}
func Nav() bool {
	return d.Nav
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

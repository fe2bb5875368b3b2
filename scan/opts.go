package scan

type scanOpts struct {
	segments bool
	context  string
}

type Opt func(*scanOpts)

// Segments enables <template patchfor> framing recognition.  Without
// it the scanner reports only completed top-level units.
func Segments() Opt {
	return func(o *scanOpts) { o.segments = true }
}

// Context sets the fragment context tag, so content of raw-text
// contexts like title or script tokenizes as text.
func Context(tag string) Opt {
	return func(o *scanOpts) { o.context = tag }
}

package patch

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decoder incrementally decodes inbound bytes with the owning
// document's character encoding.  Multi-byte sequences split across
// chunks are carried until they complete.
type decoder struct {
	tr  transform.Transformer
	src []byte
}

func newDecoder(charset string) (*decoder, error) {
	cs := strings.ToLower(strings.TrimSpace(charset))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return &decoder{}, nil
	}
	e, err := htmlindex.Get(cs)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	return &decoder{tr: e.NewDecoder()}, nil
}

func (d *decoder) write(p []byte) []byte {
	if d.tr == nil {
		return p
	}
	d.src = append(d.src, p...)
	var out []byte
	dst := make([]byte, 2*len(d.src)+16)
	for len(d.src) > 0 {
		nDst, nSrc, err := d.tr.Transform(dst, d.src, false)
		out = append(out, dst[:nDst]...)
		d.src = append([]byte(nil), d.src[nSrc:]...)
		if err == transform.ErrShortDst {
			continue
		}
		// ErrShortSrc carries an incomplete tail sequence to the
		// next chunk.
		break
	}
	return out
}

func (d *decoder) finish() []byte {
	if d.tr == nil || len(d.src) == 0 {
		return nil
	}
	var out []byte
	dst := make([]byte, 2*len(d.src)+16)
	for {
		nDst, nSrc, err := d.tr.Transform(dst, d.src, true)
		out = append(out, dst[:nDst]...)
		d.src = d.src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		return out
	}
}

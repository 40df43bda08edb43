package ir

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo renders the record as operator-facing diagnostic text:
//
//	<target> with <conflicts>
//	- <reason>
//	References:
//	- <Kind>: <locator>
//
// The reason line appears only when a reason is present; the References
// block only when at least one reference exists. Every line, including the
// last, ends in "\n". Errors from w are returned unchanged.
func (r IncompatRecord) WriteTo(w io.Writer) (int64, error) {
	var n int64
	emit := func(format string, args ...any) error {
		m, err := fmt.Fprintf(w, format, args...)
		n += int64(m)
		return err
	}

	if err := emit("%v with %v\n", r.Target, r.Conflicting); err != nil {
		return n, err
	}
	if r.HasReason() {
		if err := emit("- %s\n", r.Reason); err != nil {
			return n, err
		}
	}
	if len(r.References) > 0 {
		if err := emit("References:\n"); err != nil {
			return n, err
		}
		for _, ref := range r.References {
			if err := emit("- %s\n", ref); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// String returns the WriteTo rendering.
func (r IncompatRecord) String() string {
	var b strings.Builder
	_, _ = r.WriteTo(&b) // strings.Builder never fails
	return b.String()
}

// Summary returns only the first rendering line, without the newline.
func (r IncompatRecord) Summary() string {
	return fmt.Sprintf("%v with %v", r.Target, r.Conflicting)
}

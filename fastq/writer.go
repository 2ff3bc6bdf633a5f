package fastq

import (
	"io"

	"github.com/marcelm/dnaio/seq"
)

// Writer serializes records to the FASTQ layout of spec.md §4.F, following
// encoding/fastq.Writer's one-record-at-a-time shape.
type Writer struct {
	w          io.Writer
	twoHeaders bool
	err        error
}

// NewWriter constructs a Writer over w. twoHeaders selects whether the
// record name is repeated after the '+' separator on every record; callers
// typically set this from a Parser's FirstHeaderRepeated so a re-encoded
// stream preserves the input's style.
func NewWriter(w io.Writer, twoHeaders bool) *Writer {
	return &Writer{w: w, twoHeaders: twoHeaders}
}

// Write encodes r and writes it to the underlying writer. It fails with a
// *seq.Error of kind QualitiesRequired if r has no qualities.
func (w *Writer) Write(r *seq.Record) error {
	if w.err != nil {
		return w.err
	}
	b, err := r.FastqBytes(w.twoHeaders)
	if err != nil {
		return err
	}
	_, w.err = w.w.Write(b)
	return w.err
}

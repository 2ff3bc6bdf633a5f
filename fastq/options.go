package fastq

import "github.com/marcelm/dnaio/seq"

// defaultInitialBufferSize matches encoding/fastq's bufio.Scanner default
// initial capacity order of magnitude; doubling from here keeps the common
// case (short-read FASTQ) to one or two refills per record batch.
const defaultInitialBufferSize = 4096

// RecordConstructor builds a *seq.Record from the three decoded fields of a
// parsed FASTQ record. It is invoked instead of the parser's fast internal
// path when Options.RecordConstructor is set (spec.md §6, "custom_record_
// constructor").
type RecordConstructor func(name, sequence, qualities []byte) (*seq.Record, error)

// Options configures a Parser.
type Options struct {
	// InitialBufferSize is the parser's starting buffer capacity. Zero
	// means unspecified: NewParser substitutes defaultInitialBufferSize.
	// Negative values are rejected by NewParser (spec.md §6: "positive
	// integer; values < 1 reject" — Go's zero-value-means-default idiom
	// requires treating 0 itself as "unspecified" rather than as a
	// rejected explicit value; see DESIGN.md).
	InitialBufferSize int

	// RecordConstructor, if set, replaces the parser's fast-path Record
	// construction. Useful for callers who need validation the fast path
	// intentionally skips.
	RecordConstructor RecordConstructor
}

func (o Options) initialBufferSize() (int, error) {
	switch {
	case o.InitialBufferSize == 0:
		return defaultInitialBufferSize, nil
	case o.InitialBufferSize < 0:
		return 0, newParseError(InvalidOption, -1, "InitialBufferSize must be positive")
	default:
		return o.InitialBufferSize, nil
	}
}

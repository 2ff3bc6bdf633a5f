package bam

import "github.com/marcelm/dnaio/seq"

// defaultReadInSize matches spec.md §6's minimum chunk size for BAM
// refills when the caller does not configure one.
const defaultReadInSize = 64 * 1024

const minReadInSize = 4

// RecordConstructor builds a *seq.Record from a decoded BAM record's fields.
type RecordConstructor func(name, sequence, qualities []byte, tags seq.TagList) (*seq.Record, error)

// Options configures a Parser.
type Options struct {
	// ReadInSize is the minimum chunk size requested on each record-phase
	// refill. Zero selects defaultReadInSize; other values below 4 are
	// raised to 4 (spec.md §6).
	ReadInSize int

	// RecordConstructor, if set, replaces the parser's fast-path Record
	// construction.
	RecordConstructor RecordConstructor
}

func (o Options) readInSize() int {
	if o.ReadInSize >= minReadInSize {
		return o.ReadInSize
	}
	if o.ReadInSize == 0 {
		return defaultReadInSize
	}
	return minReadInSize
}

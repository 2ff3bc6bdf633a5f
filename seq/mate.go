package seq

import (
	"errors"
)

// idLen returns the length of the id prefix of header: up to the first
// space or tab, or the whole header if neither appears.
func idLen(header []byte) int {
	for i, b := range header {
		if b == ' ' || b == '\t' {
			return i
		}
	}
	return len(header)
}

func isPairDigit(b byte) bool {
	return b == '1' || b == '2' || b == '3'
}

// IsMateHeader reports whether two FASTQ/FASTA header lines (the full
// name, without the leading '@'/'>') identify mate reads of the same
// sequencing fragment, per spec.md §4.G:
//
//  1. id1 is h1 up to its first space/tab (or all of h1).
//  2. h2 must be at least as long as id1, and the byte at that position in
//     h2 (if any) must be the end of h2's own id (NUL/space/tab).
//  3. A trailing '1'/'2'/'3' on both ids is ignored when comparing, so
//     "read/1" and "read/2" match.
func IsMateHeader(h1, h2 []byte) bool {
	id1Len := idLen(h1)
	if len(h2) < id1Len {
		return false
	}
	if id1Len < len(h2) {
		b := h2[id1Len]
		if b != 0 && b != ' ' && b != '\t' {
			return false
		}
	}
	trim1 := id1Len > 0 && isPairDigit(h1[id1Len-1])
	trim2 := id1Len > 0 && isPairDigit(h2[id1Len-1])
	cmpLen := id1Len
	if trim1 && trim2 {
		cmpLen--
	}
	for i := 0; i < cmpLen; i++ {
		if h1[i] != h2[i] {
			return false
		}
	}
	return true
}

// RecordsAreMates reports whether every record in recs[1:] is a mate of
// recs[0]. It is a usage error to call it with fewer than two records.
func RecordsAreMates(recs ...*Record) (bool, error) {
	if len(recs) < 2 {
		return false, errors.New("seq: RecordsAreMates requires at least two records")
	}
	for _, r := range recs[1:] {
		if !recs[0].IsMate(r) {
			return false, nil
		}
	}
	return true, nil
}

package fastq

import "bytes"

// PairedHeadScan finds the greatest (len1, len2) such that a[:len1] and
// b[:len2] contain the same number of complete lines, that number being a
// multiple of four, per spec.md §4.E. It is used to align two paired FASTQ
// streams (R1/R2) onto a common record boundary before either is parsed
// further. The function is pure and allocation-free; it only reads a and b.
func PairedHeadScan(a, b []byte) (int, int) {
	var la, lb int
	var cursorA, cursorB int
	lines := 0
	for {
		ia := bytes.IndexByte(a[cursorA:], '\n')
		if ia < 0 {
			break
		}
		ib := bytes.IndexByte(b[cursorB:], '\n')
		if ib < 0 {
			break
		}
		cursorA += ia + 1
		cursorB += ib + 1
		lines++
		if lines%4 == 0 {
			la, lb = cursorA, cursorB
		}
	}
	return la, lb
}

package biosimd

// complementTable maps a byte to its nucleotide complement. Unlike
// grailbio/bio's revComp8Table, unrecognized bytes map to themselves
// (identity) rather than to 'N', per the spec's requirement that
// reverse-complement only be involutive on the ACGTN(+lowercase) subset and
// leave everything else unchanged.
var complementTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := [...][2]byte{
		{'A', 'T'}, {'C', 'G'}, {'N', 'N'},
		{'a', 't'}, {'c', 'g'}, {'n', 'n'},
	}
	for _, p := range pairs {
		t[p[0]] = p[1]
		t[p[1]] = p[0]
	}
	return t
}()

// ComplementByte returns the nucleotide complement of b, or b itself if b is
// not one of ACGTNacgtn.
func ComplementByte(b byte) byte {
	return complementTable[b]
}

// ReverseComplement writes the reverse complement of src into dst. dst and
// src must be the same length and must not overlap other than possibly
// being the same slice (in which case the complement is applied in place).
func ReverseComplement(dst, src []byte) {
	if len(dst) != len(src) {
		panic("ReverseComplement: len(dst) != len(src)")
	}
	n := len(src)
	if n > 0 && &dst[0] == &src[0] {
		// in-place: walk from both ends toward the middle.
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			dst[i], dst[j] = complementTable[src[j]], complementTable[src[i]]
		}
		if n&1 == 1 {
			mid := n / 2
			dst[mid] = complementTable[src[mid]]
		}
		return
	}
	for i, j := 0, n-1; i < n; i, j = i+1, j-1 {
		dst[i] = complementTable[src[j]]
	}
}

// Reverse writes the reverse of src into dst (no complementing); used for
// quality strings, which are reversed alongside the sequence but not
// complemented.
func Reverse(dst, src []byte) {
	if len(dst) != len(src) {
		panic("Reverse: len(dst) != len(src)")
	}
	n := len(src)
	for i, j := 0, n-1; i < n; i, j = i+1, j-1 {
		dst[i] = src[j]
	}
}

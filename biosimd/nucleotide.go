package biosimd

import (
	"github.com/grailbio/base/simd"
)

// NibbleLookupTable is re-exported here to keep grailbio/base/simd import
// clutter out of callers, mirroring biosimd_generic.go's re-export in the
// grailbio/bio teacher package.
type NibbleLookupTable = simd.NibbleLookupTable

// MakeNibbleLookupTable is re-exported here for the same reason.
func MakeNibbleLookupTable(table [16]byte) NibbleLookupTable {
	return simd.MakeNibbleLookupTable(table)
}

// SeqNibbleTable maps a BAM packed-sequence nibble (0..15) to its ASCII
// base, per the BAM spec's "=ACMGRSVTWYHKDBN" alphabet.
var SeqNibbleTable = MakeNibbleLookupTable([16]byte{
	'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N',
})

// DecodeBAMSeq expands packed, produced by a BAM record's 4-bit-per-base
// sequence field, into nBase ASCII bytes written to dst. High nibble of each
// source byte decodes first, per the BAM wire format:
//
//	dst[2*i]   = table[packed[i] >> 4]
//	dst[2*i+1] = table[packed[i] & 15]
//
// dst must have length nBase; packed must have length (nBase+1)/2. For odd
// nBase only the high nibble of the final packed byte is decoded; its low
// nibble is never read.
func DecodeBAMSeq(dst []byte, packed []byte, nBase int) {
	if len(dst) != nBase {
		panic("DecodeBAMSeq: len(dst) != nBase")
	}
	if want := (nBase + 1) / 2; len(packed) != want {
		panic("DecodeBAMSeq: len(packed) != (nBase+1)/2")
	}
	nFullByte := nBase / 2
	for i := 0; i < nFullByte; i++ {
		b := packed[i]
		dst[2*i] = SeqNibbleTable.Get(b >> 4)
		dst[2*i+1] = SeqNibbleTable.Get(b & 15)
	}
	if nBase&1 == 1 {
		dst[nBase-1] = SeqNibbleTable.Get(packed[nFullByte] >> 4)
	}
}

// EncodeBAMSeq is the inverse of DecodeBAMSeq: it packs nBase ASCII bases
// from src into dst using the BAM nibble alphabet's index lookup, 2 bases
// per output byte, high nibble first. Bases outside the alphabet pack as
// 0xF ('N'). dst must have length (len(src)+1)/2.
func EncodeBAMSeq(dst []byte, src []byte) {
	n := len(src)
	if want := (n + 1) / 2; len(dst) != want {
		panic("EncodeBAMSeq: len(dst) != (len(src)+1)/2")
	}
	nFullByte := n / 2
	for i := 0; i < nFullByte; i++ {
		dst[i] = asciiToBAMNibble(src[2*i])<<4 | asciiToBAMNibble(src[2*i+1])
	}
	if n&1 == 1 {
		dst[nFullByte] = asciiToBAMNibble(src[n-1]) << 4
	}
}

var bamNibbleFromASCII = [256]byte{
	'=': 0, 'A': 1, 'C': 2, 'M': 3, 'G': 4, 'R': 5, 'S': 6, 'V': 7,
	'T': 8, 'W': 9, 'Y': 10, 'H': 11, 'K': 12, 'D': 13, 'B': 14, 'N': 15,
}

func asciiToBAMNibble(b byte) byte {
	if b != '=' && bamNibbleFromASCII[b] == 0 {
		return 0xF
	}
	return bamNibbleFromASCII[b]
}

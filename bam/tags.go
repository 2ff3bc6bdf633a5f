package bam

import (
	"encoding/binary"
	"fmt"

	"github.com/marcelm/dnaio/seq"
)

func tagError(kind ErrorKind, format string, args ...interface{}) error {
	return newParseError(kind, fmt.Sprintf(format, args...))
}

// fieldJump gives, for each BAM aux type byte, the fixed size in bytes of
// that type's value (excluding the 3-byte name+type prefix), or a sentinel
// negative value for the variable-length types (Z, H, B) that need their
// own length computation. Adapted from encoding/bam.jumps.
var fieldJump = [256]int{
	'A': 1,
	'c': 1, 'C': 1,
	's': 2, 'S': 2,
	'i': 4, 'I': 4,
	'f': 4,
	'Z': -1,
	'H': -1,
	'B': -1,
}

// arrayElemSize gives the per-element size of a B-typed tag's array, keyed
// by its element type byte.
var arrayElemSize = [256]int{
	'c': 1, 'C': 1,
	's': 2, 'S': 2,
	'i': 4, 'I': 4,
	'f': 4,
}

// tagSpanLength returns the number of bytes occupied by one tag (name, type
// and value together) starting at aux[i], or an error if the type byte is
// unrecognized or the buffer is too short to compute a variable-length
// tag's size. Adapted from encoding/bam.countAuxFields/parseAux, generalized
// from a single combined loop into a standalone span computation so the
// caller can both count and slice tags with the same logic.
func tagSpanLength(aux []byte, i int) (int, error) {
	if i+2 >= len(aux) {
		return 0, tagError(Truncated, "truncated tag at offset %d", i)
	}
	t := aux[i+2]
	switch j := fieldJump[t]; {
	case j > 0:
		return j + 3, nil
	case t == 'Z' || t == 'H':
		for k := i + 3; k < len(aux); k++ {
			if aux[k] == 0 {
				return k - i + 1, nil
			}
		}
		return 0, tagError(Truncated, "unterminated %c-typed tag at offset %d", t, i)
	case t == 'B':
		if len(aux) < i+8 {
			return 0, tagError(Truncated, "truncated B-typed tag at offset %d", i)
		}
		elemType := aux[i+3]
		elemSize := arrayElemSize[elemType]
		if elemSize == 0 {
			return 0, tagError(Unsupported, "unrecognized B-array element type %q", elemType)
		}
		count := binary.LittleEndian.Uint32(aux[i+4 : i+8])
		return int(count)*elemSize + 8, nil
	default:
		return 0, tagError(Unsupported, "unrecognized tag type %q", t)
	}
}

// parseTags splits a record's aux block into individual tags, each a slice
// sharing aux's backing array (spec.md §4.D). Adapted from
// encoding/bam.parseAux.
func parseTags(aux []byte) (seq.TagList, error) {
	var out seq.TagList
	for i := 0; i < len(aux); {
		n, err := tagSpanLength(aux, i)
		if err != nil {
			return nil, err
		}
		if i+n > len(aux) {
			return nil, tagError(Truncated, "tag at offset %d runs past the aux block", i)
		}
		out = append(out, seq.Tag(aux[i:i+n:i+n]))
		i += n
	}
	return out, nil
}

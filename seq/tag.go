package seq

import (
	"encoding/binary"

	"github.com/biogo/hts/sam"
)

// Tag is one BAM auxiliary field: a 2-byte name, a 1-byte type code, and a
// type-dependent value, all stored together as raw bytes (name[0], name[1],
// type, value...) per the BAM auxiliary-tag convention. It is defined as
// sam.Aux so tag data decoded by the bam package can be handed to callers
// without copying or reinterpreting it.
type Tag = sam.Aux

// TagList is the ordered set of auxiliary tags carried by a BAM-sourced
// Record. Tags not recognized by name (everything except ns/ts/mv/MM/ML/MN/du)
// pass through Slice unchanged; see spec.md §4.D.
type TagList []Tag

func tagName(t Tag) (byte, byte) { return t[0], t[1] }

func tagIs(t Tag, name string) bool {
	return len(name) == 2 && t[0] == name[0] && t[1] == name[1]
}

// intValue decodes the integer value of a c/C/s/S/i/I-typed tag.
func intValue(t Tag) (int64, bool) {
	v := t[3:]
	switch t[2] {
	case 'c':
		return int64(int8(v[0])), true
	case 'C':
		return int64(v[0]), true
	case 's':
		return int64(int16(binary.LittleEndian.Uint16(v))), true
	case 'S':
		return int64(binary.LittleEndian.Uint16(v)), true
	case 'i':
		return int64(int32(binary.LittleEndian.Uint32(v))), true
	case 'I':
		return int64(binary.LittleEndian.Uint32(v)), true
	default:
		return 0, false
	}
}

func encodeIntTag(name string, typ byte, v int64) Tag {
	t := make(Tag, 3)
	t[0], t[1], t[2] = name[0], name[1], typ
	switch typ {
	case 'c':
		t = append(t, byte(int8(v)))
	case 'C':
		t = append(t, byte(v))
	case 's':
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(int16(v)))
		t = append(t, b[:]...)
	case 'S':
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		t = append(t, b[:]...)
	case 'i':
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(int32(v)))
		t = append(t, b[:]...)
	case 'I':
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		t = append(t, b[:]...)
	}
	return t
}

// moveTable parses an 'mv' tag, a B,c array whose first element is a stride
// and whose remaining elements are the 0/1 per-signal-sample move calls.
func moveTable(t Tag) (stride int8, moves []int8, ok bool) {
	if t[2] != 'B' || t[3] != 'c' {
		return 0, nil, false
	}
	count := binary.LittleEndian.Uint32(t[4:8])
	data := t[8:]
	if uint32(len(data)) < count {
		return 0, nil, false
	}
	if count == 0 {
		return 0, nil, true
	}
	stride = int8(data[0])
	moves = make([]int8, count-1)
	for i := range moves {
		moves[i] = int8(data[i+1])
	}
	return stride, moves, true
}

func encodeMoveTable(stride int8, moves []int8) Tag {
	count := uint32(len(moves) + 1)
	t := make(Tag, 8, 8+count)
	t[0], t[1], t[2], t[3] = 'm', 'v', 'B', 'c'
	binary.LittleEndian.PutUint32(t[4:8], count)
	t = append(t, byte(stride))
	for _, m := range moves {
		t = append(t, byte(m))
	}
	return t
}

// sliceTags implements the per-base tag retrimming rules of spec.md §4.D for
// a half-open, unit-step subrange [start, stop) of a record's bases. For
// step != 1, every recognized per-base tag (mv, ns, ts, MM, ML, MN, du) is
// dropped rather than incorrectly adjusted; all other tags are preserved
// unchanged in either case.
func sliceTags(tags TagList, start, stop, step int) TagList {
	if tags == nil {
		return nil
	}
	if step != 1 {
		return dropPerBaseTags(tags)
	}

	var mv Tag
	var hasMV bool
	for _, t := range tags {
		if tagIs(t, "mv") {
			mv = t
			hasMV = true
			break
		}
	}

	out := make(TagList, 0, len(tags))
	for _, t := range tags {
		switch {
		case tagIs(t, "MN"), tagIs(t, "du"):
			continue // dropped on any non-trivial slice, per spec.md §4.D.
		case tagIs(t, "MM"), tagIs(t, "ML"):
			// Base-modification tables are positional; they are dropped on
			// slice rather than remapped.
			continue
		case tagIs(t, "mv"):
			continue // re-emitted below, once, in original tag order position.
		case tagIs(t, "ns"), tagIs(t, "ts"):
			continue // recomputed below from the new mv, if any.
		default:
			out = append(out, t)
		}
	}

	if !hasMV {
		return out
	}
	stride, moves, ok := moveTable(mv)
	if !ok || stride <= 0 {
		return out
	}
	// Each 1 in moves marks the start of the next base (the first 1 starts
	// base 0); find the move-table index range covering bases [start, stop),
	// from the 1 that starts base start up to (not including) the 1 that
	// starts base stop.
	baseIdx := -1
	newStartIdx, newStopIdx := 0, len(moves)
	for i, m := range moves {
		if m == 1 {
			baseIdx++
			if baseIdx == start {
				newStartIdx = i
			}
			if baseIdx == stop {
				newStopIdx = i
				break
			}
		}
	}
	newMoves := append([]int8(nil), moves[newStartIdx:newStopIdx]...)
	out = append(out, encodeMoveTable(stride, newMoves))

	var ts int64
	for _, t := range tags {
		if tagIs(t, "ts") {
			ts, _ = intValue(t)
			break
		}
	}
	newTS := ts + int64(newStartIdx)*int64(stride)
	newNS := int64(len(newMoves))*int64(stride) + maxInt64(newTS, 0)
	out = append(out, encodeIntTag("ts", 'i', newTS))
	out = append(out, encodeIntTag("ns", 'i', newNS))
	return out
}

func dropPerBaseTags(tags TagList) TagList {
	out := make(TagList, 0, len(tags))
	for _, t := range tags {
		switch {
		case tagIs(t, "mv"), tagIs(t, "ns"), tagIs(t, "ts"),
			tagIs(t, "MM"), tagIs(t, "ML"), tagIs(t, "MN"), tagIs(t, "du"):
			continue
		default:
			out = append(out, t)
		}
	}
	return out
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

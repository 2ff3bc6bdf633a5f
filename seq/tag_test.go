package seq_test

import (
	"encoding/binary"
	"testing"

	"github.com/marcelm/dnaio/seq"
)

// mvTag builds a raw 'mv' (B,c array) tag: a stride scalar followed by one
// 0/1 move flag per signal sample, per the nanopore move-table convention
// exercised by seq.Record.Slice.
func mvTag(stride int8, moves []int8) seq.Tag {
	buf := []byte{'m', 'v', 'B', 'c'}
	var cb [4]byte
	binary.LittleEndian.PutUint32(cb[:], uint32(len(moves)+1))
	buf = append(buf, cb[:]...)
	buf = append(buf, byte(stride))
	for _, m := range moves {
		buf = append(buf, byte(m))
	}
	return seq.Tag(buf)
}

func i32Tag(name string, v int32) seq.Tag {
	buf := []byte{name[0], name[1], 'i', 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(buf[3:], uint32(v))
	return seq.Tag(buf)
}

func zTag(name, value string) seq.Tag {
	buf := append([]byte{name[0], name[1], 'Z'}, []byte(value)...)
	return seq.Tag(append(buf, 0))
}

func findTag(tags seq.TagList, name string) (seq.Tag, bool) {
	for _, t := range tags {
		if len(t) >= 2 && t[0] == name[0] && t[1] == name[1] {
			return t, true
		}
	}
	return nil, false
}

func decodeI32(t seq.Tag) int32 {
	return int32(binary.LittleEndian.Uint32(t[3:7]))
}

func decodeMV(t seq.Tag) (stride int8, moves []int8) {
	count := binary.LittleEndian.Uint32(t[4:8])
	data := t[8:]
	stride = int8(data[0])
	for i := 1; i < int(count); i++ {
		moves = append(moves, int8(data[i]))
	}
	return stride, moves
}

func taggedRecord(t *testing.T) *seq.Record {
	t.Helper()
	tags := seq.TagList{
		mvTag(3, []int8{1, 0, 1, 0, 1, 0, 1, 0}), // 4 bases, 2 signals each
		i32Tag("ts", 100),
		i32Tag("ns", 999), // stale value; Slice must recompute, not copy
		zTag("RG", "grp1"),
	}
	r, err := seq.NewWithTags([]byte("r1"), []byte("ACGT"), []byte("!!!!"), tags)
	if err != nil {
		t.Fatalf("NewWithTags: %v", err)
	}
	return r
}

func TestSliceRetrimsMoveTableAndRecomputesTsNs(t *testing.T) {
	r := taggedRecord(t)
	sliced := r.Slice(1, 3, 1) // bases 1,2 -> "CG"

	if got := string(sliced.Sequence()); got != "CG" {
		t.Fatalf("Sequence = %q, want %q", got, "CG")
	}

	mv, ok := findTag(sliced.Tags(), "mv")
	if !ok {
		t.Fatal("expected mv tag to survive a step=1 slice")
	}
	stride, moves := decodeMV(mv)
	if stride != 3 {
		t.Errorf("stride = %d, want 3", stride)
	}
	if want := []int8{1, 0, 1, 0}; !int8SliceEqual(moves, want) {
		t.Errorf("moves = %v, want %v", moves, want)
	}

	ts, ok := findTag(sliced.Tags(), "ts")
	if !ok {
		t.Fatal("expected ts tag after slice")
	}
	if got := decodeI32(ts); got != 106 {
		t.Errorf("ts = %d, want 106", got)
	}

	ns, ok := findTag(sliced.Tags(), "ns")
	if !ok {
		t.Fatal("expected ns tag after slice")
	}
	if got := decodeI32(ns); got != 118 {
		t.Errorf("ns = %d, want 118", got)
	}

	if rg, ok := findTag(sliced.Tags(), "RG"); !ok || string(rg[3:len(rg)-1]) != "grp1" {
		t.Errorf("RG tag not passed through unchanged: %v", rg)
	}
}

func TestSliceWithStepDropsPerBaseTagsButKeepsOthers(t *testing.T) {
	r := taggedRecord(t)
	sliced := r.Slice(0, 4, 2) // step != 1

	if _, ok := findTag(sliced.Tags(), "mv"); ok {
		t.Error("mv tag should be dropped when step != 1")
	}
	if _, ok := findTag(sliced.Tags(), "ts"); ok {
		t.Error("ts tag should be dropped when step != 1")
	}
	if _, ok := findTag(sliced.Tags(), "ns"); ok {
		t.Error("ns tag should be dropped when step != 1")
	}
	if _, ok := findTag(sliced.Tags(), "RG"); !ok {
		t.Error("RG tag should survive a step != 1 slice")
	}
}

func TestSliceDropsTsNsWithoutMoveTable(t *testing.T) {
	tags := seq.TagList{i32Tag("ts", 5), i32Tag("ns", 9), zTag("RG", "grp1")}
	r, err := seq.NewWithTags([]byte("r1"), []byte("ACGT"), nil, tags)
	if err != nil {
		t.Fatalf("NewWithTags: %v", err)
	}
	sliced := r.Slice(0, 2, 1)
	if _, ok := findTag(sliced.Tags(), "ts"); ok {
		t.Error("ts should be dropped: no mv tag to recompute it from")
	}
	if _, ok := findTag(sliced.Tags(), "ns"); ok {
		t.Error("ns should be dropped: no mv tag to recompute it from")
	}
	if _, ok := findTag(sliced.Tags(), "RG"); !ok {
		t.Error("unrelated tags must still pass through")
	}
}

func TestSliceWithNoTagsYieldsNoTags(t *testing.T) {
	r, err := seq.New([]byte("r1"), []byte("ACGT"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := r.Slice(0, 2, 1).Tags(); got != nil {
		t.Errorf("Tags = %v, want nil", got)
	}
}

func int8SliceEqual(a, b []int8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

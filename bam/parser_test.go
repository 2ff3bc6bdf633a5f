package bam_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/marcelm/dnaio/bam"
	"github.com/stretchr/testify/assert"
)

func putU32(buf *bytes.Buffer, v uint32) { binary.Write(buf, binary.LittleEndian, v) }
func putI32(buf *bytes.Buffer, v int32)  { binary.Write(buf, binary.LittleEndian, v) }
func putU16(buf *bytes.Buffer, v uint16) { binary.Write(buf, binary.LittleEndian, v) }

// buildMinimalBAM constructs a BAM byte stream with no references and one
// unmapped single-read record, per spec.md S6: name "r", l_seq=4, packed
// sequence {0x12, 0x48} (decodes to ACGT), quality bytes {0,1,2,3} (decodes
// to Phred+33 "!\"#$").
func buildMinimalBAM(t *testing.T) []byte {
	t.Helper()
	var out bytes.Buffer
	out.WriteString("BAM\x01")
	putU32(&out, 0) // l_text
	putU32(&out, 0) // n_ref

	var rec bytes.Buffer
	putI32(&rec, -1) // refID
	putI32(&rec, -1) // pos
	rec.WriteByte(2) // l_read_name ("r" + NUL)
	rec.WriteByte(0) // mapq
	putU16(&rec, 0)  // bin
	putU16(&rec, 0)  // n_cigar_op
	putU16(&rec, 4)  // flag = unmapped single read
	putU32(&rec, 4)  // l_seq
	putI32(&rec, -1) // next_ref_id
	putI32(&rec, -1) // next_pos
	putI32(&rec, 0)  // tlen
	rec.WriteString("r\x00")
	rec.Write([]byte{0x12, 0x48})           // packed sequence -> ACGT
	rec.Write([]byte{0x00, 0x01, 0x02, 0x03}) // quality -> !"#$

	putU32(&out, uint32(rec.Len()))
	out.Write(rec.Bytes())
	return out.Bytes()
}

func TestS6UnmappedSingleRead(t *testing.T) {
	data := buildMinimalBAM(t)
	p, err := bam.NewParser(bytes.NewReader(data), bam.Options{})
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if !p.Scan() {
		t.Fatalf("Scan = false, err = %v", p.Err())
	}
	rec := p.Record()
	assert.Equal(t, "r", string(rec.Name()))
	assert.Equal(t, "ACGT", string(rec.Sequence()))
	assert.Equal(t, "!\"#$", string(rec.QualitiesAsBytes()))
	if p.Scan() {
		t.Fatal("expected only one record")
	}
	if err := p.Err(); err != nil {
		t.Fatalf("unexpected error after stream end: %v", err)
	}
}

func TestBadMagic(t *testing.T) {
	_, err := bam.NewParser(bytes.NewReader([]byte("NOT1\x00\x00\x00\x00")), bam.Options{})
	perr, ok := err.(*bam.ParseError)
	if !ok || perr.Kind != bam.BadMagic {
		t.Fatalf("err = %v, want BadMagic", err)
	}
}

func TestUnsupportedMappedRead(t *testing.T) {
	var out bytes.Buffer
	out.WriteString("BAM\x01")
	putU32(&out, 0)
	putU32(&out, 0)

	var rec bytes.Buffer
	putI32(&rec, -1)
	putI32(&rec, -1)
	rec.WriteByte(2)
	rec.WriteByte(0)
	putU16(&rec, 0)
	putU16(&rec, 0)
	putU16(&rec, 0) // flag = 0, mapped
	putU32(&rec, 0)
	putI32(&rec, -1)
	putI32(&rec, -1)
	putI32(&rec, 0)
	rec.WriteString("r\x00")

	putU32(&out, uint32(rec.Len()))
	out.Write(rec.Bytes())

	p, err := bam.NewParser(bytes.NewReader(out.Bytes()), bam.Options{})
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if p.Scan() {
		t.Fatal("expected Scan to fail on a mapped read")
	}
	perr, ok := p.Err().(*bam.ParseError)
	if !ok || perr.Kind != bam.Unsupported {
		t.Fatalf("err = %v, want Unsupported", p.Err())
	}
}

func TestTruncatedHeader(t *testing.T) {
	_, err := bam.NewParser(bytes.NewReader([]byte("BAM\x01\x00\x00")), bam.Options{})
	perr, ok := err.(*bam.ParseError)
	if !ok || perr.Kind != bam.Truncated {
		t.Fatalf("err = %v, want Truncated", err)
	}
}

func TestMalformedTagSurfacesAsParseError(t *testing.T) {
	var out bytes.Buffer
	out.WriteString("BAM\x01")
	putU32(&out, 0)
	putU32(&out, 0)

	var rec bytes.Buffer
	putI32(&rec, -1)
	putI32(&rec, -1)
	rec.WriteByte(2)
	rec.WriteByte(0)
	putU16(&rec, 0)
	putU16(&rec, 0)
	putU16(&rec, 4)
	putU32(&rec, 4)
	putI32(&rec, -1)
	putI32(&rec, -1)
	putI32(&rec, 0)
	rec.WriteString("r\x00")
	rec.Write([]byte{0x12, 0x48})
	rec.Write([]byte{0x00, 0x01, 0x02, 0x03})
	rec.Write([]byte{'x', 'y', 'Q'}) // unrecognized tag type, no value

	putU32(&out, uint32(rec.Len()))
	out.Write(rec.Bytes())

	p, err := bam.NewParser(bytes.NewReader(out.Bytes()), bam.Options{})
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if p.Scan() {
		t.Fatal("expected Scan to fail on a malformed tag")
	}
	perr, ok := p.Err().(*bam.ParseError)
	if !ok || perr.Kind != bam.Unsupported {
		t.Fatalf("err = %v (%T), want *bam.ParseError{Kind: Unsupported}", p.Err(), p.Err())
	}
}

func TestAbsentQualities(t *testing.T) {
	var out bytes.Buffer
	out.WriteString("BAM\x01")
	putU32(&out, 0)
	putU32(&out, 0)

	var rec bytes.Buffer
	putI32(&rec, -1)
	putI32(&rec, -1)
	rec.WriteByte(2)
	rec.WriteByte(0)
	putU16(&rec, 0)
	putU16(&rec, 0)
	putU16(&rec, 4)
	putU32(&rec, 4)
	putI32(&rec, -1)
	putI32(&rec, -1)
	putI32(&rec, 0)
	rec.WriteString("r\x00")
	rec.Write([]byte{0x12, 0x48})
	rec.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	putU32(&out, uint32(rec.Len()))
	out.Write(rec.Bytes())

	p, err := bam.NewParser(bytes.NewReader(out.Bytes()), bam.Options{})
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if !p.Scan() {
		t.Fatalf("Scan = false, err = %v", p.Err())
	}
	if p.Record().HasQualities() {
		t.Error("expected absent qualities")
	}
}

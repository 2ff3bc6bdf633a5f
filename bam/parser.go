package bam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/marcelm/dnaio/biosimd"
	"github.com/marcelm/dnaio/seq"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

const recordHeaderSize = 32

var magic = [4]byte{'B', 'A', 'M', 0x01}

// Parser decodes an unaligned, single-read BAM stream into *seq.Record
// values that preserve per-base auxiliary tags, per spec.md §4.D. Like
// fastq.Parser it follows encoding/fastq.Scanner's Scan/Err shape, and owns
// a single growable buffer for the record phase.
//
// A Parser is not safe for concurrent use, and is not reentrant.
type Parser struct {
	r   io.Reader
	opt Options

	header []byte

	buf           []byte
	bytesInBuffer int
	cursor        int

	recordsEmitted int
	cur            *seq.Record
	err            error
	done           bool
}

// NewParser consumes the BAM magic, text header and reference list from r,
// then returns a Parser ready to scan records. Construction fails only for a
// malformed or truncated header (fastq.NewParser has no header phase to fail
// in); an out-of-range Options.ReadInSize is adjusted, not rejected.
func NewParser(r io.Reader, opts Options) (*Parser, error) {
	p := &Parser{r: r, opt: opts}
	if err := p.readHeader(); err != nil {
		return nil, err
	}
	p.buf = make([]byte, 0, opts.readInSize())
	p.buf = p.buf[:cap(p.buf)]
	return p, nil
}

func truncated(message string) error {
	return newParseError(Truncated, message)
}

func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncated(errors.Wrap(err, "header phase").Error())
	}
	return buf, nil
}

func (p *Parser) readHeader() error {
	fixed, err := readExact(p.r, 8)
	if err != nil {
		return err
	}
	if !bytes.Equal(fixed[:4], magic[:]) {
		return newParseError(BadMagic, "stream does not begin with BAM\\x01")
	}
	lText := binary.LittleEndian.Uint32(fixed[4:8])

	header, err := readExact(p.r, int(lText))
	if err != nil {
		return err
	}
	p.header = header

	nRefBuf, err := readExact(p.r, 4)
	if err != nil {
		return err
	}
	nRef := binary.LittleEndian.Uint32(nRefBuf)
	for i := uint32(0); i < nRef; i++ {
		lNameBuf, err := readExact(p.r, 4)
		if err != nil {
			return err
		}
		lName := binary.LittleEndian.Uint32(lNameBuf)
		if _, err := readExact(p.r, int(lName)+4); err != nil {
			return err
		}
	}
	return nil
}

// Header returns the opaque text header bytes captured during construction.
func (p *Parser) Header() []byte { return p.header }

// RecordsEmitted returns the number of records successfully emitted so far.
func (p *Parser) RecordsEmitted() int { return p.recordsEmitted }

// Record returns the record produced by the most recent successful Scan.
func (p *Parser) Record() *seq.Record { return p.cur }

// Err returns the error that caused Scan to stop returning true, or nil if
// the stream ended normally.
func (p *Parser) Err() error { return p.err }

// Scan advances the parser to the next record.
func (p *Parser) Scan() bool {
	if p.err != nil || p.done {
		return false
	}
	return p.tryEmit()
}

type bufResult int

const (
	bufReady bufResult = iota
	bufEOF
	bufFail
)

// ensureBuffered guarantees at least n unconsumed bytes are buffered,
// refilling as needed with reads sized to max(needed, ReadInSize), per
// spec.md §4.D's record-phase buffer discipline.
func (p *Parser) ensureBuffered(n int) bufResult {
	for p.bytesInBuffer-p.cursor < n {
		if p.cursor != 0 {
			copy(p.buf, p.buf[p.cursor:p.bytesInBuffer])
			p.bytesInBuffer -= p.cursor
			p.cursor = 0
		}
		needed := n - p.bytesInBuffer
		readSize := needed
		if rs := p.opt.readInSize(); rs > readSize {
			readSize = rs
		}
		if len(p.buf)-p.bytesInBuffer < readSize {
			vlog.VI(1).Infof("bam: growing record buffer from %d to %d bytes", len(p.buf), p.bytesInBuffer+readSize)
			grown := make([]byte, p.bytesInBuffer+readSize)
			copy(grown, p.buf[:p.bytesInBuffer])
			p.buf = grown
		}
		m, err := p.r.Read(p.buf[p.bytesInBuffer : p.bytesInBuffer+readSize])
		if m > readSize {
			p.fail(newParseError(ReaderContract, "reader returned more bytes than requested"))
			return bufFail
		}
		if m > 0 {
			p.bytesInBuffer += m
		}
		if err != nil && err != io.EOF {
			p.fail(errors.Wrap(err, "bam: reader error"))
			return bufFail
		}
		if m == 0 {
			if p.bytesInBuffer == p.cursor {
				return bufEOF
			}
			p.fail(truncated("end of file inside an incomplete record"))
			return bufFail
		}
	}
	return bufReady
}

func (p *Parser) tryEmit() bool {
	switch p.ensureBuffered(4) {
	case bufEOF:
		p.done = true
		return false
	case bufFail:
		return false
	}
	blockSize := int(binary.LittleEndian.Uint32(p.buf[p.cursor : p.cursor+4]))
	switch p.ensureBuffered(4 + blockSize) {
	case bufEOF:
		p.fail(truncated("end of file inside an incomplete record"))
		return false
	case bufFail:
		return false
	}
	rec := p.buf[p.cursor+4 : p.cursor+4+blockSize]
	if len(rec) < recordHeaderSize {
		p.fail(truncated("record header shorter than 32 bytes"))
		return false
	}

	lReadName := int(rec[8])
	nCigarOp := int(binary.LittleEndian.Uint16(rec[12:14]))
	flag := binary.LittleEndian.Uint16(rec[14:16])
	lSeq := int(binary.LittleEndian.Uint32(rec[16:20]))

	if flag != 4 {
		p.fail(newParseError(Unsupported, fmt.Sprintf(
			"flag %d is not an unmapped single read (flag=4); run the input through samtools fastq first", flag)))
		return false
	}

	off := recordHeaderSize
	if lReadName < 1 || off+lReadName > len(rec) {
		p.fail(truncated("name region exceeds record"))
		return false
	}
	nameWithNUL := rec[off : off+lReadName]
	off += lReadName

	off += nCigarOp * 4
	if off > len(rec) {
		p.fail(truncated("cigar region exceeds record"))
		return false
	}

	nDoublet := (lSeq + 1) / 2
	if off+nDoublet > len(rec) {
		p.fail(truncated("sequence region exceeds record"))
		return false
	}
	packedSeq := rec[off : off+nDoublet]
	off += nDoublet

	if off+lSeq > len(rec) {
		p.fail(truncated("quality region exceeds record"))
		return false
	}
	rawQual := rec[off : off+lSeq]
	off += lSeq

	auxBlock := append([]byte(nil), rec[off:]...)
	tags, err := parseTags(auxBlock)
	if err != nil {
		p.fail(err)
		return false
	}

	name := append([]byte(nil), nameWithNUL[:lReadName-1]...)

	sequence := make([]byte, lSeq)
	biosimd.DecodeBAMSeq(sequence, packedSeq, lSeq)

	var qualities []byte
	if lSeq > 0 && rawQual[0] != 0xFF {
		qualities = make([]byte, lSeq)
		biosimd.DecodeBAMQual(qualities, rawQual)
	}

	var record *seq.Record
	if p.opt.RecordConstructor != nil {
		rc, err := p.opt.RecordConstructor(name, sequence, qualities, tags)
		if err != nil {
			p.fail(err)
			return false
		}
		record = rc
	} else {
		record = seq.NewUnchecked(name, sequence, qualities, tags)
	}

	p.cur = record
	p.recordsEmitted++
	p.cursor += 4 + blockSize
	return true
}

func (p *Parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

package fastq

import (
	"bytes"
	"io"

	"github.com/marcelm/dnaio/biosimd"
	"github.com/marcelm/dnaio/seq"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// Parser is a buffer-reusing, incremental FASTQ record extractor reading
// from an io.Reader, per spec.md §4.C. It follows encoding/fastq.Scanner's
// Scan/Err iteration shape, generalized to a growable buffer that the
// parser itself owns and never returns to the caller.
//
// A Parser is not safe for concurrent use, and is not reentrant: only one
// logical thread of control may drive Scan/Record/Err over its lifetime.
type Parser struct {
	r   io.Reader
	opt Options

	buf           []byte
	bytesInBuffer int
	recordStart   int
	syntheticLF   bool

	recordsEmitted int
	cur            *seq.Record
	err            error
	done           bool

	firstHeaderRepeated bool
}

// NewParser constructs a Parser reading FASTQ records from r. It returns an
// error if opts.InitialBufferSize is negative (spec.md §6), mirroring
// bam.NewParser's error-return pattern even though fastq has no header
// phase of its own to fail in.
func NewParser(r io.Reader, opts Options) (*Parser, error) {
	size, err := opts.initialBufferSize()
	if err != nil {
		return nil, err
	}
	return &Parser{
		r:   r,
		opt: opts,
		buf: make([]byte, size),
	}, nil
}

// RecordsEmitted returns the number of records successfully emitted so far.
func (p *Parser) RecordsEmitted() int { return p.recordsEmitted }

// FirstHeaderRepeated reports whether the first record's third line carried
// a repeated header. It becomes meaningful once the first call to Scan has
// returned true (spec.md §4.C's "first-yield contract"); this accessor form
// is the documented non-iterator equivalent of the sentinel boolean.
func (p *Parser) FirstHeaderRepeated() bool { return p.firstHeaderRepeated }

// Record returns the record produced by the most recent successful Scan.
func (p *Parser) Record() *seq.Record { return p.cur }

// Err returns the error that caused Scan to stop returning true, or nil if
// the stream ended normally. Once set, every subsequent call returns the
// same error (spec.md §7 policy).
func (p *Parser) Err() error { return p.err }

// Scan advances the parser to the next record. It returns false when the
// stream is exhausted or an error occurs; callers must then check Err.
func (p *Parser) Scan() bool {
	if p.err != nil || p.done {
		return false
	}
	for {
		switch p.tryEmit() {
		case scanOK:
			return true
		case scanFail:
			return false
		}
		// scanIncomplete: need more bytes.
		eof, ok := p.refill()
		if !ok {
			return false
		}
		if eof {
			if !p.handleEOF() {
				return false
			}
			// A synthetic newline was appended; retry the scan.
			continue
		}
	}
}

type scanStatus int

const (
	scanIncomplete scanStatus = iota
	scanOK
	scanFail
)

func findLF(buf []byte, from int) int {
	if from > len(buf) {
		return -1
	}
	i := bytes.IndexByte(buf[from:], '\n')
	if i < 0 {
		return -1
	}
	return from + i
}

// trimCR returns the end index (exclusive) of the content in buf[start:nl),
// stripping one trailing '\r' immediately before the newline at nl.
func trimCR(buf []byte, start, nl int) int {
	if nl > start && buf[nl-1] == '\r' {
		return nl - 1
	}
	return nl
}

func (p *Parser) tryEmit() scanStatus {
	buf := p.buf[:p.bytesInBuffer]
	n1 := findLF(buf, p.recordStart)
	if n1 < 0 {
		return scanIncomplete
	}
	n2 := findLF(buf, n1+1)
	if n2 < 0 {
		return scanIncomplete
	}
	n3 := findLF(buf, n2+1)
	if n3 < 0 {
		return scanIncomplete
	}
	n4 := findLF(buf, n3+1)
	if n4 < 0 {
		return scanIncomplete
	}

	line := 4 * p.recordsEmitted
	if buf[p.recordStart] != '@' {
		p.fail(newParseError(BadHeader, line, "first line does not start with '@'"))
		return scanFail
	}
	if buf[n2+1] != '+' {
		p.fail(newParseError(BadSeparator, line+2, "third line does not start with '+'"))
		return scanFail
	}

	nameEnd := trimCR(buf, p.recordStart+1, n1)
	seqEnd := trimCR(buf, n1+1, n2)
	thirdEnd := trimCR(buf, n2+1, n3)

	name := buf[p.recordStart+1 : nameEnd]
	if thirdEnd > n2+2 {
		thirdContent := buf[n2+2 : thirdEnd]
		if !bytes.Equal(thirdContent, name) {
			p.fail(newParseError(HeaderMismatch, line+2, "repeated header does not match"))
			return scanFail
		}
	}
	repeated := thirdEnd > n2+2

	sequence := buf[n1+1 : seqEnd]
	qualEnd := trimCR(buf, n3+1, n4)
	qualities := buf[n3+1 : qualEnd]
	if len(qualities) != len(sequence) {
		p.fail(newParseError(LengthMismatch, line+3, "sequence and qualities differ in length"))
		return scanFail
	}

	// Fresh, uniquely-owned allocations: the shared buffer may be moved or
	// reallocated on the next refill.
	nameCopy := append([]byte(nil), name...)
	seqCopy := append([]byte(nil), sequence...)
	qualCopy := append([]byte(nil), qualities...)

	var rec *seq.Record
	if p.opt.RecordConstructor != nil {
		r, err := p.opt.RecordConstructor(nameCopy, seqCopy, qualCopy)
		if err != nil {
			p.fail(err)
			return scanFail
		}
		rec = r
	} else {
		rec = seq.NewUnchecked(nameCopy, seqCopy, qualCopy, nil)
	}

	if p.recordsEmitted == 0 {
		p.firstHeaderRepeated = repeated
	}
	p.cur = rec
	p.recordsEmitted++
	p.recordStart = n4 + 1
	return scanOK
}

// refill grows or compacts the buffer per spec.md §4.C's discipline, then
// issues one Read call. It returns (eof, ok): ok is false once p.err has
// been set (Scan should stop immediately); eof is true when the Read
// reported end of stream for this round.
func (p *Parser) refill() (eof bool, ok bool) {
	if p.recordStart == 0 && p.bytesInBuffer == len(p.buf) {
		vlog.VI(1).Infof("fastq: growing buffer from %d to %d bytes", len(p.buf), len(p.buf)*2)
		grown := make([]byte, len(p.buf)*2)
		copy(grown, p.buf)
		p.buf = grown
	} else if p.recordStart != 0 {
		copy(p.buf, p.buf[p.recordStart:p.bytesInBuffer])
		p.bytesInBuffer -= p.recordStart
		p.recordStart = 0
	}

	want := len(p.buf) - p.bytesInBuffer
	n, err := p.r.Read(p.buf[p.bytesInBuffer : p.bytesInBuffer+want])
	if n > want {
		p.fail(newParseError(ReaderContract, -1, "reader returned more bytes than requested"))
		return false, false
	}
	if n > 0 {
		fresh := p.buf[p.bytesInBuffer : p.bytesInBuffer+n]
		if !biosimd.IsASCII(fresh) {
			p.fail(newParseError(NonAscii, -1, "refilled input contains a byte >= 0x80"))
			return false, false
		}
		p.bytesInBuffer += n
	}
	if err != nil && err != io.EOF {
		p.fail(errors.Wrap(err, "fastq: reader error"))
		return false, false
	}
	if n == 0 {
		return true, true
	}
	return false, true
}

// handleEOF implements spec.md §4.C's EOF-with-residual rules. It returns
// false once p.err or p.done is set (Scan should stop), true when a
// synthetic newline was appended and scanning should retry.
func (p *Parser) handleEOF() bool {
	if p.bytesInBuffer == p.recordStart {
		p.done = true
		return false
	}
	last := p.buf[p.bytesInBuffer-1]
	if last != '\n' && !p.syntheticLF {
		// refill() always leaves at least one spare byte after a round that
		// reads zero bytes, since the spare room it creates before the Read
		// call is untouched by an empty read.
		p.buf[p.bytesInBuffer] = '\n'
		p.bytesInBuffer++
		p.syntheticLF = true
		return true
	}
	residual := p.buf[p.recordStart:p.bytesInBuffer]
	line := 4*p.recordsEmitted + bytes.Count(residual, []byte{'\n'})
	if p.syntheticLF {
		// The synthetic newline appended above counts toward residual but
		// was never a real line break in the input; don't report it.
		line--
	}
	p.fail(newParseError(PrematureEof, line, "end of file inside an incomplete record"))
	return false
}

func (p *Parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

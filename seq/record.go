package seq

import (
	"github.com/marcelm/dnaio/biosimd"
)

// Record is an immutable FASTQ/BAM-derived sequencing read: a name, a
// nucleotide sequence, and optional per-base Phred+33 quality bytes, per
// spec.md §3. All three fields, when present, are 7-bit ASCII. Record
// values are never mutated after construction; methods that would "change"
// a field return a new Record.
//
// Upstream dnaio distinguishes a string-typed record from a byte-typed one
// solely to satisfy two different callers' static typing expectations (see
// spec.md §4.B and §9). Go has only one natural representation for an
// immutable byte run doubling as text — a []byte the caller promises not to
// mutate, with string accessors built on top — so Record collapses both
// flavors into this single type; DESIGN.md records this as a resolved Open
// Question rather than leaving two parallel types with no extra meaning.
type Record struct {
	name      []byte
	sequence  []byte
	qualities []byte // nil means "absent"
	tags      TagList

	idComputed bool
	id         []byte
	commentSet bool
	hasComment bool
	comment    []byte
}

// New constructs a Record from name, sequence and (optionally nil)
// qualities. It fails with a *Error of kind NonAscii if any field contains a
// byte ≥0x80, or of kind LengthMismatch if both sequence and qualities are
// present but of different lengths.
func New(name, sequence, qualities []byte) (*Record, error) {
	return NewWithTags(name, sequence, qualities, nil)
}

// NewWithTags is like New but additionally attaches BAM auxiliary tags
// (per-base tag data such as mv/MM/ML/ns/ts and any others) to the record.
func NewWithTags(name, sequence, qualities []byte, tags TagList) (*Record, error) {
	if !biosimd.IsASCII(name) {
		return nil, newError(NonAscii, "name")
	}
	if !biosimd.IsASCII(sequence) {
		return nil, newError(NonAscii, "sequence")
	}
	if qualities != nil {
		if !biosimd.IsASCII(qualities) {
			return nil, newError(NonAscii, "qualities")
		}
		if len(qualities) != len(sequence) {
			return nil, newError(LengthMismatch, "sequence and qualities differ in length")
		}
	}
	return &Record{name: name, sequence: sequence, qualities: qualities, tags: tags}, nil
}

// NewUnchecked builds a Record without re-validating ASCII-ness or length
// agreement between sequence and qualities. It exists for the fastq and bam
// packages. The fastq parser has already checked every refilled byte with
// biosimd.IsASCII and compared the sequence and quality lengths before it
// extracts a record's fields. The bam parser's decoded sequence bytes come
// from the nibble alphabet and its qualities have the sequence's length,
// but its name and quality bytes are not checked for ASCII.
func NewUnchecked(name, sequence, qualities []byte, tags TagList) *Record {
	return &Record{name: name, sequence: sequence, qualities: qualities, tags: tags}
}

// Name returns the record's name (the header line with its leading '@'
// stripped).
func (r *Record) Name() []byte { return r.name }

// Sequence returns the nucleotide sequence.
func (r *Record) Sequence() []byte { return r.sequence }

// Qualities returns the Phred+33 quality bytes, or nil if the record has no
// qualities.
func (r *Record) Qualities() []byte { return r.qualities }

// QualitiesAsBytes returns the qualities as raw ASCII bytes. Since
// qualities are already stored as bytes, this is the identity.
func (r *Record) QualitiesAsBytes() []byte { return r.qualities }

// HasQualities reports whether the record carries quality scores.
func (r *Record) HasQualities() bool { return r.qualities != nil }

// Len returns the length of Sequence.
func (r *Record) Len() int { return len(r.sequence) }

// Id returns the prefix of Name up to the first space or tab, or all of
// Name if neither appears. The result shares storage with Name.
func (r *Record) Id() []byte {
	if !r.idComputed {
		r.id = r.name[:idLen(r.name)]
		r.idComputed = true
	}
	return r.id
}

// Comment returns the suffix of Name after the first run of spaces/tabs,
// and whether a comment is present at all.
func (r *Record) Comment() ([]byte, bool) {
	if !r.commentSet {
		n := len(r.name)
		i := idLen(r.name)
		for i < n && (r.name[i] == ' ' || r.name[i] == '\t') {
			i++
		}
		r.comment = r.name[i:]
		r.hasComment = i < n
		r.commentSet = true
	}
	return r.comment, r.hasComment
}

// IsMate reports whether r and other are mate reads of the same fragment,
// per spec.md §4.G.
func (r *Record) IsMate(other *Record) bool {
	return IsMateHeader(r.name, other.name)
}

// Equals reports whether r and other have byte-identical name, sequence,
// and qualities (including both having no qualities).
func (r *Record) Equals(other *Record) bool {
	if other == nil {
		return false
	}
	if string(r.name) != string(other.name) {
		return false
	}
	if string(r.sequence) != string(other.sequence) {
		return false
	}
	if (r.qualities == nil) != (other.qualities == nil) {
		return false
	}
	return string(r.qualities) == string(other.qualities)
}

// FastqBytes assembles the record's FASTQ byte representation via
// EncodeFastq. It fails with a *Error of kind QualitiesRequired if the
// record has no qualities.
func (r *Record) FastqBytes(twoHeaders bool) ([]byte, error) {
	if r.qualities == nil {
		return nil, newError(QualitiesRequired, "record has no qualities")
	}
	return EncodeFastq(r.name, r.sequence, r.qualities, twoHeaders), nil
}

// ReverseComplement returns a new Record with the same name, the sequence
// reverse-complemented, and the qualities (if any) reversed but not
// complemented. Per-base tags are dropped, since their positional meaning
// no longer matches a reversed sequence.
func (r *Record) ReverseComplement() *Record {
	seq := make([]byte, len(r.sequence))
	biosimd.ReverseComplement(seq, r.sequence)
	var qual []byte
	if r.qualities != nil {
		qual = make([]byte, len(r.qualities))
		biosimd.Reverse(qual, r.qualities)
	}
	out := &Record{name: r.name, sequence: seq, qualities: qual}
	return out
}

// Slice returns a new Record whose name is unchanged and whose sequence and
// qualities are sliced by [start:stop:step] (step may be negative-free only;
// step==1 means a contiguous subrange). When step==1 and the record carries
// an mv tag, mv is re-trimmed and ts/ns are recomputed from it per
// spec.md §4.D; without an mv tag, ts and ns are dropped. MM, ML, MN and du
// are dropped on every slice, and so are mv/ns/ts when step != 1. All
// other tags are carried through unchanged.
//
// start and stop follow half-open indexing (0 <= start <= stop <= Len());
// step must be a positive integer. The result holds the bases at start,
// start+step, ... below stop.
func (r *Record) Slice(start, stop, step int) *Record {
	if step <= 0 {
		panic("seq: Slice requires step >= 1")
	}
	if start < 0 || stop < start || stop > len(r.sequence) {
		panic("seq: Slice range out of bounds")
	}
	n := 0
	if step == 1 {
		n = stop - start
	} else {
		n = (stop - start + step - 1) / step
	}
	seq := make([]byte, n)
	var qual []byte
	if r.qualities != nil {
		qual = make([]byte, n)
	}
	if step == 1 {
		copy(seq, r.sequence[start:stop])
		if qual != nil {
			copy(qual, r.qualities[start:stop])
		}
	} else {
		j := 0
		for i := start; i < stop; i += step {
			seq[j] = r.sequence[i]
			if qual != nil {
				qual[j] = r.qualities[i]
			}
			j++
		}
	}
	out := &Record{name: r.name, sequence: seq, qualities: qual}
	out.tags = sliceTags(r.tags, start, stop, step)
	return out
}

// Tags returns the record's BAM auxiliary tags, or nil if the record did
// not come from a BAM stream.
func (r *Record) Tags() TagList { return r.tags }

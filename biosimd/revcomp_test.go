package biosimd_test

import (
	"testing"

	"github.com/marcelm/dnaio/biosimd"
)

func TestReverseComplement(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ACGT", "ACGT"},
		{"AACCGGTT", "AACCGGTT"},
		{"ACGTN", "NACGT"},
		{"acgtn", "nacgt"},
		{"", ""},
		{"ACGTX", "XACGT"}, // non-nucleotide byte passes through unchanged
	}
	for _, tc := range cases {
		dst := make([]byte, len(tc.in))
		biosimd.ReverseComplement(dst, []byte(tc.in))
		if got := string(dst); got != tc.want {
			t.Errorf("ReverseComplement(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReverseComplementInPlace(t *testing.T) {
	b := []byte("ACGTACGT")
	biosimd.ReverseComplement(b, b)
	if got, want := string(b), "ACGTACGT"; got != want {
		t.Errorf("in-place ReverseComplement = %q, want %q", got, want)
	}
}

func TestReverseComplementInvolution(t *testing.T) {
	for _, s := range []string{"ACGTN", "acgtn", "GATTACA", ""} {
		once := make([]byte, len(s))
		biosimd.ReverseComplement(once, []byte(s))
		twice := make([]byte, len(s))
		biosimd.ReverseComplement(twice, once)
		if got, want := string(twice), s; got != want {
			t.Errorf("ReverseComplement(ReverseComplement(%q)) = %q, want %q", s, got, want)
		}
	}
}

func TestReverse(t *testing.T) {
	dst := make([]byte, 4)
	biosimd.Reverse(dst, []byte("!!!#"))
	if got, want := string(dst), "#!!!"; got != want {
		t.Errorf("Reverse = %q, want %q", got, want)
	}
}

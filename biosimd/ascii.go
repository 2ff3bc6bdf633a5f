package biosimd

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// BytesPerWord is the number of bytes in a machine word on this platform.
const BytesPerWord = unsafe.Sizeof(uintptr(0))

// highBitsMask has the high bit of every byte in a word set; used to test
// whether any byte in an OR-accumulator has its high bit set.
const highBitsMask = ^uintptr(0) / 0xff * 0x80

// HasVectorSupport reports whether the CPU has the vector extensions a
// future assembly fast path would require. It is consulted by nothing in
// this package today; it exists so the seam the teacher's biosimd_amd64.go
// gates on (a runtime CPU-feature probe) is visible to callers that want to
// reason about portability, and so a real SIMD kernel can be dropped in
// later without changing any call sites.
var HasVectorSupport = cpu.X86.HasSSE42 || cpu.ARM64.HasASIMD

// IsASCII reports whether every byte in b has its high bit clear, i.e. b is
// pure 7-bit ASCII. The empty slice is ASCII.
//
// The implementation ORs bytes together in machine-word-sized chunks so the
// high-bit test is amortized across BytesPerWord bytes at a time rather than
// performed per byte. For the final, possibly partial word it re-reads a
// full word ending at the slice boundary; this is safe because the test is
// idempotent under OR (re-scanning a few already-seen bytes changes
// nothing), and avoids a slow byte-at-a-time tail loop.
func IsASCII(b []byte) bool {
	n := len(b)
	if n < int(BytesPerWord) {
		var acc byte
		for _, c := range b {
			acc |= c
		}
		return acc < 0x80
	}
	var acc uintptr
	nWords := n / int(BytesPerWord)
	base := unsafe.Pointer(&b[0])
	for i := 0; i < nWords; i++ {
		acc |= *(*uintptr)(unsafe.Add(base, i*int(BytesPerWord)))
	}
	if rem := n % int(BytesPerWord); rem != 0 {
		// Overlap the last full word with the tail; OR is idempotent so the
		// double-counted bytes don't affect the result.
		tailOffset := n - int(BytesPerWord)
		acc |= *(*uintptr)(unsafe.Add(base, tailOffset))
	}
	return acc&highBitsMask == 0
}

// Package biosimd provides low-level, allocation-free primitives for
// scanning and transcoding sequencing data: 7-bit-ASCII validation,
// BAM's 4-bit-per-base nucleotide packing, Phred+33 quality translation,
// and nucleotide reverse-complementing.
//
// Functions here favor word-at-a-time and table-lookup strategies over
// naive per-byte loops, following the same spirit as grailbio/bio's
// biosimd package. Unlike that package, no hand-written assembly is
// included (see DESIGN.md for why); the fast paths below are plain Go
// that the compiler vectorizes reasonably well on its own.
package biosimd

package seq

// EncodeFastq assembles the four-line FASTQ byte layout for one record,
// per spec.md §4.F / §6:
//
//	'@' name '\n' sequence '\n' '+' [name] '\n' qualities '\n'
//
// twoHeaders controls whether name is repeated after the '+' on line three.
// The output size is computed up front so the buffer is allocated once.
func EncodeFastq(name, sequence, qualities []byte, twoHeaders bool) []byte {
	size := 1 + len(name) + 1 + // '@' name '\n'
		len(sequence) + 1 + // sequence '\n'
		1 + 1 + // '+' '\n'
		len(qualities) + 1 // qualities '\n'
	if twoHeaders {
		size += len(name)
	}
	buf := make([]byte, size)
	pos := 0
	buf[pos] = '@'
	pos++
	pos += copy(buf[pos:], name)
	buf[pos] = '\n'
	pos++
	pos += copy(buf[pos:], sequence)
	buf[pos] = '\n'
	pos++
	buf[pos] = '+'
	pos++
	if twoHeaders {
		pos += copy(buf[pos:], name)
	}
	buf[pos] = '\n'
	pos++
	pos += copy(buf[pos:], qualities)
	buf[pos] = '\n'
	pos++
	return buf[:pos]
}

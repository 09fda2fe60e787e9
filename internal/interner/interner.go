// Package interner implements the string table folding described in
// spec.md §4.1: byte strings are deduplicated into a single
// NUL-terminated backing buffer, addressed by stable 32-bit offsets.
package interner

// Interner deduplicates strings into a packed, NUL-terminated buffer.
// The zero value is ready to use.
type Interner struct {
	buf     []byte
	offsets map[string]uint32
}

// Intern returns the offset of s within the backing buffer, appending it
// (plus a trailing NUL) if this is the first time s has been seen. The
// empty string is a legal input and receives an offset like any other.
func (in *Interner) Intern(s string) uint32 {
	if in.offsets == nil {
		in.offsets = make(map[string]uint32)
	}
	if off, ok := in.offsets[s]; ok {
		return off
	}
	off := uint32(len(in.buf))
	in.buf = append(in.buf, s...)
	in.buf = append(in.buf, 0)
	in.offsets[s] = off
	return off
}

// Len returns the number of distinct strings interned so far. The
// compiler (emitFromTree in compile.go) calls this right after the
// element-name pass to obtain strtab_ntags.
func (in *Interner) Len() int {
	return len(in.offsets)
}

// Bytes returns the packed, NUL-terminated string table built so far. The
// returned slice aliases the interner's internal buffer and must not be
// retained across further calls to Intern.
func (in *Interner) Bytes() []byte {
	return in.buf
}

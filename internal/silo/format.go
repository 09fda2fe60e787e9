// Package silo implements the binary layout described in spec.md §3: a
// Header, a flat node table of variable-length records linked by byte
// offsets, and a trailing packed string table.
//
// The on-disk/in-memory encoding is grounded on the teacher's
// internal/squashfs package (superblock + binary.Write/binary.Read over a
// fixed little-endian struct, magic/version validated on load via
// io.NewSectionReader), generalized from a file system image to this
// node-table format.
package silo

import (
	"encoding/binary"
	"fmt"
	"io"
)

// magic is the fixed byte pattern identifying a silo blob.
var magic = [4]byte{'X', 'b', 'S', '1'}

// version is the only format version this package knows how to read or
// write.
const version = uint32(1)

// HeaderSize is the fixed size in bytes of the on-disk Header, including
// the reserved padding that aligns the GUID field to a 16-byte boundary.
const HeaderSize = 4 + 4 + 4 + 4 + 16 + 16

// Header is the fixed-size blob prefix described in spec.md §3.
type Header struct {
	// Strtab is the byte offset (from the start of the blob) at which the
	// string table begins; equivalently sizeof(Header)+len(node table).
	Strtab uint32

	// StrtabNTags is the count of distinct element-name strings interned
	// during the element-name pass, which always runs first.
	StrtabNTags uint32

	// GUID is the 16-byte opaque fingerprint from internal/guid.
	GUID [16]byte
}

type rawHeader struct {
	Magic       [4]byte
	Version     uint32
	Strtab      uint32
	StrtabNTags uint32
	Padding     [16]byte
	GUID        [16]byte
}

func encodeHeader(w io.Writer, h Header) error {
	raw := rawHeader{
		Magic:       magic,
		Version:     version,
		Strtab:      h.Strtab,
		StrtabNTags: h.StrtabNTags,
		GUID:        h.GUID,
	}
	return binary.Write(w, binary.LittleEndian, &raw)
}

// decodeHeader reads and validates a Header from the front of r.
func decodeHeader(r io.Reader) (Header, error) {
	var raw rawHeader
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Header{}, fmt.Errorf("reading silo header: %w", err)
	}
	if raw.Magic != magic {
		return Header{}, fmt.Errorf("%w: invalid magic (got %q, want %q)", ErrFormatMismatch, raw.Magic, magic)
	}
	if raw.Version != version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrFormatMismatch, raw.Version)
	}
	return Header{
		Strtab:      raw.Strtab,
		StrtabNTags: raw.StrtabNTags,
		GUID:        raw.GUID,
	}, nil
}

// Node record prefix bit layout: bit 0 is_node, bit 1 has_text, bits 2-7
// nr_attrs (a node may carry at most MaxAttrs attributes).
const (
	flagIsNode  = 1 << 0
	flagHasText = 1 << 1
	attrShift   = 2
	// MaxAttrs is the largest attribute count representable in the 6
	// remaining prefix bits.
	MaxAttrs = 1<<6 - 1
)

// AttrIdx is a pair of interned string-table offsets for one attribute.
type AttrIdx struct {
	NameIdx  uint32
	ValueIdx uint32
}

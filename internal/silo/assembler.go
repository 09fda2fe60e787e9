package silo

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/orcaman/writerseeker"
)

// Assembler performs the two-pass node-table emission described in
// spec.md §4.5 steps 9–10: a first pass writes node and sentinel records
// while recording each node's offset, and a second pass seeks backward to
// patch in the now-known next/parent offsets.
//
// It writes into an in-memory io.WriteSeeker (github.com/orcaman/
// writerseeker, a direct dependency of the teacher repo) rather than a
// real file, since the blob is assembled once, entirely in memory, before
// being handed to Load/Save.
type Assembler struct {
	w          *writerseeker.WriterSeeker
	tableStart int64
	tableEnd   int64
}

// NewAssembler writes a placeholder header (it is not known in full
// until the node table and string table sizes are) at the front of a
// fresh in-memory buffer, and returns an Assembler ready to emit the
// node table that follows it. Call FinalizeHeader once Strtab,
// StrtabNTags and GUID are known, before Finish.
func NewAssembler() (*Assembler, error) {
	ws := &writerseeker.WriterSeeker{}
	if err := encodeHeader(ws, Header{}); err != nil {
		return nil, fmt.Errorf("encoding silo header: %w", err)
	}
	pos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &Assembler{w: ws, tableStart: pos, tableEnd: pos}, nil
}

// FinalizeHeader overwrites the placeholder header written by
// NewAssembler now that h's fields are known (spec.md §4.5 step 8).
func (a *Assembler) FinalizeHeader(h Header) error {
	if _, err := a.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := encodeHeader(a.w, h); err != nil {
		return err
	}
	_, err := a.w.Seek(a.tableEnd, io.SeekStart)
	return err
}

// offset returns the current write position relative to the start of the
// node table (i.e. the value that belongs in a Node's transient Offset
// field).
func (a *Assembler) offset() uint32 {
	return uint32(a.tableEnd - a.tableStart)
}

// EmitSentinel writes a one-byte SentinelRecord, closing a child
// descent (spec.md §3, §4.5 step 9).
func (a *Assembler) EmitSentinel() error {
	if _, err := a.w.Seek(a.tableEnd, io.SeekStart); err != nil {
		return err
	}
	n, err := a.w.Write([]byte{0})
	if err != nil {
		return err
	}
	a.tableEnd += int64(n)
	return nil
}

// EmitNode writes one NodeRecord (trimmed of its text field when
// hasText is false) followed by its attribute records, and returns the
// offset at which it was written.
func (a *Assembler) EmitNode(elementIdx uint32, hasText bool, textIdx uint32, attrs []AttrIdx) (uint32, error) {
	if len(attrs) > MaxAttrs {
		return 0, fmt.Errorf("silo: node has %d attributes, max is %d", len(attrs), MaxAttrs)
	}
	off := a.offset()
	if _, err := a.w.Seek(a.tableEnd, io.SeekStart); err != nil {
		return 0, err
	}

	prefix := byte(flagIsNode) | byte(len(attrs))<<attrShift
	if hasText {
		prefix |= flagHasText
	}
	if err := a.write(prefix); err != nil {
		return 0, err
	}
	if err := a.writeU32(elementIdx); err != nil {
		return 0, err
	}
	if err := a.writeU32(0); err != nil { // next, patched later
		return 0, err
	}
	if err := a.writeU32(0); err != nil { // parent, patched later
		return 0, err
	}
	if hasText {
		if err := a.writeU32(textIdx); err != nil {
			return 0, err
		}
	}
	for _, at := range attrs {
		if err := a.writeU32(at.NameIdx); err != nil {
			return 0, err
		}
		if err := a.writeU32(at.ValueIdx); err != nil {
			return 0, err
		}
	}
	return off, nil
}

func (a *Assembler) write(b byte) error {
	n, err := a.w.Write([]byte{b})
	a.tableEnd += int64(n)
	return err
}

func (a *Assembler) writeU32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	n, err := a.w.Write(buf[:])
	a.tableEnd += int64(n)
	return err
}

// nextFieldPos and parentFieldPos return the absolute buffer position of
// a node's next/parent field, given the node's table-relative offset.
func (a *Assembler) nextFieldPos(nodeOffset uint32) int64 {
	return a.tableStart + int64(nodeOffset) + 1 /* prefix */ + 4 /* element_name */
}

func (a *Assembler) parentFieldPos(nodeOffset uint32) int64 {
	return a.nextFieldPos(nodeOffset) + 4
}

// PatchNext back-patches the next field of the node at nodeOffset.
func (a *Assembler) PatchNext(nodeOffset, next uint32) error {
	if _, err := a.w.Seek(a.nextFieldPos(nodeOffset), io.SeekStart); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], next)
	_, err := a.w.Write(buf[:])
	return err
}

// PatchParent back-patches the parent field of the node at nodeOffset.
func (a *Assembler) PatchParent(nodeOffset, parent uint32) error {
	if _, err := a.w.Seek(a.parentFieldPos(nodeOffset), io.SeekStart); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], parent)
	_, err := a.w.Write(buf[:])
	return err
}

// NodeTableSize returns the number of bytes written to the node table so
// far (i.e. excluding the header).
func (a *Assembler) NodeTableSize() uint32 {
	return uint32(a.tableEnd - a.tableStart)
}

// Finish appends strtab to the end of the node table and returns the
// complete blob.
func (a *Assembler) Finish(strtab []byte) ([]byte, error) {
	if _, err := a.w.Seek(a.tableEnd, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := a.w.Write(strtab); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(a.w.Reader())
	if err != nil {
		return nil, err
	}
	return b, nil
}

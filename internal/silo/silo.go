package silo

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/google/renameio"
)

// Silo is the external "silo loader" collaborator named in spec.md §6: it
// validates and wraps a compiled blob, exposing only its GUID and raw
// bytes. Query/traversal over the node table is explicitly out of scope
// (spec.md §1 Non-goals).
type Silo struct {
	header Header
	blob   []byte
}

// Load validates blob's header (magic, version, and that the string
// table offset it claims falls inside the blob) and wraps it.
func Load(blob []byte) (*Silo, error) {
	if len(blob) < HeaderSize {
		return nil, fmt.Errorf("%w: blob shorter than header (%d bytes)", ErrFormatMismatch, len(blob))
	}
	h, err := decodeHeader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	if int(h.Strtab) > len(blob) {
		return nil, fmt.Errorf("%w: strtab offset %d beyond blob length %d", ErrFormatMismatch, h.Strtab, len(blob))
	}
	return &Silo{header: h, blob: blob}, nil
}

// GUID returns the silo's fingerprint as a lowercase hex string.
func (s *Silo) GUID() string {
	return hex.EncodeToString(s.header.GUID[:])
}

// Bytes returns the complete, immutable blob.
func (s *Silo) Bytes() []byte {
	return s.blob
}

// Header returns the decoded header.
func (s *Silo) Header() Header {
	return s.header
}

// Save writes the blob to path atomically (write-to-temp-then-rename),
// the same pattern the teacher uses in cmd/distri/initrd.go for package
// artifacts, so a crash mid-write never leaves a corrupt silo on disk.
func (s *Silo) Save(path string) error {
	return renameio.WriteFile(path, s.blob, 0o644)
}

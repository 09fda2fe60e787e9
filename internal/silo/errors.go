package silo

import "errors"

// ErrFormatMismatch is returned by Load when a blob's magic or version
// field does not match what this package understands, per spec.md §7.
var ErrFormatMismatch = errors.New("silo: format mismatch")

package word

import (
	"errors"
	"fmt"

	"github.com/c360studio/semdoc/binio"
)

var (
	// ErrTruncated reports a stream shorter than a fixed or declared field requires.
	ErrTruncated = binio.ErrTruncated
	// ErrUnsupportedVariant reports a sub-format this decoder does not implement.
	ErrUnsupportedVariant = errors.New("unsupported format variant")
	// ErrMalformedLayout reports internally inconsistent lengths, counts or offsets.
	ErrMalformedLayout = errors.New("malformed layout")
	// ErrMalformedPlex reports a plex block whose length leaves a remainder.
	ErrMalformedPlex = fmt.Errorf("%w: plex block length", ErrMalformedLayout)
	// ErrBadMagic reports a WordDocument stream that does not start with the Word identifier.
	ErrBadMagic = errors.New("not a Word binary document")
)

// EntryError names the directory entry being decoded when a failure occurred.
type EntryError struct {
	Structure string
	Entry     DirectoryEntry
	Err       error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("decode %s (entry %s at offset %d, length %d): %v",
		e.Structure, e.Entry.Name, e.Entry.Offset, e.Entry.Length, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

package binio

import (
	"errors"
	"fmt"
	"io"
)

// SectionReader is an address-translating view over a shared stream:
// position 0 of the view is base in the underlying stream. Nothing is copied.
// Unlike io.SectionReader it works on a ReadSeeker and has no upper bound
// unless one is given.
type SectionReader struct {
	rs    io.ReadSeeker
	base  int64
	limit int64 // -1 means unbounded
	pos   int64
}

// NewSectionReader returns a view whose origin is base. A negative limit leaves the view unbounded.
func NewSectionReader(rs io.ReadSeeker, base, limit int64) *SectionReader {
	return &SectionReader{rs: rs, base: base, limit: limit}
}

// Base returns the offset of the view's origin in the underlying stream.
func (s *SectionReader) Base() int64 { return s.base }

func (s *SectionReader) Read(p []byte) (int, error) {
	if s.limit >= 0 {
		if s.pos >= s.limit {
			return 0, io.EOF
		}
		if rem := s.limit - s.pos; int64(len(p)) > rem {
			p = p[:rem]
		}
	}
	if _, err := s.rs.Seek(s.base+s.pos, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := s.rs.Read(p)
	s.pos += int64(n)
	return n, err
}

func (s *SectionReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		if s.limit < 0 {
			end, err := s.rs.Seek(0, io.SeekEnd)
			if err != nil {
				return 0, err
			}
			abs = end - s.base + offset
		} else {
			abs = s.limit + offset
		}
	default:
		return 0, errors.New("binio: invalid whence")
	}
	if abs < 0 {
		return 0, fmt.Errorf("binio: seek before section start (%d)", abs)
	}
	s.pos = abs
	return abs, nil
}

// Package binio provides little-endian field readers over seekable byte streams.
//
// Every read is explicit about its position: decoders seek to an absolute
// offset before reading rather than relying on where a previous read left
// the stream.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// ErrTruncated reports a stream shorter than a fixed or declared field requires.
var ErrTruncated = errors.New("truncated stream")

// Reader reads little-endian fields from an io.ReadSeeker.
type Reader struct {
	rs  io.ReadSeeker
	buf [8]byte
}

// NewReader wraps rs.
func NewReader(rs io.ReadSeeker) *Reader {
	return &Reader{rs: rs}
}

// Truncation maps EOF conditions onto ErrTruncated, leaving other errors untouched.
func Truncation(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return err
}

// Seek moves to an absolute offset.
func (r *Reader) Seek(offset int64) error {
	if offset < 0 {
		return fmt.Errorf("seek to negative offset %d: %w", offset, ErrTruncated)
	}
	if _, err := r.rs.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d: %w", offset, err)
	}
	return nil
}

// Pos returns the current offset.
func (r *Reader) Pos() (int64, error) {
	return r.rs.Seek(0, io.SeekCurrent)
}

// Skip advances n bytes from the current position.
func (r *Reader) Skip(n int64) error {
	_, err := r.rs.Seek(n, io.SeekCurrent)
	return err
}

// Bytes reads exactly n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative length %d: %w", n, ErrTruncated)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.rs, b); err != nil {
		return nil, Truncation(err)
	}
	return b, nil
}

func (r *Reader) fill(n int) ([]byte, error) {
	if _, err := io.ReadFull(r.rs, r.buf[:n]); err != nil {
		return nil, Truncation(err)
	}
	return r.buf[:n], nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U16BE reads a big-endian uint16.
func (r *Reader) U16BE() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U16At seeks to offset and reads a uint16.
func (r *Reader) U16At(offset int64) (uint16, error) {
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.U16()
}

// U32At seeks to offset and reads a uint32.
func (r *Reader) U32At(offset int64) (uint32, error) {
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.U32()
}

// I32At seeks to offset and reads an int32.
func (r *Reader) I32At(offset int64) (int32, error) {
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.I32()
}

// WideString reads n UTF-16LE code units.
func (r *Reader) WideString(n int) (string, error) {
	b, err := r.Bytes(n * 2)
	if err != nil {
		return "", err
	}
	return DecodeUTF16LE(b), nil
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16LE decodes little-endian UTF-16 code units, dropping an odd
// trailing byte. Unpaired surrogates become U+FFFD.
func DecodeUTF16LE(b []byte) string {
	b = b[:len(b)&^1]
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}

// Size returns the total length of rs and restores its position.
func Size(rs io.ReadSeeker) (int64, error) {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := rs.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

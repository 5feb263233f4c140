// Package binfixture builds little-endian byte layouts for decoder tests.
package binfixture

import (
	"encoding/binary"
	"unicode/utf16"
)

// Builder assembles little-endian byte layouts. It is used to construct
// fixtures for decoders and never fails.
type Builder struct {
	buf []byte
}

// Bytes returns the assembled bytes.
func (b *Builder) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return len(b.buf) }

func (b *Builder) U8(v uint8) *Builder {
	b.buf = append(b.buf, v)
	return b
}

func (b *Builder) U16(v uint16) *Builder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *Builder) U16BE(v uint16) *Builder {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *Builder) I32(v int32) *Builder { return b.U32(uint32(v)) }

func (b *Builder) U64(v uint64) *Builder {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, v)
	return b
}

func (b *Builder) Raw(p ...byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// Zeros appends n zero bytes.
func (b *Builder) Zeros(n int) *Builder {
	b.buf = append(b.buf, make([]byte, n)...)
	return b
}

// Wide appends s as UTF-16LE code units without a length prefix or terminator.
func (b *Builder) Wide(s string) *Builder {
	for _, u := range utf16.Encode([]rune(s)) {
		b.U16(u)
	}
	return b
}

// PutU16 overwrites two bytes at off.
func (b *Builder) PutU16(off int, v uint16) *Builder {
	binary.LittleEndian.PutUint16(b.buf[off:], v)
	return b
}

// PutU32 overwrites four bytes at off.
func (b *Builder) PutU32(off int, v uint32) *Builder {
	binary.LittleEndian.PutUint32(b.buf[off:], v)
	return b
}

// Pad appends zeros until the length is a multiple of n.
func (b *Builder) Pad(n int) *Builder {
	for len(b.buf)%n != 0 {
		b.buf = append(b.buf, 0)
	}
	return b
}

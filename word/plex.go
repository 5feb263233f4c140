package word

import (
	"encoding/binary"
	"fmt"
)

// Record decodes one fixed-size record type from exactly Size() bytes.
type Record[T any] interface {
	Size() int
	Decode(b []byte) (T, error)
}

// Plex is N+1 character-position boundaries paired with N fixed-size records.
// Boundaries[i] and Boundaries[i+1] bound the domain of Records[i].
// Boundaries are not checked for monotonicity.
type Plex[T any] struct {
	Boundaries []int32
	Records    []T
}

// Len returns the number of records.
func (p Plex[T]) Len() int { return len(p.Records) }

// PlexCount returns the record count a block of length n holds for the given
// record size, or ErrMalformedPlex when the length does not divide evenly.
func PlexCount(n, recordSize int) (int, error) {
	if n < 4 {
		return 0, fmt.Errorf("%w: %d bytes is shorter than one boundary", ErrMalformedPlex, n)
	}
	stride := 4 + recordSize
	if rem := (n - 4) % stride; rem != 0 {
		return 0, fmt.Errorf("%w: %d bytes leaves %d after %d-byte records", ErrMalformedPlex, n, rem, recordSize)
	}
	return (n - 4) / stride, nil
}

// DecodePlex splits block into boundaries and records using codec.
func DecodePlex[T any](block []byte, codec Record[T]) (Plex[T], error) {
	size := codec.Size()
	n, err := PlexCount(len(block), size)
	if err != nil {
		return Plex[T]{}, err
	}

	p := Plex[T]{
		Boundaries: make([]int32, n+1),
		Records:    make([]T, n),
	}
	for i := range p.Boundaries {
		p.Boundaries[i] = int32(binary.LittleEndian.Uint32(block[i*4:]))
	}
	base := (n + 1) * 4
	for i := range p.Records {
		off := base + i*size
		rec, err := codec.Decode(block[off : off+size])
		if err != nil {
			return Plex[T]{}, fmt.Errorf("decode plex record %d: %w", i, err)
		}
		p.Records[i] = rec
	}
	return p, nil
}

// Encode writes the plex back into block form using enc for each record.
func (p Plex[T]) Encode(enc func(T) []byte) []byte {
	out := make([]byte, 0, len(p.Boundaries)*4)
	for _, b := range p.Boundaries {
		out = binary.LittleEndian.AppendUint32(out, uint32(b))
	}
	for _, r := range p.Records {
		out = append(out, enc(r)...)
	}
	return out
}

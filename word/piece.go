package word

import (
	"encoding/binary"
	"fmt"
)

// ClxPieceTableTag marks a Pcdt (piece table) inside the CLX block.
const ClxPieceTableTag = 2

const (
	pcdSize = 8

	pcdNoParaLast = 0x8000
	pcdPaphNil    = 0x4000
	pcdDirty      = 0x2000
	pcdReserved   = 0x1000
	pcdFn         = 0x0FFF

	fcCompressed = 0x40000000
)

// PieceDescriptor (PCD) locates one contiguous run of document text.
//
// The leading bitfield word and prm are read big-endian, matching the layout
// the masks below were written against. fc is little-endian.
type PieceDescriptor struct {
	NoParaLast bool    `json:"fNoParaLast"`
	Reserved   [3]bool `json:"reserved"`
	Fn         uint16  `json:"fn"`
	Fc         int32   `json:"fc"`
	Prm        uint16  `json:"prm"`
}

// Compressed reports whether the piece stores 8-bit text.
func (p PieceDescriptor) Compressed() bool { return p.Fc&fcCompressed != 0 }

// ActualOffset returns the WordDocument offset of the piece's first byte.
func (p PieceDescriptor) ActualOffset() int64 {
	fc := int64(p.Fc &^ fcCompressed)
	if p.Compressed() {
		return fc / 2
	}
	return fc
}

// PieceCodec is the fixed-record codec for PCDs.
type PieceCodec struct{}

func (PieceCodec) Size() int { return pcdSize }

func (PieceCodec) Decode(b []byte) (PieceDescriptor, error) {
	if len(b) != pcdSize {
		return PieceDescriptor{}, fmt.Errorf("%w: pcd needs %d bytes, got %d", ErrTruncated, pcdSize, len(b))
	}
	bits := binary.BigEndian.Uint16(b[0:2])
	return PieceDescriptor{
		NoParaLast: bits&pcdNoParaLast != 0,
		Reserved:   [3]bool{bits&pcdPaphNil != 0, bits&pcdDirty != 0, bits&pcdReserved != 0},
		Fn:         bits & pcdFn,
		Fc:         int32(binary.LittleEndian.Uint32(b[2:6])),
		Prm:        binary.BigEndian.Uint16(b[6:8]),
	}, nil
}

// Encode is the inverse of Decode.
func (PieceCodec) Encode(p PieceDescriptor) []byte {
	var bits uint16
	if p.NoParaLast {
		bits |= pcdNoParaLast
	}
	for i, mask := range []uint16{pcdPaphNil, pcdDirty, pcdReserved} {
		if p.Reserved[i] {
			bits |= mask
		}
	}
	bits |= p.Fn & pcdFn

	out := make([]byte, pcdSize)
	binary.BigEndian.PutUint16(out[0:2], bits)
	binary.LittleEndian.PutUint32(out[2:6], uint32(p.Fc))
	binary.BigEndian.PutUint16(out[6:8], p.Prm)
	return out
}

// PieceTable is the plex of piece descriptors from the CLX.
type PieceTable = Plex[PieceDescriptor]

// DecodePieceTable decodes the CLX block. The block must open with the Pcdt
// tag; any other lead byte is the simple text layout, which is unsupported.
func DecodePieceTable(clx []byte, strict bool) (PieceTable, error) {
	if len(clx) < 1 {
		return PieceTable{}, fmt.Errorf("clx: %w", ErrTruncated)
	}
	if clx[0] != ClxPieceTableTag {
		return PieceTable{}, fmt.Errorf("%w: clx lead byte 0x%02X, want 0x%02X", ErrUnsupportedVariant, clx[0], ClxPieceTableTag)
	}
	if len(clx) < 5 {
		return PieceTable{}, fmt.Errorf("pcdt length: %w", ErrTruncated)
	}
	lcb := int(binary.LittleEndian.Uint32(clx[1:5]))
	if lcb < 0 || 5+lcb > len(clx) {
		return PieceTable{}, fmt.Errorf("pcdt declares %d bytes, %d available: %w", lcb, len(clx)-5, ErrTruncated)
	}
	block := clx[5 : 5+lcb]
	if !strict {
		block = trimPlex(block, pcdSize)
	}
	pt, err := DecodePlex[PieceDescriptor](block, PieceCodec{})
	if err != nil {
		return PieceTable{}, fmt.Errorf("pcdt: %w", err)
	}
	return pt, nil
}

// trimPlex drops trailing bytes that do not form a whole record.
func trimPlex(block []byte, recordSize int) []byte {
	if len(block) < 4 {
		return block
	}
	rem := (len(block) - 4) % (4 + recordSize)
	return block[:len(block)-rem]
}

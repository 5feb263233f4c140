package propset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"github.com/c360studio/semdoc/binio"
)

// maxElements bounds vector and array counts so a corrupt count cannot
// drive a huge allocation.
const maxElements = 1 << 20

// valueReader decodes typed values from a section-relative reader.
type valueReader struct {
	r *binio.Reader
}

// typed reads a TypedPropertyValue: a 16-bit tag, 16 bits of padding, then the payload.
func (vr valueReader) typed() (Value, error) {
	tag, err := vr.r.U16()
	if err != nil {
		return nil, err
	}
	if _, err := vr.r.U16(); err != nil {
		return nil, err
	}
	return vr.value(VarType(tag))
}

func (vr valueReader) value(vt VarType) (Value, error) {
	switch {
	case vt.IsVector() && vt.IsArray():
		return Unknown{Tag: vt}, nil
	case vt.IsVector():
		return vr.vector(vt)
	case vt.IsArray():
		return vr.array(vt)
	case vt == VTVariant:
		return nil, fmt.Errorf("%w: VT_VARIANT outside a vector or array", ErrMalformedSection)
	}
	v, known, err := vr.scalar(vt, true)
	if err != nil {
		return nil, err
	}
	if !known {
		return Unknown{Tag: vt}, nil
	}
	return v, nil
}

// scalar decodes one base-typed payload. padded selects the top-level layout
// where 1- and 2-byte values occupy a full 4-byte slot; inside vectors they pack.
func (vr valueReader) scalar(vt VarType, padded bool) (Value, bool, error) {
	r := vr.r
	var (
		v   Value
		err error
	)
	switch vt {
	case VTEmpty:
		return Empty{}, true, nil
	case VTNull:
		return Null{}, true, nil
	case VTI2:
		var u uint16
		u, err = r.U16()
		v = Int16(int16(u))
	case VTUI2:
		var u uint16
		u, err = r.U16()
		v = Uint16(u)
	case VTBool:
		var u uint16
		u, err = r.U16()
		v = Bool(u != 0)
	case VTI1:
		var u uint8
		u, err = r.U8()
		v = Int8(int8(u))
	case VTUI1:
		var u uint8
		u, err = r.U8()
		v = Uint8(u)
	case VTI4:
		var u uint32
		u, err = r.U32()
		v = Int32(int32(u))
	case VTUI4:
		var u uint32
		u, err = r.U32()
		v = Uint32(u)
	case VTInt:
		var u uint32
		u, err = r.U32()
		v = Int(int32(u))
	case VTUint:
		var u uint32
		u, err = r.U32()
		v = Uint(u)
	case VTError:
		var u uint32
		u, err = r.U32()
		v = ErrorCode(u)
	case VTR4:
		var u uint32
		u, err = r.U32()
		v = Float32(math.Float32frombits(u))
	case VTR8:
		var u uint64
		u, err = r.U64()
		v = Float64(math.Float64frombits(u))
	case VTDate:
		var u uint64
		u, err = r.U64()
		v = Date(math.Float64frombits(u))
	case VTCY:
		var u uint64
		u, err = r.U64()
		v = Currency(int64(u))
	case VTI8:
		var u uint64
		u, err = r.U64()
		v = Int64(int64(u))
	case VTUI8:
		var u uint64
		u, err = r.U64()
		v = Uint64(u)
	case VTFiletime:
		var u uint64
		u, err = r.U64()
		v = Filetime(u)
	case VTDecimal:
		v, err = vr.decimal()
	case VTBSTR:
		var s string
		s, err = vr.narrow()
		v = BSTR(s)
	case VTLPSTR:
		var s string
		s, err = vr.narrow()
		v = LPSTR(s)
	case VTLPWSTR:
		var s string
		s, err = vr.wide()
		v = LPWSTR(s)
	case VTBlob:
		var b []byte
		b, err = vr.blob()
		v = Blob(b)
	case VTBlobObject:
		var b []byte
		b, err = vr.blob()
		v = BlobObject(b)
	case VTStream, VTStorage, VTStreamedObject, VTStoredObject:
		var s string
		s, err = vr.narrow()
		v = Indirect{Kind: vt, Name: s}
	case VTCF:
		v, err = vr.clipboard()
	case VTCLSID:
		var g uuid.UUID
		g, err = vr.guid()
		v = CLSID(g)
	case VTVersionedStream:
		var g uuid.UUID
		if g, err = vr.guid(); err == nil {
			var s string
			s, err = vr.narrow()
			v = VersionedStream{Version: g, Name: s}
		}
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	if padded {
		if err := vr.align(); err != nil {
			return nil, true, err
		}
	}
	return v, true, nil
}

func (vr valueReader) vector(vt VarType) (Value, error) {
	elem := vt.Base()
	n, err := vr.count()
	if err != nil {
		return nil, err
	}
	items, known, err := vr.elements(elem, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vt, err)
	}
	if !known {
		return Unknown{Tag: vt}, nil
	}
	return Vector{Elem: elem, Items: items}, nil
}

func (vr valueReader) array(vt VarType) (Value, error) {
	elem := vt.Base()
	r := vr.r
	header, err := r.U32()
	if err != nil {
		return nil, err
	}
	dims, err := r.U32()
	if err != nil {
		return nil, err
	}
	if dims == 0 || dims > 31 {
		return nil, fmt.Errorf("%w: array with %d dimensions", ErrMalformedSection, dims)
	}
	a := Array{Elem: elem, Dims: make([]ArrayDimension, dims)}
	total := uint64(1)
	for i := range a.Dims {
		if a.Dims[i].Size, err = r.U32(); err != nil {
			return nil, err
		}
		if a.Dims[i].IndexOffset, err = r.I32(); err != nil {
			return nil, err
		}
		total *= uint64(a.Dims[i].Size)
		if total > maxElements {
			return nil, fmt.Errorf("%w: array of more than %d elements", ErrMalformedSection, maxElements)
		}
	}
	// The header repeats the element type; a disagreement means the payload cannot be trusted.
	if VarType(header&0xFFFF) != elem {
		return Unknown{Tag: vt}, nil
	}
	items, known, err := vr.elements(elem, int(total))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vt, err)
	}
	if !known {
		return Unknown{Tag: vt}, nil
	}
	a.Items = items
	return a, nil
}

// elements decodes n packed items of type elem. VT_VARIANT items are
// themselves typed values and recurse through typed. known is false when
// any item type is not understood, since the rest cannot be located.
func (vr valueReader) elements(elem VarType, n int) ([]Value, bool, error) {
	items := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		var (
			v     Value
			known = true
			err   error
		)
		if elem == VTVariant {
			v, err = vr.typed()
			if _, ok := v.(Unknown); ok {
				known = false
			}
		} else {
			v, known, err = vr.scalar(elem, false)
		}
		if err != nil {
			return nil, true, fmt.Errorf("element %d: %w", i, err)
		}
		if !known {
			return nil, false, nil
		}
		items = append(items, v)
	}
	return items, true, vr.align()
}

func (vr valueReader) count() (int, error) {
	n, err := vr.r.U32()
	if err != nil {
		return 0, err
	}
	if n > maxElements {
		return 0, fmt.Errorf("%w: count %d exceeds %d", ErrMalformedSection, n, maxElements)
	}
	return int(n), nil
}

// narrow reads a CodePageString: a byte count then that many bytes, padded to 4.
// The code page property is not consulted; bytes are taken as UTF-8 when valid
// and as Windows-1252 otherwise.
func (vr valueReader) narrow() (string, error) {
	b, err := vr.blob()
	if err != nil {
		return "", err
	}
	return decodeNarrow(b), nil
}

func decodeNarrow(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// wide reads a UnicodeString: a byte count then that many bytes of UTF-16LE,
// padded to 4. An odd count cannot hold whole code units.
func (vr valueReader) wide() (string, error) {
	b, err := vr.blob()
	if err != nil {
		return "", err
	}
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: wide string of %d bytes", ErrMalformedSection, len(b))
	}
	return trimNul(binio.DecodeUTF16LE(b)), nil
}

func (vr valueReader) blob() ([]byte, error) {
	n, err := vr.r.U32()
	if err != nil {
		return nil, err
	}
	if n > maxElements*16 {
		return nil, fmt.Errorf("%w: blob of %d bytes", ErrMalformedSection, n)
	}
	b, err := vr.r.Bytes(int(n))
	if err != nil {
		return nil, err
	}
	return b, vr.align()
}

func (vr valueReader) clipboard() (Value, error) {
	b, err := vr.blob()
	if err != nil {
		return nil, err
	}
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: clipboard data of %d bytes", ErrMalformedSection, len(b))
	}
	return ClipboardData{Format: int32(binary.LittleEndian.Uint32(b)), Data: b[4:]}, nil
}

func (vr valueReader) decimal() (Value, error) {
	b, err := vr.r.Bytes(16)
	if err != nil {
		return nil, err
	}
	return Decimal{
		Scale: b[2],
		Sign:  b[3],
		Hi32:  binary.LittleEndian.Uint32(b[4:]),
		Lo64:  binary.LittleEndian.Uint64(b[8:]),
	}, nil
}

func (vr valueReader) guid() (uuid.UUID, error) {
	b, err := vr.r.Bytes(16)
	if err != nil {
		return uuid.Nil, err
	}
	return GUIDFromBytes(b), nil
}

// align skips to the next 4-byte boundary of the section.
func (vr valueReader) align() error {
	pos, err := vr.r.Pos()
	if err != nil {
		return err
	}
	if pad := (4 - pos%4) % 4; pad > 0 {
		return vr.r.Skip(pad)
	}
	return nil
}

// GUIDFromBytes converts the on-disk GUID layout (first three groups
// little-endian) into RFC 4122 byte order.
func GUIDFromBytes(b []byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:16])
	return u
}

// GUIDBytes is the inverse of GUIDFromBytes.
func GUIDBytes(u uuid.UUID) []byte {
	b := make([]byte, 16)
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:], u[8:])
	return b
}

package propset

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VarType is a property type tag (VT_*).
type VarType uint16

const (
	VTEmpty           VarType = 0x0000
	VTNull            VarType = 0x0001
	VTI2              VarType = 0x0002
	VTI4              VarType = 0x0003
	VTR4              VarType = 0x0004
	VTR8              VarType = 0x0005
	VTCY              VarType = 0x0006
	VTDate            VarType = 0x0007
	VTBSTR            VarType = 0x0008
	VTError           VarType = 0x000A
	VTBool            VarType = 0x000B
	VTVariant         VarType = 0x000C
	VTDecimal         VarType = 0x000E
	VTI1              VarType = 0x0010
	VTUI1             VarType = 0x0011
	VTUI2             VarType = 0x0012
	VTUI4             VarType = 0x0013
	VTI8              VarType = 0x0014
	VTUI8             VarType = 0x0015
	VTInt             VarType = 0x0016
	VTUint            VarType = 0x0017
	VTLPSTR           VarType = 0x001E
	VTLPWSTR          VarType = 0x001F
	VTFiletime        VarType = 0x0040
	VTBlob            VarType = 0x0041
	VTStream          VarType = 0x0042
	VTStorage         VarType = 0x0043
	VTStreamedObject  VarType = 0x0044
	VTStoredObject    VarType = 0x0045
	VTBlobObject      VarType = 0x0046
	VTCF              VarType = 0x0047
	VTCLSID           VarType = 0x0048
	VTVersionedStream VarType = 0x0049

	VTVector VarType = 0x1000
	VTArray  VarType = 0x2000

	vtBaseMask VarType = 0x0FFF
)

var typeNames = map[VarType]string{
	VTEmpty: "VT_EMPTY", VTNull: "VT_NULL", VTI2: "VT_I2", VTI4: "VT_I4", VTR4: "VT_R4",
	VTR8: "VT_R8", VTCY: "VT_CY", VTDate: "VT_DATE", VTBSTR: "VT_BSTR", VTError: "VT_ERROR",
	VTBool: "VT_BOOL", VTVariant: "VT_VARIANT", VTDecimal: "VT_DECIMAL", VTI1: "VT_I1",
	VTUI1: "VT_UI1", VTUI2: "VT_UI2", VTUI4: "VT_UI4", VTI8: "VT_I8", VTUI8: "VT_UI8",
	VTInt: "VT_INT", VTUint: "VT_UINT", VTLPSTR: "VT_LPSTR", VTLPWSTR: "VT_LPWSTR",
	VTFiletime: "VT_FILETIME", VTBlob: "VT_BLOB", VTStream: "VT_STREAM", VTStorage: "VT_STORAGE",
	VTStreamedObject: "VT_STREAMED_OBJECT", VTStoredObject: "VT_STORED_OBJECT",
	VTBlobObject: "VT_BLOB_OBJECT", VTCF: "VT_CF", VTCLSID: "VT_CLSID",
	VTVersionedStream: "VT_VERSIONED_STREAM",
}

// Base strips the vector and array modifiers.
func (t VarType) Base() VarType { return t & vtBaseMask }

// IsVector reports VT_VECTOR.
func (t VarType) IsVector() bool { return t&VTVector != 0 }

// IsArray reports VT_ARRAY.
func (t VarType) IsArray() bool { return t&VTArray != 0 }

func (t VarType) String() string {
	name, ok := typeNames[t.Base()]
	if !ok {
		name = fmt.Sprintf("0x%04X", uint16(t.Base()))
	}
	switch {
	case t.IsVector():
		return "VT_VECTOR|" + name
	case t.IsArray():
		return "VT_ARRAY|" + name
	}
	return name
}

// Value is a decoded property value. The set of implementations is closed.
type Value interface {
	Type() VarType
	String() string
	isValue()
}

type (
	Empty   struct{}
	Null    struct{}
	Int16   int16
	Int32   int32
	Float32 float32
	Float64 float64
	// Currency is a fixed-point value scaled by 10000.
	Currency int64
	// Date is an OLE automation date: days since 1899-12-30.
	Date     float64
	BSTR     string
	ErrorCode uint32
	Bool     bool
	Decimal  struct {
		Scale uint8
		Sign  uint8
		Hi32  uint32
		Lo64  uint64
	}
	Int8    int8
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Int64   int64
	Uint64  uint64
	Int     int32
	Uint    uint32
	LPSTR   string
	LPWSTR  string
	// Filetime counts 100ns intervals since 1601-01-01 UTC.
	Filetime uint64
	Blob     []byte
	// Indirect names a stream or storage holding the actual value.
	Indirect struct {
		Kind VarType
		Name string
	}
	BlobObject []byte
	// ClipboardData is VT_CF: a clipboard format tag and its data.
	ClipboardData struct {
		Format int32
		Data   []byte
	}
	CLSID uuid.UUID
	// VersionedStream is a GUID plus the name of the stream holding the data.
	VersionedStream struct {
		Version uuid.UUID
		Name    string
	}
	// Vector is a homogeneous counted sequence. Elem is VTVariant when each
	// item carries its own type tag.
	Vector struct {
		Elem  VarType
		Items []Value
	}
	// Array is a SAFEARRAY with its dimensions flattened into Items.
	Array struct {
		Elem  VarType
		Dims  []ArrayDimension
		Items []Value
	}
	// Unknown holds a type tag this decoder does not understand.
	Unknown struct {
		Tag VarType
	}
)

// ArrayDimension is one SAFEARRAY bound.
type ArrayDimension struct {
	Size        uint32
	IndexOffset int32
}

func (Empty) Type() VarType           { return VTEmpty }
func (Null) Type() VarType            { return VTNull }
func (Int16) Type() VarType           { return VTI2 }
func (Int32) Type() VarType           { return VTI4 }
func (Float32) Type() VarType         { return VTR4 }
func (Float64) Type() VarType         { return VTR8 }
func (Currency) Type() VarType        { return VTCY }
func (Date) Type() VarType            { return VTDate }
func (BSTR) Type() VarType            { return VTBSTR }
func (ErrorCode) Type() VarType       { return VTError }
func (Bool) Type() VarType            { return VTBool }
func (Decimal) Type() VarType         { return VTDecimal }
func (Int8) Type() VarType            { return VTI1 }
func (Uint8) Type() VarType           { return VTUI1 }
func (Uint16) Type() VarType          { return VTUI2 }
func (Uint32) Type() VarType          { return VTUI4 }
func (Int64) Type() VarType           { return VTI8 }
func (Uint64) Type() VarType          { return VTUI8 }
func (Int) Type() VarType             { return VTInt }
func (Uint) Type() VarType            { return VTUint }
func (LPSTR) Type() VarType           { return VTLPSTR }
func (LPWSTR) Type() VarType          { return VTLPWSTR }
func (Filetime) Type() VarType        { return VTFiletime }
func (Blob) Type() VarType            { return VTBlob }
func (v Indirect) Type() VarType      { return v.Kind }
func (BlobObject) Type() VarType      { return VTBlobObject }
func (ClipboardData) Type() VarType   { return VTCF }
func (CLSID) Type() VarType           { return VTCLSID }
func (VersionedStream) Type() VarType { return VTVersionedStream }
func (v Vector) Type() VarType        { return VTVector | v.Elem }
func (v Array) Type() VarType         { return VTArray | v.Elem }
func (v Unknown) Type() VarType       { return v.Tag }

func (Empty) isValue()           {}
func (Null) isValue()            {}
func (Int16) isValue()           {}
func (Int32) isValue()           {}
func (Float32) isValue()         {}
func (Float64) isValue()         {}
func (Currency) isValue()        {}
func (Date) isValue()            {}
func (BSTR) isValue()            {}
func (ErrorCode) isValue()       {}
func (Bool) isValue()            {}
func (Decimal) isValue()         {}
func (Int8) isValue()            {}
func (Uint8) isValue()           {}
func (Uint16) isValue()          {}
func (Uint32) isValue()          {}
func (Int64) isValue()           {}
func (Uint64) isValue()          {}
func (Int) isValue()             {}
func (Uint) isValue()            {}
func (LPSTR) isValue()           {}
func (LPWSTR) isValue()          {}
func (Filetime) isValue()        {}
func (Blob) isValue()            {}
func (Indirect) isValue()        {}
func (BlobObject) isValue()      {}
func (ClipboardData) isValue()   {}
func (CLSID) isValue()           {}
func (VersionedStream) isValue() {}
func (Vector) isValue()          {}
func (Array) isValue()           {}
func (Unknown) isValue()         {}

func (Empty) String() string       { return "" }
func (Null) String() string        { return "null" }
func (v Int16) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Int32) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Float32) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Float64) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Currency) String() string  { return fmt.Sprintf("%.4f", float64(v)/10000) }
func (v BSTR) String() string      { return string(v) }
func (v ErrorCode) String() string { return fmt.Sprintf("0x%08X", uint32(v)) }
func (v Bool) String() string      { return strconv.FormatBool(bool(v)) }
func (v Int8) String() string      { return strconv.FormatInt(int64(v), 10) }
func (v Uint8) String() string     { return strconv.FormatUint(uint64(v), 10) }
func (v Uint16) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v Uint32) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v Int64) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Uint64) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v Int) String() string       { return strconv.FormatInt(int64(v), 10) }
func (v Uint) String() string      { return strconv.FormatUint(uint64(v), 10) }
func (v LPSTR) String() string     { return string(v) }
func (v LPWSTR) String() string    { return string(v) }
func (v Blob) String() string      { return hex.EncodeToString(v) }
func (v Indirect) String() string  { return v.Name }
func (v BlobObject) String() string {
	return hex.EncodeToString(v)
}
func (v CLSID) String() string   { return uuid.UUID(v).String() }
func (v Unknown) String() string { return fmt.Sprintf("unknown type %s", v.Tag) }

func (v Date) String() string {
	return v.Time().Format(time.RFC3339)
}

// Time converts the automation date to UTC.
func (v Date) Time() time.Time {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days, frac := math.Modf(float64(v))
	return epoch.AddDate(0, 0, int(days)).Add(time.Duration(math.Abs(frac) * float64(24*time.Hour)))
}

func (v Decimal) String() string {
	// Only the low 64 bits are rendered exactly; wider mantissas fall back to float.
	var s string
	if v.Hi32 == 0 {
		s = strconv.FormatUint(v.Lo64, 10)
		if v.Scale > 0 {
			for len(s) <= int(v.Scale) {
				s = "0" + s
			}
			s = s[:len(s)-int(v.Scale)] + "." + s[len(s)-int(v.Scale):]
		}
	} else {
		f := (float64(v.Hi32)*math.Pow(2, 64) + float64(v.Lo64)) / math.Pow(10, float64(v.Scale))
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if v.Sign != 0 {
		s = "-" + s
	}
	return s
}

// filetimeEpochDelta is the number of 100ns intervals between 1601 and 1970.
const filetimeEpochDelta = 116444736000000000

// Time converts the FILETIME to UTC. Zero stays the zero time.
func (v Filetime) Time() time.Time {
	if v == 0 {
		return time.Time{}
	}
	ticks := int64(uint64(v) - filetimeEpochDelta)
	return time.Unix(0, 0).UTC().Add(time.Duration(ticks) * 100)
}

// Duration interprets the FILETIME as an elapsed interval, as edit time is stored.
func (v Filetime) Duration() time.Duration {
	return time.Duration(uint64(v)) * 100
}

func (v Filetime) String() string {
	if v == 0 {
		return "0"
	}
	if uint64(v) < filetimeEpochDelta {
		return v.Duration().String()
	}
	return v.Time().Format(time.RFC3339)
}

func (v ClipboardData) String() string {
	return fmt.Sprintf("cf %d: %s", v.Format, hex.EncodeToString(v.Data))
}

func (v VersionedStream) String() string {
	return v.Version.String() + " " + v.Name
}

func (v Vector) String() string { return joinValues(v.Items) }

func (v Array) String() string { return joinValues(v.Items) }

func joinValues(items []Value) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

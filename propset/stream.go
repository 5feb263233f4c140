// Package propset decodes OLE property set streams such as
// \x05SummaryInformation and \x05DocumentSummaryInformation.
package propset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/c360studio/semdoc/binio"
)

var (
	// ErrMalformedSection reports a section whose layout is structurally impossible.
	ErrMalformedSection = errors.New("malformed property section")
	// ErrUnknownPropertyID reports an identifier outside every documented range.
	ErrUnknownPropertyID = errors.New("unknown property identifier")
)

// Reserved property identifiers.
const (
	PIDDictionary  uint32 = 0x00000000
	PIDCodePage    uint32 = 0x00000001
	PIDLocale      uint32 = 0x80000000
	PIDBehavior    uint32 = 0x80000003
	pidNormalLimit uint32 = 0x7FFFFFFF
)

// ByteOrderMark is the only byte order value writers emit.
const ByteOrderMark = 0xFFFE

// Well-known format identifiers.
var (
	FMTIDSummaryInformation    = uuid.MustParse("F29F85E0-4FF9-1068-AB91-08002B27B3D9")
	FMTIDDocSummaryInformation = uuid.MustParse("D5CDD502-2E9C-101B-9397-08002B2CF9AE")
	FMTIDUserDefinedProperties = uuid.MustParse("D5CDD505-2E9C-101B-9397-08002B2CF9AE")
)

// Header is the PropertySetStream header.
type Header struct {
	ByteOrder uint16
	Version   uint16
	OSVersion uint16
	OSType    uint16
	CLSID     uuid.UUID
	Sections  []SectionLocation
}

// SectionLocation is one (FMTID, offset) pair from the header.
type SectionLocation struct {
	FMTID  uuid.UUID
	Offset uint32
}

// IDOffset is one entry of a section's property directory.
type IDOffset struct {
	ID     uint32
	Offset uint32
}

// Property is a decoded property: its identifier and value.
type Property struct {
	ID    uint32
	Value Value
}

// Section is one decoded property set.
type Section struct {
	FMTID     uuid.UUID
	Offset    uint32
	Size      uint32
	Directory []IDOffset
	// Properties holds normal-range values in directory order. The code page
	// and dictionary are surfaced through CodePage and Dictionary instead.
	Properties []Property
	CodePage   uint16
	Dictionary *Dictionary
}

// Get returns the value of a normal property.
func (s *Section) Get(id uint32) (Value, bool) {
	for _, p := range s.Properties {
		if p.ID == id {
			return p.Value, true
		}
	}
	return nil, false
}

// Stream is a decoded property set stream.
type Stream struct {
	Header   Header
	Sections []*Section
}

// Section returns the i-th section or nil.
func (s *Stream) Section(i int) *Section {
	if i < 0 || i >= len(s.Sections) {
		return nil
	}
	return s.Sections[i]
}

// Decode reads a whole property set stream. Each section is read through a
// view whose origin is the section offset, so in-section offsets apply as stored.
func Decode(rs io.ReadSeeker) (*Stream, error) {
	r := binio.NewReader(rs)
	if err := r.Seek(0); err != nil {
		return nil, err
	}
	h, err := decodeHeader(r)
	if err != nil {
		return nil, fmt.Errorf("property set header: %w", err)
	}

	st := &Stream{Header: h}
	for i, loc := range h.Sections {
		view := binio.NewSectionReader(rs, int64(loc.Offset), -1)
		sec, err := decodeSection(view, loc)
		if err != nil {
			return nil, fmt.Errorf("section %d (%s): %w", i, loc.FMTID, err)
		}
		st.Sections = append(st.Sections, sec)
	}
	return st, nil
}

// DecodeBytes decodes a property set stream held in memory.
func DecodeBytes(b []byte) (*Stream, error) {
	return Decode(bytes.NewReader(b))
}

// DecodeValue decodes one TypedPropertyValue from b.
func DecodeValue(b []byte) (Value, error) {
	vr := valueReader{r: binio.NewReader(bytes.NewReader(b))}
	return vr.typed()
}

func decodeHeader(r *binio.Reader) (Header, error) {
	var h Header
	var err error
	for _, dst := range []*uint16{&h.ByteOrder, &h.Version, &h.OSVersion, &h.OSType} {
		if *dst, err = r.U16(); err != nil {
			return h, err
		}
	}
	clsid, err := r.Bytes(16)
	if err != nil {
		return h, err
	}
	h.CLSID = GUIDFromBytes(clsid)

	n, err := r.U32()
	if err != nil {
		return h, err
	}
	if n > 16 {
		return h, fmt.Errorf("%w: %d sections", ErrMalformedSection, n)
	}
	h.Sections = make([]SectionLocation, n)
	for i := range h.Sections {
		fmtid, err := r.Bytes(16)
		if err != nil {
			return h, err
		}
		off, err := r.U32()
		if err != nil {
			return h, err
		}
		h.Sections[i] = SectionLocation{FMTID: GUIDFromBytes(fmtid), Offset: off}
	}
	return h, nil
}

func decodeSection(view io.ReadSeeker, loc SectionLocation) (*Section, error) {
	r := binio.NewReader(view)
	sec := &Section{FMTID: loc.FMTID, Offset: loc.Offset}

	var err error
	if sec.Size, err = r.U32(); err != nil {
		return nil, err
	}
	count, err := r.U32()
	if err != nil {
		return nil, err
	}
	if uint64(count)*8+8 > uint64(sec.Size) {
		return nil, fmt.Errorf("%w: %d properties do not fit in %d bytes", ErrMalformedSection, count, sec.Size)
	}
	sec.Directory = make([]IDOffset, count)
	for i := range sec.Directory {
		if sec.Directory[i].ID, err = r.U32(); err != nil {
			return nil, err
		}
		if sec.Directory[i].Offset, err = r.U32(); err != nil {
			return nil, err
		}
	}

	// The code page is read first: the dictionary layout depends on it.
	for _, e := range sec.Directory {
		if e.ID != PIDCodePage {
			continue
		}
		v, err := valueAt(r, e.Offset)
		if err != nil {
			return nil, fmt.Errorf("code page: %w", err)
		}
		switch cp := v.(type) {
		case Int16:
			sec.CodePage = uint16(cp)
		case Uint16:
			sec.CodePage = uint16(cp)
		default:
			return nil, fmt.Errorf("%w: code page has type %s", ErrMalformedSection, v.Type())
		}
	}

	for _, e := range sec.Directory {
		switch {
		case e.ID == PIDCodePage, e.ID == PIDLocale, e.ID == PIDBehavior:
			continue
		case e.ID == PIDDictionary:
			if loc.FMTID == FMTIDSummaryInformation || loc.FMTID == FMTIDDocSummaryInformation {
				return nil, fmt.Errorf("%w: dictionary in section %s", ErrMalformedSection, loc.FMTID)
			}
			if err := r.Seek(int64(e.Offset)); err != nil {
				return nil, err
			}
			if sec.Dictionary, err = decodeDictionary(r, sec.CodePage); err != nil {
				return nil, fmt.Errorf("dictionary: %w", err)
			}
		case e.ID <= pidNormalLimit:
			v, err := valueAt(r, e.Offset)
			if err != nil {
				return nil, fmt.Errorf("property 0x%X: %w", e.ID, err)
			}
			sec.Properties = append(sec.Properties, Property{ID: e.ID, Value: v})
		default:
			return nil, fmt.Errorf("%w: 0x%08X", ErrUnknownPropertyID, e.ID)
		}
	}
	return sec, nil
}

func valueAt(r *binio.Reader, off uint32) (Value, error) {
	if err := r.Seek(int64(off)); err != nil {
		return nil, err
	}
	return valueReader{r: r}.typed()
}

// CodePageUnicode is the code page under which dictionary names are UTF-16LE.
const CodePageUnicode = 1200

// Dictionary maps property identifiers to caller-defined names.
type Dictionary struct {
	Entries []DictionaryEntry
}

// DictionaryEntry is one (identifier, name) pair.
type DictionaryEntry struct {
	ID   uint32
	Name string
}

// Name returns the name bound to id.
func (d *Dictionary) Name(id uint32) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, e := range d.Entries {
		if e.ID == id {
			return e.Name, true
		}
	}
	return "", false
}

// Sorted returns entries ordered by identifier.
func (d *Dictionary) Sorted() []DictionaryEntry {
	out := append([]DictionaryEntry(nil), d.Entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// decodeDictionary reads NumEntries then (id, length, name) triples. Names are
// counted in bytes, except under code page 1200 where they are counted in
// UTF-16 units and each entry is padded to 4 bytes.
func decodeDictionary(r *binio.Reader, codePage uint16) (*Dictionary, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	if n > maxElements {
		return nil, fmt.Errorf("%w: dictionary of %d entries", ErrMalformedSection, n)
	}
	d := &Dictionary{Entries: make([]DictionaryEntry, n)}
	vr := valueReader{r: r}
	for i := range d.Entries {
		id, err := r.U32()
		if err != nil {
			return nil, err
		}
		length, err := r.U32()
		if err != nil {
			return nil, err
		}
		if length > 0xFFFF {
			return nil, fmt.Errorf("%w: dictionary name of %d units", ErrMalformedSection, length)
		}
		var name string
		if codePage == CodePageUnicode {
			b, err := r.Bytes(int(length) * 2)
			if err != nil {
				return nil, err
			}
			name = trimNul(binio.DecodeUTF16LE(b))
			if err := vr.align(); err != nil {
				return nil, err
			}
		} else {
			b, err := r.Bytes(int(length))
			if err != nil {
				return nil, err
			}
			name = decodeNarrow(b)
		}
		d.Entries[i] = DictionaryEntry{ID: id, Name: name}
	}
	return d, nil
}

func trimNul(s string) string {
	for i, c := range s {
		if c == 0 {
			return s[:i]
		}
	}
	return s
}

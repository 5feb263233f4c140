package propset

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// Stream names inside the compound file.
const (
	SummaryInformationStream    = "\x05SummaryInformation"
	DocSummaryInformationStream = "\x05DocumentSummaryInformation"
)

// summaryNames maps SummaryInformation identifiers to field names.
var summaryNames = map[uint32]string{
	0x02: "title",
	0x03: "subject",
	0x04: "author",
	0x05: "keywords",
	0x06: "comments",
	0x07: "template",
	0x08: "lastAuthor",
	0x09: "revNumber",
	0x0A: "editTime",
	0x0B: "lastPrinted",
	0x0C: "created",
	0x0D: "lastSaved",
	0x0E: "pageCount",
	0x0F: "wordCount",
	0x10: "charCount",
	0x11: "thumbnail",
	0x12: "appName",
	0x13: "security",
}

// docSummaryNames maps DocumentSummaryInformation identifiers to field names.
var docSummaryNames = map[uint32]string{
	0x02: "category",
	0x03: "presentationFormat",
	0x04: "byteCount",
	0x05: "lineCount",
	0x06: "paragraphCount",
	0x07: "slideCount",
	0x08: "noteCount",
	0x09: "hiddenCount",
	0x0A: "mmClipCount",
	0x0B: "scale",
	0x0C: "headingPairs",
	0x0D: "docParts",
	0x0E: "manager",
	0x0F: "company",
	0x10: "linksDirty",
	0x11: "charsWithSpaces",
	0x13: "sharedDoc",
	0x14: "linkBase",
	0x15: "hyperlinks",
	0x16: "hyperlinksChanged",
	0x17: "version",
	0x18: "digitalSignature",
	0x1A: "contentType",
	0x1B: "contentStatus",
	0x1C: "language",
	0x1D: "docVersion",
}

// SummaryFields returns the standard summary field names in identifier order.
func SummaryFields() []string { return fieldNames(summaryNames) }

// DocSummaryFields returns the document summary field names in identifier order.
func DocSummaryFields() []string { return fieldNames(docSummaryNames) }

func fieldNames(names map[uint32]string) []string {
	ids := slices.Sorted(maps.Keys(names))
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = names[id]
	}
	return out
}

// NamedProperty is a property with a resolved name.
type NamedProperty struct {
	ID    uint32
	Name  string
	Value Value
	// Known is false when the identifier has no standard name.
	Known bool
}

func nameProperties(sec *Section, names map[uint32]string) []NamedProperty {
	if sec == nil {
		return nil
	}
	out := make([]NamedProperty, 0, len(sec.Properties))
	for _, p := range sec.Properties {
		name, ok := names[p.ID]
		if !ok {
			name = fmt.Sprintf("property0x%X", p.ID)
		}
		out = append(out, NamedProperty{ID: p.ID, Name: name, Value: p.Value, Known: ok})
	}
	return out
}

func lookup(props []NamedProperty, name string) (Value, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// SummaryInformation is the decoded \x05SummaryInformation stream.
type SummaryInformation struct {
	Stream     *Stream
	CodePage   uint16
	Properties []NamedProperty
}

// Get returns a property by field name, such as "title" or "wordCount".
func (s *SummaryInformation) Get(name string) (Value, bool) {
	return lookup(s.Properties, name)
}

// Title returns the title or "".
func (s *SummaryInformation) Title() string { return stringOf(s.Get("title")) }

// Author returns the author or "".
func (s *SummaryInformation) Author() string { return stringOf(s.Get("author")) }

// DecodeSummaryInformation decodes the standard summary stream.
func DecodeSummaryInformation(rs io.ReadSeeker) (*SummaryInformation, error) {
	st, err := Decode(rs)
	if err != nil {
		return nil, err
	}
	sec := st.Section(0)
	if sec == nil {
		return nil, fmt.Errorf("%w: no sections", ErrMalformedSection)
	}
	return &SummaryInformation{
		Stream:     st,
		CodePage:   sec.CodePage,
		Properties: nameProperties(sec, summaryNames),
	}, nil
}

// DocumentSummaryInformation is the decoded \x05DocumentSummaryInformation
// stream. Section 1, when present, holds user-defined properties named by its
// dictionary.
type DocumentSummaryInformation struct {
	Stream     *Stream
	CodePage   uint16
	Properties []NamedProperty
	Custom     []NamedProperty
}

// Get returns a property by field name, such as "company".
func (d *DocumentSummaryInformation) Get(name string) (Value, bool) {
	return lookup(d.Properties, name)
}

// CustomValue returns a user-defined property by its dictionary name.
func (d *DocumentSummaryInformation) CustomValue(name string) (Value, bool) {
	return lookup(d.Custom, name)
}

// DecodeDocumentSummaryInformation decodes the extended summary stream and
// its custom properties.
func DecodeDocumentSummaryInformation(rs io.ReadSeeker) (*DocumentSummaryInformation, error) {
	st, err := Decode(rs)
	if err != nil {
		return nil, err
	}
	sec := st.Section(0)
	if sec == nil {
		return nil, fmt.Errorf("%w: no sections", ErrMalformedSection)
	}
	d := &DocumentSummaryInformation{
		Stream:     st,
		CodePage:   sec.CodePage,
		Properties: nameProperties(sec, docSummaryNames),
	}
	if custom := st.Section(1); custom != nil {
		d.Custom = customProperties(custom)
	}
	return d, nil
}

// customProperties names each value of the user-defined section through the
// section's dictionary, matching by identifier. Values without a dictionary
// entry keep a hex name.
func customProperties(sec *Section) []NamedProperty {
	out := make([]NamedProperty, 0, len(sec.Properties))
	for _, p := range sec.Properties {
		name, ok := sec.Dictionary.Name(p.ID)
		if !ok {
			name = fmt.Sprintf("property0x%X", p.ID)
		}
		out = append(out, NamedProperty{ID: p.ID, Name: name, Value: p.Value, Known: ok})
	}
	return out
}

func stringOf(v Value, ok bool) string {
	if !ok {
		return ""
	}
	return v.String()
}

package word

import "fmt"

// DirectoryEntry is one (offset, length) pair of the FIB, tagged with the
// structure it locates in the table stream.
type DirectoryEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Offset      int32  `json:"fc"`
	Length      uint32 `json:"lcb"`
	// FieldOffset is where the pair itself sits in WordDocument.
	FieldOffset int64 `json:"fieldOffset"`
}

// Present reports whether the entry locates any bytes.
// A zero length means absent, regardless of the offset.
func (e DirectoryEntry) Present() bool { return e.Length > 0 }

// Range returns the located byte range.
func (e DirectoryEntry) Range() (ByteRange, bool) {
	if !e.Present() {
		return ByteRange{}, false
	}
	return ByteRange{Offset: int64(e.Offset), Length: int64(e.Length)}, true
}

// ByteRange is a half-open span [Offset, Offset+Length) within a stream.
type ByteRange struct {
	Offset int64
	Length int64
}

// End returns the exclusive end offset.
func (r ByteRange) End() int64 { return r.Offset + r.Length }

// Within reports ErrMalformedLayout when the range leaves a stream of size n.
func (r ByteRange) Within(n int64) error {
	if r.Offset < 0 || r.Length < 0 || r.End() > n {
		return fmt.Errorf("%w: range [%d,%d) outside stream of %d bytes", ErrMalformedLayout, r.Offset, r.End(), n)
	}
	return nil
}

// Directory is the ordered list of FIB pairs with lookup by name.
// Entries introduced by later revisions are simply missing from older files;
// both cases read as absent through Range.
type Directory struct {
	Entries []DirectoryEntry `json:"entries"`
	index   map[string]int
}

// NewDirectory indexes entries by name.
func NewDirectory(entries []DirectoryEntry) Directory {
	d := Directory{Entries: entries, index: make(map[string]int, len(entries))}
	for i, e := range entries {
		d.index[e.Name] = i
	}
	return d
}

// Entry returns the entry with the given name if the file declares it.
func (d Directory) Entry(name string) (DirectoryEntry, bool) {
	i, ok := d.index[name]
	if !ok {
		return DirectoryEntry{}, false
	}
	return d.Entries[i], true
}

// Range returns the byte range of a named entry; false when undeclared or zero length.
func (d Directory) Range(name string) (ByteRange, bool) {
	e, ok := d.Entry(name)
	if !ok {
		return ByteRange{}, false
	}
	return e.Range()
}

// Present returns the entries that locate at least one byte.
func (d Directory) Present() []DirectoryEntry {
	var out []DirectoryEntry
	for _, e := range d.Entries {
		if e.Present() {
			out = append(out, e)
		}
	}
	return out
}

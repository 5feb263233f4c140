package word

import (
	"fmt"

	"github.com/c360studio/semdoc/structure"
)

// pairsOffset is where the first FibRgFcLcb pair sits in WordDocument.
func (f *Fib) pairsOffset() int64 {
	return offsetCsw + 2 + 2*int64(f.Csw) + 2 + 4*int64(f.Cslw) + 2
}

// fibSegment is a named slice of the FIB.
type fibSegment struct {
	name  string
	desc  string
	start int64
	end   int64
}

// fibSegments splits the FIB by format revision so that a file written by a
// newer application shows its extension blocks as separate ranges.
func (f *Fib) fibSegments() []fibSegment {
	pairs := f.pairsOffset()
	segs := []fibSegment{{
		name:  "Fib Base",
		desc:  "FibBase, FibRgW97, FibRgLw97 and cbRgFcLcb",
		start: 0,
		end:   pairs,
	}}

	blocks := []struct {
		name  string
		count int
	}{
		{"Fib RgFcLcb97", len(pairs97)},
		{"Fib RgFcLcb2000", len(pairs2000)},
		{"Fib RgFcLcb2002", len(pairs2002)},
		{"Fib RgFcLcb2003", len(pairs2003)},
		{"Fib RgFcLcb2007", len(pairs2007)},
	}
	declared := int(f.CbRgFcLcb)
	first := 0
	for _, b := range blocks {
		if first >= declared {
			break
		}
		last := min(first+b.count, declared)
		segs = append(segs, fibSegment{
			name:  b.name,
			desc:  fmt.Sprintf("pairs %s through %s", pairTable[first].name, pairTable[last-1].name),
			start: pairs + int64(first)*8,
			end:   pairs + int64(last)*8,
		})
		first = last
	}
	if declared > first {
		segs = append(segs, fibSegment{
			name:  "Fib RgFcLcbExtra",
			desc:  fmt.Sprintf("%d undocumented pairs", declared-first),
			start: pairs + int64(first)*8,
			end:   pairs + int64(declared)*8,
		})
	}
	pairsEnd := pairs + int64(declared)*8
	if f.Size > pairsEnd {
		segs = append(segs, fibSegment{
			name:  "Fib RgCswNew",
			desc:  "cswNew and FibRgCswNew",
			start: pairsEnd,
			end:   f.Size,
		})
	}
	return segs
}

// PhysicalStructures returns verbatim byte ranges: the FIB split by revision,
// the main text span and every present table stream entry. Ranges that fall
// outside their stream are clamped and noted in the description.
func (d *Document) PhysicalStructures() ([]structure.Physical, error) {
	word, err := d.openStream(WordDocumentStream)
	if err != nil {
		return nil, fmt.Errorf("reopen %s: %w", WordDocumentStream, err)
	}
	table, err := d.openStream(d.TableStream)
	if err != nil {
		return nil, fmt.Errorf("reopen %s: %w", d.TableStream, err)
	}

	var out []structure.Physical
	for _, s := range d.Fib.fibSegments() {
		out = append(out, slice(WordDocumentStream, s.name, s.desc, word, s.start, s.end))
	}

	if fcMin, fcMac := int64(d.Fib.FcMin), int64(d.Fib.FcMac); fcMin >= 0 && fcMac > fcMin {
		out = append(out, slice(WordDocumentStream, "Main Text", "fcMin to fcMac", word, fcMin, fcMac))
	}

	for _, e := range d.Fib.Directory.Present() {
		r, _ := e.Range()
		out = append(out, slice(d.TableStream, "Table "+e.Name, e.Description, table, r.Offset, r.End()))
	}
	return out, nil
}

func slice(stream, name, desc string, data []byte, start, end int64) structure.Physical {
	n := int64(len(data))
	cs, ce := max(start, 0), min(end, n)
	if cs > ce {
		cs = ce
	}
	if cs != start || ce != end {
		desc = fmt.Sprintf("%s (clamped from [%d,%d) to stream of %d bytes)", desc, start, end, n)
	}
	return structure.Physical{
		Stream:      stream,
		Name:        name,
		Start:       cs,
		End:         ce,
		Description: desc,
		Bytes:       data[cs:ce],
	}
}

// Package diff compares two decoded documents: byte ranges nibble by nibble
// and field trees item by item.
package diff

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/semdoc/structure"
)

// Range is a half-open span [Start, End) of nibble indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of nibbles covered.
func (r Range) Len() int { return r.End - r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// MarshalJSON writes the range as a two-element array.
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Start, r.End})
}

// UnmarshalJSON reads a two-element array.
func (r *Range) UnmarshalJSON(b []byte) error {
	var pair [2]int
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	r.Start, r.End = pair[0], pair[1]
	return nil
}

// MarshalYAML writes the range as a flow sequence.
func (r Range) MarshalYAML() (any, error) {
	return []int{r.Start, r.End}, nil
}

// Nibbles splits both inputs into 4-bit nibbles, high nibble first, and
// returns every maximal run of unequal nibbles over the common length. When
// the lengths differ the excess of the longer input is one final range.
func Nibbles(a, b []byte) []Range {
	common := min(len(a), len(b)) * 2
	var out []Range
	start := -1
	for i := 0; i < common; i++ {
		if nibble(a, i) != nibble(b, i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, Range{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Range{Start: start, End: common})
	}
	if longest := max(len(a), len(b)) * 2; longest > common {
		out = append(out, Range{Start: common, End: longest})
	}
	return out
}

func nibble(b []byte, i int) byte {
	v := b[i/2]
	if i%2 == 0 {
		return v >> 4
	}
	return v & 0x0F
}

// PhysicalComparison pairs two equal-purpose byte ranges with their differences.
// One side is nil when only one document has a range of that name.
type PhysicalComparison struct {
	Name        string              `json:"name" yaml:"name"`
	Reference   *structure.Physical `json:"ref_structure" yaml:"ref_structure"`
	Compared    *structure.Physical `json:"comp_structure" yaml:"comp_structure"`
	Differences []Range             `json:"difference_indices" yaml:"difference_indices"`
}

// Side reports which documents hold the range.
func (c PhysicalComparison) Side() Side { return sideOf(c.Reference != nil, c.Compared != nil) }

// Changed reports whether any nibble differs.
func (c PhysicalComparison) Changed() bool { return len(c.Differences) > 0 }

// ComparePhysical aligns ranges by name and diffs each matched pair. A range
// present on one side only is diffed against nothing, so its whole length is
// one difference.
func ComparePhysical(ref, comp []structure.Physical) []PhysicalComparison {
	out := make([]PhysicalComparison, 0, max(len(ref), len(comp)))
	used := make([]bool, len(comp))
	for i := range ref {
		r := &ref[i]
		c := PhysicalComparison{Name: r.Name, Reference: r}
		if j := firstUnused(comp, used, r.Name, physicalName); j >= 0 {
			used[j] = true
			c.Compared = &comp[j]
			c.Differences = Nibbles(r.Bytes, comp[j].Bytes)
		} else {
			c.Differences = Nibbles(r.Bytes, nil)
		}
		out = append(out, c)
	}
	for j := range comp {
		if used[j] {
			continue
		}
		out = append(out, PhysicalComparison{
			Name:        comp[j].Name,
			Compared:    &comp[j],
			Differences: Nibbles(nil, comp[j].Bytes),
		})
	}
	return out
}

func physicalName(p structure.Physical) string { return p.Name }

func firstUnused[T any](items []T, used []bool, name string, nameOf func(T) string) int {
	for j, it := range items {
		if !used[j] && nameOf(it) == name {
			return j
		}
	}
	return -1
}

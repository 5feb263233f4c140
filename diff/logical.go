package diff

import (
	"fmt"

	"github.com/c360studio/semdoc/structure"
)

// Side says which documents hold a structure.
type Side string

const (
	SideBoth          Side = "both"
	SideReferenceOnly Side = "reference_only"
	SideComparedOnly  Side = "compared_only"
)

func sideOf(ref, comp bool) Side {
	switch {
	case ref && comp:
		return SideBoth
	case ref:
		return SideReferenceOnly
	default:
		return SideComparedOnly
	}
}

// MismatchError reports two structures that cannot be compared item by item:
// their field lists differ in name or length. It signals a projection bug,
// not a data difference.
type MismatchError struct {
	Structure string
	Index     int
	Reference string
	Compared  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("structure %q: item %d is %q in the reference but %q in the comparison",
		e.Structure, e.Index, e.Reference, e.Compared)
}

// LogicalComparison is the diff of two field trees. Differences holds one
// flag per item position; true means the values differ. One side is nil when
// the structure exists in only one document, in which case every flag is false.
type LogicalComparison struct {
	Name          string               `json:"name" yaml:"name"`
	Reference     *structure.Structure `json:"ref_structure" yaml:"ref_structure"`
	Compared      *structure.Structure `json:"comp_structure" yaml:"comp_structure"`
	Differences   []bool               `json:"structure_differences" yaml:"structure_differences"`
	Substructures []LogicalComparison  `json:"substructure_differences" yaml:"substructure_differences"`
}

// Side reports which documents hold the structure.
func (c LogicalComparison) Side() Side { return sideOf(c.Reference != nil, c.Compared != nil) }

// ChangedItems counts differing items in this structure and below.
func (c LogicalComparison) ChangedItems() int {
	n := 0
	for _, d := range c.Differences {
		if d {
			n++
		}
	}
	for _, sub := range c.Substructures {
		n += sub.ChangedItems()
	}
	return n
}

// OneSided counts structures at or below c present in only one document.
func (c LogicalComparison) OneSided() int {
	n := 0
	if c.Side() != SideBoth {
		n++
	}
	for _, sub := range c.Substructures {
		n += sub.OneSided()
	}
	return n
}

// Items flags each item position whose value differs. Both lists must name
// the same fields in the same order.
func Items(name string, ref, comp []structure.Item) ([]bool, error) {
	n := max(len(ref), len(comp))
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		if i >= len(ref) || i >= len(comp) {
			return nil, &MismatchError{Structure: name, Index: i, Reference: itemName(ref, i), Compared: itemName(comp, i)}
		}
		if ref[i].Name != comp[i].Name {
			return nil, &MismatchError{Structure: name, Index: i, Reference: ref[i].Name, Compared: comp[i].Name}
		}
		out[i] = ref[i].Value != comp[i].Value
	}
	return out, nil
}

func itemName(items []structure.Item, i int) string {
	if i < len(items) {
		return items[i].Name
	}
	return "<missing>"
}

// CompareStructure diffs two structures that share a name, recursing into
// substructures aligned by name.
func CompareStructure(ref, comp *structure.Structure) (LogicalComparison, error) {
	if ref.Name != comp.Name {
		return LogicalComparison{}, &MismatchError{Structure: ref.Name, Index: -1, Reference: ref.Name, Compared: comp.Name}
	}
	flags, err := Items(ref.Name, ref.Items, comp.Items)
	if err != nil {
		return LogicalComparison{}, err
	}
	subs, err := CompareLogical(ref.Substructures, comp.Substructures)
	if err != nil {
		return LogicalComparison{}, fmt.Errorf("%s: %w", ref.Name, err)
	}
	return LogicalComparison{
		Name:          ref.Name,
		Reference:     ref,
		Compared:      comp,
		Differences:   flags,
		Substructures: subs,
	}, nil
}

// CompareLogical aligns two structure lists by name. Each reference entry is
// matched with the first unused comparison entry of the same name; entries
// left unmatched on either side become one-sided comparisons. Reference
// order is kept and comparison-only entries follow it.
func CompareLogical(ref, comp []structure.Structure) ([]LogicalComparison, error) {
	pairs := align(ref, comp)
	out := make([]LogicalComparison, 0, len(pairs))
	for _, p := range pairs {
		if p.ref == nil || p.comp == nil {
			out = append(out, oneSided(p.ref, p.comp))
			continue
		}
		c, err := CompareStructure(p.ref, p.comp)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type structurePair struct {
	ref  *structure.Structure
	comp *structure.Structure
}

func align(ref, comp []structure.Structure) []structurePair {
	out := make([]structurePair, 0, max(len(ref), len(comp)))
	used := make([]bool, len(comp))
	for i := range ref {
		p := structurePair{ref: &ref[i]}
		if j := firstUnused(comp, used, ref[i].Name, structureName); j >= 0 {
			used[j] = true
			p.comp = &comp[j]
		}
		out = append(out, p)
	}
	for j := range comp {
		if !used[j] {
			out = append(out, structurePair{comp: &comp[j]})
		}
	}
	return out
}

func structureName(s structure.Structure) string { return s.Name }

func oneSided(ref, comp *structure.Structure) LogicalComparison {
	s := ref
	if s == nil {
		s = comp
	}
	return LogicalComparison{
		Name:        s.Name,
		Reference:   ref,
		Compared:    comp,
		Differences: make([]bool, len(s.Items)),
	}
}

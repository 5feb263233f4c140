package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/c360studio/semdoc/archive"
	"github.com/c360studio/semdoc/container"
	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/structure"
)

func writeText(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch v := v.(type) {
	case []structure.Structure:
		for _, s := range v {
			textStructure(tw, s, 0)
		}
	case structure.Structure:
		textStructure(tw, v, 0)
	case []structure.Physical:
		textPhysical(tw, v)
	case []container.Entry:
		textWalk(tw, v)
	case *diff.Report:
		textReport(tw, v)
	case []archive.Entry:
		textHistory(tw, v)
	default:
		return fmt.Errorf("%w: text cannot render %T", ErrUnsupportedFormat, v)
	}
	return tw.Flush()
}

func textStructure(w io.Writer, s structure.Structure, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s\n", indent, s.Name)
	for _, it := range s.Items {
		if it.Description != "" {
			fmt.Fprintf(w, "%s  %s\t%s\t%s\n", indent, it.Name, it.Value, it.Description)
		} else {
			fmt.Fprintf(w, "%s  %s\t%s\t\n", indent, it.Name, it.Value)
		}
	}
	for _, sub := range s.Substructures {
		textStructure(w, sub, depth+1)
	}
}

func textPhysical(w io.Writer, ps []structure.Physical) {
	fmt.Fprintln(w, "STREAM\tSTRUCTURE\tSTART\tEND\tLENGTH\tDESCRIPTION")
	for _, p := range ps {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", p.Stream, p.Name, p.Start, p.End, p.Len(), p.Description)
	}
}

func textWalk(w io.Writer, entries []container.Entry) {
	fmt.Fprintln(w, "KIND\tSIZE\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%q\n", e.Kind(), e.Size, e.Path)
	}
}

func textHistory(w io.Writer, entries []archive.Entry) {
	fmt.Fprintln(w, "ID\tCREATED\tREFERENCE\tCOMPARED\tCHANGED ITEMS\tIDENTICAL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\n", e.ID, e.CreatedAt.Format(time.RFC3339),
			e.Reference, e.Compared, e.Summary.ChangedItems, e.Summary.Identical())
	}
}

func textReport(w io.Writer, r *diff.Report) {
	fmt.Fprintf(w, "report %s\n", r.ID)
	fmt.Fprintf(w, "reference\t%s\n", r.Reference)
	fmt.Fprintf(w, "compared\t%s\n", r.Compared)
	s := r.Summary
	if s.Identical() {
		fmt.Fprintln(w, "no differences")
		return
	}
	fmt.Fprintf(w, "changed items\t%d\n", s.ChangedItems)
	fmt.Fprintf(w, "one-sided structures\t%d\n", s.OneSidedStructure)
	fmt.Fprintf(w, "changed byte ranges\t%d (%d nibbles)\n", s.PhysicalChanged, s.ChangedNibbles)

	if len(r.Logical) > 0 {
		fmt.Fprintln(w, "\nLOGICAL")
	}
	for _, c := range r.Logical {
		textLogical(w, c, 0)
	}

	if s.PhysicalChanged > 0 {
		fmt.Fprintln(w, "\nPHYSICAL")
	}
	for _, p := range r.Physical {
		if !p.Changed() {
			continue
		}
		ranges := make([]string, len(p.Differences))
		for i, d := range p.Differences {
			ranges[i] = d.String()
		}
		fmt.Fprintf(w, "%s%s\t%s\n", sideMark(p.Side()), p.Name, strings.Join(ranges, " "))
	}
}

// textLogical prints only what changed: differing items and one-sided structures.
func textLogical(w io.Writer, c diff.LogicalComparison, depth int) {
	if c.ChangedItems() == 0 && c.OneSided() == 0 {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s%s\n", indent, sideMark(c.Side()), c.Name)
	if c.Side() != diff.SideBoth {
		return
	}
	for i, changed := range c.Differences {
		if !changed {
			continue
		}
		ref, comp := c.Reference.Items[i], c.Compared.Items[i]
		fmt.Fprintf(w, "%s  %s\t%s\t-> %s\n", indent, ref.Name, ref.Value, comp.Value)
	}
	for _, sub := range c.Substructures {
		textLogical(w, sub, depth+1)
	}
}

func sideMark(s diff.Side) string {
	switch s {
	case diff.SideReferenceOnly:
		return "- "
	case diff.SideComparedOnly:
		return "+ "
	default:
		return ""
	}
}

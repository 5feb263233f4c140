package render

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/c360studio/semdoc/archive"
	"github.com/c360studio/semdoc/container"
	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/structure"
)

const pageStyle = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse;margin-bottom:1em}
td,th{border:1px solid #ccc;padding:2px 6px;text-align:left;font-family:monospace}
tr.changed td{background:#fde2e2}
section.reference_only>h3{color:#a00}
section.compared_only>h3{color:#070}
section{margin-left:1em}`

// writeHTML builds the page as a node tree so every value is escaped by the renderer.
func writeHTML(w io.Writer, v any) error {
	var title string
	var body []*html.Node
	switch v := v.(type) {
	case []structure.Structure:
		title = "Logical structures"
		for _, s := range v {
			body = append(body, htmlStructure(s, 2))
		}
	case structure.Structure:
		title = v.Name
		body = append(body, htmlStructure(v, 2))
	case []structure.Physical:
		title = "Physical structures"
		body = append(body, htmlPhysical(v))
	case []container.Entry:
		title = "Container entries"
		body = append(body, htmlWalk(v))
	case *diff.Report:
		title = fmt.Sprintf("Comparison %s", v.ID)
		body = htmlReport(v)
	case []archive.Entry:
		title = "Comparison history"
		body = append(body, htmlHistory(v))
	default:
		return fmt.Errorf("%w: html cannot render %T", ErrUnsupportedFormat, v)
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(withText(element(atom.Style), pageStyle))
	root.AppendChild(head)

	b := element(atom.Body)
	b.AppendChild(withText(element(atom.H1), title))
	for _, n := range body {
		b.AppendChild(n)
	}
	root.AppendChild(b)
	return html.Render(w, doc)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}

func heading(level int) atom.Atom {
	switch level {
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	default:
		return atom.H6
	}
}

func table(header ...string) *html.Node {
	t := element(atom.Table)
	tr := element(atom.Tr)
	for _, h := range header {
		tr.AppendChild(withText(element(atom.Th), h))
	}
	t.AppendChild(tr)
	return t
}

func row(t *html.Node, class string, cells ...string) {
	tr := element(atom.Tr)
	if class != "" {
		tr.Attr = append(tr.Attr, attr("class", class))
	}
	for _, c := range cells {
		tr.AppendChild(withText(element(atom.Td), c))
	}
	t.AppendChild(tr)
}

func htmlStructure(s structure.Structure, level int) *html.Node {
	sec := element(atom.Section)
	sec.AppendChild(withText(element(heading(level)), s.Name))
	if len(s.Items) > 0 {
		t := table("Field", "Value", "Description")
		for _, it := range s.Items {
			row(t, "", it.Name, it.Value, it.Description)
		}
		sec.AppendChild(t)
	}
	for _, sub := range s.Substructures {
		sec.AppendChild(htmlStructure(sub, level+1))
	}
	return sec
}

func htmlPhysical(ps []structure.Physical) *html.Node {
	t := table("Stream", "Structure", "Start", "End", "Length", "Description")
	for _, p := range ps {
		row(t, "", p.Stream, p.Name,
			fmt.Sprint(p.Start), fmt.Sprint(p.End), fmt.Sprint(p.Len()), p.Description)
	}
	return t
}

func htmlWalk(entries []container.Entry) *html.Node {
	t := table("Kind", "Size", "Path")
	for _, e := range entries {
		row(t, "", e.Kind(), fmt.Sprint(e.Size), e.Path)
	}
	return t
}

func htmlHistory(entries []archive.Entry) *html.Node {
	t := table("ID", "Created", "Reference", "Compared", "Changed items")
	for _, e := range entries {
		class := ""
		if !e.Summary.Identical() {
			class = "changed"
		}
		row(t, class, e.ID.String(), e.CreatedAt.Format(time.RFC3339),
			e.Reference, e.Compared, fmt.Sprint(e.Summary.ChangedItems))
	}
	return t
}

func htmlReport(r *diff.Report) []*html.Node {
	s := r.Summary
	summary := table("Reference", "Compared", "Changed items", "One-sided structures", "Changed ranges")
	row(summary, "", r.Reference, r.Compared,
		fmt.Sprint(s.ChangedItems), fmt.Sprint(s.OneSidedStructure), fmt.Sprint(s.PhysicalChanged))
	out := []*html.Node{summary}

	logical := element(atom.Section)
	logical.AppendChild(withText(element(atom.H2), "Logical"))
	for _, c := range r.Logical {
		logical.AppendChild(htmlComparison(c, 3))
	}
	out = append(out, logical)

	if len(r.Physical) > 0 {
		physical := element(atom.Section)
		physical.AppendChild(withText(element(atom.H2), "Physical"))
		t := table("Structure", "Side", "Differing nibble ranges")
		for _, p := range r.Physical {
			class := ""
			if p.Changed() {
				class = "changed"
			}
			row(t, class, p.Name, string(p.Side()), fmt.Sprint(p.Differences))
		}
		physical.AppendChild(t)
		out = append(out, physical)
	}
	return out
}

func htmlComparison(c diff.LogicalComparison, level int) *html.Node {
	sec := element(atom.Section, attr("class", string(c.Side())))
	sec.AppendChild(withText(element(heading(level)), c.Name))

	src := c.Reference
	if src == nil {
		src = c.Compared
	}
	if len(src.Items) > 0 {
		t := table("Field", "Reference", "Compared")
		for i, it := range src.Items {
			refVal, compVal := "", ""
			if c.Reference != nil {
				refVal = c.Reference.Items[i].Value
			}
			if c.Compared != nil {
				compVal = c.Compared.Items[i].Value
			}
			class := ""
			if i < len(c.Differences) && c.Differences[i] {
				class = "changed"
			}
			row(t, class, it.Name, refVal, compVal)
		}
		sec.AppendChild(t)
	}
	for _, sub := range c.Substructures {
		sec.AppendChild(htmlComparison(sub, level+1))
	}
	return sec
}

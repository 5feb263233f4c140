package word

import (
	"fmt"
	"strings"

	"github.com/c360studio/semdoc/propset"
	"github.com/c360studio/semdoc/structure"
)

// LogicalStructures projects every decoded structure into a named field
// tree. Structures that are absent or failed are left out; the diff engine
// aligns top-level structures by name.
func (d *Document) LogicalStructures() []structure.Structure {
	var out []structure.Structure
	if d.Fib != nil {
		out = append(out, ProjectFib(d.Fib))
	}
	if d.StyleSheet != nil {
		out = append(out, ProjectStyleSheet(d.StyleSheet))
	}
	if d.PieceTable != nil {
		out = append(out, ProjectPieceTable(d.PieceTable))
	}
	if d.ListTable != nil {
		out = append(out, ProjectListTable(d.ListTable))
	}
	if d.Summary != nil {
		out = append(out, ProjectSummary(d.Summary))
	}
	if d.DocSummary != nil {
		out = append(out, ProjectDocSummary(d.DocSummary))
	}
	return out
}

// ProjectFib renders the FIB scalars as items and each declared pair as a
// substructure, so files of different revisions still align.
func ProjectFib(f *Fib) structure.Structure {
	s := structure.New(StructFib)
	s.AddHex("wIdent", uint64(f.WIdent), scalarDescriptions["wIdent"])
	s.AddHex("nFib", uint64(f.NFib), scalarDescriptions["nFib"])
	s.Add("lid", f.Lid, scalarDescriptions["lid"])
	s.Add("pnNext", f.PnNext, scalarDescriptions["pnNext"])
	s.Add("fDot", f.Dot, scalarDescriptions["fDot"])
	s.Add("fGlsy", f.Glsy, scalarDescriptions["fGlsy"])
	s.Add("fComplex", f.Complex, scalarDescriptions["fComplex"])
	s.Add("fHasPic", f.HasPic, scalarDescriptions["fHasPic"])
	s.Add("cQuickSaves", f.QuickSaves, scalarDescriptions["cQuickSaves"])
	s.Add("fEncrypted", f.Encrypted, scalarDescriptions["fEncrypted"])
	s.Add("fWhichTblStm", f.WhichTblStm, scalarDescriptions["fWhichTblStm"])
	s.Add("fReadOnlyRecommended", f.ReadOnlyRecommended, scalarDescriptions["fReadOnlyRecommended"])
	s.Add("fWriteReservation", f.WriteReservation, scalarDescriptions["fWriteReservation"])
	s.Add("fExtChar", f.ExtChar, scalarDescriptions["fExtChar"])
	s.Add("fLoadOverride", f.LoadOverride, scalarDescriptions["fLoadOverride"])
	s.Add("fFarEast", f.FarEast, scalarDescriptions["fFarEast"])
	s.Add("fObfuscated", f.Obfuscated, scalarDescriptions["fObfuscated"])
	s.AddHex("nFibBack", uint64(f.NFibBack), scalarDescriptions["nFibBack"])
	s.AddHex("lKey", uint64(f.LKey), scalarDescriptions["lKey"])
	s.Add("envr", f.Envr, scalarDescriptions["envr"])
	s.Add("fMac", f.Mac, scalarDescriptions["fMac"])
	s.Add("fEmptySpecial", f.EmptySpecial, scalarDescriptions["fEmptySpecial"])
	s.Add("fLoadOverridePage", f.LoadOverridePage, scalarDescriptions["fLoadOverridePage"])
	s.Add("fcMin", f.FcMin, scalarDescriptions["fcMin"])
	s.Add("fcMac", f.FcMac, scalarDescriptions["fcMac"])
	s.Add("csw", f.Csw, scalarDescriptions["csw"])
	s.Add("rgW", joinInts(f.RgW), scalarDescriptions["rgW"])
	s.AddHex("lidFE", uint64(f.LidFE), scalarDescriptions["lidFE"])
	s.Add("cslw", f.Cslw, scalarDescriptions["cslw"])
	s.Add("rgLw", joinInts(f.RgLw), scalarDescriptions["rgLw"])
	s.Add("cbMac", f.CbMac, scalarDescriptions["cbMac"])
	s.Add("ccpText", f.CcpText, scalarDescriptions["ccpText"])
	s.Add("ccpFtn", f.CcpFtn, scalarDescriptions["ccpFtn"])
	s.Add("ccpHdd", f.CcpHdd, scalarDescriptions["ccpHdd"])
	s.Add("ccpMcr", f.CcpMcr, scalarDescriptions["ccpMcr"])
	s.Add("ccpAtn", f.CcpAtn, scalarDescriptions["ccpAtn"])
	s.Add("ccpEdn", f.CcpEdn, scalarDescriptions["ccpEdn"])
	s.Add("ccpTxbx", f.CcpTxbx, scalarDescriptions["ccpTxbx"])
	s.Add("ccpHdrTxbx", f.CcpHdrTxbx, scalarDescriptions["ccpHdrTxbx"])
	s.Add("cbRgFcLcb", f.CbRgFcLcb, scalarDescriptions["cbRgFcLcb"])
	s.Add("revision", f.Revision(), scalarDescriptions["revision"])
	s.Add("cswNew", f.CswNew, scalarDescriptions["cswNew"])
	s.AddHex("nFibNew", uint64(f.NFibNew), scalarDescriptions["nFibNew"])
	s.Add("cQuickSavesNew", f.CQuickSavesNew, scalarDescriptions["cQuickSavesNew"])
	s.Add("tableStream", f.TableStreamName(), scalarDescriptions["tableStream"])

	for _, e := range f.Directory.Entries {
		sub := structure.New(e.Name)
		sub.Add("fc", e.Offset, e.Description)
		sub.Add("lcb", e.Length, "")
		s.Sub(*sub)
	}
	return *s
}

// ProjectStyleSheet renders the STSHI header and one substructure per
// defined style, named by the style's primary name.
func ProjectStyleSheet(ss *StyleSheet) structure.Structure {
	s := structure.New(StructStyleSheet)
	s.Add("cbStshi", ss.CbStshi, "")
	s.Add("cstd", ss.Cstd, "count of style slots")
	s.Add("cbSTDBaseInFile", ss.CbSTDBaseInFile, "size of the fixed STD part")
	s.Add("fStdStylenamesWritten", ss.StdStylenamesWritten, "")
	s.Add("stiMaxWhenSaved", ss.StiMaxWhenSaved, "")
	s.Add("istdMaxFixedWhenSaved", ss.IstdMaxFixedWhenSaved, "")
	s.Add("nVerBuiltInNamesWhenSaved", ss.NVerBuiltInNamesWhenSaved, "")
	s.Add("defined", ss.Defined(), "non-empty style slots")

	seen := make(map[string]bool)
	for istd, st := range ss.Styles {
		if st == nil {
			continue
		}
		name := st.Name
		if name == "" {
			name = fmt.Sprintf("Style %d", istd)
		}
		if seen[name] {
			name = fmt.Sprintf("%s (%d)", name, istd)
		}
		seen[name] = true
		s.Sub(projectStyle(istd, st, name))
	}
	return *s
}

func projectStyle(istd int, st *StyleDefinition, name string) structure.Structure {
	s := structure.New(name)
	s.Add("istd", istd, "")
	s.Add("sti", st.Sti, "built-in style identifier")
	s.Add("fScratch", st.Scratch, "")
	s.Add("fInvalHeight", st.InvalHeight, "")
	s.Add("fHasUpe", st.HasUpe, "")
	s.Add("fMassCopy", st.MassCopy, "")
	s.Add("stk", st.Stk, "style kind")
	s.Add("istdBase", st.IstdBase, "")
	s.Add("cupx", st.Cupx, "")
	s.Add("istdNext", st.IstdNext, "")
	s.Add("bchUpe", st.BchUpe, "")
	s.Add("fAutoRedef", st.AutoRedef, "")
	s.Add("fHidden", st.Hidden, "")
	s.Add("f97LidsSet", st.LidsSet97, "")
	s.Add("fCopyLang", st.CopyLang, "")
	s.Add("fPersonalCompose", st.PersCompose, "")
	s.Add("fPersonalReply", st.PersReply, "")
	s.Add("fPersonal", st.Personal, "")
	s.Add("fNoHtmlExport", st.NoHTMLExport, "")
	s.Add("fSemiHidden", st.SemiHidden, "")
	s.Add("fLocked", st.Locked, "")
	s.Add("fInternalUse", st.InternalUse, "")
	s.Add("istdLink", st.IstdLink, "")
	s.Add("fSpare", st.Spare, "")
	s.Add("rsid", st.Rsid, "")
	s.Add("iftcHtml", st.IftcHTML, "")
	s.Add("xstzName", st.Name, "")
	return *s
}

// ProjectPieceTable renders one substructure per piece descriptor.
func ProjectPieceTable(pt *PieceTable) structure.Structure {
	s := structure.New(StructPieceTable)
	s.Add("pieces", pt.Len(), "")
	for i, p := range pt.Records {
		sub := structure.New(fmt.Sprintf("PCD %d", i))
		sub.Add("cpStart", pt.Boundaries[i], "")
		sub.Add("cpEnd", pt.Boundaries[i+1], "")
		sub.Add("fNoParaLast", p.NoParaLast, "")
		sub.Add("fn", p.Fn, "")
		sub.AddHex("fc", uint64(uint32(p.Fc)), "")
		sub.AddHex("prm", uint64(p.Prm), "")
		sub.Add("fCompressed", p.Compressed(), "8-bit text")
		sub.Add("actualOffset", p.ActualOffset(), "offset in WordDocument")
		s.Sub(*sub)
	}
	return *s
}

// ProjectListTable renders one substructure per list, each holding its levels.
func ProjectListTable(lt *ListTable) structure.Structure {
	s := structure.New(StructListTable)
	s.Add("lists", len(lt.Lists), "")
	for _, l := range lt.Lists {
		sub := structure.New(fmt.Sprintf("LST %d", l.Lsid))
		sub.Add("lsid", l.Lsid, "")
		sub.AddHex("tplc", uint64(uint32(l.Tplc)), "")
		sub.Add("rgistdPara", joinInts(l.Rgistd[:]), "")
		sub.Add("fSimpleList", l.SimpleList(), "")
		sub.Add("fAutoNum", l.AutoNum(), "")
		sub.Add("fHybrid", l.Hybrid(), "")
		sub.AddHex("grfhic", uint64(l.Compat), "")
		for i, lvl := range l.Levels {
			sub.Sub(projectLevel(i, lvl))
		}
		s.Sub(*sub)
	}
	return *s
}

func projectLevel(i int, lvl ListLevel) structure.Structure {
	s := structure.New(fmt.Sprintf("Level %d", i))
	s.Add("iStartAt", lvl.StartAt, "")
	s.Add("nfc", lvl.Nfc, "number format")
	s.Add("jc", lvl.Jc, "")
	s.Add("fLegal", lvl.Legal, "")
	s.Add("fNoRestart", lvl.NoRestart, "")
	s.Add("fPrev", lvl.Prev, "")
	s.Add("fPrevSpace", lvl.PrevSpace, "")
	s.Add("fWord6", lvl.Word6, "")
	s.Add("rgbxchNums", joinInts(lvl.NumberOffsets[:]), "")
	s.Add("ixchFollow", lvl.IxchFollow, "")
	s.Add("dxaSpace", lvl.DxaSpace, "")
	s.Add("dxaIndent", lvl.DxaIndent, "")
	s.Add("ilvlRestartLim", lvl.IlvlRestartLim, "")
	s.AddHex("grfhic", uint64(lvl.Grfhic), "")
	s.Add("grpprlPapx", fmt.Sprintf("%X", lvl.GrpprlPapx), "")
	s.Add("grpprlChpx", fmt.Sprintf("%X", lvl.GrpprlChpx), "")
	s.Add("xst", lvl.NumberText, "number text")
	return *s
}

// ProjectSummary renders every standard summary field, empty when unset.
func ProjectSummary(si *propset.SummaryInformation) structure.Structure {
	return projectProperties(StructSummary, si.CodePage, propset.SummaryFields(), si.Properties, nil)
}

// ProjectDocSummary renders the document summary fields and the
// user-defined properties.
func ProjectDocSummary(di *propset.DocumentSummaryInformation) structure.Structure {
	return projectProperties(StructDocSummary, di.CodePage, propset.DocSummaryFields(), di.Properties, di.Custom)
}

func projectProperties(name string, codePage uint16, fields []string, props, custom []propset.NamedProperty) structure.Structure {
	s := structure.New(name)
	s.Add("codepage", codePage, "")

	values := make(map[string]propset.Value, len(props))
	for _, p := range props {
		if p.Known {
			values[p.Name] = p.Value
		}
	}
	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			s.Add(f, "", "")
			continue
		}
		s.Add(f, v.String(), v.Type().String())
	}

	for _, p := range props {
		if !p.Known {
			s.Sub(projectProperty(p.Name, p))
		}
	}
	for _, p := range custom {
		s.Sub(projectProperty("Custom: "+p.Name, p))
	}
	return *s
}

func projectProperty(name string, p propset.NamedProperty) structure.Structure {
	s := structure.New(name)
	s.AddHex("id", uint64(p.ID), "")
	s.Add("type", p.Value.Type().String(), "")
	s.Add("value", p.Value.String(), "")
	return *s
}

func joinInts[T ~uint8 | ~uint16 | ~uint32 | ~int32](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

package word

// pairDef names one FibRgFcLcb (offset, length) pair and what it locates.
type pairDef struct {
	name string
	desc string
}

// Pair blocks in file order. Each later revision appends to the previous one.
var (
	pairs97 = []pairDef{
		{"StshfOrig", "original style sheet (STSH) allocation"},
		{"Stshf", "style sheet (STSH)"},
		{"PlcffndRef", "footnote reference PLC of FRD records"},
		{"PlcffndTxt", "footnote text PLC"},
		{"PlcfandRef", "annotation reference PLC of ATRD records"},
		{"PlcfandTxt", "annotation text PLC"},
		{"PlcfSed", "section descriptor PLC"},
		{"PlcPad", "paragraph outline state PLC (unused)"},
		{"PlcfPhe", "paragraph height PLC"},
		{"SttbfGlsy", "glossary string table"},
		{"PlcfGlsy", "glossary PLC"},
		{"PlcfHdd", "header/footer boundaries PLC"},
		{"PlcfBteChpx", "character property bin table"},
		{"PlcfBtePapx", "paragraph property bin table"},
		{"PlcfSea", "private PLC (unused)"},
		{"SttbfFfn", "font information table"},
		{"PlcfFldMom", "main document field PLC"},
		{"PlcfFldHdr", "header field PLC"},
		{"PlcfFldFtn", "footnote field PLC"},
		{"PlcfFldAtn", "annotation field PLC"},
		{"PlcfFldMcr", "macro field PLC (unused)"},
		{"SttbfBkmk", "bookmark name table"},
		{"PlcfBkf", "bookmark first PLC"},
		{"PlcfBkl", "bookmark limit PLC"},
		{"Cmds", "macro command customizations"},
		{"Unused1", "unused"},
		{"SttbfMcr", "macro name table (unused)"},
		{"PrDrvr", "printer driver information"},
		{"PrEnvPort", "portrait print environment"},
		{"PrEnvLand", "landscape print environment"},
		{"Wss", "window save state"},
		{"Dop", "document properties (DOP)"},
		{"SttbfAssoc", "associated strings table"},
		{"Clx", "complex file information (piece table)"},
		{"PlcfPgdFtn", "footnote page descriptors (unused)"},
		{"AutosaveSource", "autosave source file name"},
		{"GrpXstAtnOwners", "annotation owner names"},
		{"SttbfAtnBkmk", "annotation bookmark names"},
		{"Unused2", "unused"},
		{"Unused3", "unused"},
		{"PlcSpaMom", "main document shape anchors PLC"},
		{"PlcSpaHdr", "header shape anchors PLC"},
		{"PlcfAtnBkf", "annotation bookmark first PLC"},
		{"PlcfAtnBkl", "annotation bookmark limit PLC"},
		{"Pms", "print merge state"},
		{"FormFldSttbs", "form field string tables"},
		{"PlcfendRef", "endnote reference PLC"},
		{"PlcfendTxt", "endnote text PLC"},
		{"PlcfFldEdn", "endnote field PLC"},
		{"Unused4", "unused"},
		{"DggInfo", "Office drawing data"},
		{"SttbfRMark", "revision author names"},
		{"SttbCaption", "caption titles"},
		{"SttbAutoCaption", "auto caption definitions"},
		{"PlcfWkb", "master/subdocument PLC"},
		{"PlcfSpl", "spelling state PLC"},
		{"PlcftxbxTxt", "main document text box PLC"},
		{"PlcfFldTxbx", "text box field PLC"},
		{"PlcfHdrtxbxTxt", "header text box PLC"},
		{"PlcffldHdrTxbx", "header text box field PLC"},
		{"StwUser", "user macro storage"},
		{"SttbTtmbd", "embedded TrueType font data"},
		{"CookieData", "NLCheck error cookies"},
		{"PgdMotherOldOld", "main document page descriptors (deprecated)"},
		{"BkdMotherOldOld", "main document break descriptors (deprecated)"},
		{"PgdFtnOldOld", "footnote page descriptors (deprecated)"},
		{"BkdFtnOldOld", "footnote break descriptors (deprecated)"},
		{"PgdEdnOldOld", "endnote page descriptors (deprecated)"},
		{"BkdEdnOldOld", "endnote break descriptors (deprecated)"},
		{"SttbfIntlFld", "international field keywords (unused)"},
		{"RouteSlip", "mailer routing slip"},
		{"SttbSavedBy", "saved-by users table"},
		{"SttbFnm", "referenced file names"},
		{"PlfLst", "list format information (LST)"},
		{"PlfLfo", "list format override information (LFO)"},
		{"PlcfTxbxBkd", "main document text box break table"},
		{"PlcfTxbxHdrBkd", "header text box break table"},
		{"DocUndoWord9", "undo information"},
		{"RgbUse", "undo information"},
		{"Usp", "undo information"},
		{"Uskf", "undo information"},
		{"PlcupcRgbUse", "undo information"},
		{"PlcupcUsp", "undo information"},
		{"SttbGlsyStyle", "glossary style names"},
		{"Plgosl", "grammar options"},
		{"Plcocx", "OCX control information"},
		{"PlcfBteLvc", "character position bin table (deprecated)"},
		{"dwLowDateTime", "modification time (low/high words)"},
		{"PlcfLvcPre10", "list level cache (deprecated)"},
		{"PlcfAsumy", "auto summary PLC"},
		{"PlcfGram", "grammar state PLC"},
		{"SttbListNames", "list names table"},
		{"SttbfUssr", "undocumented"},
	}

	pairs2000 = []pairDef{
		{"PlcfTch", "table cell cache PLC"},
		{"RmdThreading", "mail merge threading"},
		{"Mid", "message identifier"},
		{"SttbRgtplc", "list gallery template entries"},
		{"MsoEnvelope", "mail envelope data"},
		{"PlcfLad", "language auto-detect PLC"},
		{"RgDofr", "document frame information"},
		{"Plcosl", "undocumented"},
		{"PlcfCookieOld", "NLCheck cookies (deprecated)"},
		{"PgdMotherOld", "main document page descriptors (deprecated)"},
		{"BkdMotherOld", "main document break descriptors (deprecated)"},
		{"PgdFtnOld", "footnote page descriptors (deprecated)"},
		{"BkdFtnOld", "footnote break descriptors (deprecated)"},
		{"PgdEdnOld", "endnote page descriptors (deprecated)"},
		{"BkdEdnOld", "endnote break descriptors (deprecated)"},
	}

	pairs2002 = []pairDef{
		{"Unused1_2002", "unused"},
		{"PlcfPgp", "paragraph group PLC"},
		{"Plcfuim", "input method PLC"},
		{"PlfguidUim", "input method GUIDs"},
		{"AtrdExtra", "extended annotation data"},
		{"Plrsid", "revision save identifiers"},
		{"SttbfBkmkFactoid", "smart tag bookmark names"},
		{"PlcfBkfFactoid", "smart tag bookmark first PLC"},
		{"Plcfcookie", "NLCheck cookies"},
		{"PlcfBklFactoid", "smart tag bookmark limit PLC"},
		{"FactoidData", "smart tag data"},
		{"DocUndo", "undo information"},
		{"SttbfBkmkFcc", "format consistency bookmark names"},
		{"PlcfBkfFcc", "format consistency bookmark first PLC"},
		{"PlcfBklFcc", "format consistency bookmark limit PLC"},
		{"SttbfbkmkBPRepairs", "repair bookmark names"},
		{"PlcfbkfBPRepairs", "repair bookmark first PLC"},
		{"PlcfbklBPRepairs", "repair bookmark limit PLC"},
		{"PmsNew", "mail merge state"},
		{"ODSO", "Office data source object"},
		{"PlcfpmiOldXP", "paragraph mark information (XP, old)"},
		{"PlcfpmiNewXP", "paragraph mark information (XP, new)"},
		{"PlcfpmiMixedXP", "paragraph mark information (XP, mixed)"},
		{"Unused2_2002", "unused"},
		{"Plcffactoid", "smart tag PLC"},
		{"PlcflvcOldXP", "list level cache (XP, old)"},
		{"PlcflvcNewXP", "list level cache (XP, new)"},
		{"PlcflvcMixedXP", "list level cache (XP, mixed)"},
	}

	pairs2003 = []pairDef{
		{"Hplxsdr", "XML schema references"},
		{"SttbfBkmkSdt", "structured document tag bookmark names"},
		{"PlcfBkfSdt", "structured document tag bookmark first PLC"},
		{"PlcfBklSdt", "structured document tag bookmark limit PLC"},
		{"CustomXForm", "custom XSL transform"},
		{"SttbfBkmkProt", "range protection bookmark names"},
		{"PlcfBkfProt", "range protection bookmark first PLC"},
		{"PlcfBklProt", "range protection bookmark limit PLC"},
		{"SttbProtUser", "range protection users"},
		{"Unused_2003", "unused"},
		{"PlcfpmiOld", "paragraph mark information (old)"},
		{"PlcfpmiOldInline", "paragraph mark information (old, inline)"},
		{"PlcfpmiNew", "paragraph mark information (new)"},
		{"PlcfpmiNewInline", "paragraph mark information (new, inline)"},
		{"PlcflvcOld", "list level cache (old)"},
		{"PlcflvcOldInline", "list level cache (old, inline)"},
		{"PlcflvcNew", "list level cache (new)"},
		{"PlcflvcNewInline", "list level cache (new, inline)"},
		{"PgdMother", "main document page descriptors"},
		{"BkdMother", "main document break descriptors"},
		{"AfdMother", "main document auto format descriptors"},
		{"PgdFtn", "footnote page descriptors"},
		{"BkdFtn", "footnote break descriptors"},
		{"AfdFtn", "footnote auto format descriptors"},
		{"PgdEdn", "endnote page descriptors"},
		{"BkdEdn", "endnote break descriptors"},
		{"AfdEdn", "endnote auto format descriptors"},
		{"Afd", "auto format descriptors"},
	}

	pairs2007 = []pairDef{
		{"Plcfmthd", "math properties (unused)"},
		{"SttbfBkmkMoveFrom", "move-from bookmark names"},
		{"PlcfBkfMoveFrom", "move-from bookmark first PLC"},
		{"PlcfBklMoveFrom", "move-from bookmark limit PLC"},
		{"SttbfBkmkMoveTo", "move-to bookmark names"},
		{"PlcfBkfMoveTo", "move-to bookmark first PLC"},
		{"PlcfBklMoveTo", "move-to bookmark limit PLC"},
		{"Unused1_2007", "unused"},
		{"Unused2_2007", "unused"},
		{"Unused3_2007", "unused"},
		{"SttbfBkmkArto", "art object bookmark names"},
		{"PlcfBkfArto", "art object bookmark first PLC"},
		{"PlcfBklArto", "art object bookmark limit PLC"},
		{"ArtoData", "art object data"},
		{"Unused4_2007", "unused"},
		{"Unused5_2007", "unused"},
		{"Unused6_2007", "unused"},
		{"OssTheme", "Office theme"},
		{"ColorSchemeMapping", "color scheme mapping"},
	}
)

// pairTable is every known pair in file order.
var pairTable = func() []pairDef {
	var all []pairDef
	for _, block := range [][]pairDef{pairs97, pairs2000, pairs2002, pairs2003, pairs2007} {
		all = append(all, block...)
	}
	return all
}()

// FormatRevision identifies which application revision a pair count corresponds to.
type FormatRevision struct {
	Name  string
	Pairs int
	NFib  uint16
}

// Revisions lists the FibRgFcLcb blocks by cbRgFcLcb value.
var Revisions = []FormatRevision{
	{Name: "Word 97", Pairs: len(pairs97), NFib: 0x00C1},
	{Name: "Word 2000", Pairs: len(pairs97) + len(pairs2000), NFib: 0x00D9},
	{Name: "Word 2002", Pairs: len(pairs97) + len(pairs2000) + len(pairs2002), NFib: 0x0101},
	{Name: "Word 2003", Pairs: len(pairs97) + len(pairs2000) + len(pairs2002) + len(pairs2003), NFib: 0x010C},
	{Name: "Word 2007", Pairs: len(pairTable), NFib: 0x0112},
}

// RevisionFor returns the revision whose pair block matches count, or false
// when count is not one of the documented sizes.
func RevisionFor(count int) (FormatRevision, bool) {
	for _, r := range Revisions {
		if r.Pairs == count {
			return r, true
		}
	}
	return FormatRevision{}, false
}

// scalarDescriptions documents the fixed-position FIB fields.
var scalarDescriptions = map[string]string{
	"wIdent":               "magic number identifying a Word binary file",
	"nFib":                 "FIB version written",
	"unused":               "unused",
	"lid":                  "install language of the application that created the document",
	"pnNext":               "offset in 512-byte pages of the AutoText FIB",
	"fDot":                 "document is a template",
	"fGlsy":                "document contains only AutoText items",
	"fComplex":             "last save was incremental (fast save)",
	"fHasPic":              "document contains pictures",
	"cQuickSaves":          "number of consecutive incremental saves",
	"fEncrypted":           "document is encrypted or obfuscated",
	"fWhichTblStm":         "1Table is the table stream when set, otherwise 0Table",
	"fReadOnlyRecommended": "author recommends opening read-only",
	"fWriteReservation":    "document has a write-reservation password",
	"fExtChar":             "extended character set in use",
	"fLoadOverride":        "override language and font settings with application defaults",
	"fFarEast":             "installation language was East Asian",
	"fObfuscated":          "XOR obfuscation is used",
	"nFibBack":             "oldest FIB version that can read this file",
	"lKey":                 "encryption key or header size",
	"envr":                 "creation environment (0 Windows, 1 Macintosh)",
	"fMac":                 "last saved on a Macintosh",
	"fEmptySpecial":        "reserved",
	"fLoadOverridePage":    "override page size and orientation with application defaults",
	"fcMin":                "file offset of the first text character (reserved5)",
	"fcMac":                "file offset one past the last text character (reserved6)",
	"csw":                  "count of 16-bit values in FibRgW97",
	"lidFE":                "East Asian language id when fFarEast is set",
	"cslw":                 "count of 32-bit values in FibRgLw97",
	"cbMac":                "count of meaningful bytes in WordDocument",
	"ccpText":              "character count of the main document",
	"ccpFtn":               "character count of the footnote subdocument",
	"ccpHdd":               "character count of the header subdocument",
	"ccpMcr":               "unused macro subdocument count",
	"ccpAtn":               "character count of the comment subdocument",
	"ccpEdn":               "character count of the endnote subdocument",
	"ccpTxbx":              "character count of the textbox subdocument",
	"ccpHdrTxbx":           "character count of the header textbox subdocument",
	"cbRgFcLcb":            "count of (offset, length) pairs in FibRgFcLcb",
	"cswNew":               "count of 16-bit values in FibRgCswNew",
	"nFibNew":              "FIB version when newer than nFib",
	"cQuickSavesNew":       "incremental save count when cQuickSaves saturates",
}

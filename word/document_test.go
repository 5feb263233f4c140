package word

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/container"
	"github.com/c360studio/semdoc/internal/binfixture"
	"github.com/c360studio/semdoc/propset"
)

const (
	textOffset = 0x400
	docText    = "Hello world!"
)

// docFixture holds the pieces of a synthetic document so tests can corrupt
// one structure before building the streams.
type docFixture struct {
	flags      uint16
	styles     []byte
	clx        []byte
	lists      []byte
	lstLen     uint32
	summary    []byte
	tableName  string
	clxOffset  int32
	omitTables bool
}

func newDocFixture() *docFixture {
	lists := buildListTable([]bool{true}, []int32{4242}, func(_, _ int) levelFixture {
		return levelFixture{startAt: 1, text: "%1."}
	})
	return &docFixture{
		flags: flagComplex | flagWhichTblStm,
		styles: buildStyleSheet(stdBase97Size, []*styleFixture{
			{sti: 0, stk: 1, istdBase: 0x0FFF, name: "Normal"},
			{sti: 65, stk: 2, istdBase: 0x0FFF, name: "Default Paragraph Font"},
		}),
		clx:    buildClx([]int32{0, int32(len(docText))}, buildPCD(0, 0x40000000|textOffset*2, 0)),
		lists:  lists,
		lstLen: 2 + 28,
	}
}

func (f *docFixture) streams(t *testing.T) container.Memory {
	t.Helper()
	var table binfixture.Builder
	table.Zeros(16)
	stshOff := table.Len()
	table.Raw(f.styles...)
	clxOff := table.Len()
	if f.clxOffset != 0 {
		clxOff = int(f.clxOffset)
	}
	table.Raw(f.clx...)
	lstOff := table.Len()
	table.Raw(f.lists...)
	lfoOff := table.Len()
	table.U32(0).U32(0)

	fib := buildFib(t, fibFixture{
		nFib:    0x00C1,
		flags:   f.flags,
		fcMin:   textOffset,
		fcMac:   textOffset + int32(len(docText)),
		ccpText: int32(len(docText)),
		entries: map[string][2]uint32{
			"Stshf":  {uint32(stshOff), uint32(len(f.styles))},
			"Clx":    {uint32(clxOff), uint32(len(f.clx))},
			"PlfLst": {uint32(lstOff), f.lstLen},
			"PlfLfo": {uint32(lfoOff), 8},
		},
	})
	var word binfixture.Builder
	word.Raw(fib...)
	word.Zeros(textOffset - word.Len())
	word.Raw([]byte(docText)...)

	name := f.tableName
	if name == "" {
		name = "1Table"
	}
	m := container.Memory{WordDocumentStream: word.Bytes()}
	if !f.omitTables {
		m[name] = table.Bytes()
	}
	if f.summary != nil {
		m[propset.SummaryInformationStream] = f.summary
	}
	return m
}

// buildSummary writes a one-section summary stream holding a code page and a title.
func buildSummary(title string) []byte {
	var value binfixture.Builder
	value.U16(uint16(propset.VTLPSTR)).U16(0).U32(uint32(len(title) + 1)).Raw([]byte(title)...).U8(0).Pad(4)
	var cp binfixture.Builder
	cp.U16(uint16(propset.VTI2)).U16(0).U16(1252).U16(0)

	var sec binfixture.Builder
	headerLen := 8 + 2*8
	sec.U32(uint32(headerLen + cp.Len() + value.Len())).U32(2)
	sec.U32(propset.PIDCodePage).U32(uint32(headerLen))
	sec.U32(0x02).U32(uint32(headerLen + cp.Len()))
	sec.Raw(cp.Bytes()...).Raw(value.Bytes()...)

	var b binfixture.Builder
	b.U16(propset.ByteOrderMark).U16(0).U16(0x0A00).U16(2)
	b.Raw(propset.GUIDBytes(uuid.Nil)...)
	b.U32(1)
	b.Raw(propset.GUIDBytes(propset.FMTIDSummaryInformation)...).U32(48)
	b.Raw(sec.Bytes()...)
	return b.Bytes()
}

func TestAssemble(t *testing.T) {
	fx := newDocFixture()
	fx.summary = buildSummary("Quarterly report")

	doc, err := Assemble(fx.streams(t), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "1Table", doc.TableStream)
	require.NotNil(t, doc.StyleSheet)
	assert.Equal(t, "Normal", doc.StyleSheet.Style(0).Name)
	require.NotNil(t, doc.PieceTable)
	assert.Equal(t, 1, doc.PieceTable.Len())
	assert.Equal(t, int64(textOffset), doc.PieceTable.Records[0].ActualOffset())
	require.NotNil(t, doc.ListTable)
	require.Len(t, doc.ListTable.Lists, 1)
	assert.Equal(t, "%1.", doc.ListTable.Lists[0].Levels[0].NumberText)

	require.NotNil(t, doc.Summary)
	assert.Equal(t, "Quarterly report", doc.Summary.Title())
	assert.Nil(t, doc.DocSummary)

	o, ok := doc.Outcome(StructDocSummary)
	require.True(t, ok)
	assert.Equal(t, StatusAbsent, o.Status)
	assert.Empty(t, doc.Failed())
}

func TestAssembleTableStreamSelection(t *testing.T) {
	t.Run("flag clear selects 0Table", func(t *testing.T) {
		fx := newDocFixture()
		fx.flags = flagComplex
		fx.tableName = "0Table"
		doc, err := Assemble(fx.streams(t), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, "0Table", doc.TableStream)
	})

	t.Run("selected stream missing", func(t *testing.T) {
		fx := newDocFixture()
		fx.flags = flagComplex
		_, err := Assemble(fx.streams(t), DefaultOptions())
		assert.ErrorIs(t, err, container.ErrStreamNotFound)
	})

	t.Run("fallback to the other stream", func(t *testing.T) {
		fx := newDocFixture()
		fx.flags = flagComplex
		opts := DefaultOptions()
		opts.TableStreamFallback = true
		doc, err := Assemble(fx.streams(t), opts)
		require.NoError(t, err)
		assert.Equal(t, "1Table", doc.TableStream)
	})

	t.Run("no table stream at all", func(t *testing.T) {
		fx := newDocFixture()
		fx.omitTables = true
		opts := DefaultOptions()
		opts.TableStreamFallback = true
		_, err := Assemble(fx.streams(t), opts)
		assert.Error(t, err)
	})
}

func TestAssembleRecordsFailures(t *testing.T) {
	fx := newDocFixture()
	fx.clx[0] = 1

	doc, err := Assemble(fx.streams(t), DefaultOptions())
	require.NoError(t, err)

	assert.Nil(t, doc.PieceTable)
	assert.NotNil(t, doc.StyleSheet, "other structures decode independently")
	assert.NotNil(t, doc.ListTable)

	failed := doc.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, StructPieceTable, failed[0].Structure)
	assert.ErrorIs(t, failed[0].Err, ErrUnsupportedVariant)

	var entryErr *EntryError
	require.True(t, errors.As(failed[0].Err, &entryErr))
	assert.Equal(t, "Clx", entryErr.Entry.Name)
	assert.Contains(t, failed[0].Error(), "Clx")
}

func TestAssembleEntryOutsideTableStream(t *testing.T) {
	fx := newDocFixture()
	fx.clxOffset = 1 << 20

	doc, err := Assemble(fx.streams(t), DefaultOptions())
	require.NoError(t, err)

	o, ok := doc.Outcome(StructPieceTable)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, o.Status)
	assert.ErrorIs(t, o.Err, ErrMalformedLayout)
}

func TestAssembleFatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*docFixture)
		wantErr error
	}{
		{
			name:    "encrypted",
			mutate:  func(f *docFixture) { f.flags |= flagEncrypted },
			wantErr: ErrUnsupportedVariant,
		},
		{
			name:    "summary stream truncated",
			mutate:  func(f *docFixture) { f.summary = buildSummary("x")[:20] },
			wantErr: ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newDocFixture()
			tt.mutate(fx)
			doc, err := Assemble(fx.streams(t), DefaultOptions())
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAssembleBlockOverrun(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*docFixture)
		structure string
		entry     string
		intact    func(*Document) any
	}{
		{
			name:      "style count beyond block",
			mutate:    func(f *docFixture) { f.styles[2] = 9 },
			structure: StructStyleSheet,
			entry:     "Stshf",
			intact:    func(d *Document) any { return d.ListTable },
		},
		{
			name:      "list levels cut short",
			mutate:    func(f *docFixture) { f.lists = f.lists[:len(f.lists)-4] },
			structure: StructListTable,
			entry:     "PlfLst",
			intact:    func(d *Document) any { return d.StyleSheet },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newDocFixture()
			tt.mutate(fx)
			doc, err := Assemble(fx.streams(t), DefaultOptions())
			require.NoError(t, err)
			require.NotNil(t, doc)

			o, ok := doc.Outcome(tt.structure)
			require.True(t, ok)
			assert.Equal(t, StatusFailed, o.Status)
			assert.ErrorIs(t, o.Err, ErrMalformedLayout)
			assert.NotErrorIs(t, o.Err, ErrTruncated)

			var entryErr *EntryError
			require.True(t, errors.As(o.Err, &entryErr))
			assert.Equal(t, tt.entry, entryErr.Entry.Name)

			assert.NotNil(t, tt.intact(doc), "sibling structures still decode")
			assert.NotNil(t, doc.PieceTable)
		})
	}
}

func TestAssembleBadMagic(t *testing.T) {
	m := newDocFixture().streams(t)
	m[WordDocumentStream][0] = 0
	_, err := Assemble(m, DefaultOptions())
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestPhysicalStructures(t *testing.T) {
	fx := newDocFixture()
	doc, err := Assemble(fx.streams(t), DefaultOptions())
	require.NoError(t, err)

	phys, err := doc.PhysicalStructures()
	require.NoError(t, err)

	byName := make(map[string]int)
	for i, p := range phys {
		byName[p.Name] = i
		assert.Equal(t, int64(p.Len()), p.End-p.Start, p.Name)
	}

	require.Contains(t, byName, "Fib Base")
	require.Contains(t, byName, "Main Text")
	text := phys[byName["Main Text"]]
	assert.Equal(t, WordDocumentStream, text.Stream)
	assert.Equal(t, docText, string(text.Bytes))

	require.Contains(t, byName, "Table Stshf")
	stsh := phys[byName["Table Stshf"]]
	assert.Equal(t, "1Table", stsh.Stream)
	assert.Equal(t, fx.styles, stsh.Bytes)

	assert.Contains(t, byName, "Table Clx")
	assert.Contains(t, byName, "Table PlfLst")
	assert.NotContains(t, byName, "Table PlcffndRef", "absent entries have no range")
}

func TestPhysicalStructuresClampsOutOfRange(t *testing.T) {
	fx := newDocFixture()
	fx.clxOffset = 1 << 20
	doc, err := Assemble(fx.streams(t), DefaultOptions())
	require.NoError(t, err)

	phys, err := doc.PhysicalStructures()
	require.NoError(t, err)
	for _, p := range phys {
		if p.Name == "Table Clx" {
			assert.Zero(t, p.Len())
			assert.Contains(t, p.Description, "clamped")
			return
		}
	}
	t.Fatal("Table Clx range missing")
}

func TestLogicalStructures(t *testing.T) {
	fx := newDocFixture()
	fx.summary = buildSummary("Quarterly report")
	doc, err := Assemble(fx.streams(t), DefaultOptions())
	require.NoError(t, err)

	logical := doc.LogicalStructures()
	names := make([]string, len(logical))
	for i, s := range logical {
		names[i] = s.Name
	}
	assert.Equal(t, []string{StructFib, StructStyleSheet, StructPieceTable, StructListTable, StructSummary}, names)

	fib := logical[0]
	nFib, ok := fib.Item("nFib")
	require.True(t, ok)
	assert.Equal(t, "0xC1", nFib.Value)
	clx, ok := fib.Find("Clx")
	require.True(t, ok)
	lcb, _ := clx.Item("lcb")
	assert.Equal(t, "21", lcb.Value)

	_, ok = logical[1].Find("Default Paragraph Font")
	assert.True(t, ok)

	pcd, ok := logical[2].Find("PCD 0")
	require.True(t, ok)
	compressed, _ := pcd.Item("fCompressed")
	assert.Equal(t, "true", compressed.Value)

	lst, ok := logical[3].Find("LST 4242")
	require.True(t, ok)
	_, ok = lst.Find("Level 0")
	assert.True(t, ok)

	summary := logical[4]
	title, _ := summary.Item("title")
	assert.Equal(t, "Quarterly report", title.Value)
	subject, ok := summary.Item("subject")
	require.True(t, ok, "absent fields still project")
	assert.Empty(t, subject.Value)
	assert.Len(t, summary.Items, 1+len(propset.SummaryFields()))
}

func TestLogicalStructuresOmitFailed(t *testing.T) {
	fx := newDocFixture()
	fx.clx[0] = 1
	doc, err := Assemble(fx.streams(t), DefaultOptions())
	require.NoError(t, err)

	for _, s := range doc.LogicalStructures() {
		assert.NotEqual(t, StructPieceTable, s.Name)
	}
}

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semdoc/archive"
	"github.com/c360studio/semdoc/container"
	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/structure"
)

func sampleStructures() []structure.Structure {
	normal := structure.New("Normal")
	normal.Add("sti", 0, "built-in style identifier")
	ss := structure.New("StyleSheet")
	ss.Add("cstd", 15, "count of style slots").Sub(*normal)
	return []structure.Structure{*ss}
}

type staticSource struct {
	physical []structure.Physical
	logical  []structure.Structure
}

func (s staticSource) PhysicalStructures() ([]structure.Physical, error) { return s.physical, nil }
func (s staticSource) LogicalStructures() []structure.Structure { return s.logical }

func sampleReport(t *testing.T) *diff.Report {
	t.Helper()
	ref := staticSource{
		physical: []structure.Physical{{Stream: "WordDocument", Name: "Fib Base", Bytes: []byte{0xEC, 0xA5}}},
		logical:  sampleStructures(),
	}
	comp := staticSource{
		physical: []structure.Physical{{Stream: "WordDocument", Name: "Fib Base", Bytes: []byte{0xEC, 0xA6}}},
		logical:  sampleStructures(),
	}
	comp.logical[0].Substructures[0].Items[0].Value = "<b>1</b>"
	r, err := diff.Compare(context.Background(), "old.doc", ref, "new.doc", comp, diff.DefaultOptions())
	require.NoError(t, err)
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: " YAML ", want: FormatYAML},
		{in: "html", want: FormatHTML},
		{in: "text", want: FormatText},
		{in: "turtle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRegistry(t *testing.T) {
	assert.Equal(t, []string{"html", "json", "text", "yaml"}, Names())
	for _, name := range Names() {
		info, ok := GetFormatInfo(Format(name))
		require.True(t, ok)
		assert.Equal(t, Format(name), info.Name)
		assert.True(t, strings.HasPrefix(info.Extension, "."))
	}
}

func TestWriteJSONStructures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleStructures()))

	var back []structure.Structure
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sampleStructures(), back)
	assert.Contains(t, buf.String(), `"substructs"`)
}

func TestWriteYAMLReport(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, r))

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, r.ID.String(), back["id"])
	assert.Contains(t, buf.String(), "difference_indices")
	assert.NotContains(t, buf.String(), "bytes:")
}

func TestWriteText(t *testing.T) {
	t.Run("structures", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatText, sampleStructures()))
		out := buf.String()
		assert.Contains(t, out, "StyleSheet\n")
		assert.Contains(t, out, "  Normal\n")
		assert.Contains(t, out, "count of style slots")
	})

	t.Run("report", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatText, sampleReport(t)))
		out := buf.String()
		assert.Contains(t, out, "old.doc")
		assert.Contains(t, out, "-> <b>1</b>")
		assert.Contains(t, out, "[3,4)")
	})

	t.Run("walk", func(t *testing.T) {
		var buf bytes.Buffer
		entries := container.Memory{"WordDocument": make([]byte, 10)}.Walk()
		require.NoError(t, Write(&buf, FormatText, entries))
		assert.Contains(t, buf.String(), `"WordDocument"`)
	})

	t.Run("unsupported value", func(t *testing.T) {
		err := Write(&bytes.Buffer{}, FormatText, 42)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestWriteHTMLEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHTML, sampleReport(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "&lt;b&gt;1&lt;/b&gt;")
	assert.NotContains(t, out, "<b>1</b>")
	assert.Contains(t, out, `class="changed"`)
}

func TestWriteHTMLPhysical(t *testing.T) {
	var buf bytes.Buffer
	ps := []structure.Physical{{Stream: "1Table", Name: "Table Clx", Start: 10, End: 31, Bytes: make([]byte, 21)}}
	require.NoError(t, Write(&buf, FormatHTML, ps))
	assert.Contains(t, buf.String(), "<td>Table Clx</td>")
	assert.Contains(t, buf.String(), "<td>21</td>")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), sampleStructures())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWriteHistory(t *testing.T) {
	at := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	entries := []archive.Entry{
		{Reference: "a.doc", Compared: "b.doc", CreatedAt: at, Summary: diff.Summary{ChangedItems: 3, LogicalChanged: 1}},
		{Reference: "a.doc", Compared: "a2.doc", CreatedAt: at},
	}

	var text bytes.Buffer
	require.NoError(t, Write(&text, FormatText, entries))
	assert.Contains(t, text.String(), "2026-05-04T03:02:01Z")
	assert.Contains(t, text.String(), "b.doc")
	assert.Contains(t, text.String(), "true")

	var page bytes.Buffer
	require.NoError(t, Write(&page, FormatHTML, entries))
	assert.Equal(t, 1, strings.Count(page.String(), `class="changed"`))
}

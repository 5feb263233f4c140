package word

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/c360studio/semdoc/propset"
)

// WordDocumentStream is the primary stream name.
const WordDocumentStream = "WordDocument"

// Structure names used in outcomes and projections.
const (
	StructFib        = "Fib"
	StructStyleSheet = "StyleSheet"
	StructPieceTable = "Piece Table"
	StructListTable  = "List Table"
	StructSummary    = "Summary Information"
	StructDocSummary = "Document Summary Information"
)

// Streams opens named streams of a compound file.
type Streams interface {
	OpenStream(name string) (io.ReadSeeker, error)
}

// Options tunes assembly.
type Options struct {
	// StrictPlex rejects plex blocks with trailing bytes instead of trimming them.
	StrictPlex bool
	// TableStreamFallback tries the other table stream when the selected one is missing.
	TableStreamFallback bool
	Logger              *slog.Logger
}

// DefaultOptions returns strict decoding with no fallback.
func DefaultOptions() Options {
	return Options{StrictPlex: true}
}

// Status is the result of decoding one sub-structure.
type Status string

const (
	StatusDecoded Status = "decoded"
	StatusAbsent  Status = "absent"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one sub-structure.
type Outcome struct {
	Structure string          `json:"structure"`
	Stream    string          `json:"stream"`
	Entry     *DirectoryEntry `json:"entry,omitempty"`
	Status    Status          `json:"status"`
	Err       error           `json:"-"`
}

// Error returns the failure message or "".
func (o Outcome) Error() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Document is an assembled Word binary document. It is read-only once built.
type Document struct {
	Fib         *Fib
	TableStream string
	StyleSheet  *StyleSheet
	PieceTable  *PieceTable
	ListTable   *ListTable
	Summary     *propset.SummaryInformation
	DocSummary  *propset.DocumentSummaryInformation
	Outcomes    []Outcome

	streams Streams
}

// Outcome returns the recorded outcome for a structure name.
func (d *Document) Outcome(structure string) (Outcome, bool) {
	for _, o := range d.Outcomes {
		if o.Structure == structure {
			return o, true
		}
	}
	return Outcome{}, false
}

// Failed returns the outcomes that did not decode.
func (d *Document) Failed() []Outcome {
	var out []Outcome
	for _, o := range d.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

type assembler struct {
	streams Streams
	opts    Options
	log     *slog.Logger
	doc     *Document
	table   []byte
}

// Assemble decodes a document from its streams. The FIB is decoded first and
// its fWhichTblStm flag picks the table stream before any directory entry is
// dereferenced. Each sub-structure is then decoded on its own: malformed or
// unsupported ones, including table blocks too short for their contents, are
// recorded in Outcomes, while a truncated FIB or property stream aborts the
// whole assembly.
func Assemble(streams Streams, opts Options) (*Document, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	a := &assembler{streams: streams, opts: opts, log: log, doc: &Document{streams: streams}}

	if err := a.fib(); err != nil {
		return nil, err
	}
	if err := a.tableStream(); err != nil {
		return nil, err
	}

	steps := []func() error{a.styleSheet, a.pieceTable, a.listTable, a.summary, a.docSummary}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return a.doc, nil
}

func (a *assembler) fib() error {
	rs, err := a.streams.OpenStream(WordDocumentStream)
	if err != nil {
		return fmt.Errorf("open %s: %w", WordDocumentStream, err)
	}
	fib, err := DecodeFib(rs)
	if err != nil {
		return fmt.Errorf("decode fib: %w", err)
	}
	a.doc.Fib = fib
	a.doc.Outcomes = append(a.doc.Outcomes, Outcome{Structure: StructFib, Stream: WordDocumentStream, Status: StatusDecoded})
	a.log.Debug("Decoded FIB",
		slog.Int("nFib", int(fib.NFib)),
		slog.String("revision", fib.Revision()),
		slog.Bool("complex", fib.Complex),
		slog.String("table_stream", fib.TableStreamName()))

	if fib.Encrypted {
		return fmt.Errorf("%w: document is encrypted", ErrUnsupportedVariant)
	}
	return nil
}

func (a *assembler) tableStream() error {
	name := a.doc.Fib.TableStreamName()
	rs, err := a.streams.OpenStream(name)
	if err != nil && a.opts.TableStreamFallback {
		other := "0Table"
		if name == other {
			other = "1Table"
		}
		a.log.Warn("Selected table stream missing, trying the other",
			slog.String("selected", name), slog.String("fallback", other))
		name = other
		rs, err = a.streams.OpenStream(name)
	}
	if err != nil {
		return fmt.Errorf("open table stream %s: %w", name, err)
	}
	table, err := io.ReadAll(rs)
	if err != nil {
		return fmt.Errorf("read table stream %s: %w", name, err)
	}
	a.doc.TableStream = name
	a.table = table
	return nil
}

// record stores the outcome of one sub-structure. Truncation of a stream is
// returned as fatal; every other failure is kept on the outcome only.
func (a *assembler) record(structure, stream string, entry *DirectoryEntry, err error) error {
	o := Outcome{Structure: structure, Stream: stream, Entry: entry, Status: StatusDecoded}
	switch {
	case err == nil:
		a.log.Debug("Decoded structure", slog.String("structure", structure))
	case errors.Is(err, errAbsent):
		o.Status = StatusAbsent
		a.log.Debug("Structure absent", slog.String("structure", structure))
	default:
		if entry != nil {
			err = &EntryError{Structure: structure, Entry: *entry, Err: err}
		} else {
			err = fmt.Errorf("decode %s (stream %s): %w", structure, stream, err)
		}
		o.Status = StatusFailed
		o.Err = err
		if errors.Is(err, ErrTruncated) {
			return err
		}
		a.log.Warn("Structure failed to decode",
			slog.String("structure", structure),
			slog.Any("error", err))
	}
	a.doc.Outcomes = append(a.doc.Outcomes, o)
	return nil
}

var errAbsent = errors.New("absent")

// blockOverrun turns a read past the end of a bounded table-stream block into
// a layout error. The block was already checked against the stream, so only
// the entry's declared length is wrong and the failure stays with that entry.
func blockOverrun(err error) error {
	if errors.Is(err, ErrTruncated) {
		return fmt.Errorf("%w: structure runs past its block: %v", ErrMalformedLayout, err)
	}
	return err
}

// block returns the table stream bytes for a directory entry after checking
// the entry's range against the stream.
func (a *assembler) block(name string, span func(ByteRange) ByteRange) (*DirectoryEntry, []byte, error) {
	e, ok := a.doc.Fib.Directory.Entry(name)
	if !ok {
		return nil, nil, errAbsent
	}
	r, ok := e.Range()
	if !ok {
		return &e, nil, errAbsent
	}
	if span != nil {
		r = span(r)
	}
	if err := r.Within(int64(len(a.table))); err != nil {
		return &e, nil, err
	}
	return &e, a.table[r.Offset:r.End()], nil
}

func (a *assembler) styleSheet() error {
	entry, b, err := a.block("Stshf", nil)
	if err == nil {
		a.doc.StyleSheet, err = DecodeStyleSheet(b)
		err = blockOverrun(err)
	}
	return a.record(StructStyleSheet, a.doc.TableStream, entry, err)
}

func (a *assembler) pieceTable() error {
	entry, b, err := a.block("Clx", nil)
	if err == nil {
		var pt PieceTable
		if pt, err = DecodePieceTable(b, a.opts.StrictPlex); err == nil {
			a.doc.PieceTable = &pt
		}
		err = blockOverrun(err)
	}
	return a.record(StructPieceTable, a.doc.TableStream, entry, err)
}

// listTable reads from fcPlfLst up to fcPlfLfo: lcbPlfLst covers only the
// LSTF array, not the LVL records that follow it.
func (a *assembler) listTable() error {
	entry, b, err := a.block("PlfLst", a.listSpan)
	if err == nil {
		a.doc.ListTable, err = DecodeListTable(b)
		err = blockOverrun(err)
	}
	return a.record(StructListTable, a.doc.TableStream, entry, err)
}

func (a *assembler) listSpan(r ByteRange) ByteRange {
	return ListTableSpan(r, a.doc.Fib.Directory, int64(len(a.table)))
}

// ListTableSpan widens the declared PlfLst range to end at the PlfLfo offset
// when that lies beyond it, or at the end of the table stream otherwise.
func ListTableSpan(declared ByteRange, dir Directory, tableLen int64) ByteRange {
	end := tableLen
	if lfo, ok := dir.Entry("PlfLfo"); ok && int64(lfo.Offset) > declared.Offset {
		end = int64(lfo.Offset)
	}
	if end < declared.End() {
		end = declared.End()
	}
	return ByteRange{Offset: declared.Offset, Length: end - declared.Offset}
}

func (a *assembler) summary() error {
	rs, err := a.optionalStream(propset.SummaryInformationStream)
	if err == nil {
		a.doc.Summary, err = propset.DecodeSummaryInformation(rs)
	}
	return a.record(StructSummary, propset.SummaryInformationStream, nil, err)
}

func (a *assembler) docSummary() error {
	rs, err := a.optionalStream(propset.DocSummaryInformationStream)
	if err == nil {
		a.doc.DocSummary, err = propset.DecodeDocumentSummaryInformation(rs)
	}
	return a.record(StructDocSummary, propset.DocSummaryInformationStream, nil, err)
}

func (a *assembler) optionalStream(name string) (io.ReadSeeker, error) {
	rs, err := a.streams.OpenStream(name)
	if err != nil {
		a.log.Debug("Property stream not available", slog.String("stream", name), slog.Any("error", err))
		return nil, errAbsent
	}
	return rs, nil
}

// openStream re-opens a stream for physical extraction.
func (d *Document) openStream(name string) ([]byte, error) {
	if d.streams == nil {
		return nil, fmt.Errorf("document has no backing streams")
	}
	rs, err := d.streams.OpenStream(name)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(rs)
}

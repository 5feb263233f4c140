package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/structure"
)

// textDoc is a one-field document used in place of a decoded Word file.
type textDoc struct{ raw []byte }

func (d textDoc) PhysicalStructures() ([]structure.Physical, error) {
	return []structure.Physical{{Stream: "file", Name: "All", End: int64(len(d.raw)), Bytes: d.raw}}, nil
}

func (d textDoc) LogicalStructures() []structure.Structure {
	s := structure.New("Text")
	s.Add("content", strings.TrimSpace(string(d.raw)), "")
	return []structure.Structure{*s}
}

func countingDecoder(n *atomic.Int64) Decoder {
	return func(data []byte) (diff.Source, error) {
		n.Add(1)
		if strings.HasPrefix(string(data), "bad") {
			return nil, errors.New("not a document")
		}
		return textDoc{raw: data}, nil
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig_GetDebounceDelay(t *testing.T) {
	tests := []struct {
		name   string
		delay  string
		expect time.Duration
	}{
		{name: "valid duration", delay: "100ms", expect: 100 * time.Millisecond},
		{name: "empty string uses default", delay: "", expect: 500 * time.Millisecond},
		{name: "invalid duration uses default", delay: "soon", expect: 500 * time.Millisecond},
		{name: "negative uses default", delay: "-1s", expect: 500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{DebounceDelay: tt.delay}
			assert.Equal(t, tt.expect, c.GetDebounceDelay())
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, []string{"**/*.doc"}, c.Paths)
	assert.Equal(t, 32, c.CacheSize)
	assert.Contains(t, c.ExcludeDirs, ".git")
}

func TestMatcher(t *testing.T) {
	root := filepath.FromSlash("/work/docs")
	m := newMatcher(root, []string{"**/*.doc", "specs/*.dot"}, []string{"node_modules"})

	tests := []struct {
		path string
		want bool
	}{
		{"a.doc", true},
		{"deep/nested/b.doc", true},
		{"a.docx", false},
		{"specs/t.dot", true},
		{"other/t.dot", false},
		{"node_modules/x/a.doc", false},
		{".hidden/a.doc", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.match(filepath.Join(root, filepath.FromSlash(tt.path))))
		})
	}
}

func TestExpand(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, filepath.Join(root, "a.doc"), "a")
	b := writeFile(t, filepath.Join(root, "sub", "b.doc"), "b")
	writeFile(t, filepath.Join(root, ".git", "c.doc"), "c")
	writeFile(t, filepath.Join(root, "vendor", "d.doc"), "d")
	writeFile(t, filepath.Join(root, "notes.txt"), "n")

	got, err := Expand(root, []string{"**/*.doc", "*.doc"}, []string{"vendor"})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)

	abs, err := Expand(root, []string{filepath.Join(root, "sub", "*.doc")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, abs)

	_, err = Expand(root, []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	var decodes atomic.Int64
	c, err := NewCache(2, countingDecoder(&decodes))
	require.NoError(t, err)

	doc1, h1, err := c.Decode([]byte("one"))
	require.NoError(t, err)
	again, h2, err := c.Decode([]byte("one"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, doc1, again)
	assert.Equal(t, int64(1), decodes.Load())

	_, _, err = c.Decode([]byte("bad data"))
	assert.Error(t, err)
	_, _, err = c.Decode([]byte("bad data"))
	assert.Error(t, err)
	assert.Equal(t, int64(3), decodes.Load())
	assert.Equal(t, 1, c.Len())

	_, _, err = c.Decode([]byte("two"))
	require.NoError(t, err)
	_, _, err = c.Decode([]byte("three"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, _, err = c.Decode([]byte("one"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), decodes.Load(), "evicted entry decodes again")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(6), misses)
}

func TestCacheLoad(t *testing.T) {
	var decodes atomic.Int64
	c, err := NewCache(0, countingDecoder(&decodes))
	require.NoError(t, err)

	path := writeFile(t, filepath.Join(t.TempDir(), "a.doc"), "hello")
	_, hash, err := c.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ContentHash([]byte("hello")), hash)

	_, _, err = c.Load(filepath.Join(t.TempDir(), "missing.doc"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func newTestRunner(t *testing.T, ref string, reports *[]*diff.Report) *Runner {
	t.Helper()
	var decodes atomic.Int64
	cache, err := NewCache(8, countingDecoder(&decodes))
	require.NoError(t, err)
	handle := func(_ context.Context, r *diff.Report) error {
		*reports = append(*reports, r)
		return nil
	}
	r, err := NewRunner(ref, cache, diff.Options{Physical: true}, handle, nil)
	require.NoError(t, err)
	return r
}

func TestRunnerCompare(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, filepath.Join(dir, "ref.doc"), "same")
	same := writeFile(t, filepath.Join(dir, "same.doc"), "same")
	changed := writeFile(t, filepath.Join(dir, "changed.doc"), "other")

	var reports []*diff.Report
	r := newTestRunner(t, ref, &reports)

	rep, err := r.Compare(context.Background(), same)
	require.NoError(t, err)
	assert.True(t, rep.Summary.Identical())

	rep, err = r.Compare(context.Background(), changed)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Summary.ChangedItems)
	assert.Equal(t, 1, rep.Summary.PhysicalChanged)
	assert.Equal(t, ref, rep.Reference)

	assert.Len(t, reports, 2)
	assert.Equal(t, []string{changed, same}, r.Compared())
}

func TestRunnerCompareErrors(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, filepath.Join(dir, "ref.doc"), "same")
	bad := writeFile(t, filepath.Join(dir, "bad.doc"), "bad")

	var reports []*diff.Report
	r := newTestRunner(t, ref, &reports)

	_, err := r.Compare(context.Background(), bad)
	assert.Error(t, err)
	assert.Empty(t, reports)
	assert.Empty(t, r.Compared())

	failing, err := NewRunner(ref, r.cache, diff.Options{}, func(context.Context, *diff.Report) error {
		return errors.New("sink down")
	}, nil)
	require.NoError(t, err)
	rep, err := failing.Compare(context.Background(), ref)
	assert.ErrorContains(t, err, "sink down")
	assert.NotNil(t, rep)
}

func TestRunnerHandleEvent(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, filepath.Join(dir, "ref.doc"), "v1")
	a := writeFile(t, filepath.Join(dir, "a.doc"), "v1")
	b := writeFile(t, filepath.Join(dir, "b.doc"), "v2")

	var reports []*diff.Report
	r := newTestRunner(t, ref, &reports)
	ctx := context.Background()

	r.HandleEvent(ctx, Event{Path: "a.doc", AbsPath: a, Operation: OpCreate})
	r.HandleEvent(ctx, Event{Path: "b.doc", AbsPath: b, Operation: OpModify})
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Summary.Identical())
	assert.False(t, reports[1].Summary.Identical())

	writeFile(t, ref, "v2")
	r.HandleEvent(ctx, Event{Path: "ref.doc", AbsPath: ref, Operation: OpModify})
	require.Len(t, reports, 4)
	assert.False(t, reports[2].Summary.Identical(), "a.doc now differs")
	assert.True(t, reports[3].Summary.Identical(), "b.doc now matches")

	r.HandleEvent(ctx, Event{Path: "a.doc", AbsPath: a, Operation: OpDelete})
	assert.Equal(t, []string{b}, r.Compared())
}

func TestRunnerRun(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, filepath.Join(dir, "ref.doc"), "v1")
	a := writeFile(t, filepath.Join(dir, "a.doc"), "v1")

	var reports []*diff.Report
	r := newTestRunner(t, ref, &reports)

	events := make(chan Event, 1)
	events <- Event{Path: "a.doc", AbsPath: a, Operation: OpCreate}
	close(events)
	require.NoError(t, r.Run(context.Background(), events))
	assert.Len(t, reports, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx, make(chan Event)), context.Canceled)
}

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DebounceDelay = "50ms"
	w, err := NewWatcher(cfg, root, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() { w.Stop() })

	time.Sleep(100 * time.Millisecond)
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for watch event")
		return Event{}
	}
}

func noEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherCreateAndModify(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	path := writeFile(t, filepath.Join(root, "new.doc"), "first")
	ev := nextEvent(t, w)
	assert.Equal(t, OpCreate, ev.Operation)
	assert.Equal(t, "new.doc", ev.Path)
	assert.NotEmpty(t, ev.Hash)

	writeFile(t, path, "second")
	ev = nextEvent(t, w)
	assert.Equal(t, OpModify, ev.Operation)
}

func TestWatcherSkipsUnchangedContent(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "a.doc"), "same")
	w := startWatcher(t, root)

	hash, ok := w.GetHash("a.doc")
	require.True(t, ok, "existing documents are hashed on start")
	assert.Equal(t, ContentHash([]byte("same")), hash)

	writeFile(t, path, "same")
	noEvent(t, w)
}

func TestWatcherDelete(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, filepath.Join(root, "a.doc"), "content")
	w := startWatcher(t, root)

	require.NoError(t, os.Remove(path))
	ev := nextEvent(t, w)
	assert.Equal(t, OpDelete, ev.Operation)
	assert.Equal(t, "a.doc", ev.Path)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	w := startWatcher(t, root)

	writeFile(t, filepath.Join(root, "notes.txt"), "text")
	writeFile(t, filepath.Join(root, ".git", "a.doc"), "hidden")
	noEvent(t, w)
}

func TestWatcherNewDirectory(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	time.Sleep(150 * time.Millisecond)
	writeFile(t, filepath.Join(root, "sub", "b.doc"), "b")

	ev := nextEvent(t, w)
	assert.Equal(t, "sub/b.doc", ev.Path)
	assert.Equal(t, OpCreate, ev.Operation)
}

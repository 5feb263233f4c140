package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/structure"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func report(ref, comp string, at time.Time, changed int) *diff.Report {
	fib := structure.New("Fib")
	fib.Add("nFib", "0xC1", "")
	return &diff.Report{
		ID:        uuid.New(),
		CreatedAt: at.UTC(),
		Reference: ref,
		Compared:  comp,
		Physical: []diff.PhysicalComparison{{
			Name:        "Fib Base",
			Reference:   &structure.Physical{Stream: "WordDocument", Name: "Fib Base", End: 2, Bytes: []byte{0xEC, 0xA5}},
			Compared:    &structure.Physical{Stream: "WordDocument", Name: "Fib Base", End: 2, Bytes: []byte{0xEC, 0xA6}},
			Differences: []diff.Range{{Start: 3, End: 4}},
		}},
		Logical: []diff.LogicalComparison{{
			Name:        "Fib",
			Reference:   fib,
			Compared:    fib,
			Differences: []bool{false},
		}},
		Summary: diff.Summary{ChangedItems: changed, PhysicalChanged: 1},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	r := report("a.doc", "b.doc", time.Now(), 2)

	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.True(t, r.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, r.Summary, got.Summary)
	require.Len(t, got.Physical, 1)
	assert.Equal(t, []diff.Range{{Start: 3, End: 4}}, got.Physical[0].Differences)
	assert.Equal(t, []byte{0xEC, 0xA6}, got.Physical[0].Compared.Bytes)
	require.Len(t, got.Logical, 1)
	assert.Equal(t, "Fib", got.Logical[0].Reference.Name)
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := report("a.doc", "b.doc", base, 1)
	newer := report("a.doc", "c.doc", base.Add(time.Hour), 5)
	other := report("x.doc", "y.doc", base.Add(2*time.Hour), 0)
	for _, r := range []*diff.Report{older, newer, other} {
		require.NoError(t, s.Save(ctx, r))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)
	assert.Equal(t, older.ID, all[2].ID)
	assert.Positive(t, all[0].CompressedSize)

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	forA, err := s.ForDocument(ctx, "a.doc", 0)
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, newer.ID, forA[0].ID)
	assert.Equal(t, 5, forA[0].Summary.ChangedItems)
	assert.Equal(t, base.Add(time.Hour), forA[0].CreatedAt)

	forC, err := s.ForDocument(ctx, "c.doc", 0)
	require.NoError(t, err)
	assert.Len(t, forC, 1)
}

func TestSaveReplacesAndDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	r := report("a.doc", "b.doc", time.Now(), 1)
	require.NoError(t, s.Save(ctx, r))

	r.Summary.ChangedItems = 9
	require.NoError(t, s.Save(ctx, r))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 9, all[0].Summary.ChangedItems)

	require.NoError(t, s.Delete(ctx, r.ID))
	assert.ErrorIs(t, s.Delete(ctx, r.ID), ErrNotFound)
}

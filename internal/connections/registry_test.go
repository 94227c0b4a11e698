package connections

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

func newRegistry(t *testing.T, content string) *FileRegistry {
	t.Helper()

	path := filepath.Join(t.TempDir(), "EIS_Connections.txt")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return NewFileRegistry(path)
}

func TestResolve_LastLineWins(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	reg := newRegistry(t, id.String()+";/data/old.xlsx\n"+
		other.String()+";/data/other.xlsx\n"+
		"not-a-guid;/data/bad.xlsx\n"+
		"garbage line\n"+
		id.String()+";/data/new.xlsx\n")

	path, err := reg.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "/data/new.xlsx", path)

	entries, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{ID: id, Path: "/data/new.xlsx"},
		{ID: other, Path: "/data/other.xlsx"},
	}, entries)
}

func TestResolve_Unknown(t *testing.T) {
	reg := newRegistry(t, "")

	_, err := reg.Resolve(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)

	var ue *core.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, core.UnknownConnectionCode, ue.User.Code)
}

func TestSave_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, "")
	id := uuid.New()

	require.NoError(t, reg.Save(ctx, id, "/data/a.xlsx"))
	path, err := reg.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/data/a.xlsx", path)

	require.NoError(t, reg.Save(ctx, id, "/data/b.xlsx"))
	path, err = reg.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/data/b.xlsx", path)

	data, err := os.ReadFile(reg.Path())
	require.NoError(t, err)
	assert.Equal(t, id.String()+";/data/b.xlsx\n", string(data))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	keep := uuid.New()
	reg := newRegistry(t, id.String()+";/a.xlsx\n"+keep.String()+";/k.xlsx\n"+id.String()+";/b.xlsx\n")

	_, err := reg.Resolve(ctx, id)
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, id))

	_, err = reg.Resolve(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound)

	path, err := reg.Resolve(ctx, keep)
	require.NoError(t, err)
	assert.Equal(t, "/k.xlsx", path)
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID(" " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("42")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, "CONN002", core.MapError(err).Code)
}

func TestConcurrentSaveResolve(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, "")

	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, reg.Save(ctx, id, filepath.Join("/data", id.String()+".xlsx")))
			_, _ = reg.Resolve(ctx, ids[(i+1)%len(ids)])
		}()
	}
	wg.Wait()

	entries, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, len(ids))
}

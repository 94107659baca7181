package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timemachine/schema"
)

// mapResolver hands out sequential ids per path.
type mapResolver struct {
	ids map[string]int64
	err error
}

func newMapResolver() *mapResolver { return &mapResolver{ids: map[string]int64{}} }

func (m *mapResolver) ResolveFileID(_ context.Context, path string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if id, ok := m.ids[path]; ok {
		return id, nil
	}
	id := int64(len(m.ids) + 1)
	m.ids[path] = id
	return id, nil
}

func blobs(content map[string][]byte) BlobReader {
	return func(_ context.Context, blob string) ([]byte, error) {
		if c, ok := content[blob]; ok {
			return c, nil
		}
		return nil, errors.New("blob not found: " + blob)
	}
}

func TestEffectivePath(t *testing.T) {
	assert.Equal(t, "new.go", EffectivePath(schema.ChangeEntry{Type: schema.ChangeAdded, NewPath: "new.go"}))
	assert.Equal(t, "gone.go", EffectivePath(schema.ChangeEntry{Type: schema.ChangeDeleted, OldPath: "gone.go"}))
	assert.Equal(t, "b.go", EffectivePath(schema.ChangeEntry{Type: schema.ChangeRenamed, OldPath: "a.go", NewPath: "b.go"}))
	assert.Equal(t, "a.go", EffectivePath(schema.ChangeEntry{Type: schema.ChangeModified, OldPath: "a.go"}))
}

func TestNormalizeChanges(t *testing.T) {
	ctx := context.Background()
	files := newMapResolver()
	entries := []schema.ChangeEntry{
		{Type: schema.ChangeAdded, NewPath: "src/a.go", NewBlob: "b1"},
		{Type: schema.ChangeModified, OldPath: "logo.png", NewPath: "logo.png", NewBlob: "b2"},
		{Type: schema.ChangeDeleted, OldPath: "old.txt"},
		{Type: schema.ChangeRenamed, OldPath: "x/y.py", NewPath: "z/y.py", NewBlob: "b3"},
		{Type: "U", OldPath: "conflict.go", NewPath: "conflict.go"},
	}
	stats := map[string]schema.LineStats{
		"src/a.go": {Insertions: 7},
		"old.txt":  {Deletions: 3},
		"z/y.py":   {Insertions: 1, Deletions: 1},
	}
	content := map[string][]byte{
		"b1": []byte("package a\n"),
		"b2": {0x89, 'P', 'N', 'G', 0x00, 0x01, 0x00},
		"b3": []byte("def f():\n    pass\n"),
	}

	got, err := NormalizeChanges(ctx, "c1", entries, stats, files, blobs(content))
	require.NoError(t, err)
	require.Len(t, got, 4)

	added := got[0]
	assert.Equal(t, "src/a.go", added.Path)
	assert.Equal(t, 7, added.Row.Additions)
	assert.Equal(t, "c1", added.Row.CommitID)
	assert.Equal(t, []byte("package a\n"), added.Content)
	assert.False(t, added.Row.IsBinary)

	binary := got[1]
	assert.True(t, binary.Row.IsBinary)
	assert.Nil(t, binary.Content)
	assert.Zero(t, binary.Row.Additions, "missing stats count as zero")

	deleted := got[2]
	assert.Equal(t, "old.txt", deleted.Path)
	assert.Equal(t, 3, deleted.Row.Deletions)
	assert.Nil(t, deleted.Content)

	renamed := got[3]
	assert.Equal(t, "z/y.py", renamed.Path)
	require.NotNil(t, renamed.Rename)
	assert.Equal(t, files.ids["x/y.py"], renamed.Rename.OldFileID)
	assert.Equal(t, files.ids["z/y.py"], renamed.Rename.NewFileID)
	assert.Equal(t, renamed.Row.FileID, renamed.Rename.NewFileID)

	_, tracked := files.ids["conflict.go"]
	assert.False(t, tracked, "unknown change types are dropped before resolving")
}

func TestNormalizeChangesDeletionKeepsFileID(t *testing.T) {
	ctx := context.Background()
	files := newMapResolver()
	read := blobs(map[string][]byte{"b1": []byte("x\n")})

	first, err := NormalizeChanges(ctx, "c1", []schema.ChangeEntry{
		{Type: schema.ChangeAdded, NewPath: "a.txt", NewBlob: "b1"},
	}, nil, files, read)
	require.NoError(t, err)

	second, err := NormalizeChanges(ctx, "c2", []schema.ChangeEntry{
		{Type: schema.ChangeDeleted, OldPath: "a.txt"},
	}, nil, files, read)
	require.NoError(t, err)

	assert.Equal(t, first[0].Row.FileID, second[0].Row.FileID)
}

func TestNormalizeChangesErrors(t *testing.T) {
	ctx := context.Background()
	entries := []schema.ChangeEntry{{Type: schema.ChangeAdded, NewPath: "a.go", NewBlob: "missing"}}

	_, err := NormalizeChanges(ctx, "c1", entries, nil, newMapResolver(), blobs(nil))
	assert.ErrorContains(t, err, "failed to read blob")

	_, err = NormalizeChanges(ctx, "c1", entries, nil, &mapResolver{err: assert.AnError}, blobs(nil))
	assert.ErrorIs(t, err, assert.AnError)
}

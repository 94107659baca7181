package core

import (
	"context"
	"fmt"

	"github.com/src-d/enry/v2"

	"github.com/huangsam/timemachine/schema"
)

// FileResolver maps a path to its stable file id.
type FileResolver interface {
	ResolveFileID(ctx context.Context, path string) (int64, error)
}

// BlobReader returns the content of a blob object.
type BlobReader func(ctx context.Context, blob string) ([]byte, error)

// NormalizedChange is one change row plus what the sampler and rename tracking need.
type NormalizedChange struct {
	Row     schema.CommitFile
	Path    string             // effective path
	Content []byte             // post-change content; nil for deletions and binaries
	Rename  *schema.FileRename // set for renames only
}

// EffectivePath is the path a change is keyed by: the post-change path,
// except for deletions where only the pre-change path exists.
func EffectivePath(e schema.ChangeEntry) string {
	if e.Type == schema.ChangeDeleted || e.NewPath == "" {
		return e.OldPath
	}
	return e.NewPath
}

// NormalizeChanges turns the raw diff entries of one commit into change rows.
// Line counts come from stats keyed by effective path and default to zero.
// Entries with an unknown change type are dropped.
func NormalizeChanges(
	ctx context.Context,
	commitID string,
	entries []schema.ChangeEntry,
	stats map[string]schema.LineStats,
	files FileResolver,
	readBlob BlobReader,
) ([]NormalizedChange, error) {
	out := make([]NormalizedChange, 0, len(entries))
	for _, e := range entries {
		if _, ok := schema.ValidChangeTypes[e.Type]; !ok {
			continue
		}
		path := EffectivePath(e)
		if path == "" {
			continue
		}

		fileID, err := files.ResolveFileID(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve file %q: %w", path, err)
		}

		counts := stats[path]
		nc := NormalizedChange{
			Path: path,
			Row: schema.CommitFile{
				CommitID:   commitID,
				FileID:     fileID,
				Additions:  counts.Insertions,
				Deletions:  counts.Deletions,
				ChangeType: e.Type,
				OldPath:    e.OldPath,
				NewPath:    e.NewPath,
			},
		}

		if e.Type != schema.ChangeDeleted && e.NewBlob != "" {
			content, err := readBlob(ctx, e.NewBlob)
			if err != nil {
				return nil, fmt.Errorf("failed to read blob of %q at %s: %w", path, commitID, err)
			}
			if enry.IsBinary(content) {
				nc.Row.IsBinary = true
			} else {
				nc.Content = content
			}
		}

		if e.Type == schema.ChangeRenamed && e.OldPath != "" && e.OldPath != path {
			oldID, err := files.ResolveFileID(ctx, e.OldPath)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve file %q: %w", e.OldPath, err)
			}
			nc.Rename = &schema.FileRename{CommitID: commitID, OldFileID: oldID, NewFileID: fileID}
		}

		out = append(out, nc)
	}
	return out, nil
}

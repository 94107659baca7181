package contract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/timemachine/schema"
)

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"

	// commitLogFormat emits one record per commit: hash, parents, author name, email, unix time, raw body.
	commitLogFormat = "%x1e%H%x1f%P%x1f%an%x1f%ae%x1f%at%x1f%B"

	nullObjectID  = "0000000000000000000000000000000000000000"
	submoduleMode = "160000"
)

// ParseCommitLog parses the output of git log run with commitLogFormat.
func ParseCommitLog(out []byte) ([]schema.CommitRecord, error) {
	var commits []schema.CommitRecord
	for _, record := range strings.Split(string(out), recordSep) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 6)
		if len(fields) != 6 {
			return nil, fmt.Errorf("malformed commit record: %q", truncateForError(record))
		}
		authored, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid author time for commit %s: %w", fields[0], err)
		}
		commits = append(commits, schema.CommitRecord{
			ID:           strings.TrimSpace(fields[0]),
			ParentIDs:    strings.Fields(fields[1]),
			AuthorName:   fields[2],
			AuthorEmail:  fields[3],
			AuthoredDate: authored,
			Message:      strings.TrimRight(fields[5], "\n"),
		})
	}
	return commits, nil
}

// ParseRawDiff parses `git diff-tree -r -z --raw` output into change entries.
// Copies are recorded as additions of the destination path.
func ParseRawDiff(out []byte) ([]schema.ChangeEntry, error) {
	// -z output ends with a NUL; drop it so the last path is not followed by an empty token
	tokens := strings.Split(strings.TrimSuffix(string(out), "\x00"), "\x00")
	var entries []schema.ChangeEntry
	for i := 0; i < len(tokens); i++ {
		meta := tokens[i]
		if meta == "" {
			continue
		}
		if !strings.HasPrefix(meta, ":") {
			return nil, fmt.Errorf("unexpected diff-tree token: %q", truncateForError(meta))
		}
		// :<old mode> <new mode> <old sha> <new sha> <status>
		parts := strings.Fields(meta[1:])
		if len(parts) != 5 {
			return nil, fmt.Errorf("malformed diff-tree entry: %q", truncateForError(meta))
		}
		newMode, newSHA, status := parts[1], parts[3], parts[4]

		entry := schema.ChangeEntry{}
		if newSHA != nullObjectID && newMode != submoduleMode {
			entry.NewBlob = newSHA
		}

		switch status[0] {
		case 'R', 'C':
			if i+2 >= len(tokens) || tokens[i+1] == "" || tokens[i+2] == "" {
				return nil, fmt.Errorf("truncated rename entry: %q", meta)
			}
			oldPath, newPath := tokens[i+1], tokens[i+2]
			i += 2
			if status[0] == 'R' {
				entry.Type = schema.ChangeRenamed
				entry.OldPath = oldPath
			} else {
				entry.Type = schema.ChangeAdded
			}
			entry.NewPath = newPath
		default:
			if i+1 >= len(tokens) || tokens[i+1] == "" {
				return nil, fmt.Errorf("truncated diff entry: %q", meta)
			}
			path := tokens[i+1]
			i++
			switch status[0] {
			case 'A':
				entry.Type = schema.ChangeAdded
				entry.NewPath = path
			case 'D':
				entry.Type = schema.ChangeDeleted
				entry.OldPath = path
				entry.NewBlob = ""
			case 'T':
				entry.Type = schema.ChangeTypeBits
				entry.OldPath, entry.NewPath = path, path
			default: // M and the rarely seen U / X
				entry.Type = schema.ChangeModified
				entry.OldPath, entry.NewPath = path, path
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseNumstat parses `git diff-tree -r -z --numstat` output. Renames are keyed by
// their destination path. Binary entries report "-" and count as zero.
func ParseNumstat(out []byte) (map[string]schema.LineStats, error) {
	tokens := strings.Split(string(out), "\x00")
	stats := make(map[string]schema.LineStats)
	for i := 0; i < len(tokens); i++ {
		line := strings.TrimLeft(tokens[i], "\n")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed numstat entry: %q", truncateForError(line))
		}
		path := parts[2]
		if path == "" {
			// rename or copy: the pre and post paths follow as separate tokens
			if i+2 >= len(tokens) || tokens[i+1] == "" || tokens[i+2] == "" {
				return nil, fmt.Errorf("truncated numstat rename: %q", line)
			}
			path = tokens[i+2]
			i += 2
		}
		stats[path] = schema.LineStats{
			Insertions: parseNumstatCount(parts[0]),
			Deletions:  parseNumstatCount(parts[1]),
		}
	}
	return stats, nil
}

func parseNumstatCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func truncateForError(s string) string {
	const maxLen = 80
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Ownership share label constants.
const (
	PrimaryValue = "Primary" // Primary owner
	MajorValue   = "Major"   // Major contributor
	MinorValue   = "Minor"   // Minor contributor
)

// Color variables for console output.
var (
	PrimaryColor = color.New(color.FgRed, color.Bold) // primaryColor marks the dominant owner.
	MajorColor   = color.New(color.FgYellow)          // majorColor marks a substantial share.
	MinorColor   = color.New(color.FgCyan)            // minorColor is informational.
	HeaderColor  = color.New(color.Bold)
)

// GetPlainLabel returns a plain text label for an author's share (0-100) of a file's commits.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(share float64) string {
	switch {
	case share >= 50:
		return PrimaryValue
	case share >= 20:
		return MajorValue
	default:
		return MinorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(share float64) string {
	text := GetPlainLabel(share)

	switch text {
	case PrimaryValue:
		return PrimaryColor.Sprint(text)
	case MajorValue:
		return MajorColor.Sprint(text)
	default:
		return MinorColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix (extension) matches.
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains(path, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."), strings.HasPrefix(ex, "_"):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the default SQLite history store.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timemachine.db"
	}
	return filepath.Join(homeDir, ".timemachine.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// NormalizePathPrefix turns a user-provided path into a repository-relative prefix
// with forward slashes. Absolute paths must lie inside repoPath. A trailing slash is kept.
func NormalizePathPrefix(repoPath, userPath string) (string, error) {
	if userPath == "" {
		return "", nil
	}
	trailing := strings.HasSuffix(userPath, "/") || strings.HasSuffix(userPath, string(filepath.Separator))

	if filepath.IsAbs(userPath) {
		if repoPath == "" {
			return "", fmt.Errorf("absolute path %s needs a known repository", userPath)
		}
		relPath, err := filepath.Rel(repoPath, userPath)
		if err != nil {
			return "", fmt.Errorf("path is outside repository: %s", userPath)
		}
		userPath = relPath
	}

	cleanPath := filepath.Clean(userPath)
	if strings.HasPrefix(cleanPath, "..") {
		return "", fmt.Errorf("path is outside repository: %s", userPath)
	}
	if cleanPath == "." {
		return "", nil
	}

	normalized := strings.ReplaceAll(cleanPath, string(filepath.Separator), "/")
	if trailing {
		normalized += "/"
	}
	return normalized, nil
}

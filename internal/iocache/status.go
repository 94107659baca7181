package iocache

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/huangsam/timemachine/schema"
)

// PrintStoreStatus writes store status information to w.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d", status.SchemaVersion)
	if status.Dirty {
		_, _ = fmt.Fprint(w, " (dirty)")
	}
	_, _ = fmt.Fprintln(w)
	if status.SchemaVersion == 0 {
		return
	}

	if status.RepoDir != "" {
		_, _ = fmt.Fprintf(w, "Repository: %s\n", status.RepoDir)
	}
	if status.LastRunID != "" {
		_, _ = fmt.Fprintf(w, "Last Run ID: %s\n", status.LastRunID)
	}
	if status.LastHead != "" {
		_, _ = fmt.Fprintf(w, "Last Head: %s\n", status.LastHead)
	}
	if !status.LastIndexedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "Last Indexed: %s (%s)\n",
			status.LastIndexedAt.Format("2006-01-02 15:04:05"), humanize.Time(status.LastIndexedAt))
	}
	if !status.OldestCommit.IsZero() {
		_, _ = fmt.Fprintf(w, "History: %s to %s\n",
			status.OldestCommit.Format("2006-01-02"), status.NewestCommit.Format("2006-01-02"))
	}

	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range schema.AllTables {
		if size, ok := status.TableSizes[table]; ok {
			_, _ = fmt.Fprintf(w, "  %s: %s rows\n", table, humanize.Comma(size))
		}
	}
	if status.SizeBytes > 0 {
		_, _ = fmt.Fprintf(w, "File Size: %s\n", humanize.Bytes(uint64(status.SizeBytes)))
	}
}

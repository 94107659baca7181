package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/parquet"
	"github.com/huangsam/timemachine/schema"
)

// ExecuteStoreExport exports commits, changes, features and ownership to Parquet files next to outputFile.
func ExecuteStoreExport(ctx context.Context, store contract.HistoryReader, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TableSizes[schema.TableCommits] == 0 {
		return errors.New("no indexed history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	commits, err := store.ExportCommits(ctx)
	if err != nil {
		return err
	}
	commitsFile := outputFile + ".commits.parquet"
	if err := parquet.WriteCommitsParquet(parquet.ConvertCommits(commits), commitsFile); err != nil {
		return fmt.Errorf("failed to write commits: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d commits to: %s\n", len(commits), commitsFile)

	changes, err := store.ExportChanges(ctx)
	if err != nil {
		return err
	}
	changesFile := outputFile + ".changes.parquet"
	if err := parquet.WriteChangesParquet(parquet.ConvertChanges(changes), changesFile); err != nil {
		return fmt.Errorf("failed to write changes: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d changes to: %s\n", len(changes), changesFile)

	features, err := store.ExportFeatures(ctx)
	if err != nil {
		return err
	}
	featuresFile := outputFile + ".features.parquet"
	if err := parquet.WriteFeaturesParquet(parquet.ConvertFeatures(features), featuresFile); err != nil {
		return fmt.Errorf("failed to write features: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d features to: %s\n", len(features), featuresFile)

	ownership, err := store.ExportOwnership(ctx)
	if err != nil {
		return err
	}
	ownershipFile := outputFile + ".ownership.parquet"
	if err := parquet.WriteOwnershipParquet(parquet.ConvertOwnership(ownership), ownershipFile); err != nil {
		return fmt.Errorf("failed to write ownership: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d ownership rows to: %s\n", len(ownership), ownershipFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	return nil
}

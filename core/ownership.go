package core

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/huangsam/timemachine/internal/contract"
)

// ComputeOwnership replaces the ownership table with aggregates over every change row.
// On failure the previous table is left intact.
func ComputeOwnership(ctx context.Context, store contract.HistoryWriter, log logrus.FieldLogger) (int64, error) {
	rows, err := store.RebuildOwnership(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild ownership: %w", err)
	}
	log.WithField("rows", rows).Info("ownership rebuilt")
	return rows, nil
}

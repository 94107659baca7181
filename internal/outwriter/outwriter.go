// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnswer prints the commits answering a question using the configured output format.
func (ow *OutWriter) WriteAnswer(answer schema.Answer, cfg *contract.Config) error {
	return PrintAnswer(answer, cfg)
}

// WriteOwnership prints per-file ownership rows using the configured output format.
func (ow *OutWriter) WriteOwnership(rows []schema.Ownership, cfg *contract.Config) error {
	return PrintOwnership(rows, cfg)
}

// WriteIndexSummary prints the outcome of an indexing run using the configured output format.
func (ow *OutWriter) WriteIndexSummary(summary schema.IndexSummary, cfg *contract.Config) error {
	return PrintIndexSummary(summary, cfg)
}

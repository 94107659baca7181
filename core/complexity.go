package core

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// SampleComplexity measures one change's post-change content.
// It returns false whenever no sample should be written: the capability is
// unavailable, the path is excluded, the change has no content, the analyzer
// does not support the file, or the analyzer fails or panics.
func SampleComplexity(
	c contract.Complexity,
	change NormalizedChange,
	excludes []string,
	log logrus.FieldLogger,
) (sample schema.ComplexitySample, ok bool) {
	if !c.Available() || change.Content == nil || change.Row.IsBinary {
		return schema.ComplexitySample{}, false
	}
	if change.Row.ChangeType == schema.ChangeDeleted || contract.ShouldIgnore(change.Path, excludes) {
		return schema.ComplexitySample{}, false
	}

	report, err := analyzeSafely(c, change.Path, change.Content)
	if err != nil {
		log.WithFields(logrus.Fields{
			"commit": change.Row.CommitID,
			"path":   change.Path,
		}).WithError(err).Debug("skipping complexity sample")
		return schema.ComplexitySample{}, false
	}
	if report == nil {
		return schema.ComplexitySample{}, false
	}

	return schema.ComplexitySample{
		FileID:    change.Row.FileID,
		CommitID:  change.Row.CommitID,
		NLOC:      report.NLOC,
		CCN:       report.TotalCCN(),
		Functions: len(report.Functions),
	}, true
}

// analyzeSafely converts analyzer panics into errors.
func analyzeSafely(c contract.Complexity, path string, src []byte) (report *schema.ComplexityReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report, err = nil, fmt.Errorf("analyzer panic on %s: %v", path, r)
		}
	}()
	return c.Analyze(path, src)
}

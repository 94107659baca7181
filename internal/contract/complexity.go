package contract

import "github.com/huangsam/timemachine/schema"

// AnalyzeFunc measures one file's content. A nil report with a nil error means the
// analyzer has nothing to say about the file, e.g. an unsupported language.
type AnalyzeFunc func(path string, src []byte) (*schema.ComplexityReport, error)

// Complexity is the optional complexity analysis capability. It is resolved once
// at startup and passed to the indexer. The zero value is unavailable.
type Complexity struct {
	analyze AnalyzeFunc
}

// AvailableComplexity wraps an analyzer.
func AvailableComplexity(fn AnalyzeFunc) Complexity {
	return Complexity{analyze: fn}
}

// UnavailableComplexity returns the capability that never samples.
func UnavailableComplexity() Complexity {
	return Complexity{}
}

// Available reports whether an analyzer is configured.
func (c Complexity) Available() bool {
	return c.analyze != nil
}

// Analyze runs the analyzer on one file.
func (c Complexity) Analyze(path string, src []byte) (*schema.ComplexityReport, error) {
	if c.analyze == nil {
		return nil, ErrComplexityUnavailable
	}
	return c.analyze(path, src)
}

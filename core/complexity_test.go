package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

func goChange(path string) NormalizedChange {
	return NormalizedChange{
		Path:    path,
		Content: []byte("package p\n\nfunc F(n int) int {\n\tif n > 0 {\n\t\treturn n\n\t}\n\treturn 0\n}\n"),
		Row:     schema.CommitFile{CommitID: "c1", FileID: 4, ChangeType: schema.ChangeAdded, NewPath: path},
	}
}

func TestSampleComplexity(t *testing.T) {
	log := contract.NewDiscardLogger()
	excludes := contract.DefaultComplexityExcludes

	sample, ok := SampleComplexity(ResolveComplexity(true), goChange("pkg/f.go"), excludes, log)
	assert.True(t, ok)
	assert.Equal(t, int64(4), sample.FileID)
	assert.Equal(t, "c1", sample.CommitID)
	assert.Equal(t, 2, sample.CCN)
	assert.Equal(t, 1, sample.Functions)
	assert.Positive(t, sample.NLOC)
}

func TestSampleComplexitySkips(t *testing.T) {
	log := contract.NewDiscardLogger()
	excludes := contract.DefaultComplexityExcludes

	binary := goChange("f.go")
	binary.Row.IsBinary = true
	empty := goChange("f.go")
	empty.Content = nil

	failing := contract.AvailableComplexity(func(string, []byte) (*schema.ComplexityReport, error) {
		return nil, assert.AnError
	})
	panicking := contract.AvailableComplexity(func(string, []byte) (*schema.ComplexityReport, error) {
		panic("parser blew up")
	})
	unsupported := contract.AvailableComplexity(func(string, []byte) (*schema.ComplexityReport, error) {
		return nil, nil
	})

	tests := []struct {
		name   string
		c      contract.Complexity
		change NormalizedChange
	}{
		{"unavailable", ResolveComplexity(false), goChange("f.go")},
		{"excluded vendor", ResolveComplexity(true), goChange("vendor/lib/f.go")},
		{"excluded generated", ResolveComplexity(true), goChange("api/v1/api.pb.go")},
		{"binary", ResolveComplexity(true), binary},
		{"no content", ResolveComplexity(true), empty},
		{"analyzer error", failing, goChange("f.go")},
		{"analyzer panic", panicking, goChange("f.go")},
		{"unsupported language", unsupported, goChange("f.go")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := SampleComplexity(tt.c, tt.change, excludes, log)
			assert.False(t, ok)
		})
	}
}

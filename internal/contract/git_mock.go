package contract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/timemachine/schema"
)

// MockGitClient is a testify mock for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	var mockArgs []any
	mockArgs = append(mockArgs, ctx, repoPath)
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(ctx context.Context, repoURL string, dir string) error {
	return m.Called(ctx, repoURL, dir).Error(0)
}

// ListCommits implements the GitClient interface.
func (m *MockGitClient) ListCommits(ctx context.Context, repoPath string, ref string) ([]schema.CommitRecord, error) {
	ret := m.Called(ctx, repoPath, ref)
	commits, _ := ret.Get(0).([]schema.CommitRecord)
	return commits, ret.Error(1)
}

// Diff implements the GitClient interface.
func (m *MockGitClient) Diff(ctx context.Context, repoPath string, commit string, parent string) ([]schema.ChangeEntry, error) {
	ret := m.Called(ctx, repoPath, commit, parent)
	entries, _ := ret.Get(0).([]schema.ChangeEntry)
	return entries, ret.Error(1)
}

// Stats implements the GitClient interface.
func (m *MockGitClient) Stats(ctx context.Context, repoPath string, commit string, parent string) (map[string]schema.LineStats, error) {
	ret := m.Called(ctx, repoPath, commit, parent)
	stats, _ := ret.Get(0).(map[string]schema.LineStats)
	return stats, ret.Error(1)
}

// ReadBlob implements the GitClient interface.
func (m *MockGitClient) ReadBlob(ctx context.Context, repoPath string, blob string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, blob)
	content, _ := ret.Get(0).([]byte)
	return content, ret.Error(1)
}

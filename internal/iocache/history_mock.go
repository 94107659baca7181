package iocache

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// ResolveFileID implements the HistoryStore interface.
func (m *MockHistoryStore) ResolveFileID(ctx context.Context, path string) (int64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(int64), args.Error(1)
}

// AppendCommits implements the HistoryStore interface.
func (m *MockHistoryStore) AppendCommits(ctx context.Context, rows []schema.Commit) (int64, error) {
	args := m.Called(ctx, rows)
	return args.Get(0).(int64), args.Error(1)
}

// AppendChanges implements the HistoryStore interface.
func (m *MockHistoryStore) AppendChanges(ctx context.Context, rows []schema.CommitFile) error {
	return m.Called(ctx, rows).Error(0)
}

// ReplaceChanges implements the HistoryStore interface.
func (m *MockHistoryStore) ReplaceChanges(ctx context.Context, commitIDs []string, rows []schema.CommitFile, renames []schema.FileRename) error {
	return m.Called(ctx, commitIDs, rows, renames).Error(0)
}

// AppendRenames implements the HistoryStore interface.
func (m *MockHistoryStore) AppendRenames(ctx context.Context, rows []schema.FileRename) error {
	return m.Called(ctx, rows).Error(0)
}

// AppendFeatures implements the HistoryStore interface.
func (m *MockHistoryStore) AppendFeatures(ctx context.Context, rows []schema.FeatureReference) error {
	return m.Called(ctx, rows).Error(0)
}

// ReplaceFeatures implements the HistoryStore interface.
func (m *MockHistoryStore) ReplaceFeatures(ctx context.Context, commitIDs []string, rows []schema.FeatureReference) error {
	return m.Called(ctx, commitIDs, rows).Error(0)
}

// UpsertComplexity implements the HistoryStore interface.
func (m *MockHistoryStore) UpsertComplexity(ctx context.Context, rows []schema.ComplexitySample) error {
	return m.Called(ctx, rows).Error(0)
}

// SetMeta implements the HistoryStore interface.
func (m *MockHistoryStore) SetMeta(ctx context.Context, key string, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

// RebuildOwnership implements the HistoryStore interface.
func (m *MockHistoryStore) RebuildOwnership(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetMeta implements the HistoryStore interface.
func (m *MockHistoryStore) GetMeta(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

// SearchCommitsByMessage implements the HistoryStore interface.
func (m *MockHistoryStore) SearchCommitsByMessage(ctx context.Context, likePattern string, limit int) ([]schema.Commit, error) {
	args := m.Called(ctx, likePattern, limit)
	rows, _ := args.Get(0).([]schema.Commit)
	return rows, args.Error(1)
}

// SearchCommitsByPath implements the HistoryStore interface.
func (m *MockHistoryStore) SearchCommitsByPath(ctx context.Context, likePatterns []string, limit int) ([]schema.Commit, error) {
	args := m.Called(ctx, likePatterns, limit)
	rows, _ := args.Get(0).([]schema.Commit)
	return rows, args.Error(1)
}

// OwnershipByPath implements the HistoryStore interface.
func (m *MockHistoryStore) OwnershipByPath(ctx context.Context, prefix string, limit int) ([]schema.Ownership, error) {
	args := m.Called(ctx, prefix, limit)
	rows, _ := args.Get(0).([]schema.Ownership)
	return rows, args.Error(1)
}

// OwnershipByAuthor implements the HistoryStore interface.
func (m *MockHistoryStore) OwnershipByAuthor(ctx context.Context, limit int) ([]schema.AuthorShare, error) {
	args := m.Called(ctx, limit)
	rows, _ := args.Get(0).([]schema.AuthorShare)
	return rows, args.Error(1)
}

// WeeklyChurn implements the HistoryStore interface.
func (m *MockHistoryStore) WeeklyChurn(ctx context.Context) ([]schema.ChurnPoint, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.ChurnPoint)
	return rows, args.Error(1)
}

// ComplexityTrend implements the HistoryStore interface.
func (m *MockHistoryStore) ComplexityTrend(ctx context.Context) ([]schema.ComplexityPoint, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.ComplexityPoint)
	return rows, args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// ExportCommits implements the HistoryStore interface.
func (m *MockHistoryStore) ExportCommits(ctx context.Context) ([]schema.Commit, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.Commit)
	return rows, args.Error(1)
}

// ExportChanges implements the HistoryStore interface.
func (m *MockHistoryStore) ExportChanges(ctx context.Context) ([]schema.CommitFile, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.CommitFile)
	return rows, args.Error(1)
}

// ExportFeatures implements the HistoryStore interface.
func (m *MockHistoryStore) ExportFeatures(ctx context.Context) ([]schema.FeatureReference, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.FeatureReference)
	return rows, args.Error(1)
}

// ExportOwnership implements the HistoryStore interface.
func (m *MockHistoryStore) ExportOwnership(ctx context.Context) ([]schema.Ownership, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.Ownership)
	return rows, args.Error(1)
}

// Initialize implements the HistoryStore interface.
func (m *MockHistoryStore) Initialize(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Backend implements the HistoryStore interface.
func (m *MockHistoryStore) Backend() schema.DatabaseBackend {
	return m.Called().Get(0).(schema.DatabaseBackend)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	return m.Called().Error(0)
}

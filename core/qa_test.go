package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/timemachine/internal/iocache"
	"github.com/huangsam/timemachine/schema"
)

var loginCommit = schema.Commit{
	ID: "abc1234567890", AuthorName: "Alice Doe", AuthorEmail: "alice@example.com",
	AuthoredDate: 1700000000, Message: "Add login throttle",
}

func TestAsk_Auth(t *testing.T) {
	ctx := context.Background()
	store := new(iocache.MockHistoryStore)
	store.On("SearchCommitsByPath", ctx, []string{
		"%auth%", "%login%", "%signin%", "%jwt%", "%oauth%", "%sso%",
		"%session%", "%password%", "%authorization%", "%authentication%",
	}, authLimit).Return([]schema.Commit{loginCommit}, nil)

	answer, err := Ask(ctx, store, "How did Authentication evolve?", 5)
	require.NoError(t, err)
	assert.Equal(t, authTitle, answer.Title)
	assert.Equal(t, []schema.Commit{loginCommit}, answer.Commits)
	assert.Contains(t, answer.String(), "Authentication / Authorization evolution:\n2023-11-14 | abc1234567 |")
	store.AssertExpectations(t)
}

func TestAsk_AuthEmpty(t *testing.T) {
	store := new(iocache.MockHistoryStore)
	store.On("SearchCommitsByPath", mock.Anything, mock.Anything, authLimit).Return(nil, nil)

	answer, err := Ask(context.Background(), store, "login changes", 0)
	require.NoError(t, err)
	assert.Equal(t, "Authentication / Authorization evolution: no related commits found.", answer.String())
}

func TestAsk_Rationale(t *testing.T) {
	tests := []struct {
		question string
		pattern  string
	}{
		{"Why was the queue introduced?", "%why%introduc%"},
		{"what was the motivation for the refactor", "%motivation%refactor%"},
		{"Which PATTERN does the cache use?", "%pattern%"},
		{"reasoning behind this", "%reason%"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			ctx := context.Background()
			store := new(iocache.MockHistoryStore)
			store.On("SearchCommitsByMessage", ctx, tt.pattern, rationaleLimit).Return([]schema.Commit{loginCommit}, nil)

			answer, err := Ask(ctx, store, tt.question, 3)
			require.NoError(t, err)
			assert.Empty(t, answer.Title)
			assert.Len(t, answer.Commits, 1)
			store.AssertExpectations(t)
		})
	}
}

func TestAsk_RationaleEmpty(t *testing.T) {
	store := new(iocache.MockHistoryStore)
	store.On("SearchCommitsByMessage", mock.Anything, "%why%", rationaleLimit).Return(nil, nil)

	answer, err := Ask(context.Background(), store, "why?", 10)
	require.NoError(t, err)
	assert.Contains(t, answer.String(), "No explicit rationale found")
}

func TestAsk_Fallback(t *testing.T) {
	ctx := context.Background()
	store := new(iocache.MockHistoryStore)
	store.On("SearchCommitsByMessage", ctx, "%database%migration%", 7).Return([]schema.Commit{loginCommit}, nil)

	answer, err := Ask(ctx, store, "Database migration", 7)
	require.NoError(t, err)
	assert.Len(t, answer.Commits, 1)
	store.AssertNotCalled(t, "SearchCommitsByPath", mock.Anything, mock.Anything, mock.Anything)
}

func TestAsk_FallbackToPaths(t *testing.T) {
	ctx := context.Background()
	store := new(iocache.MockHistoryStore)
	store.On("SearchCommitsByMessage", ctx, "%parquet%writer%", 20).Return(nil, nil)
	store.On("SearchCommitsByPath", ctx, []string{"%parquet%writer%"}, 20).Return([]schema.Commit{loginCommit}, nil)

	answer, err := Ask(ctx, store, "parquet writer", 0)
	require.NoError(t, err)
	assert.Len(t, answer.Commits, 1)
	store.AssertExpectations(t)
}

func TestAsk_NoKeywords(t *testing.T) {
	store := new(iocache.MockHistoryStore)

	answer, err := Ask(context.Background(), store, "is it ok?", 10)
	require.NoError(t, err)
	assert.Equal(t, "No searchable keywords detected. Try a more specific query.", answer.String())
	store.AssertExpectations(t)
}

func TestAsk_StoreError(t *testing.T) {
	store := new(iocache.MockHistoryStore)
	store.On("SearchCommitsByMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := Ask(context.Background(), store, "cache eviction", 10)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"how", "does", "the", "cache", "eviction", "work"}, Keywords("how does the cache eviction work"))
	assert.Equal(t, []string{"api", "123"}, Keywords("an api-123 x"))
	assert.Empty(t, Keywords("a b c"))
}

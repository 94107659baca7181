package core

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/schema"
)

// Answer limits per question kind.
const (
	authLimit      = 200
	rationaleLimit = 100
)

const authTitle = "Authentication / Authorization evolution"

// AuthKeywords route a question to the authentication evolution answer.
var AuthKeywords = []string{
	"auth", "login", "signin", "jwt", "oauth", "sso", "session", "password", "authorization", "authentication",
}

// rationaleTriggers route a question to the rationale search.
var rationaleTriggers = []string{"why", "reason", "motivation", "pattern"}

// rationaleSearchWords are joined, in this order, into the message pattern of a rationale search.
var rationaleSearchWords = []string{
	"why", "because", "reason", "motivation", "introduc", "refactor", "rfc", "design", "pattern",
}

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

// Ask answers a free-text question with keyword searches over the store.
// limit bounds the fallback search only.
func Ask(ctx context.Context, store contract.HistoryReader, question string, limit int) (schema.Answer, error) {
	if limit <= 0 {
		limit = contract.DefaultResultLimit
	}
	q := strings.ToLower(question)

	if containsAny(q, AuthKeywords) {
		patterns := make([]string, len(AuthKeywords))
		for i, k := range AuthKeywords {
			patterns[i] = "%" + k + "%"
		}
		commits, err := store.SearchCommitsByPath(ctx, patterns, authLimit)
		if err != nil {
			return schema.Answer{}, err
		}
		return schema.Answer{Title: authTitle, Commits: commits, Empty: authTitle + ": no related commits found."}, nil
	}

	if containsAny(q, rationaleTriggers) {
		var words []string
		for _, w := range rationaleSearchWords {
			if strings.Contains(q, w) {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			words = []string{"why"}
		}
		commits, err := store.SearchCommitsByMessage(ctx, likeAll(words), rationaleLimit)
		if err != nil {
			return schema.Answer{}, err
		}
		return schema.Answer{
			Commits: commits,
			Empty:   "No explicit rationale found in commit messages. Try different keywords or search an RFC directory.",
		}, nil
	}

	keywords := Keywords(q)
	if len(keywords) == 0 {
		return schema.Answer{Empty: "No searchable keywords detected. Try a more specific query."}, nil
	}
	pattern := likeAll(keywords)
	commits, err := store.SearchCommitsByMessage(ctx, pattern, limit)
	if err != nil {
		return schema.Answer{}, err
	}
	if len(commits) == 0 {
		if commits, err = store.SearchCommitsByPath(ctx, []string{pattern}, limit); err != nil {
			return schema.Answer{}, err
		}
	}
	return schema.Answer{Commits: commits, Empty: "No relevant commits found."}, nil
}

// Keywords splits a lower-cased question into alphanumeric tokens of at least three characters.
func Keywords(q string) []string {
	return slices.DeleteFunc(tokenSplit.Split(q, -1), func(w string) bool { return len(w) < 3 })
}

func containsAny(s string, words []string) bool {
	return slices.ContainsFunc(words, func(w string) bool { return strings.Contains(s, w) })
}

// likeAll builds a LIKE pattern matching the words in order.
func likeAll(words []string) string {
	return "%" + strings.Join(words, "%") + "%"
}

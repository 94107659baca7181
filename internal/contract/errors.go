package contract

import "errors"

var (
	// ErrConstraint marks a batch write rejected by the store, such as a reference to an unknown commit or file.
	ErrConstraint = errors.New("store constraint violation")

	// ErrGitUnavailable marks a failure to run the git executable at all.
	ErrGitUnavailable = errors.New("git executable unavailable")

	// ErrComplexityUnavailable is returned when analysis is requested but no analyzer is configured.
	ErrComplexityUnavailable = errors.New("complexity analyzer unavailable")
)

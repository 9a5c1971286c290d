package orchestrator

import "errors"

// Sentinel errors let callers distinguish why Analyze failed or degraded,
// via errors.Is, instead of matching on error strings.
var (
	// ErrEmptyPrompt is returned when the prompt text is empty or entirely
	// whitespace.
	ErrEmptyPrompt = errors.New("orchestrator: prompt is empty")

	// ErrPromptTooLarge is returned when the prompt text exceeds the
	// configured maximum length.
	ErrPromptTooLarge = errors.New("orchestrator: prompt exceeds maximum length")

	// ErrStorage wraps a persistence failure for logging. Analyze does not
	// return it: the full result comes back with a nil error, Persisted
	// left false, and a warning added to Warnings.
	ErrStorage = errors.New("orchestrator: storage failure")

	// ErrCancelled is returned when the request context is cancelled before
	// an analysis completes. No partial result is returned.
	ErrCancelled = errors.New("orchestrator: analysis cancelled")

	// ErrDeadlineExceeded is returned when the analysis deadline elapses.
	// Analyze still returns the best-effort partial result computed so far.
	ErrDeadlineExceeded = errors.New("orchestrator: analysis deadline exceeded")
)

package store

import "errors"

// Sentinel errors returned by the session store. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrEraseFailed is returned when the session directory could not be
	// removed within the retry policy. The last removal error is wrapped.
	ErrEraseFailed = errors.New("session directory erase failed")

	// ErrInvalidRetryPolicy is returned when a [RetryPolicy] allows no
	// attempts or has a non-positive interval.
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")

	// ErrWatcherFailed is returned when the credentials watcher cannot be
	// started.
	ErrWatcherFailed = errors.New("failed to start credentials watcher")
)

// Low-level database operation errors of the event journal.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when a result row cannot be scanned or
	// decoded.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrEventNotSaved is returned when an INSERT affects no rows.
	ErrEventNotSaved = errors.New("event was not saved")
)

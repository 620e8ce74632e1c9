package domain

import "context"

// StatementClient submits SQL statements to an asynchronous query API and
// observes their progress. Implementations never assume synchronous
// completion; a submitted statement resolves only through Poll.
type StatementClient interface {
	// Submit sends one statement under the given session and returns its
	// statement id. The first submit of a chain establishes the session;
	// subsequent submits reuse it. Outright rejection yields a SubmitError.
	Submit(ctx context.Context, sess *Session, sql string) (string, error)

	// Poll fetches the current status of a submitted statement. Transient
	// failures yield a PollError.
	Poll(ctx context.Context, id string) (*StatementStatus, error)

	// FetchResult retrieves the result set of a finished statement.
	FetchResult(ctx context.Context, id string) (*ResultSet, error)
}

// RunRecordSink persists run records. Sinks are append-only and fed from
// terminal attempt outcomes; writes of individual records are serialized by
// the caller.
type RunRecordSink interface {
	Append(ctx context.Context, rec RunRecord) error
}

package session

import "context"

// Reporter forwards client errors to an error aggregation service.
// Reporting is best-effort: implementations must not block the request
// path or panic.
type Reporter interface {
	CaptureException(ctx context.Context, err error, extra map[string]any)
}

// NewNoopReporter returns a Reporter that discards everything. It is the
// default for sessions constructed without a reporter.
func NewNoopReporter() Reporter {
	return noopReporter{}
}

type noopReporter struct{}

func (noopReporter) CaptureException(context.Context, error, map[string]any) {}

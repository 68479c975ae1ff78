package session

import (
	"context"

	sentry "github.com/getsentry/sentry-go"
)

// SentryReporter implements Reporter on top of a Sentry hub.
type SentryReporter struct {
	hub *sentry.Hub
}

var _ Reporter = (*SentryReporter)(nil)

// NewSentryReporter wraps the given hub; a nil hub falls back to the
// current global hub.
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryReporter{hub: hub}
}

// CaptureException forwards the error to Sentry with the extra context
// attached to the event scope.
func (r *SentryReporter) CaptureException(_ context.Context, err error, extra map[string]any) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		if len(extra) > 0 {
			scope.SetExtras(extra)
		}
		r.hub.CaptureException(err)
	})
}

package session

import (
	"context"
	"strconv"

	"github.com/gaborage/go-courier/logger"
	"github.com/gaborage/go-courier/metrics"
)

// eventName namespaces a log event under the configured prefix.
func (s *session) eventName(category string) string {
	return s.logPrefix + "." + category
}

// emitSuccess records the counter and log line for a completed call.
func (s *session) emitSuccess(ctx context.Context, category string, params *CallParams, resp *Response, tags []metrics.Tag, attempt int) {
	successTags := make([]metrics.Tag, 0, len(tags)+2)
	successTags = append(successTags, tags...)
	successTags = append(successTags,
		metrics.T("status", "success"),
		metrics.T("attempt", strconv.Itoa(attempt)))

	s.sink.Increment(ctx, category+".request", successTags...)

	event := s.log.Info().Int("status_code", resp.StatusCode)
	if s.config.VerboseLogging {
		event = event.
			Str("request_params", params.String()).
			Str("response_text", resp.Text())
	}
	applyTags(event, successTags).Msg(s.eventName(category))
}

// emitFailure records the counter and log line for a failed attempt. The
// error tag carries the failure category so dashboards can split by
// cause.
func (s *session) emitFailure(ctx context.Context, category string, params *CallParams, err error, tags []metrics.Tag, statusCode, attempt int) {
	errorCat := errorCategory(err)

	errorTags := make([]metrics.Tag, 0, len(tags)+3)
	errorTags = append(errorTags,
		metrics.T("status", "error"),
		metrics.T("attempt", strconv.Itoa(attempt)))
	errorTags = append(errorTags, tags...)
	errorTags = append(errorTags, metrics.T("error", errorCat))

	event := s.log.Error().
		Str("error_type", errorCat).
		Str("description", err.Error()).
		Str("response_text", errorResponse(err).Text())
	if statusCode != 0 {
		event = event.Int("status_code", statusCode)
	}
	if s.config.VerboseLogging {
		event = event.Str("request_params", params.String())
	}
	applyTags(event, errorTags).Msg(s.eventName(category) + ".failed")

	s.sink.Increment(ctx, category+".request", errorTags...)
}

// applyTags mirrors metric tags into log fields.
func applyTags(event logger.LogEvent, tags []metrics.Tag) logger.LogEvent {
	for _, tag := range tags {
		event = event.Str(tag.Key, tag.Value)
	}
	return event
}

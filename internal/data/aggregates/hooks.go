package aggregates

import (
	"strings"
	"time"

	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type logHooks struct {
	log  *logger.Logger
	slow time.Duration
}

// NewLogHooks reports aggregate signals through the structured logger. Operations
// slower than slow (when > 0) or failing are logged at warn level.
func NewLogHooks(log *logger.Logger, slow time.Duration) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return &logHooks{log: log.With("component", "AggregateHooks"), slow: slow}
}

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	name = strings.TrimSpace(name)
	status = strings.TrimSpace(status)
	switch {
	case status != "success" &&
		status != string(domainagg.CodeNotFound) &&
		status != string(domainagg.CodeValidation):
		h.log.Warn("aggregate operation failed", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	case h.slow > 0 && dur > h.slow:
		h.log.Warn("aggregate operation slow", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	default:
		h.log.Debug("aggregate operation", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	}
}

func (h *logHooks) IncConflict(name string) {
	h.log.Info("aggregate conflict", "op", strings.TrimSpace(name))
}

func (h *logHooks) IncRetry(name string) {
	h.log.Info("aggregate retryable failure", "op", strings.TrimSpace(name))
}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates aggregate hooks backed by observability metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregate(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h *observabilityHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetryable(strings.TrimSpace(name))
}

type multiHooks []Hooks

// MultiHooks fans every event out to each non-nil hook.
func MultiHooks(hooks ...Hooks) Hooks {
	out := make(multiHooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return noopHooks{}
	}
	return out
}

func (m multiHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range m {
		h.ObserveOperation(name, status, dur)
	}
}

func (m multiHooks) IncConflict(name string) {
	for _, h := range m {
		h.IncConflict(name)
	}
}

func (m multiHooks) IncRetry(name string) {
	for _, h := range m {
		h.IncRetry(name)
	}
}

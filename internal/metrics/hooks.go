package metrics

import (
	"strings"
	"time"
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

func NoopHooks() Hooks {
	return noopHooks{}
}

type managerHooks struct {
	manager *Manager
}

// NewHooks creates aggregate hooks backed by the prometheus manager.
func NewHooks(manager *Manager) Hooks {
	if manager == nil {
		return noopHooks{}
	}
	return &managerHooks{manager: manager}
}

func (h *managerHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.manager.HistogramOperationDuration.
		WithLabelValues(strings.TrimSpace(name), strings.TrimSpace(status)).
		Observe(dur.Seconds())
}

func (h *managerHooks) IncConflict(name string) {
	h.manager.CounterConflicts.WithLabelValues(strings.TrimSpace(name)).Inc()
}

func (h *managerHooks) IncRetry(name string) {
	h.manager.CounterRetries.WithLabelValues(strings.TrimSpace(name)).Inc()
}

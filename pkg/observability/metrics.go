package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/voicelink/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine collectors.
type Metrics struct {
	Enters     *prometheus.CounterVec
	Leaves     *prometheus.CounterVec
	Commands   *prometheus.CounterVec
	Drops      *prometheus.CounterVec
	Reconnects *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Enters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicelink_state_enters_total",
			Help: "Total number of behavior entries",
		}, []string{"state"}),
		Leaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicelink_state_leaves_total",
			Help: "Total number of behavior exits",
		}, []string{"state"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicelink_commands_total",
			Help: "Total number of inbound commands routed to behaviors",
		}, []string{"command"}),
		Drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicelink_dropped_messages_total",
			Help: "Total number of malformed inbound messages dropped",
		}, []string{"reason"}),
		Reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicelink_connecting_total",
			Help: "Total number of entries into a connecting phase",
		}, []string{"target"}),
	}
	for _, c := range []prometheus.Collector{m.Enters, m.Leaves, m.Commands, m.Drops, m.Reconnects} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEnter: func(e *domain.StateEvent) {
			kind := StateKind(e.State)
			m.Enters.WithLabelValues(kind).Inc()
			if target, ok := strings.CutPrefix(kind, "connecting to "); ok {
				m.Reconnects.WithLabelValues(target).Inc()
			}
		},
		OnLeave: func(e *domain.StateEvent) {
			m.Leaves.WithLabelValues(StateKind(e.State)).Inc()
		},
		OnCommand: func(e *domain.CommandEvent) {
			m.Commands.WithLabelValues(e.Command).Inc()
		},
		OnDrop: func(e *domain.CommandEvent) {
			m.Drops.WithLabelValues(DropReason(e.Err)).Inc()
		},
	}
}

// StateKind strips the variable part of a behavior description so it can be
// used as a label: "playing audio from http://h/a.mp3" becomes
// "playing audio", "connecting to websocket at /ws" becomes
// "connecting to websocket".
func StateKind(desc string) string {
	for _, sep := range []string{" from ", " at ", " ("} {
		if i := strings.Index(desc, sep); i >= 0 {
			desc = desc[:i]
		}
	}
	return desc
}

// DropReason maps a decode error to a label.
func DropReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrIncompleteMessage):
		return "incomplete"
	case errors.Is(err, domain.ErrBinaryMessage):
		return "binary"
	case errors.Is(err, domain.ErrNotObject):
		return "not_object"
	case errors.Is(err, domain.ErrMissingType):
		return "missing_type"
	default:
		return "other"
	}
}

// LoggingHooks logs every lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEnter: func(e *domain.StateEvent) {
			logger.Debug("state_enter", "state", e.State)
		},
		OnLeave: func(e *domain.StateEvent) {
			logger.Debug("state_leave", "state", e.State)
		},
		OnCommand: func(e *domain.CommandEvent) {
			logger.Debug("command", "command", e.Command)
		},
		OnDrop: func(e *domain.CommandEvent) {
			logger.Warn("message_dropped", "err", e.Err)
		},
	}
}

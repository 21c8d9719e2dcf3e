package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	waitingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_waiting_entries",
			Help: "Current number of waiting queue entries",
		},
	)

	queueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_operations_total",
			Help: "Total queue operations",
		},
		[]string{"operation", "result"},
	)

	notificationSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sends_total",
			Help: "Total Kakao notification send attempts",
		},
		[]string{"kind", "result"},
	)

	emailSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_sends_total",
			Help: "Total transactional email send attempts",
		},
		[]string{"result"},
	)
)

// TrackQueueOperation counts one register/ready/complete/cancel attempt.
func TrackQueueOperation(operation, result string) {
	queueOperations.WithLabelValues(operation, result).Inc()
}

// TrackNotification counts one notification send attempt by template kind.
func TrackNotification(kind string, sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	notificationSends.WithLabelValues(kind, result).Inc()
}

// TrackEmail counts one transactional email send attempt.
func TrackEmail(sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	emailSends.WithLabelValues(result).Inc()
}

// WaitingCounter reports the current waiting queue size.
type WaitingCounter interface {
	WaitingCount() int
}

type Monitor struct {
	queue WaitingCounter
}

// NewMonitor starts a background collector for the waiting gauge.
func NewMonitor(ctx context.Context, queue WaitingCounter) *Monitor {
	monitor := &Monitor{queue: queue}
	go monitor.collect(ctx)
	return monitor
}

func (m *Monitor) collect(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			waitingEntries.Set(float64(m.queue.WaitingCount()))
		}
	}
}

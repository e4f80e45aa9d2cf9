package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"roomdesk/pkg/kafka"
)

// Metrics counts publish outcomes of one producer.
type Metrics struct {
	published            atomic.Int64
	failed               atomic.Int64
	publishDurationTotal atomic.Int64
}

type MetricsSnapshot struct {
	Published          int64         `json:"published"`
	Failed             int64         `json:"failed"`
	AvgPublishDuration time.Duration `json:"avg_publish_duration_ns"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Published: m.published.Load(),
		Failed:    m.failed.Load(),
	}
	if s.Published > 0 {
		s.AvgPublishDuration = time.Duration(m.publishDurationTotal.Load() / s.Published)
	}
	return s
}

// MetricsProducerMiddleware records publish counts and latency into m.
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			m.failed.Add(1)
			return err
		}
		m.published.Add(1)
		m.publishDurationTotal.Add(int64(time.Since(start)))
		return nil
	}
}

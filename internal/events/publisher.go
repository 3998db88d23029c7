// Package events publishes aggregation-run summaries for downstream
// consumers (the notification service listens on the other side). The
// pipeline never depends on a publish succeeding.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"jobfuse/internal/errors"
	"jobfuse/internal/models"
	"jobfuse/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobfuse/events")

const RunSummarySubject = "jobs.aggregated"

// RunSummary describes one completed live aggregation.
type RunSummary struct {
	CompletedAt  time.Time                          `json:"completed_at"`
	Sources      map[string]models.AggregatorResult `json:"sources"`
	Fetched      int                                `json:"fetched"`
	Deduplicated int                                `json:"deduplicated"`
	Persisted    int                                `json:"persisted"`
}

type Publisher interface {
	PublishRunSummary(ctx context.Context, summary RunSummary) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewPublisher connects to NATS. An empty URL yields a no-op publisher so
// the pipeline runs unchanged without a broker.
func NewPublisher(natsURL string, connTimeout time.Duration, logger *zap.Logger) (Publisher, error) {
	if natsURL == "" {
		logger.Info("NATS_URL not set, run summaries will not be published")
		return nopPublisher{}, nil
	}

	opts := []nats.Option{
		nats.Timeout(connTimeout),
		nats.Name("jobfuse"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, errors.Internal("connecting to NATS", err)
	}

	return &natsPublisher{conn: conn, logger: logger}, nil
}

func (p *natsPublisher) PublishRunSummary(ctx context.Context, summary RunSummary) error {
	_, span := tracer.Start(ctx, "PublishRunSummary")
	defer span.End()

	data, err := json.Marshal(summary)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling run summary", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", RunSummarySubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(RunSummarySubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish run summary", zap.Error(err))
		return errors.Internal("publishing to NATS", err)
	}

	p.logger.Debug("published run summary",
		zap.String("subject", RunSummarySubject),
		zap.Int("persisted", summary.Persisted))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishRunSummary(context.Context, RunSummary) error { return nil }
func (nopPublisher) Close()                                             {}

package ingestion

import (
	"context"
	"log/slog"
	"time"

	"foodcourt/internal/core/application/usecases/commands"
	"foodcourt/internal/core/domain/model/kernel"
)

// commandHandler is the slice of the ingest command handler the service needs.
type commandHandler interface {
	Handle(ctx context.Context, cmd commands.IngestExternalOrderCommand) (commands.IngestResult, error)
}

// Service is the webhook ingress pipeline: verify signature, normalize the
// platform payload, hand off to the ingest command. Failed payloads are logged
// with the raw body retained so an operator can replay them.
type Service struct {
	registry *Registry
	verifier *SignatureVerifier
	handler  commandHandler
	metrics  *Metrics
	logger   *slog.Logger
}

// NewService wires the ingestion pipeline.
func NewService(
	registry *Registry,
	verifier *SignatureVerifier,
	handler commandHandler,
	metrics *Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		registry: registry,
		verifier: verifier,
		handler:  handler,
		metrics:  metrics,
		logger:   logger.With("component", "ingestion"),
	}
}

// Ingest processes one webhook delivery. Duplicate deliveries are a success
// with Created=false; the platform must receive a 2xx either way or it keeps
// retrying.
func (s *Service) Ingest(
	ctx context.Context,
	platform string,
	tenantID kernel.UUID,
	rawBody []byte,
	signature string,
) (commands.IngestResult, error) {
	s.metrics.Received.WithLabelValues(platform).Inc()
	started := time.Now()
	defer func() { s.metrics.Duration.Observe(time.Since(started).Seconds()) }()

	normalizer, err := s.registry.Resolve(platform)
	if err != nil {
		return commands.IngestResult{}, err
	}

	if err = s.verifier.Verify(normalizer.Platform(), rawBody, signature); err != nil {
		s.metrics.Rejected.WithLabelValues(platform).Inc()
		s.logger.Warn("webhook signature rejected", "platform", platform, "tenant_id", tenantID.String())
		return commands.IngestResult{}, err
	}

	cmd, err := normalizer.Normalize(tenantID, rawBody)
	if err != nil {
		s.metrics.Malformed.WithLabelValues(platform).Inc()
		s.logger.Error("webhook payload rejected",
			"platform", platform,
			"tenant_id", tenantID.String(),
			"error", err,
			"raw_payload", string(rawBody))
		return commands.IngestResult{}, err
	}

	result, err := s.handler.Handle(ctx, cmd)
	if err != nil {
		return commands.IngestResult{}, err
	}

	if result.Created {
		s.metrics.Accepted.WithLabelValues(platform).Inc()
		s.logger.Info("external order ingested",
			"platform", platform,
			"order_id", result.OrderID.String())
	} else {
		s.metrics.Duplicates.WithLabelValues(platform).Inc()
		s.logger.Debug("duplicate webhook absorbed",
			"platform", platform,
			"order_id", result.OrderID.String())
	}
	return result, nil
}

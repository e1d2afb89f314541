package ingest

import (
	"context"
	"time"

	"salonbridge_backend/internal/events"
	"salonbridge_backend/internal/reconcile"
	"salonbridge_backend/platform/apperr"
	"salonbridge_backend/platform/logger"
)

// maxPayloadBytes bounds accepted webhook bodies. The largest legitimate
// booking payload observed is well under 64 KiB.
const maxPayloadBytes = 256 * 1024

// LogAppender persists one raw payload into a log stream.
type LogAppender interface {
	Append(ctx context.Context, source string, payload []byte, receivedAt time.Time) error
}

// Service captures raw integration payloads.
type Service struct {
	repo LogAppender
	bus  events.Bus
	log  *logger.Logger
}

// NewService creates a new ingest service.
func NewService(repo LogAppender, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// IngestResult reports what happened to one accepted payload.
type IngestResult struct {
	Source     string    `json:"source"`
	ClientID   int64     `json:"clientId,omitempty"`
	Parseable  bool      `json:"parseable"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Ingest appends one payload to a log stream. The payload is stored even
// when it cannot be parsed; the normalizer runs here only to extract a
// client id hint for downstream debouncing.
func (s *Service) Ingest(ctx context.Context, source reconcile.Source, payload []byte) (IngestResult, error) {
	if len(payload) == 0 {
		return IngestResult{}, apperr.BadRequest("empty payload")
	}
	if len(payload) > maxPayloadBytes {
		return IngestResult{}, apperr.BadRequest("payload too large")
	}

	receivedAt := time.Now().UTC()
	if err := s.repo.Append(ctx, string(source), payload, receivedAt); err != nil {
		return IngestResult{}, apperr.Wrap(apperr.KindInternal, "failed to store log item", err)
	}

	result := IngestResult{Source: string(source), ReceivedAt: receivedAt}
	event, ok := reconcile.Normalize(reconcile.RawItem{
		Source:     source,
		ReceivedAt: receivedAt,
		Payload:    payload,
	})
	if ok {
		result.ClientID = event.ClientID
		result.Parseable = true
	} else {
		s.log.ParseDropped(string(source), 1)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LogItemReceived{
			BaseEvent: events.NewBaseEvent(),
			Source:    string(source),
			ClientID:  result.ClientID,
		})
	}

	return result, nil
}

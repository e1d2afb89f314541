package ingest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"salonbridge_backend/internal/events"
	"salonbridge_backend/internal/reconcile"
	"salonbridge_backend/platform/apperr"
	"salonbridge_backend/platform/logger"
)

type appendCall struct {
	source  string
	payload []byte
}

type appendRecorder struct {
	calls []appendCall
}

func (r *appendRecorder) Append(ctx context.Context, source string, payload []byte, receivedAt time.Time) error {
	r.calls = append(r.calls, appendCall{source: source, payload: payload})
	return nil
}

func newTestService(bus events.Bus) (*Service, *appendRecorder) {
	recorder := &appendRecorder{}
	return NewService(recorder, bus, logger.New("development")), recorder
}

func TestIngest_StoresAndHintsClient(t *testing.T) {
	bus := events.NewInMemoryBus(logger.New("development"))
	published := make(chan events.LogItemReceived, 1)
	bus.Subscribe(events.LogItemReceived{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.LogItemReceived); ok {
			published <- e
		}
		return nil
	}))

	svc, recorder := newTestService(bus)
	payload := []byte(`{"clientId": 42, "status": "create"}`)

	result, err := svc.Ingest(context.Background(), reconcile.SourceRecordsLog, payload)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if !result.Parseable || result.ClientID != 42 {
		t.Errorf("result = %+v, want parseable client 42", result)
	}
	if len(recorder.calls) != 1 || !bytes.Equal(recorder.calls[0].payload, payload) {
		t.Errorf("payload not stored verbatim: %+v", recorder.calls)
	}
	if recorder.calls[0].source != "records-log" {
		t.Errorf("source = %q, want records-log", recorder.calls[0].source)
	}

	select {
	case e := <-published:
		if e.ClientID != 42 || e.Source != "records-log" {
			t.Errorf("published event = %+v, want client 42 from records-log", e)
		}
	case <-time.After(time.Second):
		t.Fatal("LogItemReceived was not published")
	}
}

func TestIngest_UnparseablePayloadIsStillStored(t *testing.T) {
	svc, recorder := newTestService(nil)

	result, err := svc.Ingest(context.Background(), reconcile.SourceWebhookLog, []byte("not json"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if result.Parseable || result.ClientID != 0 {
		t.Errorf("result = %+v, want unparseable with no client hint", result)
	}
	if len(recorder.calls) != 1 {
		t.Error("unparseable payload must still be stored for replay")
	}
}

func TestIngest_RejectsEmptyAndOversized(t *testing.T) {
	svc, recorder := newTestService(nil)

	if _, err := svc.Ingest(context.Background(), reconcile.SourceWebhookLog, nil); !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("empty payload err = %v, want bad request", err)
	}
	if _, err := svc.Ingest(context.Background(), reconcile.SourceWebhookLog, make([]byte, maxPayloadBytes+1)); !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("oversized payload err = %v, want bad request", err)
	}
	if len(recorder.calls) != 0 {
		t.Error("rejected payloads must not be stored")
	}
}

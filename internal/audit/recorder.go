package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/vendora/vendora/internal/rbac"
	"github.com/vendora/vendora/jobs"
)

// AsyncRecorder ships authorization events to the background worker. Enqueue
// failures are logged and the event dropped; the decision path never waits on
// or fails because of audit.
type AsyncRecorder struct {
	client   *jobs.Client
	logger   *slog.Logger
	fallback func(ctx context.Context, entry Entry) error
}

// NewAsyncRecorder builds a recorder backed by the queue client. When
// fallback is non-nil it is invoked on enqueue failure with the event, still
// best-effort.
func NewAsyncRecorder(client *jobs.Client, logger *slog.Logger, fallback func(ctx context.Context, entry Entry) error) *AsyncRecorder {
	return &AsyncRecorder{client: client, logger: logger, fallback: fallback}
}

// RecordAuthz implements the gate's audit sink.
func (r *AsyncRecorder) RecordAuthz(ctx context.Context, event rbac.AuthzEvent) {
	payload := jobs.AuditRecordPayload{
		At:          time.Now(),
		PrincipalID: event.PrincipalID,
		Role:        event.Role,
		Resource:    string(event.Resource),
		Action:      string(event.Action),
		Outcome:     event.Outcome,
		Reason:      string(event.Reason),
	}
	if r.client != nil {
		if _, err := r.client.EnqueueAuditRecord(ctx, payload); err == nil {
			return
		} else if r.logger != nil {
			r.logger.Warn("audit enqueue failed", slog.Any("error", err))
		}
	}
	if r.fallback == nil {
		return
	}
	if err := r.fallback(ctx, entryFromPayload(payload)); err != nil && r.logger != nil {
		r.logger.Warn("audit fallback failed", slog.Any("error", err))
	}
}

func entryFromPayload(payload jobs.AuditRecordPayload) Entry {
	return Entry{
		At:          payload.At,
		PrincipalID: payload.PrincipalID,
		Role:        payload.Role,
		Resource:    payload.Resource,
		Action:      payload.Action,
		Outcome:     payload.Outcome,
		Reason:      payload.Reason,
	}
}

package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditRecord persists an authorization audit event.
	TaskTypeAuditRecord = "audit:record"
	// TaskTypeRegistryIntegrity re-validates every stored role definition.
	TaskTypeRegistryIntegrity = "rbac:integrity"
)

// AuditRecordPayload carries one authorization outcome to the worker.
type AuditRecordPayload struct {
	At          time.Time `json:"at"`
	PrincipalID int64     `json:"principalId"`
	Role        string    `json:"role"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Outcome     string    `json:"outcome"`
	Reason      string    `json:"reason,omitempty"`
}

// NewAuditRecordTask constructs an Asynq task.
func NewAuditRecordTask(payload AuditRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRecord, data), nil
}

// NewRegistryIntegrityTask constructs the periodic integrity task.
func NewRegistryIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskTypeRegistryIntegrity, nil)
}

// NewAuditRecordHandler adapts a persistence callback into an Asynq handler.
// A payload that cannot be decoded is dropped rather than retried.
func NewAuditRecordHandler(insert func(ctx context.Context, payload AuditRecordPayload) error) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditRecordPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.At.IsZero() {
			payload.At = time.Now()
		}
		return insert(ctx, payload)
	}
}

// NewRegistryIntegrityHandler adapts a registry check into an Asynq handler.
func NewRegistryIntegrityHandler(check func(ctx context.Context) error) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		return check(ctx)
	}
}

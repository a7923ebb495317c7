// Package audit records task and account events as structured log lines and
// keeps a bounded in-memory trail of the most recent ones.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuditModule consumes domain events.
type AuditModule struct {
	journal *Journal
	logger  *slog.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*AuditModule)(nil)
	_ mono.EventConsumerModule   = (*AuditModule)(nil)
	_ mono.HealthCheckableModule = (*AuditModule)(nil)
)

// NewModule creates a new audit module. A nil logger uses slog.Default().
func NewModule(logger *slog.Logger, capacity int) *AuditModule {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditModule{
		journal: NewJournal(capacity),
		logger:  logger.With("module", "audit"),
	}
}

// Name returns the module name.
func (m *AuditModule) Name() string {
	return "audit"
}

// Journal returns the recorded trail.
func (m *AuditModule) Journal() *Journal {
	return m.journal
}

// RegisterEventConsumers subscribes to every task and account event.
func (m *AuditModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserRegisteredV1, m.handleUserRegistered, m); err != nil {
		return fmt.Errorf("failed to register UserRegistered consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserUpdatedV1, m.handleUserUpdated, m); err != nil {
		return fmt.Errorf("failed to register UserUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.UserDeletedV1, m.handleUserDeleted, m); err != nil {
		return fmt.Errorf("failed to register UserDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated", "TaskUpdated", "TaskCompleted", "TaskDeleted", "UserRegistered", "UserUpdated", "UserDeleted"})
	return nil
}

func (m *AuditModule) handleTaskCreated(_ context.Context, ev events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(Entry{Event: "TaskCreated", SubjectID: ev.TaskID, OwnerID: ev.OwnerID, ActorID: ev.OwnerID, Summary: ev.Title, OccurredAt: ev.CreatedAt})
	return nil
}

func (m *AuditModule) handleTaskUpdated(_ context.Context, ev events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.record(Entry{Event: "TaskUpdated", SubjectID: ev.TaskID, OwnerID: ev.OwnerID, ActorID: ev.ActorID, Summary: ev.Title, OccurredAt: ev.UpdatedAt})
	return nil
}

func (m *AuditModule) handleTaskCompleted(_ context.Context, ev events.TaskCompletedEvent, _ *mono.Msg) error {
	m.record(Entry{Event: "TaskCompleted", SubjectID: ev.TaskID, OwnerID: ev.OwnerID, ActorID: ev.ActorID, OccurredAt: ev.CompletedAt})
	return nil
}

func (m *AuditModule) handleTaskDeleted(_ context.Context, ev events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(Entry{Event: "TaskDeleted", SubjectID: ev.TaskID, OwnerID: ev.OwnerID, ActorID: ev.ActorID, OccurredAt: ev.DeletedAt})
	return nil
}

func (m *AuditModule) handleUserRegistered(_ context.Context, ev events.UserRegisteredEvent, _ *mono.Msg) error {
	m.record(Entry{Event: "UserRegistered", SubjectID: ev.UserID, ActorID: ev.UserID, Summary: ev.Username, OccurredAt: ev.RegisteredAt})
	return nil
}

func (m *AuditModule) handleUserUpdated(_ context.Context, ev events.UserUpdatedEvent, _ *mono.Msg) error {
	m.record(Entry{Event: "UserUpdated", SubjectID: ev.UserID, ActorID: ev.ActorID, Summary: ev.Username, OccurredAt: ev.UpdatedAt})
	return nil
}

func (m *AuditModule) handleUserDeleted(_ context.Context, ev events.UserDeletedEvent, _ *mono.Msg) error {
	m.record(Entry{Event: "UserDeleted", SubjectID: ev.UserID, ActorID: ev.ActorID, Summary: ev.Username, OccurredAt: ev.DeletedAt})
	return nil
}

func (m *AuditModule) record(e Entry) {
	m.journal.Record(e)
	m.logger.Info("audit",
		"event", e.Event,
		"subject_id", e.SubjectID,
		"owner_id", e.OwnerID,
		"actor_id", e.ActorID,
		"occurred_at", e.OccurredAt)
}

// healthRecent is how many journal entries Health reports.
const healthRecent = 10

// Health reports event counts and the latest journal entries.
func (m *AuditModule) Health(_ context.Context) mono.HealthStatus {
	counts := m.journal.Counts()
	details := make(map[string]any, len(counts)+1)
	for k, v := range counts {
		details[k] = v
	}
	details["recent"] = m.journal.Recent(healthRecent)
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// Start initializes the module.
func (m *AuditModule) Start(_ context.Context) error {
	m.logger.Info("Audit module started")
	return nil
}

// Stop shuts down the module.
func (m *AuditModule) Stop(_ context.Context) error {
	m.logger.Info("Audit module stopped")
	return nil
}

// Package task implements the task lifecycle on top of the shared store and
// exposes it through the service container.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/gorm"
)

// DBProvider hands out the shared database connection once it is open.
type DBProvider interface {
	DB() *gorm.DB
}

// TaskModule provides task management services.
type TaskModule struct {
	store    DBProvider
	eventBus mono.EventBus
	service  *Service
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule. store must be started before this module.
func NewModule(store DBProvider) *TaskModule {
	return &TaskModule{store: store}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"store"}
}

func (m *TaskModule) SetDependencyServiceContainer(_ string, _ mono.ServiceContainer) {}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-owner-tasks", json.Unmarshal, json.Marshal, m.listOwnerTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-owner-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete-task", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	log.Printf("[task] Registered services: list-tasks, list-owner-tasks, get-task, create-task, update-task, complete-task, delete-task")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	db := m.store.DB()
	if db == nil {
		return fmt.Errorf("store module not started")
	}

	m.service = NewService(NewRepository(db))
	if m.eventBus != nil {
		m.service.SetEventBus(m.eventBus)
	} else {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}

	log.Println("[task] Module started (depends on: store)")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

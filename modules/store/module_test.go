package store

import (
	"context"
	"errors"
	"testing"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestStoreModule_Lifecycle(t *testing.T) {
	m := NewModule(MemoryConfig(), false)
	ctx := context.Background()

	if h := m.Health(ctx); h.Healthy {
		t.Fatal("expected unhealthy before Start")
	}

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if m.DB() == nil {
		t.Fatal("DB() is nil after Start")
	}
	if h := m.Health(ctx); !h.Healthy {
		t.Fatalf("Health() = %+v, want healthy", h)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"}, 0)
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestMigrate_CascadeAndUniqueness(t *testing.T) {
	m := NewModule(MemoryConfig(), false)
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Stop(ctx) })
	db := m.DB()

	owner := &user.User{ID: uuid.NewString(), Username: "alice", Email: "a@example.com", PasswordHash: "x"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := &user.User{ID: uuid.NewString(), Username: "alice", Email: "b@example.com", PasswordHash: "x"}
	if err := db.Create(dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate username error = %v, want gorm.ErrDuplicatedKey", err)
	}

	tk := &task.Task{ID: uuid.NewString(), OwnerID: owner.ID, Title: "t", Priority: task.PriorityLow, Status: task.StatusOpen}
	if err := db.Create(tk).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	orphan := &task.Task{ID: uuid.NewString(), OwnerID: uuid.NewString(), Title: "t", Priority: task.PriorityLow, Status: task.StatusOpen}
	if err := db.Create(orphan).Error; err == nil {
		t.Fatal("expected foreign key violation for unknown owner")
	}

	if err := db.Delete(&user.User{}, "id = ?", owner.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var count int64
	if err := db.Model(&task.Task{}).Where("owner_id = ?", owner.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 0 {
		t.Errorf("expected tasks to be removed with their owner, %d left", count)
	}
}

package task_test

import (
	"testing"
	"time"

	"github.com/example/task-tracker/domain/access"
	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &task.Task{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, superuser bool) *user.User {
	t.Helper()

	u := &user.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsSuperuser:  superuser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedTask(t *testing.T, db *gorm.DB, owner *user.User, title string, status task.Status, due *task.Date, created time.Time) *task.Task {
	t.Helper()

	tk := &task.Task{
		ID:        uuid.New().String(),
		OwnerID:   owner.ID,
		Title:     title,
		Priority:  task.PriorityMedium,
		Status:    status,
		DueDate:   due,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(tk).Error)
	return tk
}

func titles(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, tk.Title)
	}
	return out
}

func TestScoped(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "bob", false)
	admin := seedUser(t, db, "admin", true)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seedTask(t, db, alice, "alice open", task.StatusOpen, nil, base)
	seedTask(t, db, bob, "bob open", task.StatusOpen, nil, base.Add(time.Hour))

	t.Run("regular user sees own tasks only", func(t *testing.T) {
		var got []task.Task
		require.NoError(t, db.Scopes(task.Scoped(alice.Requester())).Find(&got).Error)
		assert.Equal(t, []string{"alice open"}, titles(got))
	})

	t.Run("superuser sees every task", func(t *testing.T) {
		var got []task.Task
		require.NoError(t, db.Scopes(task.Scoped(admin.Requester())).Find(&got).Error)
		assert.ElementsMatch(t, []string{"alice open", "bob open"}, titles(got))
	})

	t.Run("anonymous sees nothing", func(t *testing.T) {
		var got []task.Task
		require.NoError(t, db.Scopes(task.Scoped(access.Requester{})).Find(&got).Error)
		assert.Empty(t, got)
	})
}

func TestScoped_DefaultOrder(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner", false)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	early := task.NewDate(2024, 2, 1)
	late := task.NewDate(2024, 3, 1)

	seedTask(t, db, owner, "open undated old", task.StatusOpen, nil, base)
	seedTask(t, db, owner, "open undated new", task.StatusOpen, nil, base.Add(2*time.Hour))
	seedTask(t, db, owner, "open late", task.StatusOpen, &late, base)
	seedTask(t, db, owner, "open early", task.StatusOpen, &early, base)
	seedTask(t, db, owner, "done", task.StatusDone, nil, base)
	seedTask(t, db, owner, "in progress", task.StatusInProgress, &late, base)

	var got []task.Task
	require.NoError(t, db.Scopes(task.Scoped(owner.Requester())).Find(&got).Error)

	assert.Equal(t, []string{
		"done",
		"in progress",
		"open early",
		"open late",
		"open undated new",
		"open undated old",
	}, titles(got))
}

func TestFilter_Apply(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice", false)
	bob := seedUser(t, db, "Bobby", false)
	admin := seedUser(t, db, "admin", true)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	seedTask(t, db, alice, "Write report", task.StatusOpen, nil, base)
	seedTask(t, db, alice, "Review 100% coverage", task.StatusDone, nil, base)
	seedTask(t, db, bob, "Plan sprint", task.StatusInProgress, nil, base)

	tests := []struct {
		name      string
		requester access.Requester
		filter    task.Filter
		want      []string
	}{
		{name: "empty filter", requester: admin.Requester(), filter: task.Filter{}, want: []string{"Review 100% coverage", "Plan sprint", "Write report"}},
		{name: "status", requester: admin.Requester(), filter: task.Filter{Status: task.StatusDone}, want: []string{"Review 100% coverage"}},
		{name: "title search is case insensitive", requester: admin.Requester(), filter: task.Filter{Query: "REPORT"}, want: []string{"Write report"}},
		{name: "owner username search", requester: admin.Requester(), filter: task.Filter{Query: "bob"}, want: []string{"Plan sprint"}},
		{name: "percent is literal", requester: admin.Requester(), filter: task.Filter{Query: "100%"}, want: []string{"Review 100% coverage"}},
		{name: "search stays inside scope", requester: alice.Requester(), filter: task.Filter{Query: "bob"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []task.Task
			err := db.Scopes(task.Scoped(tt.requester), tt.filter.Apply()).Find(&got).Error
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFilter_Empty(t *testing.T) {
	assert.True(t, task.Filter{Query: "  "}.Empty())
	assert.False(t, task.Filter{Priority: task.PriorityHigh}.Empty())
}

package task

import (
	"strings"

	"github.com/example/task-tracker/domain/access"
	"gorm.io/gorm"
)

// DefaultOrder is the canonical listing order: status ascending, due date ascending
// with undated tasks last, newest first.
const DefaultOrder = "tasks.status ASC, tasks.due_date IS NULL, tasks.due_date ASC, tasks.created_at DESC"

// Scoped narrows a query on tasks to what requester may see and applies DefaultOrder.
// Superusers see every task; everyone else sees only tasks they own.
func Scoped(requester access.Requester) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !requester.IsSuperuser {
			db = db.Where("tasks.owner_id = ?", requester.UserID)
		}
		return db.Order(DefaultOrder)
	}
}

// Filter narrows an already scoped task query. Zero values match everything.
type Filter struct {
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Query    string   `json:"q,omitempty"`
}

// Empty reports whether f filters nothing.
func (f Filter) Empty() bool {
	return f.Status == "" && f.Priority == "" && strings.TrimSpace(f.Query) == ""
}

// Apply returns a gorm scope for f. Query matches title, description and owner
// username case-insensitively.
func (f Filter) Apply() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("tasks.status = ?", f.Status)
		}
		if f.Priority != "" {
			db = db.Where("tasks.priority = ?", f.Priority)
		}
		if q := strings.TrimSpace(f.Query); q != "" {
			like := "%" + escapeLike(strings.ToLower(q)) + "%"
			db = db.Where(
				"(LOWER(tasks.title) LIKE ? ESCAPE '\\' OR LOWER(tasks.description) LIKE ? ESCAPE '\\' OR tasks.owner_id IN (SELECT id FROM users WHERE LOWER(username) LIKE ? ESCAPE '\\'))",
				like, like, like,
			)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

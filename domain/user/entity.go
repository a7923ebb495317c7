package user

import (
	"time"

	"github.com/example/task-tracker/domain/access"
	"github.com/example/task-tracker/domain/task"
)

// User represents an account in the system.
type User struct {
	ID           string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string      `gorm:"size:254;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	IsSuperuser  bool        `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Tasks        []task.Task `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Requester returns the identity u acts with.
func (u *User) Requester() access.Requester {
	return access.Requester{UserID: u.ID, IsSuperuser: u.IsSuperuser}
}

func (u User) String() string {
	return u.Username
}

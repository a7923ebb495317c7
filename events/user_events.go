package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserRegisteredEvent is emitted after a successful sign-up.
type UserRegisteredEvent struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UserRegisteredV1 is the typed event definition for sign-ups.
// Subject: events.account.v1.user-registered
var UserRegisteredV1 = helper.EventDefinition[UserRegisteredEvent](
	"account", "UserRegistered", "v1",
)

// UserUpdatedEvent is emitted when a profile's username or email changes.
type UserUpdatedEvent struct {
	UserID    string    `json:"user_id"`
	ActorID   string    `json:"actor_id"`
	Username  string    `json:"username"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdatedV1 is the typed event definition for profile updates.
// Subject: events.account.v1.user-updated
var UserUpdatedV1 = helper.EventDefinition[UserUpdatedEvent](
	"account", "UserUpdated", "v1",
)

// UserDeletedEvent is emitted when an account and all of its tasks are removed.
type UserDeletedEvent struct {
	UserID    string    `json:"user_id"`
	ActorID   string    `json:"actor_id"`
	Username  string    `json:"username"`
	DeletedAt time.Time `json:"deleted_at"`
}

// UserDeletedV1 is the typed event definition for account deletion.
// Subject: events.account.v1.user-deleted
var UserDeletedV1 = helper.EventDefinition[UserDeletedEvent](
	"account", "UserDeleted", "v1",
)

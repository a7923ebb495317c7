package account

import (
	"context"

	"github.com/example/task-tracker/domain/access"
	"github.com/example/task-tracker/domain/user"
)

// Port is the account API used by the web module. Both the in-process Service and
// the service-container Adapter implement it.
type Port interface {
	SignUp(ctx context.Context, form SignUpForm) (*user.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	Directory(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, requester access.Requester, id string) (*user.User, error)
	UpdateProfile(ctx context.Context, requester access.Requester, id string, form ProfileForm) (*user.User, error)
	DeleteUser(ctx context.Context, requester access.Requester, id string) error
}

var (
	_ Port = (*Service)(nil)
	_ Port = (*Adapter)(nil)
)

// SignUpRequest is the request for the signup service.
type SignUpRequest struct {
	Form SignUpForm `json:"form"`
}

// LoginRequest is the request for the login service.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response of the login service.
type LoginResponse struct {
	Failure
	Session *Session `json:"session,omitempty"`
}

// AuthenticateRequest is the request for the authenticate service.
type AuthenticateRequest struct {
	Token string `json:"token"`
}

// ListUsersRequest is the request for the list-users and directory services.
type ListUsersRequest struct{}

// UsersResponse carries a list of users.
type UsersResponse struct {
	Failure
	Users []user.User `json:"users"`
	Total int         `json:"total"`
}

// GetUserRequest is the request for the get-user service.
type GetUserRequest struct {
	Requester access.Requester `json:"requester"`
	UserID    string           `json:"user_id"`
}

// UpdateProfileRequest is the request for the update-profile service.
type UpdateProfileRequest struct {
	Requester access.Requester `json:"requester"`
	UserID    string           `json:"user_id"`
	Form      ProfileForm      `json:"form"`
}

// DeleteUserRequest is the request for the delete-user service.
type DeleteUserRequest struct {
	Requester access.Requester `json:"requester"`
	UserID    string           `json:"user_id"`
}

// DeleteUserResponse is the response of the delete-user service.
type DeleteUserResponse struct {
	Failure
	Deleted bool   `json:"deleted"`
	UserID  string `json:"user_id"`
}

// UserResponse carries a single user.
type UserResponse struct {
	Failure
	User *user.User `json:"user,omitempty"`
}

package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/domain/access"
	"github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Adapter implements Port over the account module's service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	if container == nil {
		panic("account adapter requires non-nil ServiceContainer")
	}
	return &Adapter{container: container}
}

func (a *Adapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// SignUp registers a user via the signup service.
func (a *Adapter) SignUp(ctx context.Context, form SignUpForm) (*user.User, error) {
	var resp UserResponse
	if err := a.call(ctx, "signup", &SignUpRequest{Form: form}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login issues a session via the login service.
func (a *Adapter) Login(ctx context.Context, username, password string) (*Session, error) {
	var resp LoginResponse
	if err := a.call(ctx, "login", &LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// Authenticate resolves a session token via the authenticate service.
func (a *Adapter) Authenticate(ctx context.Context, token string) (*user.User, error) {
	var resp UserResponse
	if err := a.call(ctx, "authenticate", &AuthenticateRequest{Token: token}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListUsers lists users via the list-users service.
func (a *Adapter) ListUsers(ctx context.Context) ([]user.User, error) {
	var resp UsersResponse
	if err := a.call(ctx, "list-users", &ListUsersRequest{}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// Directory lists users with their tasks via the directory service.
func (a *Adapter) Directory(ctx context.Context) ([]user.User, error) {
	var resp UsersResponse
	if err := a.call(ctx, "directory", &ListUsersRequest{}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// GetUser loads a profile via the get-user service.
func (a *Adapter) GetUser(ctx context.Context, requester access.Requester, id string) (*user.User, error) {
	var resp UserResponse
	if err := a.call(ctx, "get-user", &GetUserRequest{Requester: requester, UserID: id}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateProfile edits a profile via the update-profile service.
func (a *Adapter) UpdateProfile(ctx context.Context, requester access.Requester, id string, form ProfileForm) (*user.User, error) {
	var resp UserResponse
	req := UpdateProfileRequest{Requester: requester, UserID: id, Form: form}
	if err := a.call(ctx, "update-profile", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// DeleteUser removes a profile via the delete-user service.
func (a *Adapter) DeleteUser(ctx context.Context, requester access.Requester, id string) error {
	var resp DeleteUserResponse
	if err := a.call(ctx, "delete-user", &DeleteUserRequest{Requester: requester, UserID: id}, &resp); err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("user not deleted: %s", id)
	}
	return nil
}

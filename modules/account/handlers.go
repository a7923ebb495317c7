package account

import (
	"context"

	"github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
)

// Service handlers return domain failures inside the response payload so the
// adapter can rebuild the exact error. Only unexpected errors travel as service errors.

func (m *AccountModule) handleSignUp(ctx context.Context, req SignUpRequest, _ *mono.Msg) (UserResponse, error) {
	u, err := m.service.SignUp(ctx, req.Form)
	return userResponse(u, err)
}

func (m *AccountModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	session, err := m.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		if f, ok := failureFrom(err); ok {
			return LoginResponse{Failure: f}, nil
		}
		return LoginResponse{}, err
	}
	return LoginResponse{Session: session}, nil
}

func (m *AccountModule) handleAuthenticate(ctx context.Context, req AuthenticateRequest, _ *mono.Msg) (UserResponse, error) {
	u, err := m.service.Authenticate(ctx, req.Token)
	return userResponse(u, err)
}

func (m *AccountModule) handleListUsers(ctx context.Context, _ ListUsersRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.ListUsers(ctx)
	return usersResponse(users, err)
}

func (m *AccountModule) handleDirectory(ctx context.Context, _ ListUsersRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.Directory(ctx)
	return usersResponse(users, err)
}

func (m *AccountModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserResponse, error) {
	u, err := m.service.GetUser(ctx, req.Requester, req.UserID)
	return userResponse(u, err)
}

func (m *AccountModule) handleUpdateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (UserResponse, error) {
	u, err := m.service.UpdateProfile(ctx, req.Requester, req.UserID, req.Form)
	return userResponse(u, err)
}

func (m *AccountModule) handleDeleteUser(ctx context.Context, req DeleteUserRequest, _ *mono.Msg) (DeleteUserResponse, error) {
	if err := m.service.DeleteUser(ctx, req.Requester, req.UserID); err != nil {
		if f, ok := failureFrom(err); ok {
			return DeleteUserResponse{Failure: f, UserID: req.UserID}, nil
		}
		return DeleteUserResponse{UserID: req.UserID}, err
	}
	return DeleteUserResponse{Deleted: true, UserID: req.UserID}, nil
}

func userResponse(u *user.User, err error) (UserResponse, error) {
	if err != nil {
		if f, ok := failureFrom(err); ok {
			return UserResponse{Failure: f}, nil
		}
		return UserResponse{}, err
	}
	return UserResponse{User: u}, nil
}

func usersResponse(users []user.User, err error) (UsersResponse, error) {
	if err != nil {
		if f, ok := failureFrom(err); ok {
			return UsersResponse{Failure: f}, nil
		}
		return UsersResponse{}, err
	}
	return UsersResponse{Users: users, Total: len(users)}, nil
}

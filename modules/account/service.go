package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/task-tracker/domain/access"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// Service implements account business logic on top of the user repository.
type Service struct {
	repo     *UserRepository
	hasher   *PasswordHasher
	sessions *SessionManager
	eventBus mono.EventBus
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(repo *UserRepository, hasher *PasswordHasher, sessions *SessionManager) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
		now:      time.Now,
	}
}

// SetEventBus enables event publishing. A nil bus disables it.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// SignUp registers a regular (non superuser) account. It never logs the user in.
func (s *Service) SignUp(ctx context.Context, form SignUpForm) (*user.User, error) {
	form.Normalize()
	if fields := form.Validate(); fields != nil {
		return nil, newValidationError(fields)
	}

	taken, err := s.repo.UsernameExists(ctx, form.Username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newValidationError(map[string]string{"username": usernameTakenMessage})
	}

	hash, err := s.hasher.Hash(form.Password1)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	u := &user.User{
		ID:           uuid.New().String(),
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, newValidationError(map[string]string{"username": usernameTakenMessage})
		}
		return nil, err
	}

	s.publish(func(bus mono.EventBus) error {
		return events.UserRegisteredV1.Publish(bus, events.UserRegisteredEvent{
			UserID:       u.ID,
			Username:     u.Username,
			RegisteredAt: u.CreatedAt,
		}, nil)
	}, "UserRegistered", u.ID)

	return u, nil
}

const usernameTakenMessage = "A user with that username already exists."

// Login checks credentials and issues a session.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return session, nil
}

// Authenticate resolves a session token to the current state of its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.sessions.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns every user. Any authenticated user may call it.
func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.repo.List(ctx)
}

// Directory returns every user with their tasks for the public home page.
func (s *Service) Directory(ctx context.Context) ([]user.User, error) {
	return s.repo.ListWithTasks(ctx)
}

// GetUser returns the profile id if requester may access it.
func (s *Service) GetUser(ctx context.Context, requester access.Requester, id string) (*user.User, error) {
	if !access.CanAccess(requester, id) {
		return nil, ErrForbidden
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile changes username and email of profile id.
func (s *Service) UpdateProfile(ctx context.Context, requester access.Requester, id string, form ProfileForm) (*user.User, error) {
	if !access.CanAccess(requester, id) {
		return nil, ErrForbidden
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	form.Normalize()
	if fields := form.Validate(); fields != nil {
		return nil, newValidationError(fields)
	}

	taken, err := s.repo.UsernameExists(ctx, form.Username, u.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, newValidationError(map[string]string{"username": usernameTakenMessage})
	}

	u.Username = form.Username
	u.Email = form.Email
	u.UpdatedAt = s.now()
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, newValidationError(map[string]string{"username": usernameTakenMessage})
		}
		return nil, err
	}

	s.publish(func(bus mono.EventBus) error {
		return events.UserUpdatedV1.Publish(bus, events.UserUpdatedEvent{
			UserID:    u.ID,
			ActorID:   requester.UserID,
			Username:  u.Username,
			UpdatedAt: u.UpdatedAt,
		}, nil)
	}, "UserUpdated", u.ID)

	return u, nil
}

// DeleteUser removes profile id together with all of its tasks.
func (s *Service) DeleteUser(ctx context.Context, requester access.Requester, id string) error {
	if !access.CanAccess(requester, id) {
		return ErrForbidden
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(func(bus mono.EventBus) error {
		return events.UserDeletedV1.Publish(bus, events.UserDeletedEvent{
			UserID:    u.ID,
			ActorID:   requester.UserID,
			Username:  u.Username,
			DeletedAt: s.now(),
		}, nil)
	}, "UserDeleted", u.ID)

	return nil
}

// EnsureSuperuser creates the configured administrator, or promotes an existing
// account with the same username.
func (s *Service) EnsureSuperuser(ctx context.Context, username, email, password string) error {
	if msg := passwordProblem(password); msg != "" {
		return fmt.Errorf("bootstrap admin password: %s", msg)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	created, err := s.repo.EnsureSuperuser(ctx, &user.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}
	if created {
		log.Printf("[account] Created superuser %q", username)
	}
	return nil
}

// publish sends an event if a bus is set. Publishing is best effort.
func (s *Service) publish(send func(mono.EventBus) error, name, userID string) {
	if s.eventBus == nil {
		return
	}
	if err := send(s.eventBus); err != nil {
		log.Printf("[account] Warning: failed to publish %s event for user %s: %v", name, userID, err)
	}
}

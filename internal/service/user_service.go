package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"user-directory-service/internal/common"
	"user-directory-service/internal/entity"
	"user-directory-service/internal/events"
	"user-directory-service/internal/password"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// publishTimeout bounds how long a committed write waits on the event publisher.
var publishTimeout = 5 * time.Second

type UserRepository interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	SearchUsersByName(ctx context.Context, name string) ([]entity.User, error)
	GetUserByID(ctx context.Context, id int) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
	DeleteUser(ctx context.Context, id int) error
}

// UserCache mirrors single-user reads. Get returns nil, nil on a miss.
type UserCache interface {
	Get(ctx context.Context, id int) (*entity.User, error)
	Set(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event string, user *entity.User) error
}

type UserService struct {
	repo   UserRepository
	hasher password.Hasher
	cache  UserCache
	events EventPublisher
}

type Option func(*UserService)

// WithCache enables read-through caching of GetUserByID.
func WithCache(cache UserCache) Option {
	return func(s *UserService) { s.cache = cache }
}

// WithEventPublisher announces every successful write.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *UserService) { s.events = p }
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserRepository, hasher password.Hasher, opts ...Option) *UserService {
	s := &UserService{repo: repo, hasher: hasher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns every user ordered by id, never nil.
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, err
	}

	return users, nil
}

// SearchUsers returns users whose name contains name.
func (s *UserService) SearchUsers(ctx context.Context, name string) ([]entity.User, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	}

	users, err := s.repo.SearchUsersByName(ctx, name)
	if err != nil {
		logger.Error().Err(err).Msgf("Error searching users by name %q", name)
		return nil, err
	}

	return users, nil
}

// GetUserByID retrieves a user by ID, consulting the cache first when one is
// configured. Cache failures fall through to the datastore.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Msgf("Error reading user %d from cache", id)
		}
		if cached != nil {
			return cached, nil
		}
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting user by ID %d", id)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			logger.Warn().Err(err).Msgf("Error caching user %d", id)
		}
	}

	return user, nil
}

// CreateUser hashes password and stores the new user. A taken email yields
// common.ErrAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, name, email, plain string) (*entity.User, error) {
	if name == "" || email == "" || plain == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrValidation)
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, &entity.User{Name: name, Email: email, Password: hash})
	if err != nil {
		if !errors.Is(err, common.ErrAlreadyExists) {
			logger.Error().Err(err).Msg("Error creating user")
		}
		return nil, err
	}

	s.publish(ctx, events.UserCreated, user)
	return user, nil
}

// UpdateUser changes name and email of user id. The password is left alone.
func (s *UserService) UpdateUser(ctx context.Context, id int, name, email string) error {
	if name == "" || email == "" {
		return fmt.Errorf("%w: name and email are required", common.ErrValidation)
	}

	user := &entity.User{ID: id, Name: name, Email: email}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if !errors.Is(err, common.ErrNotFound) && !errors.Is(err, common.ErrAlreadyExists) {
			logger.Error().Err(err).Msgf("Error updating user %d", id)
		}
		return err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.UserUpdated, user)
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error deleting user %d", id)
		}
		return err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.UserDeleted, &entity.User{ID: id})
	return nil
}

// Login checks credentials and returns the matching user without its hash.
// An unknown email and a wrong password both yield common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, plain string) (*entity.User, error) {
	if email == "" || plain == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrUnauthorized
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error looking up user for login")
		return nil, err
	}

	ok, err := s.hasher.Verify(plain, user.Password)
	if err != nil {
		// an unreadable stored hash can never match
		logger.Error().Err(err).Msgf("Error verifying password of user %d", user.ID)
		return nil, common.ErrUnauthorized
	}
	if !ok {
		return nil, common.ErrUnauthorized
	}

	user.Password = ""
	return user, nil
}

func (s *UserService) invalidate(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.Warn().Err(err).Msgf("Error evicting user %d from cache", id)
	}
}

// publish runs after the write has committed, so a failure is only logged.
func (s *UserService) publish(ctx context.Context, event string, user *entity.User) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, event, user); err != nil {
		logger.Error().Err(err).Msgf("Error publishing user %s event for user %d", event, user.ID)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/repository"
	"github.com/cagecms/cage/internal/validation"
	"github.com/rs/zerolog"
)

// CreateUserInput carries a new user's fields
type CreateUserInput struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Password   string   `json:"password"`
	Permission []string `json:"permission"`
	Expired    bool     `json:"expired"`
}

// ModifyUserInput carries the user fields a PATCH may change. ID and
// permission are immutable through this path.
type ModifyUserInput struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Expired  *bool   `json:"expired"`
}

// UserService handles user accounts
type UserService interface {
	List(ctx context.Context, limit, page int) ([]*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, input CreateUserInput, meta EventMeta) (*models.User, error)
	Modify(ctx context.Context, actor *models.User, id string, input ModifyUserInput, meta EventMeta) (*models.User, error)
	Delete(ctx context.Context, id string, meta EventMeta) error
	Count(ctx context.Context) (int, error)
}

// userService is the concrete implementation of UserService
type userService struct {
	userRepo  repository.UserRepository
	events    EventService
	validator *validation.Validator
	cfg       *config.Config
	log       zerolog.Logger
}

// newUserService creates a UserService
func newUserService(repos *repository.Repositories, events EventService, validator *validation.Validator, cfg *config.Config, log zerolog.Logger) *userService {
	return &userService{
		userRepo:  repos.User,
		events:    events,
		validator: validator,
		cfg:       cfg,
		log:       log.With().Str("service", "user").Logger(),
	}
}

// List retrieves users ordered by creation time
func (s *userService) List(ctx context.Context, limit, page int) ([]*models.User, error) {
	if limit <= 0 {
		limit = s.cfg.Blog.UserPageSize
	}
	if page < 0 {
		page = 0
	}
	return s.userRepo.List(ctx, limit, limit*page)
}

// Get retrieves a single user
func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, errNotFound("id", "user")
	}
	return user, nil
}

// Create registers a new user account
func (s *userService) Create(ctx context.Context, input CreateUserInput, meta EventMeta) (*models.User, error) {
	id := strings.TrimSpace(input.ID)
	if !s.validator.ValidUserID(id) {
		return nil, fieldErr("id", "valid ids are 5-32 characters of letters, digits and underscores")
	}

	name := strings.TrimSpace(input.Name)
	if !s.validator.ValidUserName(name) {
		return nil, fieldErr("name", "valid names are 1-12 characters without line breaks")
	}

	if !s.validator.ValidPassword(input.Password) {
		return nil, fieldErr("password", "valid passwords are 10-32 characters without whitespace")
	}

	if exists, err := s.userRepo.Exists(ctx, id); err != nil {
		return nil, fmt.Errorf("check user id: %w", err)
	} else if exists {
		return nil, errDuplicate("id", "user id", id)
	}
	if exists, err := s.userRepo.NameExists(ctx, name); err != nil {
		return nil, fmt.Errorf("check user name: %w", err)
	} else if exists {
		return nil, errDuplicate("name", "user name", name)
	}

	hash, err := HashPassword(input.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           id,
		Name:         name,
		PasswordHash: hash,
		Permission:   models.ParsePermission(input.Permission),
		Expired:      input.Expired,
		CreateTime:   time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Pre-checks race with concurrent inserts; give the same answer.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicate("id", "user id", id)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.events.Record(meta, models.EventUserCreate, fmt.Sprintf("create user(%s).", id))
	return user, nil
}

// Modify changes a user's name, password or expiry. Changing another
// user requires MODIFY_OTHER_USER.
func (s *userService) Modify(ctx context.Context, actor *models.User, id string, input ModifyUserInput, meta EventMeta) (*models.User, error) {
	if actor == nil {
		return nil, errPermission("you are not logged in")
	}
	if id == "" {
		id = actor.ID
	}
	if id != actor.ID && !actor.Can(models.PermModifyOtherUser) {
		return nil, errPermission("you are not allowed to change other user")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, errNotFound("id", "user")
	}

	var changed []string

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if !s.validator.ValidUserName(name) {
			return nil, fieldErr("name", "valid names are 1-12 characters without line breaks")
		}
		if name != user.Name {
			if exists, err := s.userRepo.NameExists(ctx, name); err != nil {
				return nil, fmt.Errorf("check user name: %w", err)
			} else if exists {
				return nil, errDuplicate("name", "user name", name)
			}
			user.Name = name
			changed = append(changed, "name")
		}
	}

	if input.Password != nil {
		if !s.validator.ValidPassword(*input.Password) {
			return nil, fieldErr("password", "valid passwords are 10-32 characters without whitespace")
		}
		hash, err := HashPassword(*input.Password, s.cfg.Auth.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
		changed = append(changed, "password")
	}

	if input.Expired != nil && *input.Expired != user.Expired {
		user.Expired = *input.Expired
		changed = append(changed, "expired")
	}

	// Nothing changed, keep the database untouched.
	if len(changed) == 0 {
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicate("name", "user name", user.Name)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.events.Record(meta, models.EventUserModify,
		fmt.Sprintf("modify properties %s of user(%s).", strings.Join(changed, ","), id))
	return user, nil
}

// Delete removes a user account
func (s *userService) Delete(ctx context.Context, id string, meta EventMeta) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return errNotFound("id", "user")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.events.Record(meta, models.EventUserDelete, fmt.Sprintf("delete user(%s).", id))
	return nil
}

// Count returns the total number of users
func (s *userService) Count(ctx context.Context) (int, error) {
	return s.userRepo.Count(ctx)
}

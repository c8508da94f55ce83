package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/repository"
	"github.com/cagecms/cage/internal/validation"
	"github.com/rs/zerolog"
)

// CategoryService handles article categories
type CategoryService interface {
	List(ctx context.Context, orderKey string, desc bool) ([]*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, actor *models.User, id, name string, meta EventMeta) (*models.Category, error)
	Rename(ctx context.Context, actor *models.User, id, name string, meta EventMeta) (*models.Category, error)
	Delete(ctx context.Context, actor *models.User, id string, meta EventMeta) error
}

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	categoryRepo repository.CategoryRepository
	events       EventService
	validator    *validation.Validator
	log          zerolog.Logger
}

// newCategoryService creates a CategoryService
func newCategoryService(repos *repository.Repositories, events EventService, validator *validation.Validator, log zerolog.Logger) *categoryService {
	return &categoryService{
		categoryRepo: repos.Category,
		events:       events,
		validator:    validator,
		log:          log.With().Str("service", "category").Logger(),
	}
}

// List retrieves all categories with their article counts
func (s *categoryService) List(ctx context.Context, orderKey string, desc bool) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, orderKey, desc)
}

// Get retrieves a single category
func (s *categoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if category == nil {
		return nil, errNotFound("id", "category")
	}
	return category, nil
}

// Create adds a new category owned by the acting user
func (s *categoryService) Create(ctx context.Context, actor *models.User, id, name string, meta EventMeta) (*models.Category, error) {
	name, ok := validation.TrimmedNonEmpty(name)
	if !ok {
		return nil, fieldErr("name", "please provide a valid category name")
	}
	if !s.validator.ValidContentID(id) {
		return nil, fieldErr("id", "valid ids contain only lowercase letters, digits and dashes")
	}

	if exists, err := s.categoryRepo.Exists(ctx, id); err != nil {
		return nil, fmt.Errorf("check category id: %w", err)
	} else if exists {
		return nil, errDuplicate("id", "category id", id)
	}
	if exists, err := s.categoryRepo.NameExists(ctx, name); err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	} else if exists {
		return nil, errDuplicate("name", "category name", name)
	}

	category := &models.Category{
		ID:         id,
		Name:       name,
		CreateTime: time.Now().UTC(),
	}
	if actor != nil {
		category.CreateBy = &actor.ID
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicate("id", "category id", id)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.events.Record(meta, models.EventCategoryCreate,
		fmt.Sprintf("category(%s) has been created.", id))
	return category, nil
}

// Rename changes a category's name. Renaming a category created by
// someone else requires EDIT_OTHERS_CATEGORY.
func (s *categoryService) Rename(ctx context.Context, actor *models.User, id, name string, meta EventMeta) (*models.Category, error) {
	name, ok := validation.TrimmedNonEmpty(name)
	if !ok {
		return nil, fieldErr("name", "please provide a valid category name")
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if category == nil {
		return nil, errNotFound("id", "category")
	}

	if !ownsCategory(actor, category) && !actor.Can(models.PermEditOthersCategory) {
		return nil, errPermission("you are not allowed to edit category created by other author")
	}

	oldName := category.Name
	if err := s.categoryRepo.Rename(ctx, id, name); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicate("name", "category name", name)
		}
		return nil, fmt.Errorf("rename category: %w", err)
	}
	category.Name = name

	s.events.Record(meta, models.EventCategoryModify,
		fmt.Sprintf("category(%s) changed from `%s` to `%s`.", id, oldName, name))
	return category, nil
}

// Delete removes a category. Articles referencing it fall back to no
// category rather than being deleted.
func (s *categoryService) Delete(ctx context.Context, actor *models.User, id string, meta EventMeta) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if category == nil {
		return errNotFound("id", "category")
	}

	if !ownsCategory(actor, category) && !actor.Can(models.PermEditOthersCategory) {
		return errPermission("you are not allowed to delete category created by other author")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.events.Record(meta, models.EventCategoryDelete,
		fmt.Sprintf("category(%s) has been deleted.", id))
	return nil
}

func ownsCategory(actor *models.User, category *models.Category) bool {
	if actor == nil || category.CreateBy == nil {
		return false
	}
	return *category.CreateBy == actor.ID
}

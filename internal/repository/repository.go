package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cagecms/cage/internal/database"
	"github.com/cagecms/cage/internal/models"
	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert or update violates a unique
// constraint (user/category name or ID collisions).
var ErrDuplicate = errors.New("duplicate key")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context, orderKey string, desc bool) ([]*models.Category, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
}

// ArticleFilter narrows article list queries.
type ArticleFilter struct {
	Category   string
	PublicOnly bool
	OrderKey   string
	Desc       bool
	Limit      int
	Offset     int
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	IncrementReadCount(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, articleID string, id int64) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID string, reviewedOnly bool, limit, offset int) ([]*models.Comment, error)
	MarkReviewed(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// EventRepository defines the interface for the append-only audit log.
// There is deliberately no update or delete operation.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	List(ctx context.Context, limit, offset int) ([]*models.Event, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the interface for login sessions
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Category CategoryRepository
	Article  ArticleRepository
	Comment  CommentRepository
	Event    EventRepository
	Session  SessionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Category: NewCategoryRepo(db),
		Article:  NewArticleRepo(db),
		Comment:  NewCommentRepo(db),
		Event:    NewEventRepo(db),
		Session:  NewSessionRepo(db),
	}
}

// mapError converts driver-level constraint violations to ErrDuplicate.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

package service

import (
	"testing"
	"time"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/mocks"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/render"
	"github.com/cagecms/cage/internal/repository"
	"github.com/cagecms/cage/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// testEnv bundles services built on mock repositories
type testEnv struct {
	services *Services
	repos    *repository.Repositories
	users    *mocks.MockUserRepository
	articles *mocks.MockArticleRepository
	comments *mocks.MockCommentRepository
	events   *mocks.MockEventRepository
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			SessionLifetime:   time.Hour,
			RememberLifetime:  30 * 24 * time.Hour,
			BcryptCost:        bcrypt.MinCost,
			PermissionControl: true,
		},
		Blog: config.BlogConfig{
			UserIDPattern:    `^[0-9a-zA-Z_]{5,32}$`,
			UserNamePattern:  `^[^\t\r\n]{1,12}$`,
			PasswordPattern:  `^[^\s]{10,32}$`,
			ContentIDPattern: `^[-0-9a-z]{1,64}$`,

			UserPageSize:    20,
			ArticlePageSize: 20,
			CommentPageSize: 20,

			CommentNeedReview: true,
			EventBufferSize:   64,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	repos, users, articles, comments, events := mocks.NewMockRepositories()

	validator, err := validation.New(&cfg.Blog)
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	return &testEnv{
		services: NewServices(repos, cfg, render.NewRegistry(), validator, zerolog.Nop()),
		repos:    repos,
		users:    users,
		articles: articles,
		comments: comments,
		events:   events,
	}
}

// addUser seeds a user with the given plaintext password
func (e *testEnv) addUser(t *testing.T, id, password string, perm models.Permission) *models.User {
	t.Helper()

	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		ID:           id,
		Name:         id,
		PasswordHash: hash,
		Permission:   perm,
		CreateTime:   time.Now().UTC(),
	}
	e.users.Users[id] = user
	return user
}

// addArticle seeds a public commentable article owned by authorID.
// Public articles always belong to a category.
func (e *testEnv) addArticle(id, authorID string) *models.Article {
	now := time.Now().UTC()
	categoryID := "general"
	article := &models.Article{
		ID:            id,
		IsCommentable: true,
		Title:         "Title of " + id,
		TextType:      "md",
		SourceText:    "# hello",
		Content:       "<h1>hello</h1>\n",
		PostTime:      now,
		UpdateTime:    now,
		Public:        true,
		CategoryID:    &categoryID,
		AuthorID:      &authorID,
	}
	e.articles.Articles[id] = article
	return article
}

// fieldOf unwraps a FieldError and fails the test otherwise
func fieldOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	fieldErr, ok := err.(*FieldError)
	if !ok {
		t.Fatalf("expected a field error, got %T: %v", err, err)
	}
	return fieldErr.Field
}

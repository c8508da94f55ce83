package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       map[string]*models.User
	InsertError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if _, exists := m.Users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.Users[id], nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users := make([]*models.User, 0, len(m.Users))
	for _, user := range m.Users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreateTime.Before(users[j].CreateTime) })
	return page(users, limit, offset), nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if user, ok := m.Users[id]; ok {
		user.LastLogin = &at
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Users[id]
	return exists, nil
}

func (m *MockUserRepository) NameExists(ctx context.Context, name string) (bool, error) {
	for _, user := range m.Users {
		if user.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.Users), nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	Categories map[string]*models.Category
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[string]*models.Category)}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if _, exists := m.Categories[category.ID]; exists {
		return repository.ErrDuplicate
	}
	m.Categories[category.ID] = category
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return m.Categories[id], nil
}

func (m *MockCategoryRepository) List(ctx context.Context, orderKey string, desc bool) ([]*models.Category, error) {
	categories := make([]*models.Category, 0, len(m.Categories))
	for _, category := range m.Categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		var less bool
		switch orderKey {
		case models.CategoryOrderName:
			less = categories[i].Name < categories[j].Name
		case models.CategoryOrderArticleCount:
			less = categories[i].ArticleCount < categories[j].ArticleCount
		default:
			less = categories[i].CreateTime.Before(categories[j].CreateTime)
		}
		if desc {
			return !less
		}
		return less
	})
	return categories, nil
}

func (m *MockCategoryRepository) Rename(ctx context.Context, id, name string) error {
	for _, category := range m.Categories {
		if category.ID != id && category.Name == name {
			return repository.ErrDuplicate
		}
	}
	if category, ok := m.Categories[id]; ok {
		category.Name = name
	}
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Categories[id]
	return exists, nil
}

func (m *MockCategoryRepository) NameExists(ctx context.Context, name string) (bool, error) {
	for _, category := range m.Categories {
		if category.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	Articles    map[string]*models.Article
	InsertError error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if _, exists := m.Articles[article.ID]; exists {
		return repository.ErrDuplicate
	}
	m.Articles[article.ID] = article
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return m.Articles[id], nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter repository.ArticleFilter) ([]*models.Article, error) {
	articles := make([]*models.Article, 0, len(m.Articles))
	for _, article := range m.Articles {
		if filter.PublicOnly && !article.Public {
			continue
		}
		if filter.Category != "" && (article.CategoryID == nil || *article.CategoryID != filter.Category) {
			continue
		}
		articles = append(articles, article)
	}
	sort.Slice(articles, func(i, j int) bool {
		less := articles[i].PostTime.Before(articles[j].PostTime)
		if filter.Desc {
			return !less
		}
		return less
	})
	return page(articles, filter.Limit, filter.Offset), nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.Articles[article.ID] = article
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Articles[id]
	return exists, nil
}

func (m *MockArticleRepository) IncrementReadCount(ctx context.Context, id string) error {
	if article, ok := m.Articles[id]; ok {
		article.ReadCount++
	}
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	return len(m.Articles), nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments map[int64]*models.Comment
	nextID   int64
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[int64]*models.Comment)}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.nextID++
	comment.ID = m.nextID
	m.Comments[comment.ID] = comment
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, articleID string, id int64) (*models.Comment, error) {
	comment, ok := m.Comments[id]
	if !ok || comment.ArticleID != articleID {
		return nil, nil
	}
	return comment, nil
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, articleID string, reviewedOnly bool, limit, offset int) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0, len(m.Comments))
	for _, comment := range m.Comments {
		if comment.ArticleID != articleID {
			continue
		}
		if reviewedOnly && !comment.Reviewed {
			continue
		}
		comments = append(comments, comment)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return page(comments, limit, offset), nil
}

func (m *MockCommentRepository) MarkReviewed(ctx context.Context, id int64) error {
	if comment, ok := m.Comments[id]; ok {
		comment.Reviewed = true
	}
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	delete(m.Comments, id)
	return nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Comments), nil
}

// MockEventRepository is a mock implementation of EventRepository.
// It is safe for concurrent use because the event recorder appends
// from a background goroutine.
type MockEventRepository struct {
	mu          sync.Mutex
	Events      []*models.Event
	InsertError error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]*models.Event, len(m.Events))
	copy(events, m.Events)
	sort.Slice(events, func(i, j int) bool { return events[i].CreateTime.After(events[j].CreateTime) })
	return page(events, limit, offset), nil
}

func (m *MockEventRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events), nil
}

// Recorded returns a snapshot of the appended events in insertion order
func (m *MockEventRepository) Recorded() []*models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]*models.Event, len(m.Events))
	copy(events, m.Events)
	return events
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	Sessions map[string]*models.Session
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{Sessions: make(map[string]*models.Session)}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	m.Sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	return m.Sessions[id], nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	delete(m.Sessions, id)
	return nil
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	for id, session := range m.Sessions {
		if session.UserID == userID {
			delete(m.Sessions, id)
		}
	}
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	for id, session := range m.Sessions {
		if session.ExpiresAt.Before(before) {
			delete(m.Sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// NewMockRepositories bundles fresh mocks into a Repositories value
func NewMockRepositories() (*repository.Repositories, *MockUserRepository, *MockArticleRepository, *MockCommentRepository, *MockEventRepository) {
	users := NewMockUserRepository()
	articles := NewMockArticleRepository()
	comments := NewMockCommentRepository()
	events := NewMockEventRepository()

	repos := &repository.Repositories{
		User:     users,
		Category: NewMockCategoryRepository(),
		Article:  articles,
		Comment:  comments,
		Event:    events,
		Session:  NewMockSessionRepository(),
	}
	return repos, users, articles, comments, events
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

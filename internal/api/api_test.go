package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/mocks"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/render"
	"github.com/cagecms/cage/internal/service"
	"github.com/cagecms/cage/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer bundles a router with direct access to the mock stores
type testServer struct {
	router   *gin.Engine
	services *service.Services
	users    *mocks.MockUserRepository
	articles *mocks.MockArticleRepository
	events   *mocks.MockEventRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Auth: config.AuthConfig{
			SessionLifetime:   time.Hour,
			RememberLifetime:  24 * time.Hour,
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

	repos, users, articles, _, events := mocks.NewMockRepositories()

	validator, err := validation.New(&cfg.Blog)
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	services := service.NewServices(repos, cfg, render.NewRegistry(), validator, zerolog.Nop())
	return &testServer{
		router:   NewRouter(services, cfg, zerolog.Nop()),
		services: services,
		users:    users,
		articles: articles,
		events:   events,
	}
}

// addUser seeds an account with the given permissions
func (s *testServer) addUser(t *testing.T, id, password string, perm models.Permission) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s.users.Users[id] = &models.User{
		ID:           id,
		Name:         id,
		PasswordHash: string(hash),
		Permission:   perm,
		CreateTime:   time.Now().UTC(),
	}
}

// do performs a request and decodes the JSON body
func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return w, decoded
}

// login authenticates and returns the session cookie
func (s *testServer) login(t *testing.T, id, password string) *http.Cookie {
	t.Helper()

	w, body := s.do(t, http.MethodPost, "/api/login", gin.H{"id": id, "password": password}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	if body["$errors"] != nil {
		t.Fatalf("login rejected: %v", body["$errors"])
	}
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookie {
			return cookie
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

// errField extracts the single key of the $errors object
func errField(t *testing.T, body map[string]interface{}) string {
	t.Helper()

	raw, ok := body["$errors"].(map[string]interface{})
	if !ok || len(raw) == 0 {
		t.Fatalf("expected a populated $errors object, got %v", body["$errors"])
	}
	for field := range raw {
		return field
	}
	return ""
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestLoginAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "writer01", "password123", models.PermAuthor)

	cookie := s.login(t, "writer01", "password123")
	if cookie.Value == "" {
		t.Fatal("empty session token")
	}

	w, body := s.do(t, http.MethodPost, "/api/logout", nil, cookie)
	if w.Code != http.StatusOK || body["$errors"] != nil {
		t.Fatalf("logout failed: %d %v", w.Code, body)
	}

	// The old session no longer grants access.
	w, _ = s.do(t, http.MethodGet, "/api/articles", nil, cookie)
	if w.Code != http.StatusForbidden {
		t.Errorf("status after logout = %d, want 403", w.Code)
	}
}

func TestLoginWrongPasswordEnvelope(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "writer01", "password123", models.PermAuthor)

	w, body := s.do(t, http.MethodPost, "/api/login", gin.H{"id": "writer01", "password": "wrongwrong1"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, field rejections keep 200", w.Code)
	}
	if field := errField(t, body); field != "password" {
		t.Errorf("error field = %q, want password", field)
	}
}

func TestPermissionGuardBlocksAnonymous(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/users", nil, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if field := errField(t, body); field != "permission" {
		t.Errorf("error field = %q, want permission", field)
	}
}

func TestPermissionGuardChecksFlag(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "writer01", "password123", models.PermAuthor)
	cookie := s.login(t, "writer01", "password123")

	// Authors cannot read the audit log.
	w, _ := s.do(t, http.MethodGet, "/api/events", nil, cookie)
	if w.Code != http.StatusForbidden {
		t.Errorf("events status = %d, want 403", w.Code)
	}

	// But they can read articles.
	w, body := s.do(t, http.MethodGet, "/api/articles", nil, cookie)
	if w.Code != http.StatusOK || body["$errors"] != nil {
		t.Errorf("articles blocked: %d %v", w.Code, body)
	}
}

func TestArticleFlow(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "writer01", "password123", models.PermSuperuser)
	cookie := s.login(t, "writer01", "password123")

	w, body := s.do(t, http.MethodPost, "/api/category",
		gin.H{"id": "golang", "name": "Golang"}, cookie)
	if w.Code != http.StatusOK || body["$errors"] != nil {
		t.Fatalf("category create failed: %d %v", w.Code, body)
	}

	w, body = s.do(t, http.MethodPost, "/api/article", gin.H{
		"id":          "hello-world",
		"title":       "Hello World",
		"text_type":   "md",
		"source_text": "# Hello",
		"category":    "golang",
	}, cookie)
	if w.Code != http.StatusOK || body["$errors"] != nil {
		t.Fatalf("article create failed: %d %v", w.Code, body)
	}

	w, body = s.do(t, http.MethodGet, "/api/article/hello-world", nil, cookie)
	if w.Code != http.StatusOK || body["$errors"] != nil {
		t.Fatalf("article get failed: %d %v", w.Code, body)
	}
	article, ok := body["article"].(map[string]interface{})
	if !ok {
		t.Fatalf("no article in response: %v", body)
	}
	if article["content"] != "<h1>Hello</h1>\n" {
		t.Errorf("content = %q", article["content"])
	}
	if article["read_count"] != float64(1) {
		t.Errorf("read_count = %v, want 1", article["read_count"])
	}
}

func TestArticleSourceNeedsEditPermission(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "reader01", "password123", models.PermReadArticle)
	cookie := s.login(t, "reader01", "password123")

	author := "writer01"
	category := "golang"
	s.articles.Articles["hello-world"] = &models.Article{
		ID:         "hello-world",
		Title:      "Hello World",
		TextType:   "md",
		SourceText: "# Hello",
		Content:    "<h1>Hello</h1>\n",
		Public:     true,
		CategoryID: &category,
		AuthorID:   &author,
	}

	w, body := s.do(t, http.MethodGet, "/api/article/hello-world?with_src=true", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if field := errField(t, body); field != "permission" {
		t.Errorf("error field = %q, want permission", field)
	}
}

func TestCommentFlow(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "writer01", "password123", models.PermSuperuser)
	s.addUser(t, "visitor1", "password123", models.PermReadComment|models.PermWriteComment)
	writerCookie := s.login(t, "writer01", "password123")
	visitorCookie := s.login(t, "visitor1", "password123")

	author := "writer01"
	category := "golang"
	s.articles.Articles["hello-world"] = &models.Article{
		ID:            "hello-world",
		IsCommentable: true,
		Title:         "Hello World",
		TextType:      "md",
		Public:        true,
		CategoryID:    &category,
		AuthorID:      &author,
	}

	// A visitor's comment awaits review, so the public listing is empty.
	w, body := s.do(t, http.MethodPost, "/api/article/hello-world/comment",
		gin.H{"nickname": "visitor", "content": "nice post"}, visitorCookie)
	if w.Code != http.StatusOK || body["$errors"] != nil {
		t.Fatalf("comment create failed: %d %v", w.Code, body)
	}

	w, body = s.do(t, http.MethodGet, "/api/article/hello-world/comments", nil, visitorCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if comments := body["comments"].([]interface{}); len(comments) != 0 {
		t.Errorf("unreviewed comment visible to visitors: %v", comments)
	}

	// The author reviews it and it becomes public.
	w, body = s.do(t, http.MethodPatch, "/api/article/hello-world/comment/1", gin.H{}, writerCookie)
	if w.Code != http.StatusOK || body["$errors"] != nil {
		t.Fatalf("review failed: %d %v", w.Code, body)
	}

	w, body = s.do(t, http.MethodGet, "/api/article/hello-world/comments", nil, visitorCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if comments := body["comments"].([]interface{}); len(comments) != 1 {
		t.Errorf("expected 1 visible comment, got %d", len(comments))
	}
}

func TestInvalidBodyEnvelope(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "writer01", "password123", models.PermSuperuser)
	cookie := s.login(t, "writer01", "password123")

	req := httptest.NewRequest(http.MethodPost, "/api/article", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if field := errField(t, body); field != "request" {
		t.Errorf("error field = %q, want request", field)
	}
}

func TestPanicRecordsExceptionEvent(t *testing.T) {
	s := newTestServer(t)
	s.services.Event.Start(context.Background())

	s.router.GET("/boom", func(c *gin.Context) {
		panic("article cache corrupted")
	})

	w, body := s.do(t, http.MethodGet, "/boom", nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if field := errField(t, body); field != "internal" {
		t.Errorf("error field = %q, want internal", field)
	}

	// Stop drains the queue so the event is persisted.
	s.services.Event.Stop()

	events := s.events.Recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 persisted event, got %d", len(events))
	}
	if events[0].Type != models.EventException {
		t.Errorf("event type = %q, want %q", events[0].Type, models.EventException)
	}
	if !strings.Contains(events[0].Description, "article cache corrupted") {
		t.Errorf("description misses the panic value: %q", events[0].Description)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "writer01", "password123", models.PermAuthor)
	s.addUser(t, "reader01", "password123", models.PermReadArticle)

	author := "writer01"
	s.articles.Articles["hello-world"] = &models.Article{
		ID:       "hello-world",
		Title:    "Hello World",
		TextType: "md",
		AuthorID: &author,
	}

	w, body := s.do(t, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	database, ok := body["database"].(map[string]interface{})
	if !ok {
		t.Fatalf("no database object in response: %v", body)
	}
	if database["users"] != float64(2) {
		t.Errorf("users = %v, want 2", database["users"])
	}
	if database["articles"] != float64(1) {
		t.Errorf("articles = %v, want 1", database["articles"])
	}
	if database["comments"] != float64(0) {
		t.Errorf("comments = %v, want 0", database["comments"])
	}
}

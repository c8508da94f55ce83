package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/render"
	"github.com/cagecms/cage/internal/repository"
	"github.com/cagecms/cage/internal/validation"
	"github.com/rs/zerolog"
)

// ListArticlesInput narrows and orders an article listing
type ListArticlesInput struct {
	Limit    int
	Page     int
	Category string
	OrderKey string
	Desc     bool
}

// CreateArticleInput carries a new article's fields
type CreateArticleInput struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	TextType      string  `json:"text_type"`
	SourceText    string  `json:"source_text"`
	Category      *string `json:"category"`
	Public        *bool   `json:"public"`
	IsCommentable *bool   `json:"is_commentable"`
}

// EditArticleInput carries the article fields a PATCH may change. ID
// and title are immutable.
type EditArticleInput struct {
	TextType      *string `json:"text_type"`
	SourceText    *string `json:"source_text"`
	Category      *string `json:"category"`
	Public        *bool   `json:"public"`
	IsCommentable *bool   `json:"is_commentable"`
}

// ArticleService handles articles and their rendering
type ArticleService interface {
	List(ctx context.Context, input ListArticlesInput) ([]*models.Article, error)
	// Get returns an article, enforcing private-article visibility and
	// bumping the read counter on qualifying reads.
	Get(ctx context.Context, actor *models.User, id string, countRead bool) (*models.Article, error)
	Create(ctx context.Context, actor *models.User, input CreateArticleInput, meta EventMeta) (*models.Article, error)
	Edit(ctx context.Context, actor *models.User, id string, input EditArticleInput, meta EventMeta) (*models.Article, error)
	Delete(ctx context.Context, actor *models.User, id string, meta EventMeta) error
	Types() []render.Renderer
	Count(ctx context.Context) (int, error)
}

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articleRepo  repository.ArticleRepository
	categoryRepo repository.CategoryRepository
	events       EventService
	registry     *render.Registry
	validator    *validation.Validator
	cfg          *config.Config
	log          zerolog.Logger
}

// newArticleService creates an ArticleService
func newArticleService(repos *repository.Repositories, events EventService, registry *render.Registry, validator *validation.Validator, cfg *config.Config, log zerolog.Logger) *articleService {
	return &articleService{
		articleRepo:  repos.Article,
		categoryRepo: repos.Category,
		events:       events,
		registry:     registry,
		validator:    validator,
		cfg:          cfg,
		log:          log.With().Str("service", "article").Logger(),
	}
}

// List retrieves public articles matching the filter
func (s *articleService) List(ctx context.Context, input ListArticlesInput) ([]*models.Article, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.Blog.ArticlePageSize
	}
	page := input.Page
	if page < 0 {
		page = 0
	}

	return s.articleRepo.List(ctx, repository.ArticleFilter{
		Category:   input.Category,
		PublicOnly: true,
		OrderKey:   input.OrderKey,
		Desc:       input.Desc,
		Limit:      limit,
		Offset:     limit * page,
	})
}

// Get retrieves a single article. A private article is readable by its
// author only. With countRead set the view counter is bumped, once per
// qualifying detail read.
func (s *articleService) Get(ctx context.Context, actor *models.User, id string, countRead bool) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, fieldErr("id", "can not find this article, maybe it has been deleted")
	}

	if !article.Public && (actor == nil || !article.OwnedBy(actor.ID)) {
		return nil, errPermission("you are not allowed to read a private article")
	}

	if countRead {
		if err := s.articleRepo.IncrementReadCount(ctx, id); err != nil {
			s.log.Error().Err(err).Str("article_id", id).Msg("Failed to increment read count")
		} else {
			article.ReadCount++
		}
	}

	return article, nil
}

// Create posts a new article. Content is rendered from the source text
// at write time; a public article must belong to an existing category,
// a private one belongs to none.
func (s *articleService) Create(ctx context.Context, actor *models.User, input CreateArticleInput, meta EventMeta) (*models.Article, error) {
	public := input.Public == nil || *input.Public

	var categoryID *string
	if public {
		if input.Category == nil || *input.Category == "" {
			return nil, fieldErr("category", "a public article must belong to a category")
		}
		if exists, err := s.categoryRepo.Exists(ctx, *input.Category); err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		} else if !exists {
			return nil, errNotFound("category", "category")
		}
		categoryID = input.Category
	}

	if !s.validator.ValidContentID(input.ID) {
		return nil, fieldErr("id", "valid ids contain only lowercase letters, digits and dashes")
	}

	title, ok := validation.TrimmedNonEmpty(input.Title)
	if !ok {
		return nil, fieldErr("title", "please provide a valid article title")
	}

	if !s.registry.Supports(input.TextType) {
		return nil, fieldErr("text_type", "this text type is not supported")
	}

	content, err := s.registry.Render(input.TextType, input.SourceText)
	if err != nil {
		return nil, fieldErr("source_text", "failed to render the article: %v", err)
	}

	if exists, err := s.articleRepo.Exists(ctx, input.ID); err != nil {
		return nil, fmt.Errorf("check article id: %w", err)
	} else if exists {
		return nil, errDuplicate("id", "article id", input.ID)
	}

	now := time.Now().UTC()
	article := &models.Article{
		ID:            input.ID,
		IsCommentable: input.IsCommentable == nil || *input.IsCommentable,
		Title:         title,
		TextType:      input.TextType,
		SourceText:    input.SourceText,
		Content:       content,
		PostTime:      now,
		UpdateTime:    now,
		Public:        public,
		CategoryID:    categoryID,
	}
	if actor != nil {
		article.AuthorID = &actor.ID
		article.AuthorName = actor.Name
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errDuplicate("id", "article id", input.ID)
		}
		return nil, fmt.Errorf("create article: %w", err)
	}

	author := ""
	if article.AuthorID != nil {
		author = *article.AuthorID
	}
	s.events.Record(meta, models.EventArticlePost,
		fmt.Sprintf("author(%s) posted a new article(%s).", author, article.ID))
	return article, nil
}

// Edit modifies an article. The author may edit their own; editing
// someone else's requires EDIT_OTHERS_ARTICLE. A text type change must
// come with new source text, and any source change is re-rendered.
func (s *articleService) Edit(ctx context.Context, actor *models.User, id string, input EditArticleInput, meta EventMeta) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, errNotFound("id", "article")
	}

	if (actor == nil || !article.OwnedBy(actor.ID)) && !actor.Can(models.PermEditOthersArticle) {
		return nil, errPermission("you are not allowed to edit article posted by other author")
	}

	var changed []string

	if input.Public != nil && *input.Public != article.Public {
		article.Public = *input.Public
		changed = append(changed, "public")
	}

	if !article.Public {
		if article.CategoryID != nil {
			article.CategoryID = nil
			changed = append(changed, "category")
		}
	} else {
		category := input.Category
		if category == nil && article.CategoryID == nil {
			return nil, fieldErr("category", "a public article must belong to a category")
		}
		if category != nil && (article.CategoryID == nil || *category != *article.CategoryID) {
			if exists, err := s.categoryRepo.Exists(ctx, *category); err != nil {
				return nil, fmt.Errorf("check category: %w", err)
			} else if !exists {
				return nil, errNotFound("category", "category")
			}
			article.CategoryID = category
			changed = append(changed, "category")
		}
	}

	if input.TextType != nil {
		if *input.TextType != article.TextType && input.SourceText == nil {
			return nil, fieldErr("text_type", "text type can not be changed on its own")
		}
		if !s.registry.Supports(*input.TextType) {
			return nil, fieldErr("text_type", "this text type is not supported")
		}
		if *input.TextType != article.TextType {
			article.TextType = *input.TextType
			changed = append(changed, "text_type")
		}
	}

	if input.SourceText != nil {
		content, err := s.registry.Render(article.TextType, *input.SourceText)
		if err != nil {
			return nil, fieldErr("source_text", "failed to render the article: %v", err)
		}
		article.SourceText = *input.SourceText
		article.Content = content
		changed = append(changed, "source_text")
	}

	if input.IsCommentable != nil && *input.IsCommentable != article.IsCommentable {
		article.IsCommentable = *input.IsCommentable
		changed = append(changed, "is_commentable")
	}

	if len(changed) == 0 {
		return article, nil
	}

	article.UpdateTime = time.Now().UTC()
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	s.events.Record(meta, models.EventArticleEdit,
		fmt.Sprintf("edit properties %s of article(%s).", strings.Join(changed, ","), id))
	return article, nil
}

// Delete removes an article and its comment tree
func (s *articleService) Delete(ctx context.Context, actor *models.User, id string, meta EventMeta) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return fieldErr("id", "can not find this article, maybe it has been deleted")
	}

	if (actor == nil || !article.OwnedBy(actor.ID)) && !actor.Can(models.PermEditOthersArticle) {
		return errPermission("you are not allowed to delete article posted by other author")
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.events.Record(meta, models.EventArticleDelete,
		fmt.Sprintf("article(%s) has been deleted by %s.", id, actorID))
	return nil
}

// Types lists the supported markup engines
func (s *articleService) Types() []render.Renderer {
	return s.registry.Supported()
}

// Count returns the total number of articles
func (s *articleService) Count(ctx context.Context) (int, error) {
	return s.articleRepo.Count(ctx)
}

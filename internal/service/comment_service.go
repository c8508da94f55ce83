package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/repository"
	"github.com/cagecms/cage/internal/validation"
	"github.com/rs/zerolog"
)

// CreateCommentInput carries a new comment's fields. ReferTo points at
// the parent comment for replies.
type CreateCommentInput struct {
	ArticleID string
	Content   string
	Nickname  string
	ReferTo   *int64
	IPAddress string
}

// CommentService handles article comments and their moderation
type CommentService interface {
	// List returns one page of comments plus whether more pages exist.
	// Unreviewed comments are visible only to the article's author.
	List(ctx context.Context, actor *models.User, articleID string, limit, page int) ([]*models.Comment, bool, error)
	Get(ctx context.Context, actor *models.User, articleID string, id int64) (*models.Comment, error)
	Create(ctx context.Context, actor *models.User, input CreateCommentInput, meta EventMeta) (*models.Comment, error)
	Review(ctx context.Context, actor *models.User, articleID string, id int64, meta EventMeta) (*models.Comment, error)
	Delete(ctx context.Context, actor *models.User, articleID string, id int64, meta EventMeta) error
	Count(ctx context.Context) (int, error)
}

// commentService is the concrete implementation of CommentService
type commentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	events      EventService
	cfg         *config.Config
	log         zerolog.Logger
}

// newCommentService creates a CommentService
func newCommentService(repos *repository.Repositories, events EventService, cfg *config.Config, log zerolog.Logger) *commentService {
	return &commentService{
		commentRepo: repos.Comment,
		articleRepo: repos.Article,
		events:      events,
		cfg:         cfg,
		log:         log.With().Str("service", "comment").Logger(),
	}
}

// articleAuthor loads an article and reports whether the actor wrote it
func (s *commentService) articleAuthor(ctx context.Context, actor *models.User, articleID string) (*models.Article, bool, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, false, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, false, fieldErr("article_id", "can not find this article, maybe it has been deleted")
	}
	isAuthor := actor != nil && article.OwnedBy(actor.ID)
	return article, isAuthor, nil
}

// List retrieves one page of an article's comments
func (s *commentService) List(ctx context.Context, actor *models.User, articleID string, limit, page int) ([]*models.Comment, bool, error) {
	if limit <= 0 {
		limit = s.cfg.Blog.CommentPageSize
	}
	if page < 0 {
		page = 0
	}

	_, isAuthor, err := s.articleAuthor(ctx, actor, articleID)
	if err != nil {
		return nil, false, err
	}

	// Fetch one extra row to detect a following page.
	comments, err := s.commentRepo.ListByArticle(ctx, articleID, !isAuthor, limit+1, limit*page)
	if err != nil {
		return nil, false, fmt.Errorf("list comments: %w", err)
	}

	isMore := len(comments) > limit
	if isMore {
		comments = comments[:limit]
	}
	return comments, isMore, nil
}

// Get retrieves a single comment, hiding unreviewed comments from
// everyone but the article's author
func (s *commentService) Get(ctx context.Context, actor *models.User, articleID string, id int64) (*models.Comment, error) {
	_, isAuthor, err := s.articleAuthor(ctx, actor, articleID)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, articleID, id)
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if comment == nil || (!comment.Reviewed && !isAuthor) {
		return nil, errNotFound("comment_id", "comment")
	}
	return comment, nil
}

// Create posts a comment or reply. The article must be commentable; a
// reply's parent must already exist on the same article, which keeps
// the refer_to relation a forest.
func (s *commentService) Create(ctx context.Context, actor *models.User, input CreateCommentInput, meta EventMeta) (*models.Comment, error) {
	article, isAuthor, err := s.articleAuthor(ctx, actor, input.ArticleID)
	if err != nil {
		return nil, err
	}

	if !article.IsCommentable {
		return nil, fieldErr("article_id", "this article does not accept comments")
	}

	if input.ReferTo != nil {
		parent, err := s.commentRepo.GetByID(ctx, input.ArticleID, *input.ReferTo)
		if err != nil {
			return nil, fmt.Errorf("load parent comment: %w", err)
		}
		if parent == nil {
			return nil, fieldErr("comment_id", "the comment you reply to does not exist")
		}
	}

	var nickname string
	if isAuthor {
		nickname = actor.Name
	} else {
		nickname, _ = validation.TrimmedNonEmpty(input.Nickname)
		if nickname == "" {
			return nil, fieldErr("nickname", "please provide a valid nickname")
		}
	}

	content, ok := validation.TrimmedNonEmpty(input.Content)
	if !ok {
		return nil, fieldErr("content", "please provide valid content")
	}

	comment := &models.Comment{
		Content:    content,
		Nickname:   nickname,
		Reviewed:   isAuthor || !s.cfg.Blog.CommentNeedReview,
		CreateTime: time.Now().UTC(),
		IPAddress:  input.IPAddress,
		IsAuthor:   isAuthor,
		ArticleID:  input.ArticleID,
		ReferTo:    input.ReferTo,
	}
	if actor != nil {
		comment.UserID = &actor.ID
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.events.Record(meta, models.EventCommentCreate,
		fmt.Sprintf("new comment(%d) in article(%s) has been added.", comment.ID, input.ArticleID))
	return comment, nil
}

// Review marks a comment as reviewed. Only the article's author may
// moderate its comments.
func (s *commentService) Review(ctx context.Context, actor *models.User, articleID string, id int64, meta EventMeta) (*models.Comment, error) {
	_, isAuthor, err := s.articleAuthor(ctx, actor, articleID)
	if err != nil {
		return nil, err
	}
	if !isAuthor {
		return nil, errNotFound("comment_id", "comment")
	}

	comment, err := s.commentRepo.GetByID(ctx, articleID, id)
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if comment == nil {
		return nil, errNotFound("comment_id", "comment")
	}

	if !comment.Reviewed {
		if err := s.commentRepo.MarkReviewed(ctx, id); err != nil {
			return nil, fmt.Errorf("review comment: %w", err)
		}
		comment.Reviewed = true
	}

	s.events.Record(meta, models.EventCommentReview,
		fmt.Sprintf("comment(%d) has been reviewed by %s.", id, actor.ID))
	return comment, nil
}

// Delete removes a comment and its replies. Only the article's author
// may delete comments.
func (s *commentService) Delete(ctx context.Context, actor *models.User, articleID string, id int64, meta EventMeta) error {
	_, isAuthor, err := s.articleAuthor(ctx, actor, articleID)
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, articleID, id)
	if err != nil {
		return fmt.Errorf("load comment: %w", err)
	}
	if comment == nil {
		return errNotFound("comment_id", "comment")
	}

	if !isAuthor {
		return errPermission("you are not allowed to delete this comment")
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.events.Record(meta, models.EventCommentDelete,
		fmt.Sprintf("comment(%d) has been deleted by %s.", id, actorID))
	return nil
}

// Count returns the total number of comments
func (s *commentService) Count(ctx context.Context) (int, error) {
	return s.commentRepo.Count(ctx)
}

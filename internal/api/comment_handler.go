package api

import (
	"net/http"
	"strconv"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// List handles GET /api/article/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	comments, isMore, err := h.services.Comment.List(
		c.Request.Context(), currentUser(c), c.Param("id"),
		queryInt(c, "limit", h.cfg.Blog.CommentPageSize),
		queryInt(c, "page", 0),
	)
	if err != nil {
		respondErr(c, err)
		return
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, comment.View())
	}
	respond(c, gin.H{"is_more": isMore, "comments": views})
}

// Get handles GET /api/article/:id/comment/:cid
func (h *CommentHandler) Get(c *gin.Context) {
	cid, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.services.Comment.Get(c.Request.Context(), currentUser(c), c.Param("id"), cid)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"comment": comment.View()})
}

// Create handles POST /api/article/:id/comment and
// POST /api/article/:id/comment/:cid (reply)
func (h *CommentHandler) Create(c *gin.Context) {
	var req struct {
		Nickname string `json:"nickname"`
		Content  string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	input := service.CreateCommentInput{
		ArticleID: c.Param("id"),
		Content:   req.Content,
		Nickname:  req.Nickname,
		IPAddress: c.ClientIP(),
	}
	if raw := c.Param("cid"); raw != "" {
		cid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"comment_id": "the comment you reply to does not exist"}})
			return
		}
		input.ReferTo = &cid
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), currentUser(c), input, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	h.log.Info().Int64("comment_id", comment.ID).Str("article_id", input.ArticleID).Msg("Comment created")
	respond(c, gin.H{"comment": comment.View()})
}

// Review handles PATCH /api/article/:id/comment/:cid
func (h *CommentHandler) Review(c *gin.Context) {
	cid, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.services.Comment.Review(c.Request.Context(), currentUser(c), c.Param("id"), cid, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"comment": comment.View()})
}

// Delete handles DELETE /api/article/:id/comment/:cid
func (h *CommentHandler) Delete(c *gin.Context) {
	cid, ok := commentID(c)
	if !ok {
		return
	}

	if err := h.services.Comment.Delete(c.Request.Context(), currentUser(c), c.Param("id"), cid, eventMeta(c)); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, nil)
}

// commentID parses the :cid path parameter, writing the not-found
// envelope on malformed input
func commentID(c *gin.Context) (int64, bool) {
	cid, err := strconv.ParseInt(c.Param("cid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"comment_id": "this comment does not exist"}})
		return 0, false
	}
	return cid, true
}

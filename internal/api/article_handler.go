package api

import (
	"net/http"

	"github.com/cagecms/cage/internal/config"
	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /api/articles
func (h *ArticleHandler) List(c *gin.Context) {
	withContent := c.Query("with_content") == "true"

	articles, err := h.services.Article.List(c.Request.Context(), service.ListArticlesInput{
		Limit:    queryInt(c, "limit", h.cfg.Blog.ArticlePageSize),
		Page:     queryInt(c, "page", 0),
		Category: c.Query("category"),
		OrderKey: c.Query("order"),
		Desc:     c.Query("desc") == "true",
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		respondErr(c, err)
		return
	}

	views := make([]models.ArticleView, 0, len(articles))
	for _, article := range articles {
		views = append(views, article.View(withContent, false))
	}
	respond(c, gin.H{"articles": views})
}

// Get handles GET /api/article/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	withContent := c.DefaultQuery("with_content", "true") == "true"
	withSrc := c.Query("with_src") == "true"

	if withSrc && !currentUser(c).Can(models.PermEditArticle) {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"permission": "you are not allowed to read the source"}})
		return
	}

	article, err := h.services.Article.Get(c.Request.Context(), currentUser(c), c.Param("id"), true)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"article": article.View(withContent, withSrc)})
}

// Create handles POST /api/article
func (h *ArticleHandler) Create(c *gin.Context) {
	var input service.CreateArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), currentUser(c), input, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	h.log.Info().Str("article_id", article.ID).Msg("Article posted")
	respond(c, gin.H{"article": article.View(false, false)})
}

// Edit handles PATCH /api/article/:id
func (h *ArticleHandler) Edit(c *gin.Context) {
	var input service.EditArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	article, err := h.services.Article.Edit(c.Request.Context(), currentUser(c), c.Param("id"), input, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"article": article.View(false, false)})
}

// Delete handles DELETE /api/article/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), currentUser(c), c.Param("id"), eventMeta(c)); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, nil)
}

// Types handles GET /api/article-types
func (h *ArticleHandler) Types(c *gin.Context) {
	respond(c, gin.H{"types": h.services.Article.Types()})
}

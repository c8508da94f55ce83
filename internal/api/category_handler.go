package api

import (
	"net/http"

	"github.com/cagecms/cage/internal/models"
	"github.com/cagecms/cage/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(services *service.Services, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		services: services,
		log:      log.With().Str("handler", "category").Logger(),
	}
}

// List handles GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	orderKey := c.DefaultQuery("order", models.CategoryOrderCreateTime)
	desc := c.Query("desc") == "true"

	categories, err := h.services.Category.List(c.Request.Context(), orderKey, desc)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		respondErr(c, err)
		return
	}

	views := make([]models.CategoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, category.View())
	}
	respond(c, gin.H{"categories": views})
}

// Get handles GET /api/category/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.services.Category.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"category": category.View()})
}

// Create handles POST /api/category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	category, err := h.services.Category.Create(c.Request.Context(), currentUser(c), req.ID, req.Name, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	h.log.Info().Str("category_id", category.ID).Msg("Category created")
	respond(c, gin.H{"category": category.View()})
}

// Rename handles PATCH /api/category/:id
func (h *CategoryHandler) Rename(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	category, err := h.services.Category.Rename(c.Request.Context(), currentUser(c), c.Param("id"), req.Name, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"category": category.View()})
}

// Delete handles DELETE /api/category/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.services.Category.Delete(c.Request.Context(), currentUser(c), c.Param("id"), eventMeta(c)); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, nil)
}

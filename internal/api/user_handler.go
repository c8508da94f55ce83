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

// UserHandler handles user account endpoints
type UserHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "user").Logger(),
	}
}

// List handles GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", h.cfg.Blog.UserPageSize)
	page := queryInt(c, "page", 0)

	users, err := h.services.User.List(c.Request.Context(), limit, page)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list users")
		respondErr(c, err)
		return
	}

	views := make([]models.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, user.View(false))
	}
	respond(c, gin.H{"users": views})
}

// Get handles GET /api/user/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.services.User.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"user": user.View(false)})
}

// Create handles POST /api/user
func (h *UserHandler) Create(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	user, err := h.services.User.Create(c.Request.Context(), input, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	h.log.Info().Str("user_id", user.ID).Msg("User created")
	respond(c, gin.H{"user": user.View(true)})
}

// Modify handles PATCH /api/user and PATCH /api/user/:id
func (h *UserHandler) Modify(c *gin.Context) {
	var input service.ModifyUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	user, err := h.services.User.Modify(c.Request.Context(), currentUser(c), c.Param("id"), input, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, gin.H{"user": user.View(false)})
}

// Delete handles DELETE /api/user/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.services.User.Delete(c.Request.Context(), c.Param("id"), eventMeta(c)); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, nil)
}

// queryInt parses an integer query parameter with a fallback
func queryInt(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

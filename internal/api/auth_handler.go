package api

import (
	"net/http"

	"github.com/cagecms/cage/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "cage_session"

// AuthHandler handles login and logout
type AuthHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		ID       string `json:"id"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"$errors": gin.H{"request": "invalid request body"}})
		return
	}

	user, session, err := h.services.Auth.Login(c.Request.Context(), req.ID, req.Password, req.Remember, eventMeta(c))
	if err != nil {
		respondErr(c, err)
		return
	}

	maxAge := int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())
	c.SetCookie(SessionCookie, session.ID, maxAge, "/", "", false, true)

	h.log.Info().Str("user_id", user.ID).Msg("User logged in")
	respond(c, gin.H{"user": user.View(false)})
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		respond(c, nil)
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), token, eventMeta(c)); err != nil {
		h.log.Error().Err(err).Msg("Failed to log out")
		respondErr(c, err)
		return
	}

	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	respond(c, nil)
}

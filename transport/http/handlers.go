package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tmoj/authd/core"
	"github.com/tmoj/authd/service"
)

// Handlers contains the HTTP handlers for the auth, user, and internal
// endpoints.
type Handlers struct {
	authService *service.AuthService
	cookieName  string
	cookieTTL   time.Duration
	logger      *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(authService *service.AuthService, cookieName string, cookieTTL time.Duration, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		authService: authService,
		cookieName:  cookieName,
		cookieTTL:   cookieTTL,
		logger:      logger,
	}
}

type userPayload struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

type detailPayload struct {
	Method string `json:"method" binding:"required"`
	Value  string `json:"value" binding:"required"`
}

// Register creates a new user plus their credential and starts a
// session for them.
func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		User                 userPayload   `json:"user" binding:"required"`
		AuthenticationDetail detailPayload `json:"authenticationDetail" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}

	user, err := core.NewUser(req.User.Username, req.User.Nickname, req.User.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	detail, err := core.NewAuthenticationDetail(req.AuthenticationDetail.Method, req.AuthenticationDetail.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}

	registered, token, err := h.authService.Register(c.Request.Context(), user, detail)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, registered)
}

// Login verifies a credential and starts a session.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Username             string        `json:"username" binding:"required"`
		AuthenticationDetail detailPayload `json:"authenticationDetail" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}

	detail, err := core.NewAuthenticationDetail(req.AuthenticationDetail.Method, req.AuthenticationDetail.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Username, detail)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password."})
			return
		}
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, user)
}

// Logout revokes the session token and clears the cookie. It sits
// behind the gate, so the cookie is known to be present.
func (h *Handlers) Logout(c *gin.Context) {
	token, err := c.Cookie(h.cookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "The action is not authorized."})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}

	h.clearSessionCookie(c)
	c.Status(http.StatusOK)
}

// RefreshToken revokes the current token and hands out a fresh one for
// the authenticated identity.
func (h *Handlers) RefreshToken(c *gin.Context) {
	user, ok := Identity(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	token, err := c.Cookie(h.cookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "The action is not authorized."})
		return
	}

	newToken, err := h.authService.RotateToken(c.Request.Context(), user.Username, token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, newToken)
	c.JSON(http.StatusOK, user)
}

// ValidateToken is the service-to-service endpoint: other services post
// a token string and get the resolved identity back.
func (h *Handlers) ValidateToken(c *gin.Context) {
	var req struct {
		JWT string `json:"jwt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}

	user, err := h.authService.Validate(c.Request.Context(), req.JWT)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid JWT."})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UsernameAvailable reports whether a username is still free.
func (h *Handlers) UsernameAvailable(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}

	available, err := h.authService.UsernameAvailable(c.Request.Context(), req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}

// UpdateUser patches the authenticated user's profile. The username in
// the payload is ignored in favor of the gate's identity.
func (h *Handlers) UpdateUser(c *gin.Context) {
	user, ok := Identity(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	var req userPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}

	requested, err := core.NewUser(user.Username, req.Nickname, req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}

	updated, err := h.authService.UpdateUser(c.Request.Context(), user.Username, requested)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdatePassword replaces the authenticated user's password.
func (h *Handlers) UpdatePassword(c *gin.Context) {
	user, ok := Identity(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}

	err := h.authService.UpdatePassword(c.Request.Context(), user.Username, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Updated password is equal to old password."})
		case errors.Is(err, core.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is not correct."})
		default:
			h.writeError(c, err)
		}
		return
	}

	c.Status(http.StatusOK)
}

// writeError maps the core error vocabulary onto status codes. Upstream
// details never reach the caller; they are logged here instead.
func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrTokenMalformed),
		errors.Is(err, core.ErrUnsupportedMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
	case errors.Is(err, core.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "The action is not authorized."})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	default:
		h.logger.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
	}
}

// setSessionCookie attaches the token to the response as an HTTP-only,
// same-site-strict session cookie.
func (h *Handlers) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookieName, token, int(h.cookieTTL.Seconds()), "/", "", false, true)
}

func (h *Handlers) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
}

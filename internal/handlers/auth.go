package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/auth"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/middleware"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/models"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/permission"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.verifier.Verify(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		case errors.Is(err, auth.ErrInactiveAccount):
			c.JSON(http.StatusForbidden, gin.H{"error": "account_inactive"})
		default:
			h.log.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		h.log.Error().Err(err).Msg("session write failed during login")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session_unavailable"})
		return
	}

	h.sendUser(c, user)
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c); err != nil {
		h.log.Error().Err(err).Msg("session destroy failed during logout")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session_unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.sendUser(c, user)
}

// GoogleRedirect starts the consent round trip with a signed state token.
func (h HandlerSet) GoogleRedirect(c *gin.Context) {
	state, err := auth.NewStateToken(h.cfg.Session.Secret)
	if err != nil {
		h.log.Error().Err(err).Msg("state token mint failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.Redirect(http.StatusFound, h.google.AuthURL(state))
}

// GoogleCallback completes federated login: verify state, exchange the code
// for a profile, resolve it to a user, and establish the session.
func (h HandlerSet) GoogleCallback(c *gin.Context) {
	if err := auth.VerifyStateToken(h.cfg.Session.Secret, c.Query("state")); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_code"})
		return
	}

	profile, err := h.google.FetchProfile(c.Request.Context(), code)
	if err != nil {
		h.log.Warn().Err(err).Msg("google profile fetch failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "oauth_failed"})
		return
	}

	user, err := h.broker.ExchangeProfile(c.Request.Context(), profile)
	if err != nil {
		h.log.Error().Err(err).Msg("profile exchange failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		h.log.Error().Err(err).Msg("session write failed during oauth login")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session_unavailable"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h HandlerSet) sendUser(c *gin.Context, user models.User) {
	c.JSON(http.StatusOK, gin.H{
		"user": userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Status:      string(user.Status),
		},
		"permissions": permission.Resolve(user),
	})
}

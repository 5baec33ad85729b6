package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/siwe-auth/core"
	"github.com/layer-3/siwe-auth/service"
	"github.com/sirupsen/logrus"
)

const (
	StatusAuthenticated   = "authenticated"
	StatusUnauthenticated = "unauthenticated"

	sessionKey = "session"
)

// AuthorizeRequest is the body of the authorize endpoint
type AuthorizeRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// SessionResponse is returned once a session has been issued or refreshed
type SessionResponse struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ChainID   uint64    `json:"chainId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStatus is what the rendering layer reads
type SessionStatus struct {
	Status  string `json:"status"`
	Address string `json:"address,omitempty"`
	ChainID uint64 `json:"chainId,omitempty"`
}

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	cookies     CookieOptions
	log         logrus.FieldLogger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, cookies CookieOptions, log logrus.FieldLogger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cookies:     cookies,
		log:         log.WithField("component", "http"),
	}
}

// Nonce issues a challenge nonce bound to the caller's context cookie
func (h *AuthHandlers) Nonce(c *gin.Context) {
	sc := sessionContext(c, true, h.cookies)

	nonce, err := h.authService.Nonce(c.Request.Context(), sc)
	if err != nil {
		h.log.WithError(err).Error("failed to issue nonce")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue nonce"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// Authorize verifies a signed sign-in message and starts a session.
// Failures are never explained to the client.
func (h *AuthHandlers) Authorize(c *gin.Context) {
	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sc := sessionContext(c, false, h.cookies)
	session, token, err := h.authService.Authorize(c.Request.Context(), sc, core.Credentials{
		Message:   req.Message,
		Signature: req.Signature,
	})
	if err != nil {
		if core.ReasonOf(err) == core.ReasonInternal {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	setSessionCookie(c, token, session.ExpiresAt, h.cookies)
	c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		Address:   session.Subject,
		ChainID:   session.ChainID,
		ExpiresAt: session.ExpiresAt,
	})
}

// Session reports whether the caller holds a valid session
func (h *AuthHandlers) Session(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		c.JSON(http.StatusOK, SessionStatus{Status: StatusUnauthenticated})
		return
	}

	session, err := h.authService.Validate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, SessionStatus{Status: StatusUnauthenticated})
		return
	}

	c.JSON(http.StatusOK, SessionStatus{
		Status:  StatusAuthenticated,
		Address: session.Subject,
		ChainID: session.ChainID,
	})
}

// Refresh rotates the caller's session credential
func (h *AuthHandlers) Refresh(c *gin.Context) {
	session, token, err := h.authService.Refresh(c.Request.Context(), sessionToken(c))
	if err != nil {
		if !errors.Is(err, core.ErrSessionInvalid) {
			h.log.WithError(err).Error("failed to refresh session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	setSessionCookie(c, token, session.ExpiresAt, h.cookies)
	c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		Address:   session.Subject,
		ChainID:   session.ChainID,
		ExpiresAt: session.ExpiresAt,
	})
}

// SignOut invalidates the caller's session; calling it twice is harmless
func (h *AuthHandlers) SignOut(c *gin.Context) {
	clearSessionCookie(c, h.cookies)

	if err := h.authService.SignOut(c.Request.Context(), sessionToken(c)); err != nil {
		h.log.WithError(err).Error("failed to sign out")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Me returns information about the authenticated account
func (h *AuthHandlers) Me(c *gin.Context) {
	value, exists := c.Get(sessionKey)
	session, ok := value.(*core.Session)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": session.Subject,
		"chainId": session.ChainID,
	})
}

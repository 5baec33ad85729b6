package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/layer-3/siwe-auth/core"
)

const (
	ContextCookie = "siwe_ctx"
	SessionCookie = "siwe_session"

	contextCookieMaxAge = int(24 * time.Hour / time.Second)
)

// CookieOptions controls the cookies set by the handlers
type CookieOptions struct {
	Secure bool
}

// sessionContext returns the client context from its cookie, creating one when asked
func sessionContext(c *gin.Context, create bool, opts CookieOptions) core.SessionContext {
	if value, err := c.Cookie(ContextCookie); err == nil {
		if _, err := uuid.Parse(value); err == nil {
			return core.SessionContext(value)
		}
	}
	if !create {
		return ""
	}

	value := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ContextCookie, value, contextCookieMaxAge, "/", "", opts.Secure, true)
	return core.SessionContext(value)
}

func setSessionCookie(c *gin.Context, token string, expiresAt time.Time, opts CookieOptions) {
	maxAge := int(time.Until(expiresAt) / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", opts.Secure, true)
}

func clearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", opts.Secure, true)
}

// sessionToken reads the credential from a bearer header or the session cookie
func sessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, found := strings.CutPrefix(auth, "Bearer "); found {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if token, err := c.Cookie(SessionCookie); err == nil {
		return token
	}
	return ""
}

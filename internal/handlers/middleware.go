package handlers

import (
	"net/http"
	"strings"
	"time"

	"medisched/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "medisched_session"
	ctxUserKey    = "user"
	ctxTokenKey   = "sessionToken"

	msgLoginRequired = "Please log in to access this page."
)

// sessionToken extracts the session handle from the Authorization header or,
// failing that, from the session cookie. ok is false for a malformed header.
func sessionToken(c *gin.Context) (token string, ok bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie, true
	}
	return "", true
}

// requireLogin guards HTML routes: anonymous callers are sent to /login.
func (h *Handler) requireLogin(c *gin.Context) {
	token, _ := sessionToken(c)
	user, err := h.services.CurrentUser(c.Request.Context(), token)
	if err != nil {
		h.log.Errorw("session_lookup_failed", "err", err, "path", c.Request.URL.Path)
		h.renderInternalError(c)
		c.Abort()
		return
	}
	if user == nil {
		h.setFlash(c, errorNotice(msgLoginRequired))
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set(ctxUserKey, *user)
	c.Set(ctxTokenKey, token)
	c.Next()
}

// requireAPIUser guards JSON routes with a 401 instead of a redirect.
func (h *Handler) requireAPIUser(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing credentials",
		})
		return
	}

	user, err := h.services.CurrentUser(c.Request.Context(), token)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "session_lookup_failed", err)
		c.Abort()
		return
	}
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(ctxUserKey, *user)
	c.Set(ctxTokenKey, token)
	c.Next()
}

// currentUser returns the caller stored by one of the guards.
func currentUser(c *gin.Context) models.User {
	u, _ := c.Get(ctxUserKey)
	user, _ := u.(models.User)
	return user
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	)
}

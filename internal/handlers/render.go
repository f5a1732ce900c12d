package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common JSON error strings.
const (
	errInternal        = "internal error"
	errInvalidBodyPref = "invalid body: "
	errInvalidID       = "invalid id"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, errorResponse{Error: userMsg})
}

// render executes a page template, adding the pending flash notice and the
// signed-in user (if any) to data.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flash"] = h.popFlash(c)
	if u, ok := c.Get(ctxUserKey); ok {
		data["User"] = u
	}
	c.HTML(status, name, data)
}

func (h *Handler) renderInternalError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"Message": "Something went wrong. Please try again later.",
	})
}

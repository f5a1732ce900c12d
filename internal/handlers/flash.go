package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "medisched_flash"

type noticeKind string

const (
	kindSuccess noticeKind = "success"
	kindError   noticeKind = "error"
)

// notice is a one-shot message shown on the next rendered page.
type notice struct {
	Kind    noticeKind `json:"kind"`
	Message string     `json:"message"`
}

func successNotice(msg string) notice { return notice{Kind: kindSuccess, Message: msg} }
func errorNotice(msg string) notice   { return notice{Kind: kindError, Message: msg} }

func (h *Handler) setFlash(c *gin.Context, n notice) {
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending notice, if any.
func (h *Handler) popFlash(c *gin.Context) *notice {
	raw, err := c.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	n, ok := decodeNotice(raw)
	if !ok {
		return nil
	}
	return &n
}

func decodeNotice(raw string) (notice, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return notice{}, false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return notice{}, false
	}
	var n notice
	if err := json.Unmarshal(decoded, &n); err != nil {
		return notice{}, false
	}
	if n.Message == "" {
		return notice{}, false
	}
	if n.Kind != kindError {
		n.Kind = kindSuccess
	}
	return n, true
}

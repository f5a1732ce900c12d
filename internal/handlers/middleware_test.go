package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medisched/internal/models"
	"medisched/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.SetHTMLTemplate(pageTemplates)
	secure := func(c *gin.Context) {
		u := currentUser(c)
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": u.ID, "token": c.GetString(ctxTokenKey)})
	}
	r.GET("/secure", h.requireAPIUser, secure)
	r.GET("/page", h.requireLogin, secure)
	return r
}

func TestRequireAPIUser_Errors(t *testing.T) {
	type want struct {
		code   int
		errMsg string
	}
	cases := []struct {
		name   string
		header string
		want   want
	}{
		{
			name:   "missing credentials",
			header: "",
			want:   want{code: http.StatusUnauthorized, errMsg: "missing credentials"},
		},
		{
			name:   "invalid scheme",
			header: "Token abc",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "bearer without token",
			header: "Bearer",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "expired/invalid token",
			header: "Bearer expired",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid or expired token"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &service.Service{Authorization: newSignedInAuth()}
			r := newMiddlewareOnlyRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.want.code {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want.code, w.Body.String())
			}

			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.want.errMsg {
				t.Fatalf("error message: got %q, want %q", out.Error, tc.want.errMsg)
			}
		})
	}
}

func TestRequireAPIUser_LookupFailureIs500(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{currentErr: errors.New("db down")}}
	r := newMiddlewareOnlyRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header = authHeader(testToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
}

func TestRequireAPIUser_SuccessSetsUserAndProceeds(t *testing.T) {
	cases := map[string]func(*http.Request){
		"bearer header": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+testToken) },
		"session cookie": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: sessionCookie, Value: testToken})
		},
	}
	for name, attach := range cases {
		t.Run(name, func(t *testing.T) {
			s := &service.Service{Authorization: newSignedInAuth()}
			r := newMiddlewareOnlyRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			attach(req)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d; body=%s", w.Code, http.StatusOK, w.Body.String())
			}
			var resp struct {
				OK     bool   `json:"ok"`
				UserID int    `json:"userId"`
				Token  string `json:"token"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !resp.OK || resp.UserID != testUser.ID || resp.Token != testToken {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestRequireLogin(t *testing.T) {
	t.Run("anonymous is redirected without running the handler", func(t *testing.T) {
		r := newMiddlewareOnlyRouter(&service.Service{Authorization: newSignedInAuth()})
		w := getPage(r, "/page", "")
		assertRedirect(t, w, "/login")
		if n := flashOf(t, w); n.Kind != kindError || n.Message != msgLoginRequired {
			t.Fatalf("flash = %+v", n)
		}
	})

	t.Run("unknown cookie is anonymous", func(t *testing.T) {
		r := newMiddlewareOnlyRouter(&service.Service{Authorization: newSignedInAuth()})
		w := getPage(r, "/page", "forged")
		assertRedirect(t, w, "/login")
	})

	t.Run("lookup failure renders error page", func(t *testing.T) {
		r := newMiddlewareOnlyRouter(&service.Service{Authorization: &mockAuth{currentErr: errors.New("db down")}})
		w := getPage(r, "/page", testToken)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status: got %d, want 500", w.Code)
		}
	})

	t.Run("signed-in user passes", func(t *testing.T) {
		auth := &mockAuth{tokens: map[string]models.User{"t2": {ID: 9, Username: "bob"}}}
		r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})
		w := getPage(r, "/page", "t2")
		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200", w.Code)
		}
	})
}

func TestGuardedWebRoutes_RedirectAnonymous(t *testing.T) {
	apps := &mockAppointments{}
	r := newTestRouter(&service.Service{Authorization: newSignedInAuth(), Appointments: apps})

	for _, path := range []string{"/dashboard", "/book", "/edit/1", "/delete/1", "/logout"} {
		w := getPage(r, path, "")
		assertRedirect(t, w, "/login")
	}
	if apps.deleteCalls != 0 {
		t.Fatalf("guarded handler body ran for anonymous caller")
	}
}

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"medisched/internal/models"
	"medisched/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser models.User
	registerErr  error
	loginSession service.Session
	loginErr     error
	logoutErr    error
	// tokens maps a session token to its user; unknown tokens are anonymous
	tokens     map[string]models.User
	currentErr error

	lastRegisterUsername string
	lastRegisterPassword string
	lastLoginUsername    string
	lastLoginPassword    string
	lastLogoutToken      string
	logoutCalls          int
}

func (m *mockAuth) Register(_ context.Context, username, password string) (models.User, error) {
	m.lastRegisterUsername = username
	m.lastRegisterPassword = password
	return m.registerUser, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, username, password string) (service.Session, error) {
	m.lastLoginUsername = username
	m.lastLoginPassword = password
	return m.loginSession, m.loginErr
}

func (m *mockAuth) Logout(_ context.Context, token string) error {
	m.logoutCalls++
	m.lastLogoutToken = token
	return m.logoutErr
}

func (m *mockAuth) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	u, ok := m.tokens[token]
	if !ok || token == "" {
		return nil, nil
	}
	return &u, nil
}

type mockAppointments struct {
	list    []models.Appointment
	listErr error

	bookResult models.Appointment
	bookErr    error
	lastBook   service.AppointmentInput
	lastOwner  models.User

	getResult models.Appointment
	getErr    error

	editResult models.Appointment
	editErr    error
	lastEdit   service.AppointmentInput
	lastEditID int

	deleteErr    error
	lastDeleteID int
	lastCaller   models.User
	deleteCalls  int
}

func (m *mockAppointments) Book(_ context.Context, owner models.User, in service.AppointmentInput) (models.Appointment, error) {
	m.lastOwner = owner
	m.lastBook = in
	return m.bookResult, m.bookErr
}

func (m *mockAppointments) ListForOwner(_ context.Context, owner models.User) ([]models.Appointment, error) {
	m.lastOwner = owner
	return m.list, m.listErr
}

func (m *mockAppointments) Get(_ context.Context, _ int) (models.Appointment, error) {
	return m.getResult, m.getErr
}

func (m *mockAppointments) GetOwned(_ context.Context, _ int, caller models.User) (models.Appointment, error) {
	m.lastCaller = caller
	return m.getResult, m.getErr
}

func (m *mockAppointments) Edit(_ context.Context, id int, caller models.User, in service.AppointmentInput) (models.Appointment, error) {
	m.lastEditID = id
	m.lastCaller = caller
	m.lastEdit = in
	return m.editResult, m.editErr
}

func (m *mockAppointments) Delete(_ context.Context, id int, caller models.User) error {
	m.deleteCalls++
	m.lastDeleteID = id
	m.lastCaller = caller
	return m.deleteErr
}

// ---- Shared Test Helpers ----

var testUser = models.User{ID: 7, Username: "alice"}

const testToken = "tok-alice"

// newSignedInAuth returns an auth mock that recognises testToken as testUser.
func newSignedInAuth() *mockAuth {
	return &mockAuth{tokens: map[string]models.User{testToken: testUser}}
}

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts...)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// postForm sends an urlencoded form, optionally carrying the session cookie.
func postForm(r http.Handler, path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// getPage sends a GET, optionally carrying the session cookie.
func getPage(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// flashOf decodes the notice set by the response, failing the test when absent.
func flashOf(t *testing.T, w *httptest.ResponseRecorder) notice {
	t.Helper()
	c := responseCookie(w, flashCookie)
	if c == nil {
		t.Fatalf("no flash cookie set; headers=%v", w.Header())
	}
	n, ok := decodeNotice(c.Value)
	if !ok {
		t.Fatalf("undecodable flash cookie %q", c.Value)
	}
	return n
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302 (body=%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Location: got %q, want %q", got, location)
	}
}

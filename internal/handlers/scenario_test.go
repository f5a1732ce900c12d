package handlers_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"medisched/internal/handlers"
	"medisched/internal/repository"
	"medisched/internal/repository/db"
	"medisched/internal/service"

	"github.com/gin-gonic/gin"
)

func newAppServer(t *testing.T) *httptest.Server {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "medisched.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	svc := service.NewService(repository.NewRepository(conn), service.AuthConfig{
		SigningKey: "handler-scenario-key",
		SessionTTL: time.Hour,
		BcryptCost: 4,
	})
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(handlers.NewHandler(svc, nil).InitRoutes())
	t.Cleanup(srv.Close)
	return srv
}

// browser follows redirects and keeps cookies, like a real user agent.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, base string) *browser {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &browser{t: t, base: base, client: &http.Client{Jar: jar}}
}

func (b *browser) read(resp *http.Response, err error) (string, string) {
	b.t.Helper()
	if err != nil {
		b.t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.Request.URL.Path, string(body)
}

func (b *browser) get(path string) (string, string) {
	return b.read(b.client.Get(b.base + path))
}

func (b *browser) post(path string, form url.Values) (string, string) {
	return b.read(b.client.PostForm(b.base+path, form))
}

func mustContain(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Fatalf("page missing %q:\n%s", p, body)
		}
	}
}

func TestScenario_AliceBooksAndSeesAppointment(t *testing.T) {
	srv := newAppServer(t)
	alice := newBrowser(t, srv.URL)

	path, body := alice.post("/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	if path != "/login" {
		t.Fatalf("after register landed on %s", path)
	}
	mustContain(t, body, "Account created! You can now log in.")

	path, body = alice.post("/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	if path != "/dashboard" {
		t.Fatalf("after login landed on %s", path)
	}
	mustContain(t, body, "Logged in successfully!", "No appointments yet.")

	path, body = alice.post("/book", url.Values{
		"patient_name": {"Bob"}, "date": {"2024-01-01"}, "time": {"10:00"}, "reason": {"checkup"},
	})
	if path != "/dashboard" {
		t.Fatalf("after booking landed on %s", path)
	}
	mustContain(t, body, "Appointment booked successfully!", "Bob", "2024-01-01", "10:00", "checkup")

	// flash is one-shot
	_, body = alice.get("/dashboard")
	if strings.Contains(body, "Appointment booked successfully!") {
		t.Fatalf("flash shown twice")
	}

	path, body = alice.get("/logout")
	if path != "/login" {
		t.Fatalf("after logout landed on %s", path)
	}
	mustContain(t, body, "You have been logged out.")

	path, body = alice.get("/dashboard")
	if path != "/login" {
		t.Fatalf("dashboard reachable after logout")
	}
	mustContain(t, body, "Please log in to access this page.")
}

func TestScenario_BobCannotTouchAlicesAppointment(t *testing.T) {
	srv := newAppServer(t)

	alice := newBrowser(t, srv.URL)
	alice.post("/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	alice.post("/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	alice.post("/book", url.Values{"patient_name": {"Bob"}, "date": {"2024-01-01"}, "time": {"10:00"}})

	bob := newBrowser(t, srv.URL)
	bob.post("/register", url.Values{"username": {"bob"}, "password": {"pw2"}})
	bob.post("/login", url.Values{"username": {"bob"}, "password": {"pw2"}})

	path, body := bob.get("/delete/1")
	if path != "/dashboard" {
		t.Fatalf("bob landed on %s", path)
	}
	mustContain(t, body, "Unauthorized access.")

	_, body = bob.post("/edit/1", url.Values{"patient_name": {"Mallory"}, "date": {"d"}, "time": {"t"}})
	mustContain(t, body, "Unauthorized access.")

	_, body = bob.get("/delete/999")
	mustContain(t, body, "Appointment not found.")

	_, body = alice.get("/dashboard")
	mustContain(t, body, "Bob", "2024-01-01")
	if strings.Contains(body, "Mallory") {
		t.Fatalf("bob's edit leaked into alice's appointment")
	}
}

func TestScenario_DuplicateAndBadLogin(t *testing.T) {
	srv := newAppServer(t)
	b := newBrowser(t, srv.URL)

	b.post("/register", url.Values{"username": {"alice"}, "password": {"pw1"}})
	path, body := b.post("/register", url.Values{"username": {"alice"}, "password": {"pw2"}})
	if path != "/register" {
		t.Fatalf("duplicate register landed on %s", path)
	}
	mustContain(t, body, "Username already exists. Please choose another.")

	_, wrongPw := b.post("/login", url.Values{"username": {"alice"}, "password": {"pw2"}})
	_, unknown := b.post("/login", url.Values{"username": {"ghost"}, "password": {"pw1"}})
	mustContain(t, wrongPw, "Invalid username or password.")
	mustContain(t, unknown, "Invalid username or password.")
}

func TestScenario_LongPasswordRegistersAndLogsIn(t *testing.T) {
	srv := newAppServer(t)
	b := newBrowser(t, srv.URL)
	password := strings.Repeat("p", 73)

	path, body := b.post("/register", url.Values{"username": {"carol"}, "password": {password}})
	if path != "/login" {
		t.Fatalf("register with 73-byte password landed on %s", path)
	}
	mustContain(t, body, "Account created! You can now log in.")

	path, body = b.post("/login", url.Values{"username": {"carol"}, "password": {password}})
	if path != "/dashboard" {
		t.Fatalf("login with 73-byte password landed on %s", path)
	}
	mustContain(t, body, "Logged in successfully!")
}

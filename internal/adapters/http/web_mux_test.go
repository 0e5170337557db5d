package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"zefit/internal/adapters/http/perf"
	"zefit/internal/application/orchestrators"
)

// newTestServer wires the full middleware chain over fresh stores with a
// seeded admin (admin@zefit.hr / secret1).
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	s, _ := setupTestStores(t)
	prevLimit := RateLimitPerSecond
	RateLimitPerSecond = 1000
	t.Cleanup(func() { RateLimitPerSecond = prevLimit })

	if _, err := orchestrators.ExecuteSeedAdmin(t.Context(), orchestrators.SeedAdminInput{Email: "admin@zefit.hr", Password: "secret1"},
		orchestrators.SeedAdminDeps{AccountStore: s.AccountStore, GenerateID: generateID, Now: timeNow}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return NewMux(s, perf.NewCollector(100), Options{CSRFKey: testCSRFKey, Location: time.UTC, ReminderWindowDays: 7})
}

func login(t *testing.T, h http.Handler, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"admin@zefit.hr","password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "zefit_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// TestNewMux_Anonymous tests that anonymous requests are turned away.
func TestNewMux_Anonymous(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name         string
		method       string
		target       string
		accept       string
		wantStatus   int
		wantLocation string
	}{
		{"browser page redirects to login", http.MethodGet, "/dashboard", "text/html", http.StatusSeeOther, "/login"},
		{"root redirects to login", http.MethodGet, "/", "text/html", http.StatusSeeOther, "/login"},
		{"api is unauthorized", http.MethodGet, "/api/clients", "application/json", http.StatusUnauthorized, ""},
		{"login page is public", http.MethodGet, "/login", "text/html", http.StatusOK, ""},
		{"static is public", http.MethodGet, "/static/app.css", "text/css", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("Accept", tt.accept)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && rec.Header().Get("Location") != tt.wantLocation {
				t.Errorf("got location %q, want %q", rec.Header().Get("Location"), tt.wantLocation)
			}
			if rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("security headers missing")
			}
		})
	}
}

// TestNewMux_LoginFlow tests logging in and using the session cookie.
func TestNewMux_LoginFlow(t *testing.T) {
	h := newTestServer(t)

	if rec := login(t, h, "wrong-password"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: got status %d, want 401", rec.Code)
	}

	rec := login(t, h, "secret1")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got status %d. Body: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)

	for _, target := range []string{"/api/dashboard", "/api/clients", "/api/trainers", "/api/schedule", "/api/posts", "/api/admin/perf"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got status %d. Body: %s", target, rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "admin@zefit.hr") {
		t.Errorf("dashboard page: got status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("after logout: got status %d, want 401", rec.Code)
	}
}

// TestNewMux_FormPostNeedsCSRFToken tests that browser forms must carry the token.
func TestNewMux_FormPostNeedsCSRFToken(t *testing.T) {
	h := newTestServer(t)
	cookie := sessionCookie(t, login(t, h, "secret1"))

	form := url.Values{"card_code": {"A1"}, "full_name": {"Ana"}}
	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("got status %d, want 403", rec.Code)
	}
}

// TestNewMux_StaffCannotUseAdminRoutes tests role checks on admin routes.
func TestNewMux_StaffCannotUseAdminRoutes(t *testing.T) {
	h := newTestServer(t)
	token, err := sessions.Create("staff-1", "desk@zefit.hr", "staff")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/perf", nil)
	req.AddCookie(&http.Cookie{Name: "zefit_session", Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("got status %d, want 403", rec.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainAccount "zefit/internal/domain/account"
)

// TestSessionStore_Expiry verifies sessions vanish after SessionTTL.
func TestSessionStore_Expiry(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	ss := NewSessionStore()
	ss.now = func() time.Time { return now }

	token, err := ss.Create("acct-1", "desk@zefit.hr", domainAccount.RoleStaff)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := ss.Get(token); !ok {
		t.Fatal("fresh session not found")
	}

	now = now.Add(SessionTTL + time.Second)
	if _, ok := ss.Get(token); ok {
		t.Error("expired session still returned")
	}
	if _, ok := ss.sessions[token]; ok {
		t.Error("expired session not dropped")
	}
}

// TestAuth_RequireAuth verifies anonymous handling per request type.
func TestAuth_RequireAuth(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acct-1", "desk@zefit.hr", domainAccount.RoleStaff)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"browser redirected", "GET", "/dashboard", "", http.StatusSeeOther},
		{"json gets 401", "GET", "/api/dashboard", "", http.StatusUnauthorized},
		{"post gets 401", "POST", "/clients", "", http.StatusUnauthorized},
		{"unknown token", "GET", "/dashboard", "nope", http.StatusSeeOther},
		{"valid session", "GET", "/dashboard", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Chain(RequireAuth(okHandler(http.StatusOK)), Auth(ss))
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tt.token})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

// TestRequireRole verifies staff cannot reach admin routes.
func TestRequireRole(t *testing.T) {
	h := RequireRole(domainAccount.RoleAdmin)(okHandler(http.StatusOK))

	tests := []struct {
		role     string
		wantCode int
	}{
		{domainAccount.RoleAdmin, http.StatusOK},
		{domainAccount.RoleStaff, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/perf", nil)
			req = req.WithContext(ContextWithSession(req.Context(), Session{AccountID: "a", Role: tt.role}))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

// TestRateLimit verifies the bucket empties per client address.
func TestRateLimit(t *testing.T) {
	h := RateLimit(NewRateLimiter(2, time.Hour))(okHandler(http.StatusOK))

	codes := make([]int, 0, 4)
	for _, addr := range []string{"10.0.0.1:5000", "10.0.0.1:5001", "10.0.0.1:5002", "10.0.0.2:5000"} {
		req := httptest.NewRequest("GET", "/dashboard", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	want := []int{200, 200, 429, 200}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

// TestRateLimiter_RefillAndPrune verifies tokens return after the interval
// and idle buckets are dropped.
func TestRateLimiter_RefillAndPrune(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request in the same second should be limited")
	}
	now = now.Add(1500 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("request after refill should pass")
	}

	now = now.Add(10 * time.Minute)
	rl.Allow("10.0.0.2")
	if _, ok := rl.buckets["10.0.0.1"]; ok {
		t.Error("idle bucket was not pruned")
	}
}

// TestSecurityHeaders verifies extra image origins reach the CSP.
func TestSecurityHeaders(t *testing.T) {
	ImageSources = []string{"https://res.cloudinary.com"}
	t.Cleanup(func() { ImageSources = nil })

	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler(http.StatusOK)).ServeHTTP(rr, httptest.NewRequest("GET", "/posts", nil))

	csp := rr.Header().Get("Content-Security-Policy")
	if want := "img-src 'self' data: https://res.cloudinary.com;"; !strings.Contains(csp, want) {
		t.Errorf("CSP = %q, want it to contain %q", csp, want)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("X-Frame-Options not set")
	}
}

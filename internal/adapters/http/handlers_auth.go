package web

import (
	"errors"
	"log/slog"
	"net/http"

	"zefit/internal/adapters/http/middleware"
	"zefit/internal/application/orchestrators"
)

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", map[string]any{"Error": "", "Email": ""})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *loginRequest) fromForm(get func(string) string) {
	l.Email = get("email")
	l.Password = get("password")
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readRequest(r, &req); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	if err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, orchestrators.ErrAccountLocked):
			status = http.StatusTooManyRequests
		case !errors.Is(err, orchestrators.ErrInvalidCredentials):
			internalError(w, err)
			return
		}
		if isHTMLRequest(r) {
			renderTemplateStatus(w, r, "login.html", status, map[string]any{"Error": err.Error(), "Email": req.Email})
			return
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	slog.Info("auth_event", "event", "login", "account_id", result.AccountID)
	respondDone(w, r, "/dashboard", http.StatusOK, result)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

package web

import (
	"net/http"

	"zefit/internal/adapters/http/middleware"
	"zefit/internal/application/orchestrators"
)

// handleProfile handles GET /profile. The profile is created on first visit.
func handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	p, err := orchestrators.ExecuteGetOrCreateProfile(r.Context(), orchestrators.GetOrCreateProfileInput{UserID: sess.AccountID},
		orchestrators.GetOrCreateProfileDeps{ProfileStore: stores.ProfileStore})
	if err != nil {
		internalError(w, err)
		return
	}
	if isHTMLRequest(r) {
		renderTemplate(w, r, "profile.html", map[string]any{
			"Profile": p,
			"Email":   sess.Email,
		})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type profileRequest struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	NewPassword string `json:"new_password"`
}

func (p *profileRequest) fromForm(get func(string) string) {
	p.FullName = get("full_name")
	p.Phone = get("phone")
	p.NewPassword = get("new_password")
}

// handleUpdateProfile handles POST /profile. Multipart bodies may carry an "avatar" file.
func handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	var req profileRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, "/profile")
		return
	}
	avatar, closeAvatar, err := formUpload(r, "avatar")
	if err != nil {
		respondError(w, r, err, "/profile")
		return
	}
	defer closeAvatar()

	p, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		UserID:      sess.AccountID,
		FullName:    req.FullName,
		Phone:       req.Phone,
		Avatar:      avatar,
		NewPassword: req.NewPassword,
	}, orchestrators.UpdateProfileDeps{
		ProfileStore: stores.ProfileStore,
		AccountStore: stores.AccountStore,
		ObjectStore:  stores.ObjectStore,
	})
	if err != nil {
		respondError(w, r, err, "/profile")
		return
	}
	respondDone(w, r, withQuery("/profile", "msg", "Profile saved"), http.StatusOK, p)
}

package web

import (
	"net/http"

	"zefit/internal/application/orchestrators"
	"zefit/internal/domain/post"
)

// handlePosts handles GET /posts and GET /api/posts. ?edit= preloads a post into the form.
func handlePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := stores.PostStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, posts)
		return
	}

	var editing *post.Post
	if id := r.URL.Query().Get("edit"); id != "" {
		for i := range posts {
			if posts[i].ID == id {
				editing = &posts[i]
				break
			}
		}
	}
	renderTemplate(w, r, "posts.html", map[string]any{
		"Posts":   posts,
		"Editing": editing,
	})
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p *postRequest) fromForm(get func(string) string) {
	p.Title = get("title")
	p.Content = get("content")
}

// handleSavePost handles POST /posts and POST /posts/{id}.
// Multipart bodies may carry an "image" file.
func handleSavePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	var req postRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, "/posts")
		return
	}
	image, closeImage, err := formUpload(r, "image")
	if err != nil {
		respondError(w, r, err, "/posts")
		return
	}
	defer closeImage()

	id := r.PathValue("id")
	p, err := orchestrators.ExecuteSavePost(r.Context(), orchestrators.SavePostInput{
		PostID:  id,
		Title:   req.Title,
		Content: req.Content,
		Image:   image,
	}, orchestrators.SavePostDeps{
		PostStore:   stores.PostStore,
		ObjectStore: stores.ObjectStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		respondError(w, r, err, "/posts")
		return
	}
	status := http.StatusCreated
	if id != "" {
		status = http.StatusOK
	}
	respondDone(w, r, "/posts", status, p)
}

// handleDeletePost handles POST /posts/{id}/delete
func handleDeletePost(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeletePost(r.Context(), orchestrators.DeletePostInput{PostID: r.PathValue("id")},
		orchestrators.DeletePostDeps{PostStore: stores.PostStore})
	if err != nil {
		respondError(w, r, err, "/posts")
		return
	}
	respondDone(w, r, "/posts", http.StatusNoContent, nil)
}

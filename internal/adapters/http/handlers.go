package web

import (
	"bytes"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"zefit/internal/adapters/http/middleware"
	"zefit/internal/adapters/objectstore"
	"zefit/internal/application/orchestrators"
	domainAccount "zefit/internal/domain/account"
	"zefit/internal/domain/member"
	"zefit/internal/domain/membership"
	"zefit/internal/domain/metrics"
	"zefit/internal/domain/money"
	"zefit/internal/domain/payment"
	"zefit/internal/domain/post"
	"zefit/internal/domain/profile"
	"zefit/internal/domain/session"
	"zefit/internal/domain/trainer"
	"zefit/internal/domain/visit"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// maxFormBytes bounds a multipart body: one upload plus its text fields.
const maxFormBytes = objectstore.MaxUploadBytes + 1<<20

// mdRenderer renders post content. Raw HTML in markdown is escaped
// (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// --- Errors ---

var notFoundErrors = []error{sql.ErrNoRows, trainer.ErrNotFound, session.ErrNotFound, post.ErrNotFound}

var conflictErrors = []error{
	member.ErrDuplicateCardCode,
	membership.ErrOverlappingPeriod,
	trainer.ErrAlreadyTrainer,
	session.ErrAlreadyEnrolled,
	visit.ErrAlreadyCheckedIn,
	visit.ErrNotCheckedIn,
	domainAccount.ErrEmailTaken,
}

var validationErrors = []error{
	member.ErrEmptyName, member.ErrNameTooLong, member.ErrEmptyCardCode, member.ErrCardCodeTooLong,
	member.ErrInvalidEmail, member.ErrInvalidStatus, member.ErrNoteTooLong,
	membership.ErrEmptyTypeName, membership.ErrNegativeDuration, membership.ErrNegativePrice,
	membership.ErrEmptyMemberID, membership.ErrEmptyTypeID, membership.ErrEmptyStartDate,
	membership.ErrEmptyEndDate, membership.ErrEndBeforeStart, membership.ErrInvalidStatus, membership.ErrZeroPrice,
	money.ErrEmptyAmount, money.ErrInvalidAmount, money.ErrTooPrecise,
	payment.ErrNoPackageSelected, payment.ErrNonPositiveAmount, payment.ErrEmptyPaidAt, payment.ErrInvalidMethod,
	orchestrators.ErrPackageNotOwned,
	post.ErrEmptyTitle, post.ErrTitleTooLong, post.ErrEmptyContent, post.ErrContentTooLong,
	profile.ErrNameTooLong, profile.ErrPhoneTooLong,
	domainAccount.ErrPasswordTooShort, domainAccount.ErrInvalidEmail, domainAccount.ErrEmptyEmail,
	session.ErrEmptyTitle, session.ErrTitleTooLong, session.ErrEmptyTrainerID, session.ErrEmptyStart,
	session.ErrEndBeforeStart, session.ErrDurationTooShort, session.ErrInvalidClock, session.ErrInvalidWeekCount,
	session.ErrEmptyMemberID, trainer.ErrEmptyMemberID,
	metrics.ErrInvalidRange, objectstore.ErrInvalidPath, errBadInput,
}

// errBadInput marks request values that could not be parsed.
var errBadInput = errors.New("invalid input")

func badInput(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", errBadInput, field, err)
}

// errorStatus maps an orchestrator or store error to an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, objectstore.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, validationErrors):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError writes err for the client. User errors on browser forms go back
// to the page named by back with the message in ?err=; server errors are logged.
func respondError(w http.ResponseWriter, r *http.Request, err error, back string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	msg := userMessage(err, status)
	if isHTMLRequest(r) && back != "" {
		http.Redirect(w, r, withQuery(back, "err", msg), http.StatusSeeOther)
		return
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func userMessage(err error, status int) string {
	if status == http.StatusNotFound {
		return "not found"
	}
	return err.Error()
}

// respondDone redirects browsers to next and answers API clients with v.
func respondDone(w http.ResponseWriter, r *http.Request, next string, status int, v any) {
	if isHTMLRequest(r) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, v)
}

func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// --- Request binding ---

// formRequest is a request body that can also arrive as form fields.
type formRequest interface {
	fromForm(get func(string) string)
}

// readRequest fills req from a JSON body or from url-encoded or multipart form fields.
func readRequest(r *http.Request, req formRequest) error {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		if err := strictDecode(r, req); err != nil {
			return badInput("body", err)
		}
		return nil
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(objectstore.MaxUploadBytes); err != nil {
			return badInput("form", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return badInput("form", err)
		}
	}
	req.fromForm(r.FormValue)
	return nil
}

// parseDay parses a YYYY-MM-DD value in the gym's time zone.
func parseDay(field, value string) (time.Time, error) {
	d, err := membership.ParseDate(strings.TrimSpace(value), location())
	if err != nil {
		return time.Time{}, badInput(field, err)
	}
	return d, nil
}

// parseOptionalDay returns nil for an empty value.
func parseOptionalDay(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := parseDay(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseOptionalAmount returns nil for an empty value.
func parseOptionalAmount(value string) (*money.Amount, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	a, err := money.Parse(value)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// formUpload returns the uploaded file for field, or nil when none was sent.
// The caller closes the returned closer.
func formUpload(r *http.Request, field string) (*orchestrators.Upload, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, badInput(field, err)
	}
	if header.Size > objectstore.MaxUploadBytes {
		file.Close()
		return nil, func() {}, objectstore.ErrTooLarge
	}
	up := &orchestrators.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return up, func() { file.Close() }, nil
}

// --- Rendering ---

var funcs = template.FuncMap{
	"csrfToken":    func() string { return "" },
	"csrfField":    func() template.HTML { return "" },
	"currentEmail": func() string { return "" },
	"isAdmin":      func() bool { return false },
	"flashError":   func() string { return "" },
	"flashNotice":  func() string { return "" },
	"navActive":    func(string) bool { return false },
	"renderMarkdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"day":      func(t time.Time) string { return t.Format("2006-01-02") },
	"dayLabel": func(t time.Time) string { return t.Format("02.01.2006") },
	"clock":    func(t time.Time) string { return t.In(location()).Format("15:04") },
	"stamp":    func(t time.Time) string { return t.In(location()).Format("02.01.2006 15:04") },
	"weekday":  weekdayName,
	"optISO": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"optDay": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02.01.2006")
	},
}

var pages = map[string]*template.Template{}

func init() {
	names, err := templateFS.ReadDir("templates")
	if err != nil {
		panic(err)
	}
	for _, e := range names {
		if e.Name() == "layout.html" {
			continue
		}
		pages[e.Name()] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+e.Name()))
	}
}

func weekdayName(t time.Time) string {
	names := [...]string{"Nedjelja", "Ponedjeljak", "Utorak", "Srijeda", "Četvrtak", "Petak", "Subota"}
	return names[t.Weekday()]
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, templateName, http.StatusOK, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, templateName string, status int, data any) {
	base, ok := pages[templateName]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", templateName))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	q := r.URL.Query()
	tpl.Funcs(template.FuncMap{
		"csrfToken":    func() string { return csrf.Token(r) },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"currentEmail": func() string { return sess.Email },
		"isAdmin":      func() bool { return sess.Role == domainAccount.RoleAdmin },
		"flashError":   func() string { return q.Get("err") },
		"flashNotice":  func() string { return q.Get("msg") },
		"navActive":    func(prefix string) bool { return strings.HasPrefix(r.URL.Path, prefix) },
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

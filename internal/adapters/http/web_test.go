package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"zefit/internal/adapters/email"
	"zefit/internal/adapters/http/middleware"
	"zefit/internal/adapters/objectstore"
	"zefit/internal/adapters/storage"
	accountStore "zefit/internal/adapters/storage/account"
	"zefit/internal/adapters/storage/cascade"
	memberStore "zefit/internal/adapters/storage/member"
	membershipStore "zefit/internal/adapters/storage/membership"
	paymentStore "zefit/internal/adapters/storage/payment"
	postStore "zefit/internal/adapters/storage/post"
	profileStore "zefit/internal/adapters/storage/profile"
	sessionStore "zefit/internal/adapters/storage/session"
	"zefit/internal/adapters/storage/storagetest"
	trainerStore "zefit/internal/adapters/storage/trainer"
	visitStore "zefit/internal/adapters/storage/visit"
	domainAccount "zefit/internal/domain/account"
	"zefit/internal/domain/member"
	"zefit/internal/domain/membership"
	"zefit/internal/domain/money"
)

// fixedNow is Wednesday 12 March 2025, 10:00 UTC.
var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

// setupTestStores points the package globals at a fresh in-memory database.
// PRE: none
// POST: stores, options, timeNow and emailSender are reset when the test ends
func setupTestStores(t *testing.T) (*Stores, storage.SQLDB) {
	t.Helper()
	db := storagetest.Open(t)
	s := &Stores{
		AccountStore: accountStore.NewSQLiteStore(db),
		MemberStore:  memberStore.NewSQLiteStore(db),
		TypeStore:    membershipStore.NewTypeSQLiteStore(db),
		PeriodStore:  membershipStore.NewPeriodSQLiteStore(db, time.UTC),
		PaymentStore: paymentStore.NewSQLiteStore(db),
		VisitStore:   visitStore.NewSQLiteStore(db),
		TrainerStore: trainerStore.NewSQLiteStore(db),
		SessionStore: sessionStore.NewSQLiteStore(db, time.UTC),
		RosterStore:  sessionStore.NewRosterSQLiteStore(db),
		PostStore:    postStore.NewSQLiteStore(db),
		ProfileStore: profileStore.NewSQLiteStore(db),
		Deleter:      cascade.NewDeleter(db),
		ObjectStore:  objectstore.NewDiskStore(t.TempDir(), "/media"),
	}

	prevStores, prevOptions, prevNow, prevSender := stores, options, timeNow, emailSender
	t.Cleanup(func() {
		stores, options, timeNow, emailSender = prevStores, prevOptions, prevNow, prevSender
	})
	stores = s
	options = Options{Location: time.UTC, ReminderWindowDays: 7}
	timeNow = func() time.Time { return fixedNow }
	return s, db
}

// staffContext attaches a logged-in session to r.
func staffContext(r *http.Request, role string) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), middleware.Session{
		AccountID: "acct-1",
		Email:     "desk@zefit.hr",
		Role:      role,
		CreatedAt: fixedNow,
	}))
}

// jsonRequest builds an authenticated API request.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return staffContext(req, domainAccount.RoleAdmin)
}

// formRequestFor builds an authenticated browser form post.
func formRequestFor(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	return staffContext(req, domainAccount.RoleStaff)
}

// pageRequest builds an authenticated browser GET.
func pageRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "text/html")
	return staffContext(req, domainAccount.RoleAdmin)
}

// multipartRequest builds an authenticated multipart post with one optional file.
func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(file)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return staffContext(req, domainAccount.RoleStaff)
}

// serve dispatches req through a mux holding the production routes, so
// path values are populated. Auth middleware is not applied; requests carry
// their session in the context already.
func serve(req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	registerRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func seedMember(t *testing.T, s *Stores, id, name, email string) member.Member {
	t.Helper()
	m := member.Member{
		ID:        id,
		CardCode:  "C-" + id,
		FullName:  name,
		Email:     email,
		Status:    member.StatusActive,
		CreatedAt: fixedNow.AddDate(0, 0, -1),
	}
	if err := s.MemberStore.Save(t.Context(), m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func seedType(t *testing.T, s *Stores, id, name string, days int, price money.Amount) membership.Type {
	t.Helper()
	mt := membership.Type{ID: id, Name: name, DurationDays: days, DefaultPrice: price}
	if err := s.TypeStore.Save(t.Context(), mt); err != nil {
		t.Fatalf("seed type: %v", err)
	}
	return mt
}

func seedPeriod(t *testing.T, s *Stores, id, memberID string, mt membership.Type, start, end time.Time) membership.Period {
	t.Helper()
	p := membership.Period{
		ID:        id,
		MemberID:  memberID,
		TypeID:    mt.ID,
		TypeName:  mt.Name,
		Price:     mt.DefaultPrice,
		StartDate: start,
		EndDate:   &end,
		Status:    membership.StatusActive,
	}
	if err := s.PeriodStore.Save(t.Context(), p); err != nil {
		t.Fatalf("seed period: %v", err)
	}
	return p
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func useNoopSender(t *testing.T) *email.NoopSender {
	t.Helper()
	sender := email.NewNoopSender()
	emailSender = sender
	return sender
}

package orchestrators

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"zefit/internal/adapters/storage/cascade"
	"zefit/internal/adapters/storage/membership"
	"zefit/internal/domain/account"
	"zefit/internal/domain/member"
	domainMembership "zefit/internal/domain/membership"
	"zefit/internal/domain/payment"
	"zefit/internal/domain/post"
	"zefit/internal/domain/profile"
	domainSession "zefit/internal/domain/session"
	"zefit/internal/domain/trainer"
	"zefit/internal/domain/visit"
)

var (
	testLoc   = time.FixedZone("CET", 3600)
	fixedTime = time.Date(2025, 11, 20, 10, 0, 0, 0, testLoc)
)

func fixedNow() time.Time { return fixedTime }

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func notFound(entity string) error {
	return fmt.Errorf("%s not found: %w", entity, sql.ErrNoRows)
}

type mockMemberStore struct {
	members map[string]member.Member
	saves   int
	saveErr error
}

func newMockMemberStore(ms ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: make(map[string]member.Member)}
	for _, m := range ms {
		s.members[m.ID] = m
	}
	return s
}

// GetByID returns a seeded member.
// PRE: id is non-empty
// POST: Returns the member or an error wrapping sql.ErrNoRows
func (m *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	v, ok := m.members[id]
	if !ok {
		return member.Member{}, notFound("member")
	}
	return v, nil
}

// Save stores the member unless saveErr is set.
// PRE: member is valid
// POST: member is persisted
func (m *mockMemberStore) Save(_ context.Context, v member.Member) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.members[v.ID] = v
	return nil
}

type mockTypeStore struct {
	types map[string]domainMembership.Type
}

// GetByID returns a seeded membership type.
// PRE: id is non-empty
// POST: Returns the type or an error wrapping sql.ErrNoRows
func (m *mockTypeStore) GetByID(_ context.Context, id string) (domainMembership.Type, error) {
	t, ok := m.types[id]
	if !ok {
		return domainMembership.Type{}, notFound("membership type")
	}
	return t, nil
}

// Save stores the type.
// PRE: type is valid
// POST: type is persisted
func (m *mockTypeStore) Save(_ context.Context, t domainMembership.Type) error {
	if m.types == nil {
		m.types = make(map[string]domainMembership.Type)
	}
	m.types[t.ID] = t
	return nil
}

type mockPeriodStore struct {
	periods map[string]domainMembership.Period
}

func newMockPeriodStore(ps ...domainMembership.Period) *mockPeriodStore {
	s := &mockPeriodStore{periods: make(map[string]domainMembership.Period)}
	for _, p := range ps {
		s.periods[p.ID] = p
	}
	return s
}

// GetByID returns a seeded period.
// PRE: id is non-empty
// POST: Returns the period or an error wrapping sql.ErrNoRows
func (m *mockPeriodStore) GetByID(_ context.Context, id string) (domainMembership.Period, error) {
	p, ok := m.periods[id]
	if !ok {
		return domainMembership.Period{}, notFound("membership period")
	}
	return p, nil
}

// Save stores the period.
// PRE: period is valid
// POST: period is persisted
func (m *mockPeriodStore) Save(_ context.Context, p domainMembership.Period) error {
	m.periods[p.ID] = p
	return nil
}

// List filters by member, status and end date bounds (inclusive, by calendar date).
// PRE: filter is valid
// POST: Returns matching periods ordered by ID
func (m *mockPeriodStore) List(_ context.Context, filter membership.PeriodFilter) ([]domainMembership.Period, error) {
	day := func(t time.Time) string { return t.Format(domainMembership.DateLayout) }
	var out []domainMembership.Period
	for _, p := range m.periods {
		if filter.MemberID != "" && p.MemberID != filter.MemberID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if !filter.EndFrom.IsZero() && (p.EndDate == nil || day(*p.EndDate) < day(filter.EndFrom)) {
			continue
		}
		if !filter.EndTo.IsZero() && (p.EndDate == nil || day(*p.EndDate) > day(filter.EndTo)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockPaymentStore struct {
	payments []payment.Payment
}

// Save appends the payment.
// PRE: payment is valid
// POST: payment is recorded
func (m *mockPaymentStore) Save(_ context.Context, p payment.Payment) error {
	m.payments = append(m.payments, p)
	return nil
}

type mockVisitStore struct {
	visits map[string]visit.Visit
}

func newMockVisitStore() *mockVisitStore {
	return &mockVisitStore{visits: make(map[string]visit.Visit)}
}

// GetOpenByMember returns the member's visit without a departure.
// PRE: memberID is non-empty
// POST: Returns the open visit or an error wrapping sql.ErrNoRows
func (m *mockVisitStore) GetOpenByMember(_ context.Context, memberID string) (visit.Visit, error) {
	for _, v := range m.visits {
		if v.MemberID == memberID && v.IsOpen() {
			return v, nil
		}
	}
	return visit.Visit{}, notFound("open visit")
}

// Save stores the visit.
// PRE: visit is valid
// POST: visit is persisted
func (m *mockVisitStore) Save(_ context.Context, v visit.Visit) error {
	m.visits[v.ID] = v
	return nil
}

type mockTrainerStore struct {
	trainers  map[string]trainer.Trainer
	lookupErr error
}

func newMockTrainerStore(ts ...trainer.Trainer) *mockTrainerStore {
	s := &mockTrainerStore{trainers: make(map[string]trainer.Trainer)}
	for _, t := range ts {
		s.trainers[t.ID] = t
	}
	return s
}

// GetByID returns a seeded trainer.
// PRE: id is non-empty
// POST: Returns the trainer or an error wrapping sql.ErrNoRows
func (m *mockTrainerStore) GetByID(_ context.Context, id string) (trainer.Trainer, error) {
	t, ok := m.trainers[id]
	if !ok {
		return trainer.Trainer{}, notFound("trainer")
	}
	return t, nil
}

// GetByMemberID returns the trainer record of a member unless lookupErr is set.
// PRE: memberID is non-empty
// POST: Returns the trainer or an error wrapping sql.ErrNoRows
func (m *mockTrainerStore) GetByMemberID(_ context.Context, memberID string) (trainer.Trainer, error) {
	if m.lookupErr != nil {
		return trainer.Trainer{}, m.lookupErr
	}
	for _, t := range m.trainers {
		if t.MemberID == memberID {
			return t, nil
		}
	}
	return trainer.Trainer{}, notFound("trainer")
}

// Save stores the trainer.
// PRE: trainer is valid
// POST: trainer is persisted
func (m *mockTrainerStore) Save(_ context.Context, t trainer.Trainer) error {
	m.trainers[t.ID] = t
	return nil
}

type mockSessionStore struct {
	sessions map[string]domainSession.Session
}

func newMockSessionStore(ss ...domainSession.Session) *mockSessionStore {
	s := &mockSessionStore{sessions: make(map[string]domainSession.Session)}
	for _, v := range ss {
		s.sessions[v.ID] = v
	}
	return s
}

// GetByID returns a seeded session.
// PRE: id is non-empty
// POST: Returns the session or an error wrapping sql.ErrNoRows
func (m *mockSessionStore) GetByID(_ context.Context, id string) (domainSession.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return domainSession.Session{}, notFound("session")
	}
	return s, nil
}

// Save stores the session.
// PRE: session is valid
// POST: session is persisted
func (m *mockSessionStore) Save(_ context.Context, s domainSession.Session) error {
	m.sessions[s.ID] = s
	return nil
}

// EarliestByTrainer returns the trainer's first session by start time.
// PRE: trainerID is non-empty
// POST: Returns the session or an error wrapping sql.ErrNoRows
func (m *mockSessionStore) EarliestByTrainer(_ context.Context, trainerID string) (domainSession.Session, error) {
	var best *domainSession.Session
	for _, s := range m.sessions {
		if s.TrainerID != trainerID {
			continue
		}
		if best == nil || s.StartsAt.Before(best.StartsAt) {
			v := s
			best = &v
		}
	}
	if best == nil {
		return domainSession.Session{}, notFound("session")
	}
	return *best, nil
}

type mockRosterStore struct {
	entries  []domainSession.RosterEntry
	sessions *mockSessionStore
}

// Add enrolls a member unless already enrolled.
// PRE: entry is valid
// POST: entry is stored or ErrAlreadyEnrolled is returned
func (m *mockRosterStore) Add(_ context.Context, e domainSession.RosterEntry) error {
	for _, cur := range m.entries {
		if cur.SessionID == e.SessionID && cur.MemberID == e.MemberID {
			return domainSession.ErrAlreadyEnrolled
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

// Remove deletes one enrollment; absent entries are ignored.
// PRE: ids are non-empty
// POST: (sessionID, memberID) is not enrolled
func (m *mockRosterStore) Remove(_ context.Context, sessionID, memberID string) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.SessionID == sessionID && e.MemberID == memberID {
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return nil
}

// RemoveMemberFromTrainer deletes the member's entries in all of the trainer's sessions.
// PRE: ids are non-empty
// POST: Returns the number of entries removed
func (m *mockRosterStore) RemoveMemberFromTrainer(_ context.Context, trainerID, memberID string) (int64, error) {
	var removed int64
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.MemberID == memberID && m.sessions.sessions[e.SessionID].TrainerID == trainerID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

type mockDeleter struct {
	results []cascade.StepResult
	err     error
	calls   []string
}

// DeleteMember records the call and returns the configured outcome.
// PRE: memberID is non-empty
// POST: Returns results and err as configured
func (m *mockDeleter) DeleteMember(_ context.Context, memberID string) ([]cascade.StepResult, error) {
	m.calls = append(m.calls, memberID)
	return m.results, m.err
}

// DeleteSession records the call and returns the configured outcome.
// PRE: sessionID is non-empty
// POST: Returns results and err as configured
func (m *mockDeleter) DeleteSession(_ context.Context, sessionID string) ([]cascade.StepResult, error) {
	m.calls = append(m.calls, sessionID)
	return m.results, m.err
}

type mockPostStore struct {
	posts map[string]post.Post
}

// GetByID returns a seeded post.
// PRE: id is non-empty
// POST: Returns the post or an error wrapping sql.ErrNoRows
func (m *mockPostStore) GetByID(_ context.Context, id string) (post.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return post.Post{}, notFound("post")
	}
	return p, nil
}

// Save stores the post.
// PRE: post is valid
// POST: post is persisted
func (m *mockPostStore) Save(_ context.Context, p post.Post) error {
	m.posts[p.ID] = p
	return nil
}

// Delete removes the post.
// PRE: id is non-empty
// POST: post is gone, or an error wrapping sql.ErrNoRows when absent
func (m *mockPostStore) Delete(_ context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return notFound("post")
	}
	delete(m.posts, id)
	return nil
}

type mockObjectStore struct {
	objects map[string][]byte
}

// Put records the uploaded bytes under objectPath.
// PRE: body is readable
// POST: Returns a CDN-style URL for objectPath
func (m *mockObjectStore) Put(_ context.Context, objectPath, _ string, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[objectPath] = b
	return "https://cdn.test/" + objectPath, nil
}

type mockProfileStore struct {
	profiles map[string]profile.Profile
}

// GetByID returns a stored profile.
// PRE: id is non-empty
// POST: Returns the profile or an error wrapping sql.ErrNoRows
func (m *mockProfileStore) GetByID(_ context.Context, id string) (profile.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return profile.Profile{}, notFound("profile")
	}
	return p, nil
}

// Save stores the profile.
// PRE: profile is valid
// POST: profile is persisted
func (m *mockProfileStore) Save(_ context.Context, p profile.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore(as ...account.Account) *mockAccountStore {
	s := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range as {
		s.accounts[a.ID] = a
	}
	return s
}

// GetByID returns a stored account.
// PRE: id is non-empty
// POST: Returns the account or an error wrapping sql.ErrNoRows
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, notFound("account")
	}
	return a, nil
}

// GetByEmail returns the account with the email.
// PRE: email is non-empty
// POST: Returns the account or an error wrapping sql.ErrNoRows
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, notFound("account")
}

// Save stores the account.
// PRE: account is valid
// POST: account is persisted
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

// Count returns the number of stored accounts.
// PRE: none
// POST: Returns count >= 0
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

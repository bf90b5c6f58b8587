package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/develevate/platform-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	createErr error
	findErr   error
	seq       int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.VisitLog = append([]domain.VisitRecord(nil), u.VisitLog...)
	return &c
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) CreateIfAbsent(_ context.Context, user *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return false, r.createErr
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return false, nil
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	r.byID[user.ID] = cloneUser(user)
	return true, nil
}

func (r *stubUserRepo) AppendVisit(_ context.Context, userID string, visit domain.VisitRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	for _, v := range u.VisitLog {
		if v.Day.Equal(visit.Day) {
			return false, nil
		}
	}
	u.VisitLog = append(u.VisitLog, visit)
	return true, nil
}

func (r *stubUserRepo) UpdateStreaks(_ context.Context, userID string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.CurrentStreak = current
	if longest > u.LongestStreak {
		u.LongestStreak = longest
	}
	return nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type stubPendingRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.PendingRegistration
	upserts int
	deletes int
	// beforeClaim runs inside DeleteIfVersion before the version is compared.
	beforeClaim func()
}

func newStubPendingRepo() *stubPendingRepo {
	return &stubPendingRepo{rows: make(map[string]*domain.PendingRegistration)}
}

func (r *stubPendingRepo) Get(_ context.Context, email string) (*domain.PendingRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[email]
	if !ok {
		return nil, domain.ErrNoPendingRegistration
	}
	c := *p
	return &c, nil
}

func (r *stubPendingRepo) Upsert(_ context.Context, p *domain.PendingRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *p
	r.rows[p.Email] = &c
	r.upserts++
	return nil
}

func (r *stubPendingRepo) CreateIfAbsent(_ context.Context, p *domain.PendingRegistration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.Email]; ok {
		return false, nil
	}
	c := *p
	r.rows[p.Email] = &c
	return true, nil
}

func (r *stubPendingRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.rows, email)
	return nil
}

func (r *stubPendingRepo) DeleteIfVersion(_ context.Context, email, version string) (bool, error) {
	if r.beforeClaim != nil {
		r.beforeClaim()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[email]
	if !ok || p.Version != version {
		return false, nil
	}
	delete(r.rows, email)
	return true, nil
}

func (r *stubPendingRepo) get(email string) (*domain.PendingRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[email]
	return p, ok
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// stubHasher is reversible on purpose; only the Verify contract matters to the service.
type stubHasher struct {
	hashErr error
}

func (h *stubHasher) Hash(secret string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + secret, nil
}

func (h *stubHasher) Verify(secret, digest string) bool {
	return strings.HasPrefix(digest, "hashed:") && digest == "hashed:"+secret
}

type stubSessions struct {
	err    error
	issued []string
}

func (s *stubSessions) Issue(userID, role string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, userID)
	return "token-" + userID, nil
}

type stubMailer struct {
	otpErr     error
	welcomeErr error
	otps       map[string]string
	ttls       []time.Duration
	welcomed   []string
}

func newStubMailer() *stubMailer {
	return &stubMailer{otps: make(map[string]string)}
}

func (m *stubMailer) SendOTP(_ context.Context, email, code string, ttl time.Duration) error {
	if m.otpErr != nil {
		return m.otpErr
	}
	m.otps[email] = code
	m.ttls = append(m.ttls, ttl)
	return nil
}

func (m *stubMailer) SendWelcome(_ context.Context, email, _ string) error {
	if m.welcomeErr != nil {
		return m.welcomeErr
	}
	m.welcomed = append(m.welcomed, email)
	return nil
}

type notification struct {
	userID, message, kind string
}

type stubNotifier struct {
	err  error
	sent []notification
}

func (n *stubNotifier) Notify(_ context.Context, userID, message, kind string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{userID, message, kind})
	return nil
}

// syncRunner runs tasks inline and keeps their outcome, standing in for the dispatcher.
type syncRunner struct {
	names  []string
	errors []error
}

func (r *syncRunner) Go(_ string, name string, fn func(ctx context.Context) error) {
	r.names = append(r.names, name)
	if err := fn(context.Background()); err != nil {
		r.errors = append(r.errors, err)
	}
}

var errBoom = errors.New("boom")

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

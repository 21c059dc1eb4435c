package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/auth"
	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
)

// ---- fakes ----

type fakeUserRepo struct {
	users map[string]dom.User // keyed by id
	now   func() time.Time
}

func newFakeUserRepo(now func() time.Time) *fakeUserRepo {
	return &fakeUserRepo{users: map[string]dom.User{}, now: now}
}

func (f *fakeUserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u.CreatedAt = f.now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (dom.User, error) {
	u, ok := f.users[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) SetLoginState(_ context.Context, id string, attempts int, lockUntil *time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.LoginAttempts = attempts
	u.LockUntil = lockUntil
	f.users[id] = u
	return nil
}

type fakeAuditRepo struct {
	entries []dom.AuditEntry
	now     func() time.Time
}

func (f *fakeAuditRepo) Append(_ context.Context, e dom.AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = f.now()
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditRepo) ListForEntity(_ context.Context, entityType, entityID string, limit int, notBefore time.Time) ([]dom.AuditEntry, error) {
	var out []dom.AuditEntry
	for _, e := range f.entries {
		if e.EntityType == entityType && e.EntityID == entityID && !e.CreatedAt.Before(notBefore) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAuditRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []dom.AuditEntry
	var n int64
	for _, e := range f.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return n, nil
}

func (f *fakeAuditRepo) actions() []dom.Action {
	out := make([]dom.Action, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeRefreshStore struct {
	tokens map[string]string
}

func (f *fakeRefreshStore) Save(_ context.Context, userID, token string) error {
	f.tokens[userID] = token
	return nil
}

func (f *fakeRefreshStore) Valid(_ context.Context, userID, token string) (bool, error) {
	return f.tokens[userID] == token, nil
}

func (f *fakeRefreshStore) Revoke(_ context.Context, userID string) error {
	delete(f.tokens, userID)
	return nil
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type authFixture struct {
	svc   *AuthService
	users *fakeUserRepo
	audit *fakeAuditRepo
	clock *time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	clock := &now
	nowFn := func() time.Time { return *clock }

	users := newFakeUserRepo(nowFn)
	audit := &fakeAuditRepo{now: nowFn}
	tokens := auth.NewTokenService(
		"access-secret-0123456789abcdef0123456789",
		"refresh-secret-0123456789abcdef012345678",
		15*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(users, audit, tokens, &fakeRefreshStore{tokens: map[string]string{}},
		quietLog(), bcrypt.MinCost, 5, 30*time.Minute)
	svc.now = nowFn
	return &authFixture{svc: svc, users: users, audit: audit, clock: clock}
}

func (f *authFixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apperr.Error, got %v", err)
	}
	if ae.Status != status {
		t.Fatalf("status = %d (%q), want %d", ae.Status, ae.Message, status)
	}
}

// ---- tests ----

func TestRegisterHashesPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	u, pair, err := f.svc.Register(ctx, "Alice@Example.com", "Alice", "Secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	stored := f.users.users[u.ID]
	if stored.PasswordHash == "Secret123" || strings.Contains(stored.PasswordHash, "Secret123") {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret123")); err != nil {
		t.Fatalf("stored hash does not match original password: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("registration did not issue a token pair")
	}

	// The original password still logs in.
	if _, _, err := f.svc.Login(ctx, "alice@example.com", "Secret123"); err != nil {
		t.Fatalf("login after register: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := f.svc.Register(ctx, "alice@example.com", "Other", "Other1234")
	wantStatus(t, err, http.StatusConflict)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, _, err := f.svc.Login(context.Background(), "nobody@example.com", "whatever1")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestLoginInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u, _, _ := f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123")

	inactive := f.users.users[u.ID]
	inactive.IsActive = false
	f.users.users[u.ID] = inactive

	_, _, err := f.svc.Login(ctx, "alice@example.com", "Secret123")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u, _, _ := f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123")

	for i := 0; i < 5; i++ {
		_, _, err := f.svc.Login(ctx, "alice@example.com", "wrong-pass1")
		wantStatus(t, err, http.StatusUnauthorized)
	}

	// Sixth attempt, even with the correct password, is locked out.
	_, _, err := f.svc.Login(ctx, "alice@example.com", "Secret123")
	wantStatus(t, err, http.StatusLocked)

	// The counter was reset when the lock was set.
	if got := f.users.users[u.ID].LoginAttempts; got != 0 {
		t.Errorf("attempts after lock = %d, want 0", got)
	}

	// After the lockout window the correct password works again.
	f.advance(31 * time.Minute)
	logged, _, err := f.svc.Login(ctx, "alice@example.com", "Secret123")
	if err != nil {
		t.Fatalf("login after lock expiry: %v", err)
	}
	if logged.LockUntil != nil || logged.LoginAttempts != 0 {
		t.Errorf("lock state not cleared: attempts=%d lockUntil=%v", logged.LoginAttempts, logged.LockUntil)
	}
}

func TestFailedLoginCounterResetsOnSuccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u, _, _ := f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123")

	for i := 0; i < 3; i++ {
		f.svc.Login(ctx, "alice@example.com", "wrong-pass1")
	}
	if got := f.users.users[u.ID].LoginAttempts; got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
	if _, _, err := f.svc.Login(ctx, "alice@example.com", "Secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := f.users.users[u.ID].LoginAttempts; got != 0 {
		t.Errorf("attempts after success = %d, want 0", got)
	}
}

func TestRefreshRotation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, pair1, err := f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	pair2, err := f.svc.Refresh(ctx, pair1.Refresh)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if pair2.Refresh == pair1.Refresh {
		t.Fatal("refresh token was not rotated")
	}

	// The rotated-out token is now stale.
	_, err = f.svc.Refresh(ctx, pair1.Refresh)
	wantStatus(t, err, http.StatusUnauthorized)

	// The fresh one still works.
	if _, err := f.svc.Refresh(ctx, pair2.Refresh); err != nil {
		t.Fatalf("refresh with current token: %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u, pair, _ := f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123")

	inactive := f.users.users[u.ID]
	inactive.IsActive = false
	f.users.users[u.ID] = inactive

	_, err := f.svc.Refresh(ctx, pair.Refresh)
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestAuthAuditTrail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123")
	f.svc.Login(ctx, "alice@example.com", "wrong-pass1")
	f.svc.Login(ctx, "alice@example.com", "Secret123")

	want := []dom.Action{dom.ActionCreate, dom.ActionLoginFailure, dom.ActionLogin}
	got := f.audit.actions()
	if len(got) != len(want) {
		t.Fatalf("audit actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit actions = %v, want %v", got, want)
		}
	}
}

func TestProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	u, _, _ := f.svc.Register(ctx, "alice@example.com", "Alice", "Secret123")

	got, err := f.svc.Profile(ctx, u.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %q", got.Email)
	}

	_, err = f.svc.Profile(ctx, "ffffffffffffffffffffffff")
	wantStatus(t, err, http.StatusNotFound)
}

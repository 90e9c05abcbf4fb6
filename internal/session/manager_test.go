package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/coachbase/backend/internal/crypto"
	"github.com/coachbase/backend/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, input domain.CreateSessionInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[input.TokenHash] = domain.Session(input)
	return nil
}

func (r *memSessionRepo) CreateEnforcingQuota(ctx context.Context, input domain.CreateSessionInput, maxSessions int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[input.TokenHash] = domain.Session(input)

	if maxSessions <= 0 {
		return nil
	}

	var userSessions []domain.Session
	for _, s := range r.sessions {
		if s.UserID == input.UserID {
			userSessions = append(userSessions, s)
		}
	}
	sort.Slice(userSessions, func(i, j int) bool {
		return userSessions[i].CreatedAt.After(userSessions[j].CreatedAt)
	})
	for i, s := range userSessions {
		if i >= maxSessions && s.TokenHash != input.TokenHash {
			delete(r.sessions, s.TokenHash)
		}
	}
	return nil
}

func (r *memSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memSessionRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.sessions {
		if s.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memSessionRepo) DeleteOldestForUser(ctx context.Context, userID string, keep int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var userSessions []domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			userSessions = append(userSessions, s)
		}
	}
	sort.Slice(userSessions, func(i, j int) bool {
		return userSessions[i].CreatedAt.After(userSessions[j].CreatedAt)
	})
	for i, s := range userSessions {
		if i >= keep {
			delete(r.sessions, s.TokenHash)
		}
	}
	return nil
}

func (r *memSessionRepo) TouchIfNewer(ctx context.Context, tokenHash string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if ok && usedAt.After(s.LastUsedAt) {
		s.LastUsedAt = usedAt
		r.sessions[tokenHash] = s
	}
	return nil
}

func (r *memSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[tokenHash]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sessions, tokenHash)
	return nil
}

func (r *memSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteByUserIDExcept(ctx context.Context, userID string, keepTokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.UserID == userID && hash != keepTokenHash {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context, createdBefore, lastUsedBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for hash, s := range r.sessions {
		if !s.CreatedAt.After(createdBefore) || !s.LastUsedAt.After(lastUsedBefore) {
			delete(r.sessions, hash)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memSessionRepo) lastUsedAt(tokenHash string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	return s.LastUsedAt, ok
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) add(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) Create(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (r *memUserRepo) SetPassword(ctx context.Context, userID string, passwordHash string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

type failingSessionRepo struct {
	*memSessionRepo
	err error
}

func (r *failingSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	return nil, r.err
}

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	return Policy{
		TokenByteLength:    32,
		AbsoluteTTL:        30 * 24 * time.Hour,
		RollingTTL:         7 * 24 * time.Hour,
		MaxSessionsPerUser: 3,
	}
}

func newTestManager(t *testing.T, store domain.SessionRepository, users *memUserRepo, clk *fakeClock) *Manager {
	t.Helper()

	tokens, err := crypto.NewTokenSource(32)
	if err != nil {
		t.Fatalf("token source error: %v", err)
	}

	return NewManager(ManagerConfig{
		Sessions: store,
		Users:    users,
		Tokens:   tokens,
		Policy:   testPolicy(),
		Clock:    clk,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func seedUser(users *memUserRepo) *domain.User {
	user := &domain.User{ID: "user-1", Username: "carol", IsCoach: true}
	users.add(user)
	return user
}

func TestCreateAndValidate(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	raw, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if raw == "" {
		t.Fatal("expected a raw token")
	}

	principal, err := mgr.Validate(context.Background(), raw)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if principal.User.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, principal.User.ID)
	}
	if principal.RawToken != raw {
		t.Error("principal should carry the raw token")
	}
}

func TestValidateUnknownToken(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	seedUser(users)
	mgr := newTestManager(t, store, users, newFakeClock(testStart))

	_, err := mgr.Validate(context.Background(), "never-issued")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateFailsPastAbsoluteTTL(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	raw, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	// Keep the rolling window fresh right up to the absolute boundary.
	policy := testPolicy()
	for elapsed := time.Duration(0); elapsed < policy.AbsoluteTTL; elapsed += policy.RollingTTL / 2 {
		if _, err := mgr.Validate(context.Background(), raw); err != nil {
			t.Fatalf("validate at %v: %v", elapsed, err)
		}
		clk.Advance(policy.RollingTTL / 2)
	}

	clk.Advance(time.Second)

	if _, err := mgr.Validate(context.Background(), raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized past absolute ttl, got %v", err)
	}
}

func TestValidateFailsPastRollingTTL(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	raw, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	clk.Advance(testPolicy().RollingTTL + time.Second)

	if _, err := mgr.Validate(context.Background(), raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized past rolling ttl, got %v", err)
	}
}

func TestValidateRefreshesRollingWindow(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	raw, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	policy := testPolicy()

	// Used every 6 days, the session outlives a 7-day rolling window.
	for i := 0; i < 4; i++ {
		clk.Advance(policy.RollingTTL - 24*time.Hour)
		if _, err := mgr.Validate(context.Background(), raw); err != nil {
			t.Fatalf("validate after use %d: %v", i, err)
		}
	}
}

func TestStoredLastUsedNeverDecreases(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	raw, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	digest := crypto.HashSessionToken(raw)

	clk.Advance(1 * time.Hour)
	if _, err := mgr.Validate(context.Background(), raw); err != nil {
		t.Fatalf("validate error: %v", err)
	}
	after, _ := store.lastUsedAt(digest)

	// A racing request stamped with an earlier now must not win.
	clk.Set(testStart.Add(30 * time.Minute))
	if _, err := mgr.Validate(context.Background(), raw); err != nil {
		t.Fatalf("validate error: %v", err)
	}

	stored, ok := store.lastUsedAt(digest)
	if !ok {
		t.Fatal("session disappeared")
	}
	if stored.Before(after) {
		t.Errorf("lastUsedAt moved backward: %v -> %v", after, stored)
	}
}

func TestQuotaEvictsOldestFirst(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	policy := testPolicy()
	total := policy.MaxSessionsPerUser + 2

	tokens := make([]string, 0, total)
	for i := 0; i < total; i++ {
		raw, err := mgr.Create(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("create %d error: %v", i, err)
		}
		tokens = append(tokens, raw)
		clk.Advance(time.Minute)
	}

	count, err := store.CountByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != policy.MaxSessionsPerUser {
		t.Fatalf("expected %d sessions, got %d", policy.MaxSessionsPerUser, count)
	}

	// The two oldest logins are gone; the rest still validate.
	for i, raw := range tokens {
		_, err := mgr.Validate(context.Background(), raw)
		if i < total-policy.MaxSessionsPerUser {
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("token %d should be evicted, got %v", i, err)
			}
		} else if err != nil {
			t.Errorf("token %d should be valid, got %v", i, err)
		}
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	mgr := newTestManager(t, store, users, newFakeClock(testStart))

	raw, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	if err := mgr.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("first revoke error: %v", err)
	}
	if _, err := mgr.Validate(context.Background(), raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after revoke, got %v", err)
	}
	if err := mgr.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("second revoke should not error: %v", err)
	}
}

func TestRevokeOthersKeepsCurrentSession(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	first, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	clk.Advance(time.Minute)
	second, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	principal, err := mgr.Validate(context.Background(), second)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}

	if err := mgr.RevokeOthers(context.Background(), principal); err != nil {
		t.Fatalf("revoke others error: %v", err)
	}

	if _, err := mgr.Validate(context.Background(), first); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("first session should be revoked, got %v", err)
	}
	if _, err := mgr.Validate(context.Background(), second); err != nil {
		t.Errorf("current session should survive, got %v", err)
	}
}

func TestStoreFailureIsNotUnauthorized(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &failingSessionRepo{memSessionRepo: newMemSessionRepo(), err: storeErr}
	users := newMemUserRepo()
	seedUser(users)
	mgr := newTestManager(t, store, users, newFakeClock(testStart))

	_, err := mgr.Validate(context.Background(), "any-token")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		t.Fatal("a store failure must not read as an authentication verdict")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestSweepExpiredRemovesDeadSessions(t *testing.T) {
	store := newMemSessionRepo()
	users := newMemUserRepo()
	user := seedUser(users)
	clk := newFakeClock(testStart)
	mgr := newTestManager(t, store, users, clk)

	stale, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	clk.Advance(testPolicy().RollingTTL + time.Hour)

	fresh, err := mgr.Create(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	deleted, err := mgr.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted session, got %d", deleted)
	}

	if _, err := mgr.Validate(context.Background(), stale); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("stale session should be gone, got %v", err)
	}
	if _, err := mgr.Validate(context.Background(), fresh); err != nil {
		t.Errorf("fresh session should survive sweep, got %v", err)
	}
}

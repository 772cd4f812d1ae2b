package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/repository"
)

type memUsers struct {
	mu        sync.Mutex
	byID      map[string]model.User
	createErr error
	getErr    error
	// hideOnRead makes GetByEmail miss so Create hits the unique constraint.
	hideOnRead bool
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]model.User{}}
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.byID {
		if existing.Email == strings.ToLower(u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.hideOnRead {
		return nil, repository.ErrUserNotFound
	}
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

type memSessions struct {
	mu        sync.Mutex
	users     *memUsers
	byHash    map[string]model.Session
	lookupErr error
	deleteErr error
	purgeErr  error
	purged    int
}

func newMemSessions(users *memUsers) *memSessions {
	return &memSessions{users: users, byHash: map[string]model.Session{}}
}

func (m *memSessions) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byHash[s.TokenHash]; ok {
		return repository.ErrSessionConflict
	}
	m.byHash[s.TokenHash] = *s
	return nil
}

func (m *memSessions) Lookup(ctx context.Context, tokenHash string, now time.Time) (*model.SessionWithUser, error) {
	m.mu.Lock()
	if m.lookupErr != nil {
		m.mu.Unlock()
		return nil, m.lookupErr
	}
	s, ok := m.byHash[tokenHash]
	m.mu.Unlock()
	if !ok || !s.ExpiresAt.After(now) {
		return nil, repository.ErrSessionNotFound
	}
	u, err := m.users.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, repository.ErrSessionNotFound
	}
	return &model.SessionWithUser{Session: s, User: *u}, nil
}

func (m *memSessions) Delete(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.byHash, tokenHash)
	return nil
}

func (m *memSessions) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, s := range m.byHash {
		if s.UserID == userID {
			delete(m.byHash, h)
		}
	}
	return nil
}

func (m *memSessions) DeleteExpiredForUser(_ context.Context, userID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.purgeErr != nil {
		return 0, m.purgeErr
	}
	var n int64
	for h, s := range m.byHash {
		if s.UserID == userID && !s.ExpiresAt.After(now) {
			delete(m.byHash, h)
			n++
		}
	}
	m.purged += int(n)
	return n, nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byHash)
}

type memSettings struct {
	mu      sync.Mutex
	rows    map[string]model.Settings
	upserts int
	getErr  error
}

func newMemSettings() *memSettings {
	return &memSettings{rows: map[string]model.Settings{}}
}

func (m *memSettings) Get(_ context.Context, userID string) (*model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.rows[userID]
	if !ok {
		return nil, repository.ErrSettingsNotFound
	}
	return &s, nil
}

func (m *memSettings) Upsert(_ context.Context, s *model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.rows[s.UserID] = *s
	return nil
}

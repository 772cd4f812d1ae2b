package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/repository"
)

// memStore implements the user, session and settings stores in memory.
type memStore struct {
	mu       sync.Mutex
	users    map[string]model.User
	sessions map[string]model.Session
	settings map[string]model.Settings
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]model.User{},
		sessions: map[string]model.Session{},
		settings: map[string]model.Settings{},
	}
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type memSessions struct{ *memStore }

func (m memSessions) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.TokenHash]; ok {
		return repository.ErrSessionConflict
	}
	m.sessions[s.TokenHash] = *s
	return nil
}

func (m memSessions) Lookup(_ context.Context, tokenHash string, now time.Time) (*model.SessionWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tokenHash]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, repository.ErrSessionNotFound
	}
	u, ok := m.users[s.UserID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &model.SessionWithUser{Session: s, User: u}, nil
}

func (m memSessions) Delete(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenHash)
	return nil
}

func (m memSessions) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, h)
		}
	}
	return nil
}

func (m memSessions) DeleteExpiredForUser(_ context.Context, userID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for h, s := range m.sessions {
		if s.UserID == userID && !s.ExpiresAt.After(now) {
			delete(m.sessions, h)
			n++
		}
	}
	return n, nil
}

type memSettings struct{ *memStore }

func (m memSettings) Get(_ context.Context, userID string) (*model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return nil, repository.ErrSettingsNotFound
	}
	return &s, nil
}

func (m memSettings) Upsert(_ context.Context, s *model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.UserID] = *s
	return nil
}

package auth

import (
	"context"
	"sync"
)

// MemoryUserRepository is an in-process UserRepository test double, in the
// style of project.MemoryRepository.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]User
}

// NewMemoryUserRepository returns an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]User)}
}

// Put seeds or overwrites a user row directly, bypassing ResetToken.
func (m *MemoryUserRepository) Put(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.UserID] = u
}

func (m *MemoryUserRepository) Get(_ context.Context, userID int64) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	return u, ok, nil
}

func (m *MemoryUserRepository) ResetToken(_ context.Context, userID int64, userName string, isMod bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[userID]
	if ok && existing.IsBanned {
		return "", ErrBanned
	}
	salt, err := newSalt()
	if err != nil {
		return "", err
	}
	existing.UserID = userID
	existing.UserName = userName
	existing.KeySalt = salt
	if !ok {
		existing.IsMod = isMod
	}
	m.users[userID] = existing
	return salt, nil
}

func (m *MemoryUserRepository) SetBanned(_ context.Context, userID int64, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.UserID = userID
	u.IsBanned = banned
	m.users[userID] = u
	return nil
}

func (m *MemoryUserRepository) SetMod(_ context.Context, userID int64, isMod bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.UserID = userID
	u.IsMod = isMod
	m.users[userID] = u
	return nil
}

func (m *MemoryUserRepository) IncrementProjectsComplete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.UserID = userID
	u.ProjectsComplete++
	m.users[userID] = u
	return nil
}

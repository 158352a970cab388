package repo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrDuplicate = errors.New("repo: duplicate")

// Memory is a process-local Repository used when no database is configured
// and in handler tests.
type Memory struct {
	mu     sync.Mutex
	nextID int
	users  map[string]memUser
	sites  map[int]Site
}

type memUser struct {
	id    int
	email string
	hash  string
}

func NewMemory() *Memory {
	return &Memory{users: map[string]memUser{}, sites: map[int]Site{}}
}

func (m *Memory) id() int {
	m.nextID++
	return m.nextID
}

func (m *Memory) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, ErrDuplicate
	}
	u := memUser{id: m.id(), email: email, hash: password}
	m.users[login] = u
	return u.id, nil
}

func (m *Memory) GetByLogin(_ context.Context, login string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return 0, "", ErrNotFound
	}
	return u.id, u.hash, nil
}

func (m *Memory) CreateSite(_ context.Context, s Site) (Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	s.CreatedAt = time.Now().UTC()
	m.sites[s.ID] = s
	return s, nil
}

func (m *Memory) ListSites(_ context.Context, userID int) ([]Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Site{}
	for _, s := range m.sites {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetSite(_ context.Context, userID, id int) (Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sites[id]
	if !ok || s.UserID != userID {
		return Site{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) DeleteSite(_ context.Context, userID, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sites[id]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	delete(m.sites, id)
	return nil
}

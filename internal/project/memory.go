package project

import (
	"context"
	"sync"

	"github.com/itsdrike/rickchurch-go/internal/pixel"
)

// MemoryRepository is an in-memory Repository used by the scheduler and
// httpapi packages' test suites, so they don't need a database.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]Project
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]Project)}
}

func (m *MemoryRepository) ListProjects(_ context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryRepository) Exists(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.projects[name]
	return ok, nil
}

func (m *MemoryRepository) Upsert(_ context.Context, d Details) error {
	grid, err := pixel.DecodeBase64PNG(d.Image)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[d.Name] = Project{Name: d.Name, X: d.X, Y: d.Y, Priority: d.Priority, Image: grid}
	return nil
}

// Put inserts an already-decoded Project directly, for tests that build
// grids in memory instead of round-tripping through base64.
func (m *MemoryRepository) Put(p Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.Name] = p
}

func (m *MemoryRepository) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, name)
	return nil
}

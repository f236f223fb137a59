package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Mann-lohchab/Portal/internal/model"
	"github.com/Mann-lohchab/Portal/internal/session"
)

// Memory is an in-memory principal store with the same surface as Store.
// It backs tests and database-less local runs.
type Memory struct {
	mu     sync.RWMutex
	byRole map[model.Role]map[string]model.Principal
}

func NewMemory() *Memory {
	return &Memory{
		byRole: map[model.Role]map[string]model.Principal{
			model.RoleAdmin:   {},
			model.RoleTeacher: {},
			model.RoleStudent: {},
		},
	}
}

func (m *Memory) GetByExternalID(_ context.Context, role model.Role, externalID string) (model.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byRole[role][externalID]
	if !ok {
		return model.Principal{}, model.ErrNotFound
	}
	return p, nil
}

func (m *Memory) GetByID(_ context.Context, role model.Role, id string) (model.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.byRole[role] {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Principal{}, model.ErrNotFound
}

func (m *Memory) UpdateSessionState(_ context.Context, role model.Role, id string, state session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for externalID, p := range m.byRole[role] {
		if p.ID == id {
			p.Session = state
			m.byRole[role][externalID] = p
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *Memory) Create(_ context.Context, p model.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRole[p.Role][p.ExternalID] = p
	return nil
}

func (m *Memory) List(_ context.Context, role model.Role, limit int) ([]model.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	principals := make([]model.Principal, 0, len(m.byRole[role]))
	for _, p := range m.byRole[role] {
		principals = append(principals, p)
	}
	sort.Slice(principals, func(i, j int) bool {
		return principals[i].ExternalID < principals[j].ExternalID
	})
	if limit > 0 && len(principals) > limit {
		principals = principals[:limit]
	}
	return principals, nil
}

func (m *Memory) Delete(_ context.Context, role model.Role, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byRole[role][externalID]; !ok {
		return false, nil
	}
	delete(m.byRole[role], externalID)
	return true, nil
}

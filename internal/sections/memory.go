package sections

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NewMemorySectionRepository constructs an "in memory" section repository.
func NewMemorySectionRepository() SectionRepository {
	return &memorySectionRepository{
		byID: make(map[uuid.UUID]*Section),
	}
}

type memorySectionRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Section
}

func (m *memorySectionRepository) Create(_ context.Context, section *Section) (*Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneSection(section)
	m.byID[cloned.ID] = cloned
	return cloneSection(cloned), nil
}

func (m *memorySectionRepository) Update(_ context.Context, section *Section) (*Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[section.ID]; !ok {
		return nil, &NotFoundError{Resource: sectionResource, Key: section.ID.String()}
	}
	cloned := cloneSection(section)
	m.byID[cloned.ID] = cloned
	return cloneSection(cloned), nil
}

func (m *memorySectionRepository) GetByID(_ context.Context, id uuid.UUID) (*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: sectionResource, Key: id.String()}
	}
	return cloneSection(record), nil
}

func (m *memorySectionRepository) ListByPage(_ context.Context, pageID uuid.UUID) ([]*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Section, 0)
	for _, record := range m.byID {
		if record.PageID == pageID {
			out = append(out, cloneSection(record))
		}
	}
	sortSections(out)
	return out, nil
}

func (m *memorySectionRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: sectionResource, Key: id.String()}
	}
	delete(m.byID, id)
	return nil
}

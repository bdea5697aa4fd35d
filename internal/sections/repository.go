package sections

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SectionRepository persists sections.
type SectionRepository interface {
	Create(ctx context.Context, section *Section) (*Section, error)
	Update(ctx context.Context, section *Section) (*Section, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Section, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Section, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a section cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

const sectionResource = "section"

package interfaces

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

// StepRepository defines the interface for Step data access. The store
// enforces (APR, order) uniqueness.
type StepRepository interface {
	// Create creates a new step; fails with ErrDuplicateOrder when the
	// APR already holds a step at the same order
	Create(ctx context.Context, tenantID string, step *model.Step) (*model.Step, error)

	// Get retrieves a step by ID within the tenant
	Get(ctx context.Context, tenantID string, id int64) (*model.Step, error)

	// ListByAPR retrieves the APR's steps ordered by sequence position
	ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.Step, error)

	// Update replaces the stored step, keeping order uniqueness
	Update(ctx context.Context, tenantID string, step *model.Step) (*model.Step, error)

	// Delete removes a step
	Delete(ctx context.Context, tenantID string, id int64) error

	// DeleteByAPR removes all steps of an APR
	DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error
}

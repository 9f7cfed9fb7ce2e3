package interfaces

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

// APRRepository defines the interface for APR data access
type APRRepository interface {
	// Create creates a new APR with an auto-generated ID
	Create(ctx context.Context, tenantID string, apr *model.APR) (*model.APR, error)

	// Get retrieves an APR by ID within the tenant
	Get(ctx context.Context, tenantID string, id int64) (*model.APR, error)

	// List retrieves all APRs of the tenant, newest first
	List(ctx context.Context, tenantID string) ([]*model.APR, error)

	// Update replaces the stored APR
	Update(ctx context.Context, tenantID string, apr *model.APR) (*model.APR, error)

	// Delete removes the APR and cascades to its steps, risk items and events
	Delete(ctx context.Context, tenantID string, id int64) error
}

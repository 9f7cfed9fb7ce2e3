package interfaces

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

// HazardRepository defines the interface for the hazard catalog. The
// catalog is admin-managed reference data shared across tenants and
// read-only from the risk engine.
type HazardRepository interface {
	// Put creates or replaces a catalog entry (admin import path)
	Put(ctx context.Context, hazard *model.Hazard) (*model.Hazard, error)

	// Get retrieves a catalog entry by ID
	Get(ctx context.Context, id int64) (*model.Hazard, error)

	// List retrieves the full catalog
	List(ctx context.Context) ([]*model.Hazard, error)
}

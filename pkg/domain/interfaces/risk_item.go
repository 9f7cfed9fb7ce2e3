package interfaces

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

// RiskItemRepository defines the interface for derived risk item access
type RiskItemRepository interface {
	// ReplaceForAPR atomically deletes all risk items of the APR and
	// inserts the given set. A concurrent reader observes either the old
	// set or the new set, never a partial state.
	ReplaceForAPR(ctx context.Context, tenantID string, aprID int64, items []*model.RiskItem) ([]*model.RiskItem, error)

	// Get retrieves a risk item by ID within the tenant
	Get(ctx context.Context, tenantID string, id int64) (*model.RiskItem, error)

	// ListByAPR retrieves the APR's risk items in insertion order
	ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.RiskItem, error)

	// Update patches a stored risk item (probability/severity override)
	Update(ctx context.Context, tenantID string, item *model.RiskItem) (*model.RiskItem, error)

	// DeleteByAPR removes all risk items of an APR
	DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error
}

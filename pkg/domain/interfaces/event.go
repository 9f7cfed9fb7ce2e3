package interfaces

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

// EventRepository defines the interface for the append-only audit log.
// There is no update or single delete: events are immutable and only
// removed by the APR cascade.
type EventRepository interface {
	// Append stores a new audit event
	Append(ctx context.Context, tenantID string, event *model.Event) (*model.Event, error)

	// ListByAPR retrieves the APR's events in creation order
	ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.Event, error)

	// DeleteByAPR removes all events of an APR (cascade only)
	DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error
}

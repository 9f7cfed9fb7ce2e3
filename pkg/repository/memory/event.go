package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
)

type eventRepository struct {
	mu     sync.RWMutex
	events map[string]map[int64]*model.Event
	nextID map[string]int64
}

func newEventRepository() *eventRepository {
	return &eventRepository{
		events: make(map[string]map[int64]*model.Event),
		nextID: make(map[string]int64),
	}
}

func (r *eventRepository) ensureTenant(tenantID string) {
	if _, exists := r.events[tenantID]; !exists {
		r.events[tenantID] = make(map[int64]*model.Event)
	}
	if _, exists := r.nextID[tenantID]; !exists {
		r.nextID[tenantID] = 1
	}
}

func copyEvent(e *model.Event) *model.Event {
	copied := *e
	if e.Payload != nil {
		copied.Payload = make(map[string]any, len(e.Payload))
		for k, v := range e.Payload {
			copied.Payload[k] = v
		}
	}
	return &copied
}

func (r *eventRepository) Append(ctx context.Context, tenantID string, event *model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureTenant(tenantID)

	stored := copyEvent(event)
	stored.ID = r.nextID[tenantID]
	stored.TenantID = tenantID
	stored.CreatedAt = time.Now().UTC()
	r.nextID[tenantID]++

	r.events[tenantID][stored.ID] = stored
	return copyEvent(stored), nil
}

func (r *eventRepository) ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.events[tenantID]
	if !exists {
		return []*model.Event{}, nil
	}

	events := make([]*model.Event, 0)
	for _, event := range tenant {
		if event.AprID == aprID {
			events = append(events, copyEvent(event))
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })

	return events, nil
}

func (r *eventRepository) DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.events[tenantID]
	if !exists {
		return nil
	}

	for id, event := range tenant {
		if event.AprID == aprID {
			delete(tenant, id)
		}
	}
	return nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type aprRepository struct {
	mu     sync.RWMutex
	aprs   map[string]map[int64]*model.APR
	nextID map[string]int64

	steps     *stepRepository
	riskItems *riskItemRepository
	events    *eventRepository
}

func newAPRRepository(steps *stepRepository, riskItems *riskItemRepository, events *eventRepository) *aprRepository {
	return &aprRepository{
		aprs:      make(map[string]map[int64]*model.APR),
		nextID:    make(map[string]int64),
		steps:     steps,
		riskItems: riskItems,
		events:    events,
	}
}

func (r *aprRepository) ensureTenant(tenantID string) {
	if _, exists := r.aprs[tenantID]; !exists {
		r.aprs[tenantID] = make(map[int64]*model.APR)
	}
	if _, exists := r.nextID[tenantID]; !exists {
		r.nextID[tenantID] = 1
	}
}

// copyAPR creates a deep copy of an APR
func copyAPR(a *model.APR) *model.APR {
	copied := *a
	if a.SourceHashes != nil {
		copied.SourceHashes = make(map[string]string, len(a.SourceHashes))
		for k, v := range a.SourceHashes {
			copied.SourceHashes[k] = v
		}
	}
	return &copied
}

func (r *aprRepository) Create(ctx context.Context, tenantID string, apr *model.APR) (*model.APR, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureTenant(tenantID)

	now := time.Now().UTC()
	created := copyAPR(apr)
	created.ID = r.nextID[tenantID]
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[tenantID]++

	r.aprs[tenantID][created.ID] = created
	return copyAPR(created), nil
}

func (r *aprRepository) Get(ctx context.Context, tenantID string, id int64) (*model.APR, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.aprs[tenantID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", id))
	}

	apr, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", id))
	}

	return copyAPR(apr), nil
}

func (r *aprRepository) List(ctx context.Context, tenantID string) ([]*model.APR, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.aprs[tenantID]
	if !exists {
		return []*model.APR{}, nil
	}

	aprs := make([]*model.APR, 0, len(tenant))
	for _, apr := range tenant {
		aprs = append(aprs, copyAPR(apr))
	}
	sort.Slice(aprs, func(i, j int) bool {
		if aprs[i].CreatedAt.Equal(aprs[j].CreatedAt) {
			return aprs[i].ID > aprs[j].ID
		}
		return aprs[i].CreatedAt.After(aprs[j].CreatedAt)
	})

	return aprs, nil
}

func (r *aprRepository) Update(ctx context.Context, tenantID string, apr *model.APR) (*model.APR, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.aprs[tenantID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", apr.ID))
	}

	existing, exists := tenant[apr.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", apr.ID))
	}

	updated := copyAPR(apr)
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.aprs[tenantID][updated.ID] = updated
	return copyAPR(updated), nil
}

func (r *aprRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.aprs[tenantID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", id))
	}

	if _, exists := tenant[id]; !exists {
		return goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", id))
	}

	delete(r.aprs[tenantID], id)

	// Cascade to everything the APR owns
	if err := r.steps.DeleteByAPR(ctx, tenantID, id); err != nil {
		return err
	}
	if err := r.riskItems.DeleteByAPR(ctx, tenantID, id); err != nil {
		return err
	}
	return r.events.DeleteByAPR(ctx, tenantID, id)
}

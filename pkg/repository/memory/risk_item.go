package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type riskItemRepository struct {
	mu     sync.RWMutex
	items  map[string]map[int64]*model.RiskItem
	nextID map[string]int64
}

func newRiskItemRepository() *riskItemRepository {
	return &riskItemRepository{
		items:  make(map[string]map[int64]*model.RiskItem),
		nextID: make(map[string]int64),
	}
}

func (r *riskItemRepository) ensureTenant(tenantID string) {
	if _, exists := r.items[tenantID]; !exists {
		r.items[tenantID] = make(map[int64]*model.RiskItem)
	}
	if _, exists := r.nextID[tenantID]; !exists {
		r.nextID[tenantID] = 1
	}
}

func copyRiskItem(i *model.RiskItem) *model.RiskItem {
	copied := *i
	return &copied
}

func (r *riskItemRepository) ReplaceForAPR(ctx context.Context, tenantID string, aprID int64, items []*model.RiskItem) ([]*model.RiskItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureTenant(tenantID)

	// Delete and insert under one lock so no reader sees a partial set
	for id, item := range r.items[tenantID] {
		if item.AprID == aprID {
			delete(r.items[tenantID], id)
		}
	}

	now := time.Now().UTC()
	created := make([]*model.RiskItem, 0, len(items))
	for _, item := range items {
		stored := copyRiskItem(item)
		stored.ID = r.nextID[tenantID]
		stored.TenantID = tenantID
		stored.AprID = aprID
		stored.UpdatedAt = now
		r.nextID[tenantID]++

		r.items[tenantID][stored.ID] = stored
		created = append(created, copyRiskItem(stored))
	}

	return created, nil
}

func (r *riskItemRepository) Get(ctx context.Context, tenantID string, id int64) (*model.RiskItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.items[tenantID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk item not found", goerr.V("id", id))
	}

	item, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk item not found", goerr.V("id", id))
	}

	return copyRiskItem(item), nil
}

func (r *riskItemRepository) ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.RiskItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.items[tenantID]
	if !exists {
		return []*model.RiskItem{}, nil
	}

	items := make([]*model.RiskItem, 0)
	for _, item := range tenant {
		if item.AprID == aprID {
			items = append(items, copyRiskItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

func (r *riskItemRepository) Update(ctx context.Context, tenantID string, item *model.RiskItem) (*model.RiskItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.items[tenantID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk item not found", goerr.V("id", item.ID))
	}

	if _, exists := tenant[item.ID]; !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk item not found", goerr.V("id", item.ID))
	}

	updated := copyRiskItem(item)
	updated.TenantID = tenantID
	updated.UpdatedAt = time.Now().UTC()

	r.items[tenantID][updated.ID] = updated
	return copyRiskItem(updated), nil
}

func (r *riskItemRepository) DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.items[tenantID]
	if !exists {
		return nil
	}

	for id, item := range tenant {
		if item.AprID == aprID {
			delete(tenant, id)
		}
	}
	return nil
}

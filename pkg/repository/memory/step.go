package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type stepRepository struct {
	mu     sync.RWMutex
	steps  map[string]map[int64]*model.Step
	nextID map[string]int64
}

func newStepRepository() *stepRepository {
	return &stepRepository{
		steps:  make(map[string]map[int64]*model.Step),
		nextID: make(map[string]int64),
	}
}

func (r *stepRepository) ensureTenant(tenantID string) {
	if _, exists := r.steps[tenantID]; !exists {
		r.steps[tenantID] = make(map[int64]*model.Step)
	}
	if _, exists := r.nextID[tenantID]; !exists {
		r.nextID[tenantID] = 1
	}
}

func copyStep(s *model.Step) *model.Step {
	copied := *s
	return &copied
}

// orderTaken reports whether another step of the APR already occupies the
// order. Callers must hold the lock.
func (r *stepRepository) orderTaken(tenantID string, aprID int64, order int, excludeID int64) bool {
	for _, step := range r.steps[tenantID] {
		if step.AprID == aprID && step.Order == order && step.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *stepRepository) Create(ctx context.Context, tenantID string, step *model.Step) (*model.Step, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureTenant(tenantID)

	if r.orderTaken(tenantID, step.AprID, step.Order, 0) {
		return nil, goerr.Wrap(ErrDuplicateOrder, "step order already in use",
			goerr.V("apr_id", step.AprID), goerr.V("order", step.Order))
	}

	now := time.Now().UTC()
	created := copyStep(step)
	created.ID = r.nextID[tenantID]
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[tenantID]++

	r.steps[tenantID][created.ID] = created
	return copyStep(created), nil
}

func (r *stepRepository) Get(ctx context.Context, tenantID string, id int64) (*model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.steps[tenantID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", id))
	}

	step, exists := tenant[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", id))
	}

	return copyStep(step), nil
}

func (r *stepRepository) ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.steps[tenantID]
	if !exists {
		return []*model.Step{}, nil
	}

	steps := make([]*model.Step, 0)
	for _, step := range tenant {
		if step.AprID == aprID {
			steps = append(steps, copyStep(step))
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Order == steps[j].Order {
			return steps[i].ID < steps[j].ID
		}
		return steps[i].Order < steps[j].Order
	})

	return steps, nil
}

func (r *stepRepository) Update(ctx context.Context, tenantID string, step *model.Step) (*model.Step, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.steps[tenantID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", step.ID))
	}

	existing, exists := tenant[step.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", step.ID))
	}

	if r.orderTaken(tenantID, step.AprID, step.Order, step.ID) {
		return nil, goerr.Wrap(ErrDuplicateOrder, "step order already in use",
			goerr.V("apr_id", step.AprID), goerr.V("order", step.Order))
	}

	updated := copyStep(step)
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.steps[tenantID][updated.ID] = updated
	return copyStep(updated), nil
}

func (r *stepRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.steps[tenantID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", id))
	}

	if _, exists := tenant[id]; !exists {
		return goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", id))
	}

	delete(r.steps[tenantID], id)
	return nil
}

func (r *stepRepository) DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.steps[tenantID]
	if !exists {
		return nil
	}

	for id, step := range tenant {
		if step.AprID == aprID {
			delete(tenant, id)
		}
	}
	return nil
}

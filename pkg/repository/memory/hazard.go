package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type hazardRepository struct {
	mu      sync.RWMutex
	hazards map[int64]*model.Hazard
	nextID  int64
}

func newHazardRepository() *hazardRepository {
	return &hazardRepository{
		hazards: make(map[int64]*model.Hazard),
		nextID:  1,
	}
}

func copyHazard(h *model.Hazard) *model.Hazard {
	copied := *h
	copied.Consequences = append([]string(nil), h.Consequences...)
	copied.Safeguards = append([]string(nil), h.Safeguards...)
	return &copied
}

func (r *hazardRepository) Put(ctx context.Context, hazard *model.Hazard) (*model.Hazard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyHazard(hazard)
	if stored.ID == 0 {
		stored.ID = r.nextID
		r.nextID++
		stored.CreatedAt = now
	} else if existing, ok := r.hazards[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
		if stored.ID >= r.nextID {
			r.nextID = stored.ID + 1
		}
	} else {
		stored.CreatedAt = now
		if stored.ID >= r.nextID {
			r.nextID = stored.ID + 1
		}
	}
	stored.UpdatedAt = now

	r.hazards[stored.ID] = stored
	return copyHazard(stored), nil
}

func (r *hazardRepository) Get(ctx context.Context, id int64) (*model.Hazard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hazard, exists := r.hazards[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "hazard not found", goerr.V("id", id))
	}

	return copyHazard(hazard), nil
}

func (r *hazardRepository) List(ctx context.Context) ([]*model.Hazard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hazards := make([]*model.Hazard, 0, len(r.hazards))
	for _, hazard := range r.hazards {
		hazards = append(hazards, copyHazard(hazard))
	}
	sort.Slice(hazards, func(i, j int) bool { return hazards[i].ID < hazards[j].ID })

	return hazards, nil
}

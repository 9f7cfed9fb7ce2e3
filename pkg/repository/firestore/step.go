package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type stepDocument struct {
	ID          int64     `firestore:"id"`
	AprID       int64     `firestore:"apr_id"`
	TenantID    string    `firestore:"tenant_id"`
	Order       int       `firestore:"order"`
	Description string    `firestore:"description"`
	Hazards     string    `firestore:"hazards"`
	Risks       string    `firestore:"risks"`
	Controls    string    `firestore:"controls"`
	PPE         string    `firestore:"ppe"`
	Regulations string    `firestore:"regulations"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func toStepDocument(s *model.Step) *stepDocument {
	return &stepDocument{
		ID:          s.ID,
		AprID:       s.AprID,
		TenantID:    s.TenantID,
		Order:       s.Order,
		Description: s.Description,
		Hazards:     s.Hazards,
		Risks:       s.Risks,
		Controls:    s.Controls,
		PPE:         s.PPE,
		Regulations: s.Regulations,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (d *stepDocument) toModel() *model.Step {
	return &model.Step{
		ID:          d.ID,
		AprID:       d.AprID,
		TenantID:    d.TenantID,
		Order:       d.Order,
		Description: d.Description,
		Hazards:     d.Hazards,
		Risks:       d.Risks,
		Controls:    d.Controls,
		PPE:         d.PPE,
		Regulations: d.Regulations,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type stepRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newStepRepository(client *firestore.Client) *stepRepository {
	return &stepRepository{client: client}
}

func (r *stepRepository) stepsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_steps"
	}
	return "steps"
}

func (r *stepRepository) countersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *stepRepository) orderTaken(ctx context.Context, tenantID string, aprID int64, order int, excludeID int64) (bool, error) {
	iter := r.client.Collection(r.stepsCollection()).
		Where("tenant_id", "==", tenantID).
		Where("apr_id", "==", aprID).
		Where("order", "==", order).
		Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return false, goerr.Wrap(err, "failed to check step order")
		}

		var doc stepDocument
		if err := snap.DataTo(&doc); err != nil {
			return false, goerr.Wrap(err, "failed to decode step")
		}
		if doc.ID != excludeID {
			return true, nil
		}
	}

	return false, nil
}

func (r *stepRepository) Create(ctx context.Context, tenantID string, step *model.Step) (*model.Step, error) {
	taken, err := r.orderTaken(ctx, tenantID, step.AprID, step.Order, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, goerr.Wrap(ErrDuplicateOrder, "step order already in use",
			goerr.V("aprID", step.AprID), goerr.V("order", step.Order))
	}

	nextID, err := nextCounterValue(ctx, r.client, r.countersCollection(), tenantID+"_step_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next step ID")
	}

	now := time.Now().UTC()
	created := *step
	created.ID = nextID
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now

	doc := toStepDocument(&created)
	if _, err := r.client.Collection(r.stepsCollection()).Doc(stepDocID(tenantID, nextID)).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create step", goerr.V("id", nextID))
	}

	return doc.toModel(), nil
}

func stepDocID(tenantID string, id int64) string {
	return aprDocID(tenantID, id)
}

func (r *stepRepository) Get(ctx context.Context, tenantID string, id int64) (*model.Step, error) {
	snap, err := r.client.Collection(r.stepsCollection()).Doc(stepDocID(tenantID, id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get step", goerr.V("id", id))
	}

	var doc stepDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode step", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *stepRepository) ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.Step, error) {
	iter := r.client.Collection(r.stepsCollection()).
		Where("tenant_id", "==", tenantID).
		Where("apr_id", "==", aprID).
		Documents(ctx)
	defer iter.Stop()

	steps := make([]*model.Step, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list steps", goerr.V("aprID", aprID))
		}

		var doc stepDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode step")
		}
		steps = append(steps, doc.toModel())
	}

	// Sorted locally instead of OrderBy to avoid a composite index
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})

	return steps, nil
}

func (r *stepRepository) Update(ctx context.Context, tenantID string, step *model.Step) (*model.Step, error) {
	docRef := r.client.Collection(r.stepsCollection()).Doc(stepDocID(tenantID, step.ID))
	snap, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", step.ID))
		}
		return nil, goerr.Wrap(err, "failed to get step", goerr.V("id", step.ID))
	}

	var existing stepDocument
	if err := snap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode step", goerr.V("id", step.ID))
	}

	taken, err := r.orderTaken(ctx, tenantID, existing.AprID, step.Order, step.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, goerr.Wrap(ErrDuplicateOrder, "step order already in use",
			goerr.V("aprID", existing.AprID), goerr.V("order", step.Order))
	}

	updated := *step
	updated.TenantID = tenantID
	updated.AprID = existing.AprID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	doc := toStepDocument(&updated)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update step", goerr.V("id", step.ID))
	}

	return doc.toModel(), nil
}

func (r *stepRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	docRef := r.client.Collection(r.stepsCollection()).Doc(stepDocID(tenantID, id))
	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "step not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get step", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete step", goerr.V("id", id))
	}
	return nil
}

func (r *stepRepository) DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error {
	iter := r.client.Collection(r.stepsCollection()).
		Where("tenant_id", "==", tenantID).
		Where("apr_id", "==", aprID).
		Documents(ctx)
	defer iter.Stop()

	batch := r.client.BulkWriter(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to list steps for deletion", goerr.V("aprID", aprID))
		}
		if _, err := batch.Delete(snap.Ref); err != nil {
			return goerr.Wrap(err, "failed to queue step deletion", goerr.V("aprID", aprID))
		}
	}
	batch.End()

	return nil
}

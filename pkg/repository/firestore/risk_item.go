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

type riskItemDocument struct {
	ID              int64     `firestore:"id"`
	AprID           int64     `firestore:"apr_id"`
	StepID          int64     `firestore:"step_id"`
	TenantID        string    `firestore:"tenant_id"`
	HazardID        int64     `firestore:"hazard_id"`
	RiskDescription string    `firestore:"risk_description"`
	Probability     int       `firestore:"probability"`
	Severity        int       `firestore:"severity"`
	Score           int       `firestore:"score"`
	Level           string    `firestore:"level"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

func toRiskItemDocument(item *model.RiskItem) *riskItemDocument {
	return &riskItemDocument{
		ID:              item.ID,
		AprID:           item.AprID,
		StepID:          item.StepID,
		TenantID:        item.TenantID,
		HazardID:        item.HazardID,
		RiskDescription: item.RiskDescription,
		Probability:     item.Probability,
		Severity:        item.Severity,
		Score:           item.Score,
		Level:           item.Level,
		UpdatedAt:       item.UpdatedAt,
	}
}

func (d *riskItemDocument) toModel() *model.RiskItem {
	return &model.RiskItem{
		ID:              d.ID,
		AprID:           d.AprID,
		StepID:          d.StepID,
		TenantID:        d.TenantID,
		HazardID:        d.HazardID,
		RiskDescription: d.RiskDescription,
		Probability:     d.Probability,
		Severity:        d.Severity,
		Score:           d.Score,
		Level:           d.Level,
		UpdatedAt:       d.UpdatedAt,
	}
}

type riskItemRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskItemRepository(client *firestore.Client) *riskItemRepository {
	return &riskItemRepository{client: client}
}

func (r *riskItemRepository) riskItemsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risk_items"
	}
	return "risk_items"
}

func (r *riskItemRepository) countersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

// ReplaceForAPR swaps the APR's full risk item set inside one
// transaction, so readers never observe a half-rebuilt state
func (r *riskItemRepository) ReplaceForAPR(ctx context.Context, tenantID string, aprID int64, items []*model.RiskItem) ([]*model.RiskItem, error) {
	now := time.Now().UTC()
	created := make([]*model.RiskItem, 0, len(items))
	for _, item := range items {
		nextID, err := nextCounterValue(ctx, r.client, r.countersCollection(), tenantID+"_risk_item_counter")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get next risk item ID")
		}

		c := *item
		c.ID = nextID
		c.AprID = aprID
		c.TenantID = tenantID
		c.UpdatedAt = now
		created = append(created, &c)
	}

	collection := r.client.Collection(r.riskItemsCollection())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := collection.
			Where("tenant_id", "==", tenantID).
			Where("apr_id", "==", aprID)
		snaps, err := tx.Documents(query).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to read current risk items")
		}

		for _, snap := range snaps {
			if err := tx.Delete(snap.Ref); err != nil {
				return goerr.Wrap(err, "failed to delete risk item")
			}
		}
		for _, c := range created {
			ref := collection.Doc(aprDocID(tenantID, c.ID))
			if err := tx.Set(ref, toRiskItemDocument(c)); err != nil {
				return goerr.Wrap(err, "failed to insert risk item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to replace risk items", goerr.V("aprID", aprID))
	}

	return created, nil
}

func (r *riskItemRepository) Get(ctx context.Context, tenantID string, id int64) (*model.RiskItem, error) {
	snap, err := r.client.Collection(r.riskItemsCollection()).Doc(aprDocID(tenantID, id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "risk item not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk item", goerr.V("id", id))
	}

	var doc riskItemDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk item", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *riskItemRepository) ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.RiskItem, error) {
	iter := r.client.Collection(r.riskItemsCollection()).
		Where("tenant_id", "==", tenantID).
		Where("apr_id", "==", aprID).
		Documents(ctx)
	defer iter.Stop()

	items := make([]*model.RiskItem, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list risk items", goerr.V("aprID", aprID))
		}

		var doc riskItemDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk item")
		}
		items = append(items, doc.toModel())
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	return items, nil
}

func (r *riskItemRepository) Update(ctx context.Context, tenantID string, item *model.RiskItem) (*model.RiskItem, error) {
	docRef := r.client.Collection(r.riskItemsCollection()).Doc(aprDocID(tenantID, item.ID))
	snap, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "risk item not found", goerr.V("id", item.ID))
		}
		return nil, goerr.Wrap(err, "failed to get risk item", goerr.V("id", item.ID))
	}

	var existing riskItemDocument
	if err := snap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk item", goerr.V("id", item.ID))
	}

	updated := *item
	updated.TenantID = tenantID
	updated.AprID = existing.AprID
	updated.StepID = existing.StepID
	updated.UpdatedAt = time.Now().UTC()

	doc := toRiskItemDocument(&updated)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update risk item", goerr.V("id", item.ID))
	}

	return doc.toModel(), nil
}

func (r *riskItemRepository) DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error {
	iter := r.client.Collection(r.riskItemsCollection()).
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
			return goerr.Wrap(err, "failed to list risk items for deletion", goerr.V("aprID", aprID))
		}
		if _, err := batch.Delete(snap.Ref); err != nil {
			return goerr.Wrap(err, "failed to queue risk item deletion", goerr.V("aprID", aprID))
		}
	}
	batch.End()

	return nil
}

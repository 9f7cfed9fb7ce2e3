package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

type aprDocument struct {
	ID              int64             `firestore:"id"`
	TenantID        string            `firestore:"tenant_id"`
	Title           string            `firestore:"title"`
	RiskCategory    string            `firestore:"risk_category"`
	Description     string            `firestore:"description"`
	Worksite        string            `firestore:"worksite"`
	Sector          string            `firestore:"sector"`
	Responsible     string            `firestore:"responsible"`
	Date            string            `firestore:"date"`
	ActivityID      string            `firestore:"activity_id"`
	ActivityName    string            `firestore:"activity_name"`
	Status          string            `firestore:"status"`
	TemplateVersion string            `firestore:"template_version"`
	SourceHashes    map[string]string `firestore:"source_hashes"`
	CreatedBy       string            `firestore:"created_by"`
	CreatedAt       time.Time         `firestore:"created_at"`
	UpdatedAt       time.Time         `firestore:"updated_at"`
}

func toAPRDocument(a *model.APR) *aprDocument {
	return &aprDocument{
		ID:              a.ID,
		TenantID:        a.TenantID,
		Title:           a.Title,
		RiskCategory:    a.RiskCategory,
		Description:     a.Description,
		Worksite:        a.Worksite,
		Sector:          a.Sector,
		Responsible:     a.Responsible,
		Date:            a.Date,
		ActivityID:      a.ActivityID,
		ActivityName:    a.ActivityName,
		Status:          a.Status.String(),
		TemplateVersion: a.TemplateVersion,
		SourceHashes:    a.SourceHashes,
		CreatedBy:       a.CreatedBy,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (d *aprDocument) toModel() *model.APR {
	return &model.APR{
		ID:              d.ID,
		TenantID:        d.TenantID,
		Title:           d.Title,
		RiskCategory:    d.RiskCategory,
		Description:     d.Description,
		Worksite:        d.Worksite,
		Sector:          d.Sector,
		Responsible:     d.Responsible,
		Date:            d.Date,
		ActivityID:      d.ActivityID,
		ActivityName:    d.ActivityName,
		Status:          types.Status(d.Status).Normalize(),
		TemplateVersion: d.TemplateVersion,
		SourceHashes:    d.SourceHashes,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type aprRepository struct {
	client           *firestore.Client
	collectionPrefix string

	steps     *stepRepository
	riskItems *riskItemRepository
	events    *eventRepository
}

func newAPRRepository(client *firestore.Client, steps *stepRepository, riskItems *riskItemRepository, events *eventRepository) *aprRepository {
	return &aprRepository{
		client:    client,
		steps:     steps,
		riskItems: riskItems,
		events:    events,
	}
}

func (r *aprRepository) aprsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_aprs"
	}
	return "aprs"
}

func (r *aprRepository) countersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func aprDocID(tenantID string, id int64) string {
	return fmt.Sprintf("%s_%d", tenantID, id)
}

func (r *aprRepository) Create(ctx context.Context, tenantID string, apr *model.APR) (*model.APR, error) {
	nextID, err := nextCounterValue(ctx, r.client, r.countersCollection(), tenantID+"_apr_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next APR ID")
	}

	now := time.Now().UTC()
	created := *apr
	created.ID = nextID
	created.TenantID = tenantID
	created.CreatedAt = now
	created.UpdatedAt = now

	doc := toAPRDocument(&created)
	if _, err := r.client.Collection(r.aprsCollection()).Doc(aprDocID(tenantID, nextID)).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create apr", goerr.V("id", nextID))
	}

	return doc.toModel(), nil
}

func (r *aprRepository) Get(ctx context.Context, tenantID string, id int64) (*model.APR, error) {
	snap, err := r.client.Collection(r.aprsCollection()).Doc(aprDocID(tenantID, id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get apr", goerr.V("id", id))
	}

	var doc aprDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode apr", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *aprRepository) List(ctx context.Context, tenantID string) ([]*model.APR, error) {
	iter := r.client.Collection(r.aprsCollection()).
		Where("tenant_id", "==", tenantID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	aprs := make([]*model.APR, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list aprs")
		}

		var doc aprDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode apr")
		}
		aprs = append(aprs, doc.toModel())
	}

	return aprs, nil
}

func (r *aprRepository) Update(ctx context.Context, tenantID string, apr *model.APR) (*model.APR, error) {
	docRef := r.client.Collection(r.aprsCollection()).Doc(aprDocID(tenantID, apr.ID))
	snap, err := docRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", apr.ID))
		}
		return nil, goerr.Wrap(err, "failed to get apr", goerr.V("id", apr.ID))
	}

	var existing aprDocument
	if err := snap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode apr", goerr.V("id", apr.ID))
	}

	updated := *apr
	updated.TenantID = tenantID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	doc := toAPRDocument(&updated)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update apr", goerr.V("id", apr.ID))
	}

	return doc.toModel(), nil
}

func (r *aprRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	docRef := r.client.Collection(r.aprsCollection()).Doc(aprDocID(tenantID, id))
	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "apr not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get apr", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete apr", goerr.V("id", id))
	}

	// Cascade to everything the APR owns
	if err := r.steps.DeleteByAPR(ctx, tenantID, id); err != nil {
		return err
	}
	if err := r.riskItems.DeleteByAPR(ctx, tenantID, id); err != nil {
		return err
	}
	return r.events.DeleteByAPR(ctx, tenantID, id)
}

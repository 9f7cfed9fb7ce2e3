package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/engenharia-apr/aprd/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type hazardDocument struct {
	ID                 int64     `firestore:"id"`
	Name               string    `firestore:"name"`
	HazardType         string    `firestore:"hazard_type"`
	DefaultProbability int       `firestore:"default_probability"`
	DefaultSeverity    int       `firestore:"default_severity"`
	Consequences       []string  `firestore:"consequences"`
	Safeguards         []string  `firestore:"safeguards"`
	CreatedAt          time.Time `firestore:"created_at"`
	UpdatedAt          time.Time `firestore:"updated_at"`
}

func toHazardDocument(h *model.Hazard) *hazardDocument {
	return &hazardDocument{
		ID:                 h.ID,
		Name:               h.Name,
		HazardType:         h.HazardType,
		DefaultProbability: h.DefaultProbability,
		DefaultSeverity:    h.DefaultSeverity,
		Consequences:       h.Consequences,
		Safeguards:         h.Safeguards,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
}

func (d *hazardDocument) toModel() *model.Hazard {
	return &model.Hazard{
		ID:                 d.ID,
		Name:               d.Name,
		HazardType:         d.HazardType,
		DefaultProbability: d.DefaultProbability,
		DefaultSeverity:    d.DefaultSeverity,
		Consequences:       d.Consequences,
		Safeguards:         d.Safeguards,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type hazardRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newHazardRepository(client *firestore.Client) *hazardRepository {
	return &hazardRepository{client: client}
}

func (r *hazardRepository) hazardsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_hazards"
	}
	return "hazards"
}

func (r *hazardRepository) countersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

// Put upserts a catalog entry. The catalog is global, so documents are
// keyed by the bare hazard ID rather than a tenant-prefixed one.
func (r *hazardRepository) Put(ctx context.Context, hazard *model.Hazard) (*model.Hazard, error) {
	now := time.Now().UTC()
	stored := *hazard
	stored.UpdatedAt = now

	if stored.ID == 0 {
		nextID, err := nextCounterValue(ctx, r.client, r.countersCollection(), "hazard_counter")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get next hazard ID")
		}
		stored.ID = nextID
		stored.CreatedAt = now
	} else if stored.CreatedAt.IsZero() {
		existing, err := r.Get(ctx, stored.ID)
		if err == nil {
			stored.CreatedAt = existing.CreatedAt
		} else {
			stored.CreatedAt = now
		}
	}

	doc := toHazardDocument(&stored)
	docID := fmt.Sprintf("%d", stored.ID)
	if _, err := r.client.Collection(r.hazardsCollection()).Doc(docID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to put hazard", goerr.V("id", stored.ID))
	}

	return doc.toModel(), nil
}

func (r *hazardRepository) Get(ctx context.Context, id int64) (*model.Hazard, error) {
	snap, err := r.client.Collection(r.hazardsCollection()).Doc(fmt.Sprintf("%d", id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "hazard not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get hazard", goerr.V("id", id))
	}

	var doc hazardDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode hazard", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *hazardRepository) List(ctx context.Context) ([]*model.Hazard, error) {
	iter := r.client.Collection(r.hazardsCollection()).Documents(ctx)
	defer iter.Stop()

	hazards := make([]*model.Hazard, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list hazards")
		}

		var doc hazardDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode hazard")
		}
		hazards = append(hazards, doc.toModel())
	}

	sort.Slice(hazards, func(i, j int) bool {
		return hazards[i].ID < hazards[j].ID
	})

	return hazards, nil
}

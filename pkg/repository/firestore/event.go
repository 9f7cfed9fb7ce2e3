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

type eventDocument struct {
	ID        int64          `firestore:"id"`
	AprID     int64          `firestore:"apr_id"`
	TenantID  string         `firestore:"tenant_id"`
	Action    string         `firestore:"action"`
	ActorSub  string         `firestore:"actor_sub"`
	ActorName string         `firestore:"actor_name"`
	ActorRole string         `firestore:"actor_role"`
	Payload   map[string]any `firestore:"payload"`
	CreatedAt time.Time      `firestore:"created_at"`
}

func toEventDocument(e *model.Event) *eventDocument {
	return &eventDocument{
		ID:        e.ID,
		AprID:     e.AprID,
		TenantID:  e.TenantID,
		Action:    e.Action,
		ActorSub:  e.ActorSub,
		ActorName: e.ActorName,
		ActorRole: e.ActorRole,
		Payload:   e.Payload,
		CreatedAt: e.CreatedAt,
	}
}

func (d *eventDocument) toModel() *model.Event {
	return &model.Event{
		ID:        d.ID,
		AprID:     d.AprID,
		TenantID:  d.TenantID,
		Action:    d.Action,
		ActorSub:  d.ActorSub,
		ActorName: d.ActorName,
		ActorRole: d.ActorRole,
		Payload:   d.Payload,
		CreatedAt: d.CreatedAt,
	}
}

type eventRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newEventRepository(client *firestore.Client) *eventRepository {
	return &eventRepository{client: client}
}

func (r *eventRepository) eventsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_events"
	}
	return "events"
}

func (r *eventRepository) countersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *eventRepository) Append(ctx context.Context, tenantID string, event *model.Event) (*model.Event, error) {
	nextID, err := nextCounterValue(ctx, r.client, r.countersCollection(), tenantID+"_event_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next event ID")
	}

	created := *event
	created.ID = nextID
	created.TenantID = tenantID
	created.CreatedAt = time.Now().UTC()

	doc := toEventDocument(&created)
	if _, err := r.client.Collection(r.eventsCollection()).Doc(aprDocID(tenantID, nextID)).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to append event", goerr.V("id", nextID))
	}

	return doc.toModel(), nil
}

func (r *eventRepository) ListByAPR(ctx context.Context, tenantID string, aprID int64) ([]*model.Event, error) {
	iter := r.client.Collection(r.eventsCollection()).
		Where("tenant_id", "==", tenantID).
		Where("apr_id", "==", aprID).
		Documents(ctx)
	defer iter.Stop()

	events := make([]*model.Event, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list events", goerr.V("aprID", aprID))
		}

		var doc eventDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode event")
		}
		events = append(events, doc.toModel())
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].ID < events[j].ID
	})

	return events, nil
}

func (r *eventRepository) DeleteByAPR(ctx context.Context, tenantID string, aprID int64) error {
	iter := r.client.Collection(r.eventsCollection()).
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
			return goerr.Wrap(err, "failed to list events for deletion", goerr.V("aprID", aprID))
		}
		if _, err := batch.Delete(snap.Ref); err != nil {
			return goerr.Wrap(err, "failed to queue event deletion", goerr.V("aprID", aprID))
		}
	}
	batch.End()

	return nil
}

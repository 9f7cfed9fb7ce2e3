package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/engenharia-apr/aprd/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors shared by the Firestore repositories
var (
	ErrNotFound       = interfaces.ErrNotFound
	ErrDuplicateOrder = interfaces.ErrDuplicateOrder
)

type Firestore struct {
	client   *firestore.Client
	apr      *aprRepository
	step     *stepRepository
	riskItem *riskItemRepository
	hazard   *hazardRepository
	event    *eventRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.apr.collectionPrefix = prefix
		f.step.collectionPrefix = prefix
		f.riskItem.collectionPrefix = prefix
		f.hazard.collectionPrefix = prefix
		f.event.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	stepRepo := newStepRepository(client)
	riskItemRepo := newRiskItemRepository(client)
	eventRepo := newEventRepository(client)
	aprRepo := newAPRRepository(client, stepRepo, riskItemRepo, eventRepo)

	f := &Firestore{
		client:   client,
		apr:      aprRepo,
		step:     stepRepo,
		riskItem: riskItemRepo,
		hazard:   newHazardRepository(client),
		event:    eventRepo,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) APR() interfaces.APRRepository {
	return f.apr
}

func (f *Firestore) Step() interfaces.StepRepository {
	return f.step
}

func (f *Firestore) RiskItem() interfaces.RiskItemRepository {
	return f.riskItem
}

func (f *Firestore) Hazard() interfaces.HazardRepository {
	return f.hazard
}

func (f *Firestore) Event() interfaces.EventRepository {
	return f.event
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// nextCounterValue increments a named counter document transactionally
func nextCounterValue(ctx context.Context, client *firestore.Client, collection, doc string) (int64, error) {
	counterRef := client.Collection(collection).Doc(doc)

	var nextID int64
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(counterRef)
		if err != nil {
			if isNotFound(err) {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := snap.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

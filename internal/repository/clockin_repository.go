package repository

import (
	"context"
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
)

// ClockInRepository defines access to the clock_ins collection.
type ClockInRepository interface {
	Create(ctx context.Context, event *domain.ClockEvent) error
	Latest(ctx context.Context, valetID string) (*domain.ClockEvent, error)
	History(ctx context.Context, valetID string, limit int) ([]domain.ClockEvent, error)
	Range(ctx context.Context, valetID string, from, to time.Time) ([]domain.ClockEvent, error)
	Recent(ctx context.Context, limit int) ([]domain.ClockEvent, error)
}

type clockInRepository struct {
	store docstore.Store
}

// NewClockInRepository returns a document-store backed implementation.
func NewClockInRepository(store docstore.Store) ClockInRepository {
	return &clockInRepository{store: store}
}

func (r *clockInRepository) Create(ctx context.Context, event *domain.ClockEvent) error {
	fields := map[string]any{
		"valetId":   event.ValetID,
		"valetName": event.ValetName,
		"type":      string(event.Type),
		"timestamp": encodeTime(event.Timestamp),
		"latitude":  event.Latitude,
		"longitude": event.Longitude,
	}
	if event.Address != "" {
		fields["address"] = event.Address
	}
	return r.store.SetDocument(ctx, docstore.CollectionClockIns, event.ID, fields)
}

func (r *clockInRepository) Latest(ctx context.Context, valetID string) (*domain.ClockEvent, error) {
	events, err := r.query(ctx,
		[]docstore.Filter{{Field: "valetId", Op: docstore.OpEqual, Value: valetID}},
		&docstore.Ordering{Field: "timestamp", Desc: true}, 1)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, docstore.ErrNotFound
	}
	return &events[0], nil
}

func (r *clockInRepository) History(ctx context.Context, valetID string, limit int) ([]domain.ClockEvent, error) {
	return r.query(ctx,
		[]docstore.Filter{{Field: "valetId", Op: docstore.OpEqual, Value: valetID}},
		&docstore.Ordering{Field: "timestamp", Desc: true}, limit)
}

// Range returns events within [from, to) ordered oldest first. An empty
// valetID spans all valets.
func (r *clockInRepository) Range(ctx context.Context, valetID string, from, to time.Time) ([]domain.ClockEvent, error) {
	filters := []docstore.Filter{
		{Field: "timestamp", Op: docstore.OpGreaterEqual, Value: encodeTime(from)},
		{Field: "timestamp", Op: docstore.OpLess, Value: encodeTime(to)},
	}
	if valetID != "" {
		filters = append(filters, docstore.Filter{Field: "valetId", Op: docstore.OpEqual, Value: valetID})
	}
	return r.query(ctx, filters, &docstore.Ordering{Field: "timestamp", Desc: false}, 0)
}

func (r *clockInRepository) Recent(ctx context.Context, limit int) ([]domain.ClockEvent, error) {
	return r.query(ctx, nil, &docstore.Ordering{Field: "timestamp", Desc: true}, limit)
}

func (r *clockInRepository) query(ctx context.Context, filters []docstore.Filter, order *docstore.Ordering, limit int) ([]domain.ClockEvent, error) {
	docs, err := r.store.QueryCollection(ctx, docstore.CollectionClockIns, filters, order, limit)
	if err != nil {
		return nil, err
	}
	events := make([]domain.ClockEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, domain.ClockEvent{
			ID:        doc.ID,
			ValetID:   stringField(doc.Fields, "valetId"),
			ValetName: stringField(doc.Fields, "valetName"),
			Type:      domain.ClockEventType(stringField(doc.Fields, "type")),
			Timestamp: decodeTime(doc.Fields["timestamp"]),
			Latitude:  floatField(doc.Fields, "latitude"),
			Longitude: floatField(doc.Fields, "longitude"),
			Address:   stringField(doc.Fields, "address"),
		})
	}
	return events, nil
}

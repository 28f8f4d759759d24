package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/itemledger/itemledger/internal/model"
)

const tracerName = "github.com/itemledger/itemledger/internal/repository"

// TracingStore wraps a Store and records a span per call.
type TracingStore struct {
	next   Store
	driver string
	tracer trace.Tracer
}

// NewTracingStore decorates next with spans tagged by driver name.
// A nil provider falls back to the global one.
func NewTracingStore(next Store, driver string, tp trace.TracerProvider) *TracingStore {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingStore{next: next, driver: driver, tracer: tp.Tracer(tracerName)}
}

func (s *TracingStore) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", s.driver))
	return s.tracer.Start(ctx, "repository."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *TracingStore) ListUsers(ctx context.Context) ([]model.User, error) {
	ctx, span := s.start(ctx, "ListUsers")
	users, err := s.next.ListUsers(ctx)
	span.SetAttributes(attribute.Int("users.count", len(users)))
	finish(span, err)
	return users, err
}

func (s *TracingStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	ctx, span := s.start(ctx, "GetUser", attribute.Int64("user.id", id))
	u, err := s.next.GetUser(ctx, id)
	finish(span, err)
	return u, err
}

func (s *TracingStore) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	ctx, span := s.start(ctx, "CreateUser")
	u, err := s.next.CreateUser(ctx, in)
	if err == nil {
		span.SetAttributes(attribute.Int64("user.id", u.ID))
	}
	finish(span, err)
	return u, err
}

func (s *TracingStore) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	ctx, span := s.start(ctx, "UpdateUser", attribute.Int64("user.id", id))
	u, err := s.next.UpdateUser(ctx, id, patch)
	finish(span, err)
	return u, err
}

func (s *TracingStore) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := s.start(ctx, "DeleteUser", attribute.Int64("user.id", id))
	err := s.next.DeleteUser(ctx, id)
	finish(span, err)
	return err
}

func (s *TracingStore) ListItems(ctx context.Context) ([]model.Item, error) {
	ctx, span := s.start(ctx, "ListItems")
	items, err := s.next.ListItems(ctx)
	span.SetAttributes(attribute.Int("items.count", len(items)))
	finish(span, err)
	return items, err
}

func (s *TracingStore) ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	ctx, span := s.start(ctx, "ListItemsByOwner", attribute.Int64("item.owner_id", ownerID))
	items, err := s.next.ListItemsByOwner(ctx, ownerID)
	span.SetAttributes(attribute.Int("items.count", len(items)))
	finish(span, err)
	return items, err
}

func (s *TracingStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	ctx, span := s.start(ctx, "GetItem", attribute.Int64("item.id", id))
	it, err := s.next.GetItem(ctx, id)
	finish(span, err)
	return it, err
}

func (s *TracingStore) CreateItem(ctx context.Context, in model.NewItem) (*model.Item, error) {
	ctx, span := s.start(ctx, "CreateItem",
		attribute.Int64("item.owner_id", in.OwnerID),
		attribute.Float64("item.price", in.Price),
	)
	it, err := s.next.CreateItem(ctx, in)
	if err == nil {
		span.SetAttributes(attribute.Int64("item.id", it.ID))
	}
	finish(span, err)
	return it, err
}

func (s *TracingStore) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	ctx, span := s.start(ctx, "UpdateItem", attribute.Int64("item.id", id))
	it, err := s.next.UpdateItem(ctx, id, patch)
	finish(span, err)
	return it, err
}

func (s *TracingStore) DeleteItem(ctx context.Context, id int64) error {
	ctx, span := s.start(ctx, "DeleteItem", attribute.Int64("item.id", id))
	err := s.next.DeleteItem(ctx, id)
	finish(span, err)
	return err
}

func (s *TracingStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	ctx, span := s.start(ctx, "Snapshot")
	snap, err := s.next.Snapshot(ctx)
	if err == nil {
		span.SetAttributes(
			attribute.String("snapshot.id", snap.ID),
			attribute.Int("users.count", len(snap.Users)),
			attribute.Int("items.count", len(snap.Items)),
		)
	}
	finish(span, err)
	return snap, err
}

func (s *TracingStore) Ping(ctx context.Context) error {
	ctx, span := s.start(ctx, "Ping")
	err := s.next.Ping(ctx)
	finish(span, err)
	return err
}

func (s *TracingStore) Close() error {
	return s.next.Close()
}

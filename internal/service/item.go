package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/itemledger/itemledger/internal/metrics"
	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/internal/repository"
)

// ItemService handles item business logic.
type ItemService struct {
	store   repository.ItemStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(store repository.ItemStore, recorder metrics.Recorder, logger *slog.Logger) *ItemService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemService{
		store:   store,
		metrics: recorder,
		logger:  logger.With("component", "item_service"),
	}
}

// ListItems returns one page of items in creation order.
func (s *ItemService) ListItems(ctx context.Context, page Page) ([]model.Item, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return paginate(items, page), nil
}

// ListItemsByOwner returns one page of the owner's items. An owner with no
// items, or an unknown owner, yields an empty list.
func (s *ItemService) ListItemsByOwner(ctx context.Context, ownerID int64, page Page) ([]model.Item, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	items, err := s.store.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by owner: %w", err)
	}
	return paginate(items, page), nil
}

// GetItem returns one item.
func (s *ItemService) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// CreateItem validates input and stores a new item. The owner is not looked up.
func (s *ItemService) CreateItem(ctx context.Context, input model.NewItem) (*model.Item, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	it, err := s.store.CreateItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.metrics.IncEntityCreated(metrics.EntityItem)
	s.logger.Info("item created", "item_id", it.ID, "owner_id", it.OwnerID)
	return it, nil
}

// UpdateItem applies a partial update.
func (s *ItemService) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	it, err := s.store.UpdateItem(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.metrics.IncEntityUpdated(metrics.EntityItem)
	s.logger.Info("item updated", "item_id", it.ID)
	return it, nil
}

// DeleteItem removes an item.
func (s *ItemService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.metrics.IncEntityDeleted(metrics.EntityItem)
	s.logger.Info("item deleted", "item_id", id)
	return nil
}

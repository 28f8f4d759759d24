package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/itemledger/itemledger/internal/model"
)

// MemoryStore keeps both collections in process memory.
// Slices are ordered by id, which is also insertion order.
type MemoryStore struct {
	mu         sync.RWMutex
	users      []model.User
	items      []model.Item
	nextUserID int64
	nextItemID int64
	now        func() time.Time
}

// NewMemoryStore creates an empty store whose id sequences start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      []model.User{},
		items:      []model.Item{},
		nextUserID: 1,
		nextItemID: 1,
		now:        utcNow,
	}
}

func findUser(users []model.User, id int64) (int, bool) {
	return slices.BinarySearchFunc(users, id, func(u model.User, id int64) int {
		return cmp.Compare(u.ID, id)
	})
}

func findItem(items []model.Item, id int64) (int, bool) {
	return slices.BinarySearchFunc(items, id, func(it model.Item, id int64) int {
		return cmp.Compare(it.ID, id)
	})
}

func (s *MemoryStore) emailTaken(email string, exceptID int64) bool {
	return slices.ContainsFunc(s.users, func(u model.User) bool {
		return u.Email == email && u.ID != exceptID
	})
}

// ListUsers returns all users in insertion order.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users), nil
}

// GetUser returns a copy of the user or ErrUserNotFound.
func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := findUser(s.users, id)
	if !ok {
		return nil, ErrUserNotFound
	}
	u := s.users[i]
	return &u, nil
}

// CreateUser assigns the next id. A rejected email does not consume an id.
func (s *MemoryStore) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(in.Email, 0) {
		return nil, ErrEmailExists
	}

	u := model.User{
		ID:        s.nextUserID,
		Email:     in.Email,
		FullName:  in.FullName,
		CreatedAt: s.now(),
	}
	s.nextUserID++
	s.users = append(s.users, u)
	return &u, nil
}

// UpdateUser applies patch; the email is re-checked only when it changes.
func (s *MemoryStore) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := findUser(s.users, id)
	if !ok {
		return nil, ErrUserNotFound
	}
	if patch.EmailChanges(&s.users[i]) && s.emailTaken(*patch.Email, id) {
		return nil, ErrEmailExists
	}

	patch.Apply(&s.users[i], s.now())
	u := s.users[i]
	return &u, nil
}

// DeleteUser removes the user. Items owned by the user are kept.
func (s *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := findUser(s.users, id)
	if !ok {
		return ErrUserNotFound
	}
	s.users = slices.Delete(s.users, i, i+1)
	return nil
}

// ListItems returns all items in insertion order.
func (s *MemoryStore) ListItems(ctx context.Context) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

// ListItemsByOwner returns the owner's items in insertion order, possibly none.
func (s *MemoryStore) ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Item{}
	for _, it := range s.items {
		if it.OwnedBy(ownerID) {
			out = append(out, it)
		}
	}
	return out, nil
}

// GetItem returns a copy of the item or ErrItemNotFound.
func (s *MemoryStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := findItem(s.items, id)
	if !ok {
		return nil, ErrItemNotFound
	}
	it := s.items[i]
	return &it, nil
}

// CreateItem assigns the next item id. The owner is not checked.
func (s *MemoryStore) CreateItem(ctx context.Context, in model.NewItem) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := model.Item{
		ID:        s.nextItemID,
		Title:     in.Title,
		Price:     in.Price,
		OwnerID:   in.OwnerID,
		CreatedAt: s.now(),
	}
	if in.Description != nil {
		desc := *in.Description
		it.Description = &desc
	}
	s.nextItemID++
	s.items = append(s.items, it)
	return &it, nil
}

// UpdateItem applies patch to an existing item.
func (s *MemoryStore) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := findItem(s.items, id)
	if !ok {
		return nil, ErrItemNotFound
	}
	patch.Apply(&s.items[i], s.now())
	it := s.items[i]
	return &it, nil
}

// DeleteItem removes the item.
func (s *MemoryStore) DeleteItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := findItem(s.items, id)
	if !ok {
		return ErrItemNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Snapshot copies both collections under a single read lock.
func (s *MemoryStore) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newSnapshot(slices.Clone(s.users), slices.Clone(s.items), s.now()), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

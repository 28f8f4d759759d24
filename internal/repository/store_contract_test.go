package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/itemledger/itemledger/internal/model"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// runStoreContract exercises behaviour every Store driver must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("UserIDsSequentialAndNeverReused", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a := mustCreateUser(t, s, "a@example.com")
		b := mustCreateUser(t, s, "b@example.com")
		if a.ID != 1 || b.ID != 2 {
			t.Fatalf("ids = %d,%d, want 1,2", a.ID, b.ID)
		}
		if err := s.DeleteUser(ctx, b.ID); err != nil {
			t.Fatalf("DeleteUser: %v", err)
		}
		c := mustCreateUser(t, s, "c@example.com")
		if c.ID != 3 {
			t.Errorf("id after delete = %d, want 3", c.ID)
		}
	})

	t.Run("ItemIDsSequentialAndNeverReused", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		first := mustCreateItem(t, s, 1, 10)
		second := mustCreateItem(t, s, 1, 20)
		if err := s.DeleteItem(ctx, second.ID); err != nil {
			t.Fatalf("DeleteItem: %v", err)
		}
		third := mustCreateItem(t, s, 1, 30)
		if first.ID != 1 || second.ID != 2 || third.ID != 3 {
			t.Errorf("ids = %d,%d,%d, want 1,2,3", first.ID, second.ID, third.ID)
		}
	})

	t.Run("DuplicateEmailRejectedOnCreate", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		mustCreateUser(t, s, "dup@example.com")
		_, err := s.CreateUser(ctx, model.NewUser{Email: "dup@example.com", FullName: "Again"})
		if !errors.Is(err, ErrEmailExists) {
			t.Fatalf("CreateUser duplicate err = %v, want ErrEmailExists", err)
		}

		next := mustCreateUser(t, s, "other@example.com")
		if next.ID != 2 {
			t.Errorf("rejected create consumed an id: next id = %d, want 2", next.ID)
		}
	})

	t.Run("EmailUniquenessOnUpdate", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a := mustCreateUser(t, s, "a@example.com")
		b := mustCreateUser(t, s, "b@example.com")

		if _, err := s.UpdateUser(ctx, b.ID, model.UserPatch{Email: strPtr("a@example.com")}); !errors.Is(err, ErrEmailExists) {
			t.Fatalf("update to taken email err = %v, want ErrEmailExists", err)
		}
		if _, err := s.UpdateUser(ctx, a.ID, model.UserPatch{Email: strPtr("a@example.com")}); err != nil {
			t.Fatalf("update to own email: %v", err)
		}
		if _, err := s.UpdateUser(ctx, b.ID, model.UserPatch{Email: strPtr("b2@example.com")}); err != nil {
			t.Fatalf("update to free email: %v", err)
		}
		if _, err := s.CreateUser(ctx, model.NewUser{Email: "b@example.com", FullName: "Freed"}); err != nil {
			t.Errorf("released email should be reusable: %v", err)
		}
	})

	t.Run("DeletedUserEmailReusable", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		u := mustCreateUser(t, s, "gone@example.com")
		if err := s.DeleteUser(ctx, u.ID); err != nil {
			t.Fatalf("DeleteUser: %v", err)
		}
		again := mustCreateUser(t, s, "gone@example.com")
		if again.ID == u.ID {
			t.Errorf("id %d reused", again.ID)
		}
	})

	t.Run("PartialUpdateUser", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		u := mustCreateUser(t, s, "p@example.com")
		if u.UpdatedAt != nil {
			t.Fatalf("new user UpdatedAt = %v, want nil", u.UpdatedAt)
		}

		updated, err := s.UpdateUser(ctx, u.ID, model.UserPatch{FullName: strPtr("Renamed")})
		if err != nil {
			t.Fatalf("UpdateUser: %v", err)
		}
		if updated.FullName != "Renamed" || updated.Email != "p@example.com" {
			t.Errorf("unexpected user after patch: %+v", updated)
		}
		if updated.UpdatedAt == nil {
			t.Error("UpdatedAt not set")
		}

		got, err := s.GetUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUser: %v", err)
		}
		if got.FullName != "Renamed" || got.UpdatedAt == nil {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("PartialUpdateItem", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		it, err := s.CreateItem(ctx, model.NewItem{Title: "Lamp", Description: strPtr("brass"), Price: 12.5, OwnerID: 7})
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}

		updated, err := s.UpdateItem(ctx, it.ID, model.ItemPatch{Price: floatPtr(15)})
		if err != nil {
			t.Fatalf("UpdateItem: %v", err)
		}
		if updated.Price != 15 || updated.Title != "Lamp" || updated.OwnerID != 7 {
			t.Errorf("unexpected item after patch: %+v", updated)
		}
		if updated.Description == nil || *updated.Description != "brass" {
			t.Errorf("description lost: %v", updated.Description)
		}
		if updated.UpdatedAt == nil {
			t.Error("UpdatedAt not set")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		if _, err := s.GetUser(ctx, 99); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetUser err = %v", err)
		}
		if _, err := s.UpdateUser(ctx, 99, model.UserPatch{}); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("UpdateUser err = %v", err)
		}
		if err := s.DeleteUser(ctx, 99); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("DeleteUser err = %v", err)
		}
		if _, err := s.GetItem(ctx, 99); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("GetItem err = %v", err)
		}
		if _, err := s.UpdateItem(ctx, 99, model.ItemPatch{}); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("UpdateItem err = %v", err)
		}
		if err := s.DeleteItem(ctx, 99); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("DeleteItem err = %v", err)
		}
	})

	t.Run("DeleteUserKeepsItems", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		u := mustCreateUser(t, s, "owner@example.com")
		mustCreateItem(t, s, u.ID, 5)
		if err := s.DeleteUser(ctx, u.ID); err != nil {
			t.Fatalf("DeleteUser: %v", err)
		}

		items, err := s.ListItemsByOwner(ctx, u.ID)
		if err != nil {
			t.Fatalf("ListItemsByOwner: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("orphaned items = %d, want 1", len(items))
		}
	})

	t.Run("ListsInInsertionOrder", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		mustCreateUser(t, s, "z@example.com")
		mustCreateUser(t, s, "a@example.com")
		mustCreateItem(t, s, 2, 1)
		mustCreateItem(t, s, 1, 2)
		mustCreateItem(t, s, 2, 3)

		users, err := s.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 2 || users[0].Email != "z@example.com" || users[1].Email != "a@example.com" {
			t.Errorf("users out of order: %+v", users)
		}

		owned, err := s.ListItemsByOwner(ctx, 2)
		if err != nil {
			t.Fatalf("ListItemsByOwner: %v", err)
		}
		if len(owned) != 2 || owned[0].Price != 1 || owned[1].Price != 3 {
			t.Errorf("owner items out of order: %+v", owned)
		}

		none, err := s.ListItemsByOwner(ctx, 42)
		if err != nil {
			t.Fatalf("ListItemsByOwner: %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", none)
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		empty, err := s.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if empty.ID == "" || empty.Users == nil || empty.Items == nil {
			t.Errorf("empty snapshot malformed: %+v", empty)
		}

		mustCreateUser(t, s, "s@example.com")
		mustCreateItem(t, s, 1, 9.99)

		snap, err := s.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if len(snap.Users) != 1 || len(snap.Items) != 1 {
			t.Fatalf("snapshot sizes = %d/%d, want 1/1", len(snap.Users), len(snap.Items))
		}
		if snap.Items[0].Price != 9.99 || snap.Items[0].Description != nil {
			t.Errorf("item not preserved: %+v", snap.Items[0])
		}
		if snap.ID == empty.ID {
			t.Error("snapshot ids should be unique")
		}
	})
}

func mustCreateUser(t *testing.T, s Store, email string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.NewUser{Email: email, FullName: "Test User"})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func mustCreateItem(t *testing.T, s Store, ownerID int64, price float64) *model.Item {
	t.Helper()
	it, err := s.CreateItem(context.Background(), model.NewItem{Title: "Item", Price: price, OwnerID: ownerID})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return it
}

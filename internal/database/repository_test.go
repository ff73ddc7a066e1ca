package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := Connect(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	first, err := users.Create(ctx, 100)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID != 100 || first.IsActive || first.IsAdmin {
		t.Fatalf("unexpected new user: %+v", first)
	}

	if err := users.Activate(ctx, 100); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	second, err := users.Create(ctx, 100)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if !second.IsActive {
		t.Fatal("second Create overwrote existing flags")
	}
}

func TestUserList(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	for _, id := range []int64{10, 20, 30} {
		if _, err := users.Create(ctx, id); err != nil {
			t.Fatalf("Create(%d): %v", id, err)
		}
	}

	all, err := users.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d users, want 3", len(all))
	}
}

func TestUserFlagsRequireExistingUser(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	if err := users.Activate(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Activate of unknown user: got %v, want ErrNotFound", err)
	}
	if err := users.GrantAdmin(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GrantAdmin of unknown user: got %v, want ErrNotFound", err)
	}
	if _, err := users.IsActive(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("IsActive of unknown user: got %v, want ErrNotFound", err)
	}

	// Unknown users are not admins, but that is not an error.
	isAdmin, err := users.IsAdmin(ctx, 42)
	if err != nil {
		t.Fatalf("IsAdmin of unknown user: %v", err)
	}
	if isAdmin {
		t.Fatal("unknown user reported as admin")
	}
}

func TestUserAdminLifecycle(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	if _, err := users.Create(ctx, 7); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := users.GrantAdmin(ctx, 7); err != nil {
		t.Fatalf("GrantAdmin: %v", err)
	}

	isAdmin, err := users.IsAdmin(ctx, 7)
	if err != nil || !isAdmin {
		t.Fatalf("IsAdmin after grant = (%v, %v), want (true, nil)", isAdmin, err)
	}

	if err := users.RevokeAdmin(ctx, 7); err != nil {
		t.Fatalf("RevokeAdmin: %v", err)
	}
	isAdmin, err = users.IsAdmin(ctx, 7)
	if err != nil || isAdmin {
		t.Fatalf("IsAdmin after revoke = (%v, %v), want (false, nil)", isAdmin, err)
	}
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	phones := NewWhitelistRepository(db)

	if err := users.Delete(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete of unknown user: got %v, want ErrNotFound", err)
	}

	if err := phones.Add(ctx, 9161234567); err != nil {
		t.Fatalf("Add phone: %v", err)
	}
	if err := users.BindPhone(ctx, 1, 9161234567); err != nil {
		t.Fatalf("BindPhone: %v", err)
	}
	if err := users.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// The whitelist entry survives and is free again.
	entry, err := phones.Get(ctx, 9161234567)
	if err != nil {
		t.Fatalf("Get phone after delete: %v", err)
	}
	if entry.UserID != nil {
		t.Fatalf("phone still bound to user %d after deletion", *entry.UserID)
	}
}

func TestBindPhone(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	phones := NewWhitelistRepository(db)

	if err := users.BindPhone(ctx, 1, 9161234567); !errors.Is(err, ErrNotFound) {
		t.Fatalf("BindPhone of unlisted phone: got %v, want ErrNotFound", err)
	}

	if err := phones.Add(ctx, 9161234567); err != nil {
		t.Fatalf("Add phone: %v", err)
	}
	if err := users.BindPhone(ctx, 1, 9161234567); err != nil {
		t.Fatalf("BindPhone: %v", err)
	}

	entry, err := phones.Get(ctx, 9161234567)
	if err != nil {
		t.Fatalf("Get phone: %v", err)
	}
	if entry.UserID == nil || *entry.UserID != 1 {
		t.Fatalf("phone bound to %v, want user 1", entry.UserID)
	}

	// The same phone cannot be taken by a second account.
	if err := users.BindPhone(ctx, 2, 9161234567); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("BindPhone of taken phone: got %v, want ErrDuplicateKey", err)
	}

	// Rebinding the same phone to the same user is allowed.
	if err := users.BindPhone(ctx, 1, 9161234567); err != nil {
		t.Fatalf("BindPhone to same user: %v", err)
	}
}

func TestRebindPhoneReleasesPreviousHolder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	phones := NewWhitelistRepository(db)

	if err := phones.Add(ctx, 9161234567); err != nil {
		t.Fatalf("Add phone: %v", err)
	}
	if err := users.BindPhone(ctx, 1, 9161234567); err != nil {
		t.Fatalf("BindPhone: %v", err)
	}
	if err := users.RebindPhone(ctx, 2, 9161234567); err != nil {
		t.Fatalf("RebindPhone: %v", err)
	}

	entry, err := phones.Get(ctx, 9161234567)
	if err != nil {
		t.Fatalf("Get phone: %v", err)
	}
	if entry.UserID == nil || *entry.UserID != 2 {
		t.Fatalf("phone bound to %v, want user 2", entry.UserID)
	}

	previous, err := users.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if previous.PhoneID != nil {
		t.Fatalf("previous holder still bound to %d", *previous.PhoneID)
	}
}

func TestWhitelistAdd(t *testing.T) {
	ctx := context.Background()
	phones := NewWhitelistRepository(newTestDB(t))

	if err := phones.Add(ctx, 1234567890); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("Add of non-mobile number: got %v, want ErrInvalidPhone", err)
	}

	if err := phones.Add(ctx, 9161234567); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := phones.Add(ctx, 9161234567); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("second Add: got %v, want ErrDuplicateKey", err)
	}

	if _, err := phones.Get(ctx, 9999999998); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get of unknown phone: got %v, want ErrNotFound", err)
	}
}

func TestGroupTargetSelection(t *testing.T) {
	ctx := context.Background()
	groups := NewGroupRepository(newTestDB(t))

	if _, err := groups.Target(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Target with no groups: got %v, want ErrNotFound", err)
	}
	if err := groups.SetTarget(ctx, -100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetTarget of unknown group: got %v, want ErrNotFound", err)
	}

	if err := groups.Add(ctx, -100); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := groups.Add(ctx, -100); err != nil {
		t.Fatalf("re-Add: %v", err)
	}
	if err := groups.Add(ctx, -200); err != nil {
		t.Fatalf("Add second group: %v", err)
	}

	if err := groups.SetTarget(ctx, -100); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	target, err := groups.Target(ctx)
	if err != nil {
		t.Fatalf("Target: %v", err)
	}
	if target.ID != -100 {
		t.Fatalf("target = %d, want -100", target.ID)
	}

	// Retargeting clears the old flag, there is always at most one target.
	if err := groups.SetTarget(ctx, -200); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	target, err = groups.Target(ctx)
	if err != nil {
		t.Fatalf("Target after retargeting: %v", err)
	}
	if target.ID != -200 {
		t.Fatalf("target = %d, want -200", target.ID)
	}

	all, err := groups.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List returned %d groups, want 2", len(all))
	}

	if err := groups.Remove(ctx, -100); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	all, err = groups.List(ctx)
	if err != nil {
		t.Fatalf("List after removal: %v", err)
	}
	if len(all) != 1 || all[0].ID != -200 {
		t.Fatalf("unexpected groups after removal: %+v", all)
	}
}

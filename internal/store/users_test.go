package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rewearhq/rewear/internal/db"
	"github.com/rewearhq/rewear/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, database, "alice@rewear.test", "Alice", "hash", model.RoleUser, 100)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "alice@rewear.test" {
		t.Errorf("expected email, got %q", u.Email)
	}
	if u.Points != 100 {
		t.Errorf("expected starting balance 100, got %d", u.Points)
	}
	if u.Status != model.UserStatusActive {
		t.Errorf("expected active account, got %q", u.Status)
	}

	byEmail, err := GetUserByEmail(ctx, database, "alice@rewear.test")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Error("expected lookup by email to find the user")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice@rewear.test", "Alice", "hash", model.RoleUser, 0)
	_, err := CreateUser(ctx, database, "alice@rewear.test", "Other Alice", "hash", model.RoleUser, 0)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAdjustPoints(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alice@rewear.test", "Alice", "hash", model.RoleUser, 100)

	balance, err := AdjustPoints(ctx, database, u.ID, 50)
	if err != nil {
		t.Fatalf("AdjustPoints credit: %v", err)
	}
	if balance != 150 {
		t.Errorf("expected balance 150, got %d", balance)
	}

	balance, err = AdjustPoints(ctx, database, u.ID, -150)
	if err != nil {
		t.Fatalf("AdjustPoints debit: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected balance 0, got %d", balance)
	}
}

func TestAdjustPointsInsufficient(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alice@rewear.test", "Alice", "hash", model.RoleUser, 100)

	_, err := AdjustPoints(ctx, database, u.ID, -101)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	// Balance never goes negative, and a failed debit changes nothing.
	got, _ := GetUser(ctx, database, u.ID)
	if got.Points != 100 {
		t.Errorf("expected balance unchanged at 100, got %d", got.Points)
	}
}

func TestAdjustPointsMissingUser(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := AdjustPoints(context.Background(), database, 9999, 10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetUserPoints(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alice@rewear.test", "Alice", "hash", model.RoleUser, 100)

	if err := SetUserPoints(ctx, database, u.ID, 500); err != nil {
		t.Fatalf("SetUserPoints: %v", err)
	}
	got, _ := GetUser(ctx, database, u.ID)
	if got.Points != 500 {
		t.Errorf("expected overridden balance 500, got %d", got.Points)
	}

	if err := SetUserPoints(ctx, database, u.ID, -1); err == nil {
		t.Error("expected error for negative override")
	}
	if err := SetUserPoints(ctx, database, 9999, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetUserStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alice@rewear.test", "Alice", "hash", model.RoleUser, 100)

	if err := SetUserStatus(ctx, database, u.ID, model.UserStatusBanned); err != nil {
		t.Fatalf("SetUserStatus ban: %v", err)
	}
	got, _ := GetUser(ctx, database, u.ID)
	if got.Status != model.UserStatusBanned {
		t.Errorf("expected banned, got %q", got.Status)
	}

	if err := SetUserStatus(ctx, database, u.ID, model.UserStatusActive); err != nil {
		t.Fatalf("SetUserStatus activate: %v", err)
	}
	got, _ = GetUser(ctx, database, u.ID)
	if got.Status != model.UserStatusActive {
		t.Errorf("expected active, got %q", got.Status)
	}

	if err := SetUserStatus(ctx, database, u.ID, "suspended"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestListUsers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice@rewear.test", "Alice", "hash", model.RoleUser, 100)
	CreateUser(ctx, database, "bob@rewear.test", "Bob", "hash", model.RoleAdmin, 1000)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"usermgmt/internal/models"
	"usermgmt/internal/storage"
)

// TestUserStoreIntegration exercises the store against a live Postgres.
func TestUserStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := NewUserStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	username := fmt.Sprintf("storetest_%d", time.Now().UnixNano())

	created, err := store.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleUser,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	defer func() {
		_ = store.DeleteUser(ctx, created.ID)
	}()

	if created.ID == 0 || created.Username != username || created.Role != models.RoleUser {
		t.Fatalf("created user mismatch: %+v", created)
	}

	if _, err := store.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: "other-hash",
		Role:         models.RoleUser,
	}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create: want ErrAlreadyExists, got %v", err)
	}

	byID, err := store.FindByID(ctx, created.ID)
	if err != nil || byID.Username != username {
		t.Fatalf("find by id: %v (%+v)", err, byID)
	}
	if _, err := store.FindByUsername(ctx, username); err != nil {
		t.Fatalf("find by username: %v", err)
	}

	byID.PasswordHash = "updated-hash"
	updated, err := store.UpdateUser(ctx, byID)
	if err != nil || updated.PasswordHash != "updated-hash" {
		t.Fatalf("update user: %v (%+v)", err, updated)
	}

	listed, err := store.ListExcludingRole(ctx, models.RoleAdmin, username)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("list filter mismatch: %+v", listed)
	}

	if err := store.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := store.DeleteUser(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if _, err := store.FindByID(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("find after delete: want ErrNotFound, got %v", err)
	}
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}

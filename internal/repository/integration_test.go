package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/casefile/casefile/internal/migrations"
	"github.com/casefile/casefile/internal/model"
	"github.com/casefile/casefile/internal/repository"
	"github.com/casefile/casefile/internal/testutil"
)

// setupDB connects to the database named by TEST_DATABASE_URL, applies
// migrations, and hands back a clean repository. Tests are serialized with
// an advisory lock so parallel packages cannot interleave truncates.
func setupDB(t *testing.T) (*repository.Repository, context.Context) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	ctx := context.Background()

	if err := migrations.Run(ctx, databaseURL); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("failed to acquire test lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("failed to release test lock: %v", err)
		}
	})

	if err := testutil.TruncateAll(ctx, repo.Pool()); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return repo, ctx
}

func TestIntegration_UserUniqueness(t *testing.T) {
	repo, ctx := setupDB(t)

	user, err := repo.CreateUser(ctx, "alice", "$argon2id$fake")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected a generated id")
	}

	if _, err := repo.CreateUser(ctx, "alice", "$argon2id$other"); !errors.Is(err, repository.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	got, err := repo.GetUserByName(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByName: %v", err)
	}
	if got.ID != user.ID || got.PasswordHash != "$argon2id$fake" {
		t.Errorf("unexpected user row: %+v", got)
	}
}

func TestIntegration_OwnershipScoping(t *testing.T) {
	repo, ctx := setupDB(t)

	alice, err := repo.CreateUser(ctx, "alice", "h")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	bob, err := repo.CreateUser(ctx, "bob", "h")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	category, err := repo.CreateCategory(ctx, alice.ID, "clients")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	// Same name under a different owner is fine.
	if _, err := repo.CreateCategory(ctx, bob.ID, "clients"); err != nil {
		t.Fatalf("CreateCategory for second user: %v", err)
	}
	// Duplicate under the same owner is not.
	if _, err := repo.CreateCategory(ctx, alice.ID, "clients"); !errors.Is(err, repository.ErrCategoryExists) {
		t.Errorf("expected ErrCategoryExists, got %v", err)
	}

	// Bob cannot attach a person to Alice's category, list it, or delete it.
	if _, err := repo.CreatePerson(ctx, bob.ID, category.ID, "Dana"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("CreatePerson across owners: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.ListPeople(ctx, bob.ID, category.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ListPeople across owners: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteCategory(ctx, bob.ID, category.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("DeleteCategory across owners: expected ErrNotFound, got %v", err)
	}

	// The category is untouched for its owner.
	categories, err := repo.ListCategories(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}
}

func TestIntegration_CascadeDelete(t *testing.T) {
	repo, ctx := setupDB(t)

	alice, err := repo.CreateUser(ctx, "alice", "h")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	category, err := repo.CreateCategory(ctx, alice.ID, "clients")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	person, err := repo.CreatePerson(ctx, alice.ID, category.ID, "Dana")
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	file := &model.File{
		Name:        "notes.txt",
		Payload:     []byte("meeting notes"),
		ContentType: "text/plain",
		Kind:        model.KindDocument,
		Size:        13,
	}
	if _, err := repo.CreateFile(ctx, alice.ID, person.ID, file); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	if err := repo.DeleteCategory(ctx, alice.ID, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	for _, table := range []string{"files", "persons", "categories"} {
		var n int
		if err := repo.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("expected %s to be empty after cascade, found %d rows", table, n)
		}
	}
}

func TestIntegration_FilePayloadRoundTrip(t *testing.T) {
	repo, ctx := setupDB(t)

	alice, err := repo.CreateUser(ctx, "alice", "h")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	category, err := repo.CreateCategory(ctx, alice.ID, "clients")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	person, err := repo.CreatePerson(ctx, alice.ID, category.ID, "Dana")
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01}
	created, err := repo.CreateFile(ctx, alice.ID, person.ID, &model.File{
		Name:        "scan.png",
		Payload:     payload,
		ContentType: "image/png",
		Kind:        model.KindImage,
		Description: "intake scan",
		Size:        int64(len(payload)),
	})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	// Listing returns metadata without the payload.
	files, err := repo.ListFiles(ctx, alice.ID, person.ID)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Payload != nil {
		t.Fatalf("expected 1 metadata-only file, got %+v", files)
	}

	got, err := repo.GetFile(ctx, alice.ID, person.ID, created.ID)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if string(got.Payload) != string(payload) {
		t.Errorf("payload mismatch: got %v", got.Payload)
	}
	if got.Kind != model.KindImage || got.Description != "intake scan" {
		t.Errorf("unexpected file row: %+v", got)
	}
}

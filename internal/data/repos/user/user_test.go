package user

import (
	"context"
	"testing"

	"github.com/bridgeos/bridgeos/internal/data/repos/testutil"
	"github.com/bridgeos/bridgeos/internal/domain"
)

func TestUserRepo_Upsert_CreatesThenOverwrites(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	id := testutil.NextID()
	created, err := repo.Upsert(ctx, tx, &domain.User{UserID: id, DisplayName: "Ana", UILanguage: "es"})
	if err != nil {
		t.Fatalf("create upsert: %v", err)
	}
	if created.DisplayName != "Ana" {
		t.Fatalf("expected Ana, got %q", created.DisplayName)
	}

	updated, err := repo.Upsert(ctx, tx, &domain.User{UserID: id, DisplayName: "Ana Maria", UILanguage: "en"})
	if err != nil {
		t.Fatalf("update upsert: %v", err)
	}
	if updated.DisplayName != "Ana Maria" || updated.UILanguage != "en" {
		t.Fatalf("expected the second upsert to overwrite fields, got %+v", updated)
	}

	fetched, err := repo.GetByID(ctx, tx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if fetched.DisplayName != "Ana Maria" {
		t.Fatalf("expected persisted display name Ana Maria, got %q", fetched.DisplayName)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepo(db, testutil.Logger(t))

	_, err := repo.GetByID(ctx, tx, testutil.NextID())
	if err == nil {
		t.Fatal("expected an error for an unknown user id")
	}
}

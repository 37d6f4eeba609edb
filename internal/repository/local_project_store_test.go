package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"devforge_backend/internal/model"
	"devforge_backend/internal/util"

	"gorm.io/datatypes"
)

func newLocalStore(t *testing.T) *LocalProjectStore {
	t.Helper()
	return NewLocalProjectStore(filepath.Join(t.TempDir(), "data", "projects.json"))
}

func storedProject(title string) *model.Project {
	return &model.Project{
		Title:                  title,
		Description:            "desc",
		Objective:              "obj",
		InputFormat:            "STDIN",
		OutputFormat:           "STDOUT",
		EdgeCases:              datatypes.JSONSlice[string]{"empty input"},
		FunctionalRequirements: datatypes.JSONSlice[string]{"parse"},
		TestCases:              datatypes.JSONSlice[model.TestCase]{{Name: "basic"}},
	}
}

func TestLocalStore_SaveAssignsIdentity(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, storedProject("First"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("Save() left ID empty")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("Save() left CreatedAt zero")
	}

	got, err := store.Get(ctx, saved.ID, 0)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "First" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.TestCases) != 1 || got.TestCases[0].Name != "basic" {
		t.Errorf("TestCases did not round-trip: %+v", got.TestCases)
	}
}

func TestLocalStore_ResaveKeepsIdentity(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, storedProject("Original"))
	if err != nil {
		t.Fatal(err)
	}
	id, created := saved.ID, saved.CreatedAt

	saved.Title = "Renamed"
	resaved, err := store.Save(ctx, saved)
	if err != nil {
		t.Fatal(err)
	}
	if resaved.ID != id {
		t.Errorf("ID changed on re-save: %q -> %q", id, resaved.ID)
	}
	if !resaved.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on re-save: %v -> %v", created, resaved.CreatedAt)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("List() = %d projects; re-save must replace, not append", len(all))
	}
	if all[0].Title != "Renamed" {
		t.Errorf("Title = %q; want the updated value", all[0].Title)
	}
}

func TestLocalStore_ListNewestFirst(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	older := storedProject("Older")
	older.CreatedAt = time.Now().Add(-time.Hour)
	if _, err := store.Save(ctx, older); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, storedProject("Newer")); err != nil {
		t.Fatal(err)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("List() = %d projects; want 2", len(all))
	}
	if all[0].Title != "Newer" || all[1].Title != "Older" {
		t.Errorf("order = [%q, %q]; want newest first", all[0].Title, all[1].Title)
	}
}

func TestLocalStore_GetMissing(t *testing.T) {
	store := newLocalStore(t)

	_, err := store.Get(context.Background(), "missing", 0)
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("error = %v; want ErrNotFound", err)
	}
}

func TestLocalStore_RemoveMissingIsNoop(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, storedProject("Keep"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Remove(ctx, "already-gone", 0); err != nil {
		t.Fatalf("Remove() of a vanished id = %v; want nil", err)
	}

	if err := store.Remove(ctx, saved.ID, 0); err != nil {
		t.Fatal(err)
	}
	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("List() = %d projects after remove; want 0", len(all))
	}
}

func TestLocalStore_EmptyFileDir(t *testing.T) {
	// The store must behave before its file or directory exists.
	path := filepath.Join(t.TempDir(), "nested", "projects.json")
	store := NewLocalProjectStore(path)
	ctx := context.Background()

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() on absent file = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("List() = %d; want 0", len(all))
	}

	if _, err := store.Save(ctx, storedProject("First")); err != nil {
		t.Fatalf("Save() should create parent directories, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store file not written: %v", err)
	}
}

package service

import (
	"context"
	"testing"

	"github.com/cagecms/cage/internal/models"
)

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)
	actor := env.addUser(t, "writer01", "password123", models.PermCreateCategory)

	category, err := env.services.Category.Create(context.Background(), actor, "golang", "  Golang  ", EventMeta{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if category.Name != "Golang" {
		t.Errorf("name not trimmed: %q", category.Name)
	}
	if category.CreateBy == nil || *category.CreateBy != "writer01" {
		t.Error("creator not recorded")
	}
}

func TestCreateCategoryBadID(t *testing.T) {
	env := newTestEnv(t)
	actor := env.addUser(t, "writer01", "password123", models.PermCreateCategory)

	_, err := env.services.Category.Create(context.Background(), actor, "Not A Slug", "Name", EventMeta{})
	if field := fieldOf(t, err); field != "id" {
		t.Errorf("error field = %q, want id", field)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	env := newTestEnv(t)
	actor := env.addUser(t, "writer01", "password123", models.PermCreateCategory)
	ctx := context.Background()

	if _, err := env.services.Category.Create(ctx, actor, "golang", "Golang", EventMeta{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := env.services.Category.Create(ctx, actor, "golang", "Other", EventMeta{})
	if field := fieldOf(t, err); field != "id" {
		t.Errorf("error field = %q, want id", field)
	}

	_, err = env.services.Category.Create(ctx, actor, "other", "Golang", EventMeta{})
	if field := fieldOf(t, err); field != "name" {
		t.Errorf("error field = %q, want name", field)
	}
}

func TestRenameCategoryOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "writer01", "password123", models.PermEditCategory)
	other := env.addUser(t, "writer02", "password123", models.PermEditCategory)
	ctx := context.Background()

	if _, err := env.services.Category.Create(ctx, owner, "golang", "Golang", EventMeta{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := env.services.Category.Rename(ctx, other, "golang", "Stolen", EventMeta{})
	if field := fieldOf(t, err); field != "permission" {
		t.Errorf("error field = %q, want permission", field)
	}

	other.Permission |= models.PermEditOthersCategory
	category, err := env.services.Category.Rename(ctx, other, "golang", "Renamed", EventMeta{})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if category.Name != "Renamed" {
		t.Errorf("name = %q", category.Name)
	}
}

func TestDeleteCategoryOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "writer01", "password123", models.PermEditCategory)
	other := env.addUser(t, "writer02", "password123", models.PermEditCategory)
	ctx := context.Background()

	if _, err := env.services.Category.Create(ctx, owner, "golang", "Golang", EventMeta{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := env.services.Category.Delete(ctx, other, "golang", EventMeta{}); err == nil {
		t.Error("non-owner delete should fail")
	}
	if err := env.services.Category.Delete(ctx, owner, "golang", EventMeta{}); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := env.services.Category.Get(ctx, "golang"); err == nil {
		t.Error("category should be gone")
	}
}

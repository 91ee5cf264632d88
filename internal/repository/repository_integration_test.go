//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ticklist/ticklist/internal/repository"
	"github.com/ticklist/ticklist/internal/testutil"
)

func setupRepo(t *testing.T) (*repository.Repository, context.Context) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect to database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo, ctx
}

func TestCreateUser_AndLookup(t *testing.T) {
	repo, ctx := setupRepo(t)

	user, err := repo.CreateUser(ctx, "alice", "$argon2id$hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected generated user ID")
	}

	byName, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.ID != user.ID || byName.PasswordHash != "$argon2id$hash" {
		t.Errorf("unexpected user: %+v", byName)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("unexpected username: %s", byID.Username)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo, ctx := setupRepo(t)

	if _, err := repo.CreateUser(ctx, "alice", "h1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err := repo.CreateUser(ctx, "alice", "h2")
	if !errors.Is(err, repository.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	repo, ctx := setupRepo(t)

	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetUserByID(ctx, 9999); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTodoLifecycle(t *testing.T) {
	repo, ctx := setupRepo(t)

	owner, err := repo.CreateUser(ctx, "alice", "h")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	todo, err := repo.CreateTodo(ctx, owner.ID, "buy milk")
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if todo.Completed {
		t.Error("new todo should not be completed")
	}

	list, err := repo.ListTodosByUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListTodosByUser failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "buy milk" {
		t.Errorf("unexpected list: %+v", list)
	}

	done := true
	updated, err := repo.UpdateTodo(ctx, todo.ID, owner.ID, nil, &done)
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	if !updated.Completed || updated.Name != "buy milk" {
		t.Errorf("partial update changed the wrong fields: %+v", updated)
	}

	if err := repo.DeleteTodo(ctx, todo.ID, owner.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	if err := repo.DeleteTodo(ctx, todo.ID, owner.ID); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("expected ErrTodoNotFound on second delete, got %v", err)
	}
}

func TestTodo_ScopedToOwner(t *testing.T) {
	repo, ctx := setupRepo(t)

	alice, err := repo.CreateUser(ctx, "alice", "h")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	bob, err := repo.CreateUser(ctx, "bob", "h")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	todo, err := repo.CreateTodo(ctx, alice.ID, "secret")
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	// Bob must not be able to see, mutate, or delete alice's todo.
	if _, err := repo.GetTodoForUser(ctx, todo.ID, bob.ID); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("expected ErrTodoNotFound for foreign get, got %v", err)
	}
	name := "hijacked"
	if _, err := repo.UpdateTodo(ctx, todo.ID, bob.ID, &name, nil); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("expected ErrTodoNotFound for foreign update, got %v", err)
	}
	if err := repo.DeleteTodo(ctx, todo.ID, bob.ID); !errors.Is(err, repository.ErrTodoNotFound) {
		t.Errorf("expected ErrTodoNotFound for foreign delete, got %v", err)
	}
}

func TestDeleteUser_CascadesTodos(t *testing.T) {
	repo, ctx := setupRepo(t)

	user, err := repo.CreateUser(ctx, "alice", "h")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := repo.CreateTodo(ctx, user.ID, "orphan-to-be"); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	list, err := repo.ListTodosByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTodosByUser failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected todos to cascade on user delete, got %d rows", len(list))
	}
}

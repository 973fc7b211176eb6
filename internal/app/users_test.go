package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fundme/ledger-service/internal/domain"
)

func TestUserAdminOperations(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	created, _, err := svc.Signup(context.Background(), domain.SignupRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	user, err := svc.GetUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}

	if err := svc.DeleteUser(context.Background(), created.ID); err != nil {
		t.Fatalf("delete user failed: %v", err)
	}
	if _, err := svc.GetUser(context.Background(), created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestGetUserUnknown(t *testing.T) {
	svc := newTestService(newFakeRepo())
	if _, err := svc.GetUser(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

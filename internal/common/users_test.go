package common

import (
	"context"
	"errors"
	"testing"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	"go.uber.org/zap"
)

type fakeFinder struct {
	users []models.User
}

func (f fakeFinder) FindUser(_ context.Context, identifier string) (*models.User, error) {
	for _, u := range f.users {
		if u.Id == identifier || u.Username == identifier || u.Email == identifier {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f fakeFinder) GetUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}

func TestInitializeUsers(t *testing.T) {
	finder := fakeFinder{users: []models.User{
		{Id: "u1", Username: "alice", Email: "alice@example.com", Rating: 5},
		{Id: "u2", Username: "bob"},
	}}
	ctx := context.Background()
	logger := zap.NewNop()

	all, err := InitializeUsers(ctx, finder, "", logger)
	if err != nil {
		t.Fatalf("InitializeUsers failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}

	one, err := InitializeUsers(ctx, finder, "alice@example.com", logger)
	if err != nil {
		t.Fatalf("InitializeUsers with filter failed: %v", err)
	}
	if len(one) != 1 || one[0].Id != "u1" || one[0].Rating != 5 {
		t.Errorf("unexpected filtered result: %+v", one)
	}

	_, err = InitializeUsers(ctx, finder, "nobody", logger)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

package database

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestRegisterUser(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, store.RegisterUserParams{
		Username:   "alice",
		Email:      "alice@example.com",
		TelegramId: 4242,
		Premium:    true,
	})
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" || user.TelegramId != 4242 || !user.Premium {
		t.Errorf("Unexpected user: %+v", user)
	}
	if !user.Balance.IsZero() || user.Rating != 0 {
		t.Errorf("Expected zero balance and rating, got %s and %d", user.Balance.String(), user.Rating)
	}

	if _, err := s.RegisterUser(ctx, store.RegisterUserParams{Username: "alice"}); !errors.Is(err, store.ErrDuplicateReference) {
		t.Errorf("Expected ErrDuplicateReference, got %v", err)
	}
	if _, err := s.RegisterUser(ctx, store.RegisterUserParams{Username: "   "}); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	// Users without email or telegram id must not collide on NULL.
	if _, err := s.RegisterUser(ctx, store.RegisterUserParams{Username: "bob"}); err != nil {
		t.Errorf("RegisterUser(bob) failed: %v", err)
	}
	if _, err := s.RegisterUser(ctx, store.RegisterUserParams{Username: "carol"}); err != nil {
		t.Errorf("RegisterUser(carol) failed: %v", err)
	}

	users, err := s.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("Expected 3 users, got %d", len(users))
	}
}

func TestRegisterUserGrantsInitialBalance(t *testing.T) {
	ledger := testLedgerConfig()
	ledger.InitialBalance = decimal.NewFromInt(25)
	s := setupTestDbWithLedger(t, ledger)
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, store.RegisterUserParams{Username: "newbie"})
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if !user.Balance.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected initial balance 25, got %s", user.Balance.String())
	}

	history, err := s.GetTransactionHistory(ctx, user.Id, 10, 0)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].Type != models.TransactionDeposit {
		t.Errorf("Expected a single deposit row, got %+v", history)
	}
	if err := s.ReconcileUserBalance(ctx, user.Id); err != nil {
		t.Errorf("ReconcileUserBalance failed: %v", err)
	}
}

func TestFindUserStrategies(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, store.RegisterUserParams{
		Username:   "dana",
		Email:      "dana@example.com",
		TelegramId: 987654,
	})
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	identifiers := []string{user.Id, strconv.FormatInt(user.TelegramId, 10), "dana", "dana@example.com", "  dana  "}
	for _, identifier := range identifiers {
		found, err := s.FindUser(ctx, identifier)
		if err != nil {
			t.Errorf("FindUser(%q) failed: %v", identifier, err)
			continue
		}
		if found.Id != user.Id {
			t.Errorf("FindUser(%q) returned %s, want %s", identifier, found.Id, user.Id)
		}
	}

	if _, err := s.FindUser(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := s.FindUser(ctx, ""); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.GetUserById(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound from GetUserById, got %v", err)
	}
}

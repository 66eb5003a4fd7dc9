package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestInsufficientFundsErrorUnwraps(t *testing.T) {
	var err error = &InsufficientFundsError{
		UserId:         "user1",
		CurrentBalance: decimal.NewFromInt(40),
		RequiredAmount: decimal.NewFromInt(100),
	}

	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected errors.Is(err, ErrInsufficientFunds)")
	}

	var funds *InsufficientFundsError
	if !errors.As(err, &funds) {
		t.Fatalf("expected errors.As to extract InsufficientFundsError")
	}
	if !funds.RequiredAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected required 100, got %s", funds.RequiredAmount.String())
	}
	if !strings.Contains(err.Error(), "has 40, needs 100") {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	all := []error{ErrNotFound, ErrForbidden, ErrInsufficientFunds, ErrInvalidAmount,
		ErrInvalidInput, ErrAlreadyTerminal, ErrConcurrentModification, ErrDuplicateReference}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}

	var _ StakeStore
}

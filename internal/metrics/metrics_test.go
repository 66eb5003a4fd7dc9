package metrics

import (
	"errors"
	"fmt"
	"testing"

	"challenge-stake-go/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("wrap: %w", store.ErrNotFound), "not_found"},
		{store.ErrForbidden, "forbidden"},
		{&store.InsufficientFundsError{UserId: "u"}, "insufficient_funds"},
		{store.ErrInvalidAmount, "invalid_amount"},
		{store.ErrInvalidInput, "invalid_input"},
		{store.ErrAlreadyTerminal, "already_terminal"},
		{store.ErrConcurrentModification, "conflict"},
		{store.ErrDuplicateReference, "duplicate"},
		{errors.New("disk full"), "error"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestObserveCountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", "forbidden"))

	Observe("test_op", 0.01, store.ErrForbidden)
	Observe("test_op", 0.02, store.ErrForbidden)

	after := testutil.ToFloat64(OperationsTotal.WithLabelValues("test_op", "forbidden"))
	if after-before != 2 {
		t.Errorf("Expected counter to grow by 2, got %v", after-before)
	}
}

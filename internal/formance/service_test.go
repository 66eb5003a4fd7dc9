package formance

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"challenge-stake-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

func TestFormanceAsset(t *testing.T) {
	tests := []struct {
		currency string
		want     string
	}{
		{"USD", "USD/2"},
		{"JPY", "JPY/0"},
		{"USDC", "USDC/6"},
		{"XYZ", "XYZ/2"}, // default precision
	}
	for _, tt := range tests {
		if got := formanceAsset(tt.currency); got != tt.want {
			t.Errorf("formanceAsset(%q) = %q, want %q", tt.currency, got, tt.want)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"100", "USD", "10000"},
		{"12.34", "USD", "1234"},
		{"0.01", "USD", "1"},
		{"1500", "JPY", "1500"},
		{"1.5", "USDC", "1500000"},
	}
	for _, tt := range tests {
		if got := minorUnits(decimal.RequireFromString(tt.amount), tt.currency); got != tt.want {
			t.Errorf("minorUnits(%s, %s) = %s, want %s", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFromMinorUnits(t *testing.T) {
	result := fromMinorUnits(big.NewInt(9500), "USD")
	if !result.Equal(decimal.NewFromInt(95)) {
		t.Errorf("expected 95, got %s", result.String())
	}

	// nil should return zero
	result = fromMinorUnits(nil, "USD")
	if !result.IsZero() {
		t.Errorf("expected 0, got %s", result.String())
	}
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"USD/2": {Input: big.NewInt(50000), Output: big.NewInt(10000)},
		"EUR/2": {Input: big.NewInt(1), Output: big.NewInt(1), Balance: big.NewInt(7)},
	}

	if got := volumeBalance(vols, "USD/2"); got == nil || got.Int64() != 40000 {
		t.Errorf("USD/2 balance = %v, want 40000", got)
	}
	if got := volumeBalance(vols, "EUR/2"); got == nil || got.Int64() != 7 {
		t.Errorf("EUR/2 balance = %v, want explicit balance 7", got)
	}
	if got := volumeBalance(vols, "GBP/2"); got != nil {
		t.Errorf("missing asset should be nil, got %v", got)
	}
}

func TestIsConflictError(t *testing.T) {
	// nil error should not be a conflict
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
	if isConflictError(errors.New("boom")) {
		t.Error("plain error should not be a conflict error")
	}
	conflict := &sdkerrors.V2ErrorResponse{ErrorCode: shared.V2ErrorsEnumConflict}
	if !isConflictError(conflict) {
		t.Error("CONFLICT response should be a conflict error")
	}
	if isNotFoundError(conflict) {
		t.Error("CONFLICT response should not be a not-found error")
	}
}

func TestNewServiceValidatesConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewService(ctx, models.FormanceConfig{StackURL: "http://localhost"}, "USD"); err == nil {
		t.Error("expected error for missing credentials")
	}
	cfg := models.FormanceConfig{StackURL: "http://localhost", ClientID: "id", ClientSecret: "secret"}
	if _, err := NewService(ctx, cfg, "  "); err == nil {
		t.Error("expected error for missing currency")
	}
}

func TestMirrorTransactionRejectsUnknownType(t *testing.T) {
	s := &Service{ledger: defaultLedgerName, currency: "USD"}
	_, err := s.MirrorTransaction(context.Background(), models.Transaction{
		Id:     "tx-1",
		Type:   models.TransactionType("bogus"),
		Amount: decimal.NewFromInt(1),
	})
	if err == nil {
		t.Fatal("expected error for unmapped transaction type")
	}
}

package rules

import (
	"testing"

	"challenge-stake-go/internal/models"
)

func TestPosting(t *testing.T) {
	tests := []struct {
		txType      models.TransactionType
		source      string
		destination string
	}{
		{models.TransactionDeposit, "world", "users:u1"},
		{models.TransactionStake, "users:u1", "escrow:challenges:c1"},
		{models.TransactionRefund, "escrow:challenges:c1", "users:u1"},
		{models.TransactionCharity, "escrow:challenges:c1", "charity"},
		{models.TransactionPlatformFee, "escrow:challenges:c1", "platform:fees"},
		{models.TransactionDonation, "users:u1", "donations:challenges:c1"},
	}
	for _, tt := range tests {
		src, dst, err := Posting(models.Transaction{UserId: "u1", ChallengeId: "c1", Type: tt.txType})
		if err != nil {
			t.Fatalf("Posting(%s) failed: %v", tt.txType, err)
		}
		if src != tt.source || dst != tt.destination {
			t.Errorf("Posting(%s) = (%s, %s), want (%s, %s)", tt.txType, src, dst, tt.source, tt.destination)
		}
	}

	if _, _, err := Posting(models.Transaction{Type: "bogus"}); err == nil {
		t.Errorf("Expected error for unknown transaction type")
	}
}

func TestUserEntrySign(t *testing.T) {
	tests := []struct {
		txType models.TransactionType
		sign   int
		ok     bool
	}{
		{models.TransactionDeposit, 1, true},
		{models.TransactionRefund, 1, true},
		{models.TransactionStake, -1, true},
		{models.TransactionDonation, -1, true},
		{models.TransactionCharity, 0, false},
		{models.TransactionPlatformFee, 0, false},
		{models.TransactionType("bonus"), 0, false},
	}
	for _, tt := range tests {
		sign, ok := UserEntrySign(tt.txType)
		if sign != tt.sign || ok != tt.ok {
			t.Errorf("UserEntrySign(%s) = (%d, %v), want (%d, %v)", tt.txType, sign, ok, tt.sign, tt.ok)
		}
	}
}

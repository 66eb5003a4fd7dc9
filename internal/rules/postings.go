package rules

import (
	"fmt"

	"challenge-stake-go/internal/models"
)

const (
	LedgerWorld       = "world"
	LedgerCharity     = models.AccountCharity
	LedgerPlatformFee = models.AccountPlatformFee
)

func UserLedgerAccount(userId string) string {
	return "users:" + userId
}

func EscrowLedgerAccount(challengeId string) string {
	return "escrow:challenges:" + challengeId
}

func DonationsLedgerAccount(challengeId string) string {
	return "donations:challenges:" + challengeId
}

// Posting returns the source and destination ledger accounts for a transaction.
// The same table drives the local journal and the Formance mirror.
func Posting(tx models.Transaction) (source, destination string, err error) {
	switch tx.Type {
	case models.TransactionDeposit:
		return LedgerWorld, UserLedgerAccount(tx.UserId), nil
	case models.TransactionStake:
		return UserLedgerAccount(tx.UserId), EscrowLedgerAccount(tx.ChallengeId), nil
	case models.TransactionRefund:
		return EscrowLedgerAccount(tx.ChallengeId), UserLedgerAccount(tx.UserId), nil
	case models.TransactionCharity:
		return EscrowLedgerAccount(tx.ChallengeId), LedgerCharity, nil
	case models.TransactionPlatformFee:
		return EscrowLedgerAccount(tx.ChallengeId), LedgerPlatformFee, nil
	case models.TransactionDonation:
		return UserLedgerAccount(tx.UserId), DonationsLedgerAccount(tx.ChallengeId), nil
	}
	return "", "", fmt.Errorf("no posting defined for transaction type %q", tx.Type)
}

// UserEntrySign reports the direction a transaction type moves a user's
// balance: -1 for debits, +1 for credits. Sink types never touch user rows.
func UserEntrySign(t models.TransactionType) (int, bool) {
	switch t {
	case models.TransactionStake, models.TransactionDonation:
		return -1, true
	case models.TransactionDeposit, models.TransactionRefund:
		return 1, true
	}
	return 0, false
}

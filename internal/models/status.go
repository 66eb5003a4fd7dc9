package models

import "fmt"

// ChallengeStatus is the lifecycle state of a challenge
type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
)

func ParseChallengeStatus(s string) (ChallengeStatus, error) {
	switch ChallengeStatus(s) {
	case ChallengeActive, ChallengeCompleted, ChallengeFailed:
		return ChallengeStatus(s), nil
	}
	return "", fmt.Errorf("unknown challenge status %q", s)
}

// IsTerminal reports whether no further transition is allowed
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeCompleted || s == ChallengeFailed
}

// VerificationStatus is the moderator-set state of a progress update
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationFake     VerificationStatus = "fake"
)

// ParseVerificationStatus treats an empty value as pending.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch VerificationStatus(s) {
	case "":
		return VerificationPending, nil
	case VerificationPending, VerificationVerified, VerificationFake:
		return VerificationStatus(s), nil
	}
	return "", fmt.Errorf("unknown verification status %q", s)
}

// VoteType is the choice a voter makes on a progress update
type VoteType string

const (
	VoteVerify VoteType = "verify"
	VoteFake   VoteType = "fake"
)

func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(s) {
	case VoteVerify, VoteFake:
		return VoteType(s), nil
	}
	return "", fmt.Errorf("unknown vote type %q", s)
}

// TransactionType classifies a ledger row
type TransactionType string

const (
	TransactionStake       TransactionType = "stake"
	TransactionRefund      TransactionType = "refund"
	TransactionCharity     TransactionType = "charity"
	TransactionPlatformFee TransactionType = "platform_fee"
	TransactionDeposit     TransactionType = "deposit"
	TransactionDonation    TransactionType = "donation"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionStake, TransactionRefund, TransactionCharity,
		TransactionPlatformFee, TransactionDeposit, TransactionDonation:
		return TransactionType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

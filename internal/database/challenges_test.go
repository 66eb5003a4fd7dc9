package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestStakeThenCompleteRestoresBalance(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	user := createFundedUser(t, s, "alice", "500")

	c := createChallenge(t, s, user.Id, "100")
	if c.Status != models.ChallengeActive {
		t.Errorf("Expected active challenge, got %s", c.Status)
	}
	assertBalance(t, s, user.Id, "400")

	result, err := s.CompleteChallenge(ctx, c.Id, user.Id)
	if err != nil {
		t.Fatalf("CompleteChallenge failed: %v", err)
	}
	if !result.Success || result.Status != models.ChallengeCompleted || !result.Refunded.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Unexpected settlement result: %+v", result)
	}
	assertBalance(t, s, user.Id, "500")

	txs, err := s.GetChallengeTransactions(ctx, c.Id)
	if err != nil {
		t.Fatalf("GetChallengeTransactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("Expected exactly 2 transactions, got %d", len(txs))
	}
	if txs[0].Type != models.TransactionStake || !txs[0].Amount.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("Expected stake of -100, got %s %s", txs[0].Type, txs[0].Amount.String())
	}
	if txs[1].Type != models.TransactionRefund || !txs[1].Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected refund of +100, got %s %s", txs[1].Type, txs[1].Amount.String())
	}

	stored, err := s.GetChallenge(ctx, c.Id)
	if err != nil {
		t.Fatalf("GetChallenge failed: %v", err)
	}
	if stored.Status != models.ChallengeCompleted || stored.CompletedAt == nil {
		t.Errorf("Expected completed challenge with completedAt, got %s %v", stored.Status, stored.CompletedAt)
	}

	if err := s.ReconcileUserBalance(ctx, user.Id); err != nil {
		t.Errorf("ReconcileUserBalance failed: %v", err)
	}
}

func TestSettlementIsOneWay(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	user := createFundedUser(t, s, "bob", "500")
	c := createChallenge(t, s, user.Id, "100")

	if _, err := s.CompleteChallenge(ctx, c.Id, user.Id); err != nil {
		t.Fatalf("CompleteChallenge failed: %v", err)
	}

	if _, err := s.CompleteChallenge(ctx, c.Id, user.Id); !errors.Is(err, store.ErrAlreadyTerminal) {
		t.Errorf("Expected ErrAlreadyTerminal on second complete, got %v", err)
	}
	if _, err := s.FailChallenge(ctx, c.Id, user.Id); !errors.Is(err, store.ErrAlreadyTerminal) {
		t.Errorf("Expected ErrAlreadyTerminal on fail after complete, got %v", err)
	}
	assertBalance(t, s, user.Id, "500")

	txs, err := s.GetChallengeTransactions(ctx, c.Id)
	if err != nil {
		t.Fatalf("GetChallengeTransactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("Expected no extra rows after rejected transitions, got %d", len(txs))
	}
}

func TestSettlementChecksOwnership(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	owner := createFundedUser(t, s, "owner", "100")
	other := createFundedUser(t, s, "other", "0")
	c := createChallenge(t, s, owner.Id, "10")

	if _, err := s.CompleteChallenge(ctx, c.Id, other.Id); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if _, err := s.FailChallenge(ctx, c.Id, other.Id); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if _, err := s.CompleteChallenge(ctx, "missing", owner.Id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFailSplitsStakeBetweenSinks(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	user := createFundedUser(t, s, "carol", "500")
	c := createChallenge(t, s, user.Id, "100")

	result, err := s.FailChallenge(ctx, c.Id, user.Id)
	if err != nil {
		t.Fatalf("FailChallenge failed: %v", err)
	}
	if !result.CharityAmount.Equal(decimal.NewFromInt(95)) || !result.PlatformFee.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected 95/5 split, got %s/%s", result.CharityAmount.String(), result.PlatformFee.String())
	}
	assertBalance(t, s, user.Id, "400")

	charity, err := s.GetSystemAccount(ctx, models.AccountCharity)
	if err != nil {
		t.Fatalf("GetSystemAccount failed: %v", err)
	}
	fees, err := s.GetSystemAccount(ctx, models.AccountPlatformFee)
	if err != nil {
		t.Fatalf("GetSystemAccount failed: %v", err)
	}
	if !charity.Balance.Equal(decimal.NewFromInt(95)) || !fees.Balance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected sink balances charity=%s fees=%s", charity.Balance.String(), fees.Balance.String())
	}

	txs, err := s.GetChallengeTransactions(ctx, c.Id)
	if err != nil {
		t.Fatalf("GetChallengeTransactions failed: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Expected stake, charity and fee rows, got %d", len(txs))
	}

	// Escrow nets to zero: stake out of the user equals what the sinks received.
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	if !total.IsZero() {
		t.Errorf("Expected challenge rows to net to 0, got %s", total.String())
	}

	for _, account := range []string{models.AccountCharity, models.AccountPlatformFee} {
		if err := s.ReconcileSystemAccount(ctx, account); err != nil {
			t.Errorf("ReconcileSystemAccount(%s) failed: %v", account, err)
		}
	}
	if err := s.ReconcileUserBalance(ctx, user.Id); err != nil {
		t.Errorf("ReconcileUserBalance failed: %v", err)
	}
}

func TestStakeRejections(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	user := createFundedUser(t, s, "dave", "50")

	_, _, err := s.Stake(ctx, store.StakeParams{
		UserId:      user.Id,
		Title:       "Too rich",
		StakeAmount: decimal.NewFromInt(100),
		Deadline:    time.Now().Add(time.Hour),
	})
	var fundsErr *store.InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		t.Fatalf("Expected InsufficientFundsError, got %v", err)
	}
	if !fundsErr.CurrentBalance.Equal(decimal.NewFromInt(50)) || !fundsErr.RequiredAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Unexpected error details: %+v", fundsErr)
	}

	challenges, err := s.GetUserChallenges(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserChallenges failed: %v", err)
	}
	if len(challenges) != 0 {
		t.Errorf("Expected no challenge row after rejected stake, got %d", len(challenges))
	}

	tests := []struct {
		name   string
		params store.StakeParams
		want   error
	}{
		{"zero stake", store.StakeParams{UserId: user.Id, Title: "x", StakeAmount: decimal.Zero, Deadline: time.Now().Add(time.Hour)}, store.ErrInvalidAmount},
		{"empty title", store.StakeParams{UserId: user.Id, Title: "  ", StakeAmount: decimal.NewFromInt(1), Deadline: time.Now().Add(time.Hour)}, store.ErrInvalidInput},
		{"past deadline", store.StakeParams{UserId: user.Id, Title: "x", StakeAmount: decimal.NewFromInt(1), Deadline: time.Now().Add(-time.Hour)}, store.ErrInvalidInput},
		{"unknown user", store.StakeParams{UserId: "ghost", Title: "x", StakeAmount: decimal.NewFromInt(1), Deadline: time.Now().Add(time.Hour)}, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Stake(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
	assertBalance(t, s, user.Id, "50")
}

func TestExpireOverdueChallenge(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	user := createFundedUser(t, s, "erin", "200")
	c := createChallenge(t, s, user.Id, "20")

	if _, err := s.ExpireChallenge(ctx, c.Id, time.Now()); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput before deadline, got %v", err)
	}

	later := time.Now().Add(2 * time.Hour)
	overdue, err := s.ListOverdueChallenges(ctx, later, 10)
	if err != nil {
		t.Fatalf("ListOverdueChallenges failed: %v", err)
	}
	if len(overdue) != 1 || overdue[0].Id != c.Id {
		t.Fatalf("Expected the challenge to be overdue, got %+v", overdue)
	}

	result, err := s.ExpireChallenge(ctx, c.Id, later)
	if err != nil {
		t.Fatalf("ExpireChallenge failed: %v", err)
	}
	if result.Status != models.ChallengeFailed {
		t.Errorf("Expected failed status, got %s", result.Status)
	}

	overdue, err = s.ListOverdueChallenges(ctx, later, 10)
	if err != nil {
		t.Fatalf("ListOverdueChallenges failed: %v", err)
	}
	if len(overdue) != 0 {
		t.Errorf("Expected no overdue challenges after expiry, got %d", len(overdue))
	}

	if _, err := s.ExpireChallenge(ctx, c.Id, later); !errors.Is(err, store.ErrAlreadyTerminal) {
		t.Errorf("Expected ErrAlreadyTerminal on second expiry, got %v", err)
	}
}

func TestDeleteChallengeCascade(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	owner := createFundedUser(t, s, "owner", "100")
	voter := createFundedUser(t, s, "voter", "30")
	c := createChallenge(t, s, owner.Id, "60")

	report, err := s.AddProgress(ctx, store.ProgressParams{ChallengeId: c.Id, UserId: owner.Id, Content: "day one"})
	if err != nil {
		t.Fatalf("AddProgress failed: %v", err)
	}
	if _, err := s.CastVote(ctx, store.VoteParams{ReportId: report.Id, UserId: voter.Id, VoteType: models.VoteVerify}); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if _, err := s.SetVerificationStatus(ctx, report.Id, models.VerificationVerified); err != nil {
		t.Fatalf("SetVerificationStatus failed: %v", err)
	}
	if _, err := s.Donate(ctx, store.DonationParams{DonorId: voter.Id, ChallengeId: c.Id, ReportId: report.Id, Amount: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("Donate failed: %v", err)
	}
	assertRating(t, s, owner.Id, 5)

	if err := s.DeleteChallengeCascade(ctx, c.Id); err != nil {
		t.Fatalf("DeleteChallengeCascade failed: %v", err)
	}

	if _, err := s.GetChallenge(ctx, c.Id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected challenge to be gone, got %v", err)
	}
	if _, err := s.GetReport(ctx, report.Id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected report to be gone, got %v", err)
	}
	votes, err := s.GetReportVotes(ctx, report.Id)
	if err != nil || len(votes) != 0 {
		t.Errorf("Expected votes to be gone, got %d (%v)", len(votes), err)
	}
	donations, err := s.GetChallengeDonations(ctx, c.Id)
	if err != nil || len(donations) != 0 {
		t.Errorf("Expected donations to be gone, got %d (%v)", len(donations), err)
	}

	assertRating(t, s, owner.Id, 0)
	assertBalance(t, s, owner.Id, "100")
	assertBalance(t, s, voter.Id, "20")

	txs, err := s.GetChallengeTransactions(ctx, c.Id)
	if err != nil {
		t.Fatalf("GetChallengeTransactions failed: %v", err)
	}
	if len(txs) != 3 {
		t.Errorf("Expected stake, donation and refund rows to survive, got %d", len(txs))
	}
}

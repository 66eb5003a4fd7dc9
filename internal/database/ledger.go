package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/rules"
	"challenge-stake-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Types callers may post directly. Stakes, refunds and sink credits only
// happen inside settlement.
var (
	publicDebitTypes  = map[models.TransactionType]bool{models.TransactionDonation: true}
	publicCreditTypes = map[models.TransactionType]bool{models.TransactionDeposit: true}
)

// Debit removes funds from a user's spendable balance. Only donation debits
// against an existing challenge are accepted.
func (s *Service) Debit(ctx context.Context, params store.LedgerParams) (*models.Transaction, error) {
	if !publicDebitTypes[params.Type] {
		return nil, fmt.Errorf("%w: %q cannot be debited directly", store.ErrInvalidInput, params.Type)
	}
	var transaction *models.Transaction
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getChallenge(ctx, tx, params.ChallengeId); err != nil {
			return err
		}
		var err error
		transaction, err = s.debitUser(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// Credit adds funds to a user's spendable balance. Only deposits are accepted.
func (s *Service) Credit(ctx context.Context, params store.LedgerParams) (*models.Transaction, error) {
	if !publicCreditTypes[params.Type] {
		return nil, fmt.Errorf("%w: %q cannot be credited directly", store.ErrInvalidInput, params.Type)
	}
	var transaction *models.Transaction
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		transaction, err = s.creditUser(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *Service) debitUser(ctx context.Context, tx *sql.Tx, params store.LedgerParams) (*models.Transaction, error) {
	if err := rules.ValidateAmount(params.Amount); err != nil {
		return nil, fmt.Errorf("%w: debit of %s", err, params.Amount.String())
	}
	if sign, ok := rules.UserEntrySign(params.Type); !ok || sign > 0 {
		return nil, fmt.Errorf("%w: %q is not a debit", store.ErrInvalidInput, params.Type)
	}
	return s.postUserEntry(ctx, tx, params, params.Amount.Neg())
}

func (s *Service) creditUser(ctx context.Context, tx *sql.Tx, params store.LedgerParams) (*models.Transaction, error) {
	if err := rules.ValidateAmount(params.Amount); err != nil {
		return nil, fmt.Errorf("%w: credit of %s", err, params.Amount.String())
	}
	if sign, ok := rules.UserEntrySign(params.Type); !ok || sign < 0 {
		return nil, fmt.Errorf("%w: %q is not a credit", store.ErrInvalidInput, params.Type)
	}
	return s.postUserEntry(ctx, tx, params, params.Amount)
}

// postUserEntry applies a signed amount to a user balance and appends the
// matching transaction row and journal entries. It must run inside tx.
func (s *Service) postUserEntry(ctx context.Context, tx *sql.Tx, params store.LedgerParams, signed decimal.Decimal) (*models.Transaction, error) {
	zap.L().Info("Processing ledger entry",
		zap.String("user_id", params.UserId),
		zap.String("type", string(params.Type)),
		zap.String("amount", signed.String()),
		zap.String("challenge_id", params.ChallengeId))

	currentBalance, version, err := s.getUserBalanceTx(ctx, tx, params.UserId)
	if err != nil {
		return nil, err
	}

	newBalance := currentBalance.Add(signed)
	if newBalance.IsNegative() {
		zap.L().Warn("Insufficient funds for debit",
			zap.String("user_id", params.UserId),
			zap.String("balance", currentBalance.String()),
			zap.String("required", params.Amount.String()))
		return nil, &store.InsufficientFundsError{
			UserId:         params.UserId,
			CurrentBalance: currentBalance,
			RequiredAmount: params.Amount,
		}
	}

	now := time.Now().UTC()
	transaction := &models.Transaction{
		Id:            uuid.New().String(),
		UserId:        params.UserId,
		Account:       models.AccountUser,
		ChallengeId:   params.ChallengeId,
		Type:          params.Type,
		Amount:        signed,
		BalanceBefore: currentBalance,
		BalanceAfter:  newBalance,
		Description:   params.Description,
		CreatedAt:     now,
	}
	if err := insertTransaction(ctx, tx, transaction); err != nil {
		return nil, err
	}

	// Update balance (with optimistic locking)
	result, err := tx.ExecContext(ctx, queryUpdateUserBalance, newBalance.String(), now, params.UserId, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	if err := expectOneRow(result, "balance update"); err != nil {
		return nil, err
	}

	if err := addJournalEntries(ctx, tx, transaction); err != nil {
		return nil, fmt.Errorf("failed to add journal entries: %w", err)
	}

	zap.L().Info("Ledger entry processed successfully",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", params.UserId),
		zap.String("old_balance", currentBalance.String()),
		zap.String("new_balance", newBalance.String()))

	return transaction, nil
}

// creditSystemAccount moves settled escrow into a platform sink. The row is
// attributed to ownerId so per-challenge history stays complete.
func (s *Service) creditSystemAccount(ctx context.Context, tx *sql.Tx, account, ownerId string, params store.LedgerParams) (*models.Transaction, error) {
	if err := rules.ValidateAmount(params.Amount); err != nil {
		return nil, fmt.Errorf("%w: credit of %s to %s", err, params.Amount.String(), account)
	}

	sink, err := getSystemAccount(ctx, tx, account)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newBalance := sink.Balance.Add(params.Amount)
	transaction := &models.Transaction{
		Id:            uuid.New().String(),
		UserId:        ownerId,
		Account:       account,
		ChallengeId:   params.ChallengeId,
		Type:          params.Type,
		Amount:        params.Amount,
		BalanceBefore: sink.Balance,
		BalanceAfter:  newBalance,
		Description:   params.Description,
		CreatedAt:     now,
	}
	if err := insertTransaction(ctx, tx, transaction); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, queryUpdateSystemAccount, newBalance.String(), now, account, sink.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update system account %s: %w", account, err)
	}
	if err := expectOneRow(result, "system account update"); err != nil {
		return nil, err
	}

	if err := addJournalEntries(ctx, tx, transaction); err != nil {
		return nil, fmt.Errorf("failed to add journal entries: %w", err)
	}

	zap.L().Info("System account credited",
		zap.String("account", account),
		zap.String("challenge_id", params.ChallengeId),
		zap.String("amount", params.Amount.String()),
		zap.String("new_balance", newBalance.String()))

	return transaction, nil
}

func (s *Service) getUserBalanceTx(ctx context.Context, tx *sql.Tx, userId string) (decimal.Decimal, int64, error) {
	var balanceStr string
	var version int64
	err := tx.QueryRowContext(ctx, queryGetUserBalance, userId).Scan(&balanceStr, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, 0, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to get current balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to parse current balance '%s': %w", balanceStr, err)
	}
	return balance, version, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	_, err := tx.ExecContext(ctx, queryInsertTransaction,
		t.Id, t.UserId, t.Account, t.ChallengeId, string(t.Type),
		t.Amount.String(), t.BalanceBefore.String(), t.BalanceAfter.String(),
		t.Description, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// addJournalEntries creates double-entry bookkeeping entries: the posting
// destination is debited and the source credited with the absolute amount.
func addJournalEntries(ctx context.Context, tx *sql.Tx, transaction *models.Transaction) error {
	source, destination, err := rules.Posting(*transaction)
	if err != nil {
		return err
	}

	amount := transaction.Amount.Abs()
	journalEntries := []struct {
		accountId    string
		debitAmount  decimal.Decimal
		creditAmount decimal.Decimal
	}{
		{destination, amount, decimal.Zero},
		{source, decimal.Zero, amount},
	}

	for _, entry := range journalEntries {
		_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
			uuid.New().String(), transaction.Id, entry.accountId,
			entry.debitAmount.String(), entry.creditAmount.String(), transaction.CreatedAt)
		if err != nil {
			return err
		}
	}

	return nil
}

// expectOneRow turns a lost optimistic-lock race into ErrConcurrentModification.
func expectOneRow(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s failed - %w", what, store.ErrConcurrentModification)
	}
	return nil
}

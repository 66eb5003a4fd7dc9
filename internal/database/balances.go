package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetUserBalance returns the spendable balance for a user (O(1) lookup)
func (s *Service) GetUserBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	zap.L().Debug("Getting balance", zap.String("user_id", userId))

	var balanceStr string
	var version int64
	err := s.db.QueryRowContext(ctx, queryGetUserBalance, userId).Scan(&balanceStr, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		zap.L().Error("Failed to get balance", zap.String("user_id", userId), zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := parseDecimal("balance", balanceStr)
	if err != nil {
		return decimal.Zero, err
	}

	zap.L().Debug("Retrieved balance", zap.String("user_id", userId), zap.String("balance", balance.String()))
	return balance, nil
}

func (s *Service) GetSystemAccount(ctx context.Context, account string) (*models.SystemAccount, error) {
	return getSystemAccount(ctx, s.db, account)
}

func getSystemAccount(ctx context.Context, q querier, account string) (*models.SystemAccount, error) {
	var sink models.SystemAccount
	var balanceStr string
	err := q.QueryRowContext(ctx, queryGetSystemAccount, account).Scan(&sink.Account, &balanceStr, &sink.Version, &sink.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: system account %s", store.ErrNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system account %s: %w", account, err)
	}
	if sink.Balance, err = parseDecimal("system balance", balanceStr); err != nil {
		return nil, err
	}
	return &sink, nil
}

// ReconcileUserBalance verifies that the stored balance matches the sum of
// the user's own ledger rows. Sink rows attributed to the user are excluded.
func (s *Service) ReconcileUserBalance(ctx context.Context, userId string) error {
	zap.L().Info("Reconciling balance", zap.String("user_id", userId))

	currentBalance, err := s.GetUserBalance(ctx, userId)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	calculatedBalance, err := s.sumAmounts(ctx, querySumUserTransactions, userId)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	return compareBalances("user", userId, currentBalance, calculatedBalance)
}

// ReconcileSystemAccount verifies a platform sink against its credit rows.
func (s *Service) ReconcileSystemAccount(ctx context.Context, account string) error {
	zap.L().Info("Reconciling system account", zap.String("account", account))

	sink, err := s.GetSystemAccount(ctx, account)
	if err != nil {
		return err
	}

	calculatedBalance, err := s.sumAmounts(ctx, querySumAccountTransactions, account)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	return compareBalances("system", account, sink.Balance, calculatedBalance)
}

// sumAmounts adds TEXT amounts in Go so no precision is lost to SQLite REAL.
func (s *Service) sumAmounts(ctx context.Context, query string, arg string) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return decimal.Zero, err
	}
	defer closeRows(rows)

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, err
		}
		amount, err := parseDecimal("amount", amountStr)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func compareBalances(kind, id string, current, calculated decimal.Decimal) error {
	// Check if balances match (exact decimal comparison)
	if !current.Equal(calculated) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.String("current_balance", current.String()),
			zap.String("calculated_balance", calculated.String()),
			zap.String("difference", current.Sub(calculated).String()))
		return fmt.Errorf("balance mismatch for %s %s: current=%s, calculated=%s", kind, id, current.String(), calculated.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("kind", kind),
		zap.String("id", id),
		zap.String("balance", current.String()))
	return nil
}

package database

import (
	"context"
	"fmt"

	"challenge-stake-go/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// normalizePage clamps limit to [1, MaxHistoryLimit] and offset to >= 0.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetTransactionHistory returns paginated history for a user, newest first
func (s *Service) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	zap.L().Debug("Getting transaction history",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	return queryList(ctx, s.db, "transaction", scanTransaction, queryGetTransactionHistory, userId, limit, offset)
}

// GetChallengeTransactions returns every row tied to a challenge, oldest first
func (s *Service) GetChallengeTransactions(ctx context.Context, challengeId string) ([]models.Transaction, error) {
	return queryList(ctx, s.db, "transaction", scanTransaction, queryGetChallengeTransactions, challengeId)
}

// ListTransactions pages through the whole ledger in insertion order
func (s *Service) ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	return queryList(ctx, s.db, "transaction", scanTransaction, queryListTransactions, limit, offset)
}

func (s *Service) GetJournalEntries(ctx context.Context, transactionId string) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryGetJournalEntries, transactionId)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entries: %w", err)
	}
	defer closeRows(rows)

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		var debitStr, creditStr string
		if err := rows.Scan(&entry.Id, &entry.TransactionId, &entry.AccountId, &debitStr, &creditStr, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		if entry.DebitAmount, err = parseDecimal("debit amount", debitStr); err != nil {
			return nil, err
		}
		if entry.CreditAmount, err = parseDecimal("credit amount", creditStr); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}
	return entries, nil
}

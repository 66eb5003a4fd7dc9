package database

import (
	"context"
	"database/sql"
	"fmt"

	"challenge-stake-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s '%s': %w", field, value, err)
	}
	return d, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var balanceStr string
	err := row.Scan(&user.Id, &user.Username, &user.Email, &user.TelegramId,
		&balanceStr, &user.Rating, &user.Premium, &user.Version, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if user.Balance, err = parseDecimal("balance", balanceStr); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var txType, amountStr, balanceBeforeStr, balanceAfterStr string
	err := row.Scan(&t.Id, &t.UserId, &t.Account, &t.ChallengeId, &txType,
		&amountStr, &balanceBeforeStr, &balanceAfterStr, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Type = models.TransactionType(txType)
	if t.Amount, err = parseDecimal("amount", amountStr); err != nil {
		return nil, err
	}
	if t.BalanceBefore, err = parseDecimal("balance before", balanceBeforeStr); err != nil {
		return nil, err
	}
	if t.BalanceAfter, err = parseDecimal("balance after", balanceAfterStr); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var c models.Challenge
	var status, stakeStr, donationsStr string
	var completedAt sql.NullTime
	err := row.Scan(&c.Id, &c.UserId, &c.Title, &c.Description, &c.Category,
		&stakeStr, &donationsStr, &status, &c.Deadline, &completedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.Status, err = models.ParseChallengeStatus(status); err != nil {
		return nil, err
	}
	if c.StakeAmount, err = parseDecimal("stake amount", stakeStr); err != nil {
		return nil, err
	}
	if c.DonationsAmount, err = parseDecimal("donations amount", donationsStr); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	return &c, nil
}

func scanReport(row rowScanner) (*models.ProgressUpdate, error) {
	var r models.ProgressUpdate
	var status, donationsStr string
	err := row.Scan(&r.Id, &r.ChallengeId, &r.UserId, &r.Content, &r.MediaRef,
		&r.VerifyVotes, &r.FakeVotes, &status, &donationsStr, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if r.VerificationStatus, err = models.ParseVerificationStatus(status); err != nil {
		return nil, err
	}
	if r.DonationsAmount, err = parseDecimal("donations amount", donationsStr); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanVote(row rowScanner) (*models.ReportVote, error) {
	var v models.ReportVote
	var voteType string
	err := row.Scan(&v.Id, &v.ReportId, &v.UserId, &voteType, &v.Reason, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if v.VoteType, err = models.ParseVoteType(voteType); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanDonation(row rowScanner) (*models.Donation, error) {
	var d models.Donation
	var amountStr string
	err := row.Scan(&d.Id, &d.DonorId, &d.ChallengeId, &d.ReportId, &amountStr, &d.Message, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if d.Amount, err = parseDecimal("amount", amountStr); err != nil {
		return nil, err
	}
	return &d, nil
}

// queryList runs a multi-row query and collects each scanned row.
func queryList[T any](ctx context.Context, q querier, what string, scan func(rowScanner) (*T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		zap.L().Error("Failed to query "+what, zap.Error(err))
		return nil, fmt.Errorf("unable to query %s: %w", what, err)
	}
	defer closeRows(rows)

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			zap.L().Error("Failed to scan "+what+" row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan %s row: %w", what, err)
		}
		out = append(out, *item)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during "+what+" row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating %s rows: %w", what, err)
	}
	return out, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"challenge-stake-go/internal/rules"
	"challenge-stake-go/internal/store"

	"go.uber.org/zap"
)

// applyRatingDelta is the only writer of users.rating. The result is
// floored at zero and guarded by the row version.
func (s *Service) applyRatingDelta(ctx context.Context, tx *sql.Tx, userId string, delta int) (int, error) {
	var current int
	var version int64
	err := tx.QueryRowContext(ctx, queryGetUserRating, userId).Scan(&current, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get rating: %w", err)
	}

	if delta == 0 {
		return current, nil
	}

	next := rules.ApplyRating(current, delta)
	result, err := tx.ExecContext(ctx, queryUpdateUserRating, next, time.Now().UTC(), userId, version)
	if err != nil {
		return 0, fmt.Errorf("failed to update rating: %w", err)
	}
	if err := expectOneRow(result, "rating update"); err != nil {
		return 0, err
	}

	zap.L().Info("Rating updated",
		zap.String("user_id", userId),
		zap.Int("old_rating", current),
		zap.Int("delta", delta),
		zap.Int("new_rating", next))
	return next, nil
}

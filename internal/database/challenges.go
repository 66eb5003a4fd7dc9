package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/rules"
	"challenge-stake-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Stake creates an active challenge and escrows its stake in one transaction.
// The returned balance is the owner's balance right after the stake debit.
func (s *Service) Stake(ctx context.Context, params store.StakeParams) (*models.Challenge, decimal.Decimal, error) {
	if err := rules.ValidateAmount(params.StakeAmount); err != nil {
		return nil, decimal.Zero, fmt.Errorf("%w: stake of %s", err, params.StakeAmount.String())
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, decimal.Zero, fmt.Errorf("%w: title is required", store.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if !params.Deadline.After(now) {
		return nil, decimal.Zero, fmt.Errorf("%w: deadline %s is not in the future", store.ErrInvalidInput, params.Deadline.Format(time.RFC3339))
	}

	challenge := &models.Challenge{
		Id:              uuid.New().String(),
		UserId:          params.UserId,
		Title:           title,
		Description:     params.Description,
		Category:        params.Category,
		StakeAmount:     params.StakeAmount,
		DonationsAmount: decimal.Zero,
		Status:          models.ChallengeActive,
		Deadline:        params.Deadline.UTC(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	zap.L().Info("Creating challenge",
		zap.String("challenge_id", challenge.Id),
		zap.String("user_id", params.UserId),
		zap.String("stake", params.StakeAmount.String()),
		zap.Time("deadline", challenge.Deadline))

	var newBalance decimal.Decimal
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		balance, _, err := s.getUserBalanceTx(ctx, tx, params.UserId)
		if err != nil {
			return err
		}
		if balance.LessThan(params.StakeAmount) {
			return &store.InsufficientFundsError{
				UserId:         params.UserId,
				CurrentBalance: balance,
				RequiredAmount: params.StakeAmount,
			}
		}

		_, err = tx.ExecContext(ctx, queryInsertChallenge,
			challenge.Id, challenge.UserId, challenge.Title, challenge.Description, challenge.Category,
			challenge.StakeAmount.String(), challenge.Deadline, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert challenge: %w", err)
		}

		debit, err := s.debitUser(ctx, tx, store.LedgerParams{
			UserId:      params.UserId,
			ChallengeId: challenge.Id,
			Type:        models.TransactionStake,
			Amount:      params.StakeAmount,
			Description: "Stake for challenge: " + title,
		})
		if err != nil {
			return err
		}
		newBalance = debit.BalanceAfter
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	return challenge, newBalance, nil
}

func (s *Service) CompleteChallenge(ctx context.Context, challengeId, userId string) (*models.SettlementResult, error) {
	return s.settle(ctx, challengeId, userId, models.ChallengeCompleted)
}

func (s *Service) FailChallenge(ctx context.Context, challengeId, userId string) (*models.SettlementResult, error) {
	return s.settle(ctx, challengeId, userId, models.ChallengeFailed)
}

// ExpireChallenge fails an active challenge whose deadline is before now.
// No ownership check applies; the caller is the expiry worker.
func (s *Service) ExpireChallenge(ctx context.Context, challengeId string, now time.Time) (*models.SettlementResult, error) {
	c, err := s.GetChallenge(ctx, challengeId)
	if err != nil {
		return nil, err
	}
	if !c.Deadline.Before(now) {
		return nil, fmt.Errorf("%w: challenge %s deadline has not passed", store.ErrInvalidInput, challengeId)
	}
	return s.settle(ctx, challengeId, "", models.ChallengeFailed)
}

// settle runs one terminal transition and moves the escrowed stake. An empty
// actorId skips the ownership check.
func (s *Service) settle(ctx context.Context, challengeId, actorId string, to models.ChallengeStatus) (*models.SettlementResult, error) {
	var result *models.SettlementResult

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := getChallenge(ctx, tx, challengeId)
		if err != nil {
			return err
		}
		if actorId != "" && c.UserId != actorId {
			return fmt.Errorf("%w: challenge %s is not owned by %s", store.ErrForbidden, challengeId, actorId)
		}
		if err := rules.CheckChallengeTransition(c.Status, to); err != nil {
			return err
		}

		now := time.Now().UTC()
		var completedAt sql.NullTime
		if to == models.ChallengeCompleted {
			completedAt = sql.NullTime{Time: now, Valid: true}
		}
		res, err := tx.ExecContext(ctx, querySettleChallenge, string(to), completedAt, now, challengeId)
		if err != nil {
			return fmt.Errorf("failed to update challenge status: %w", err)
		}
		if err := expectOneRow(res, "challenge settlement"); err != nil {
			return err
		}

		result = &models.SettlementResult{Success: true, ChallengeId: challengeId, Status: to}

		switch to {
		case models.ChallengeCompleted:
			_, err := s.creditUser(ctx, tx, store.LedgerParams{
				UserId:      c.UserId,
				ChallengeId: challengeId,
				Type:        models.TransactionRefund,
				Amount:      c.StakeAmount,
				Description: "Refund for completed challenge: " + c.Title,
			})
			if err != nil {
				return err
			}
			result.Refunded = c.StakeAmount

		case models.ChallengeFailed:
			charity, fee := rules.SplitForfeit(c.StakeAmount, s.feeRate)
			if charity.IsPositive() {
				_, err := s.creditSystemAccount(ctx, tx, models.AccountCharity, c.UserId, store.LedgerParams{
					ChallengeId: challengeId,
					Type:        models.TransactionCharity,
					Amount:      charity,
					Description: "Charity donation from failed challenge: " + c.Title,
				})
				if err != nil {
					return err
				}
			}
			if fee.IsPositive() {
				_, err := s.creditSystemAccount(ctx, tx, models.AccountPlatformFee, c.UserId, store.LedgerParams{
					ChallengeId: challengeId,
					Type:        models.TransactionPlatformFee,
					Amount:      fee,
					Description: "Platform fee from failed challenge: " + c.Title,
				})
				if err != nil {
					return err
				}
			}
			result.CharityAmount = charity
			result.PlatformFee = fee
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("Challenge settlement rejected",
			zap.String("challenge_id", challengeId),
			zap.String("target_status", string(to)),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Challenge settled",
		zap.String("challenge_id", challengeId),
		zap.String("status", string(to)),
		zap.String("refunded", result.Refunded.String()),
		zap.String("charity", result.CharityAmount.String()),
		zap.String("platform_fee", result.PlatformFee.String()))
	return result, nil
}

func (s *Service) GetChallenge(ctx context.Context, challengeId string) (*models.Challenge, error) {
	return getChallenge(ctx, s.db, challengeId)
}

func getChallenge(ctx context.Context, q querier, challengeId string) (*models.Challenge, error) {
	c, err := scanChallenge(q.QueryRowContext(ctx, queryGetChallenge, challengeId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: challenge %s", store.ErrNotFound, challengeId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query challenge: %w", err)
	}
	return c, nil
}

func (s *Service) GetUserChallenges(ctx context.Context, userId string) ([]models.Challenge, error) {
	return queryList(ctx, s.db, "challenge", scanChallenge, queryGetUserChallenges, userId)
}

// ListOverdueChallenges returns active challenges whose deadline is before now, earliest first.
func (s *Service) ListOverdueChallenges(ctx context.Context, now time.Time, limit int) ([]models.Challenge, error) {
	if limit <= 0 {
		limit = MaxHistoryLimit
	}
	return queryList(ctx, s.db, "challenge", scanChallenge, queryListOverdueChallenges, now.UTC(), limit)
}

// DeleteChallengeCascade removes a challenge with its reports, votes and
// donations. Ledger rows are kept. A still-active stake is refunded first and
// rating earned on removed reports is reversed.
func (s *Service) DeleteChallengeCascade(ctx context.Context, challengeId string) error {
	zap.L().Warn("Deleting challenge with dependents", zap.String("challenge_id", challengeId))

	return s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := getChallenge(ctx, tx, challengeId)
		if err != nil {
			return err
		}

		if c.Status == models.ChallengeActive {
			_, err := s.creditUser(ctx, tx, store.LedgerParams{
				UserId:      c.UserId,
				ChallengeId: challengeId,
				Type:        models.TransactionRefund,
				Amount:      c.StakeAmount,
				Description: "Refund for removed challenge: " + c.Title,
			})
			if err != nil {
				return err
			}
		}

		reports, err := queryList(ctx, tx, "report", scanReport, queryGetChallengeReports, challengeId)
		if err != nil {
			return err
		}
		for _, r := range reports {
			if err := s.removeReport(ctx, tx, &r); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, queryDeleteChallengeDonations, challengeId); err != nil {
			return fmt.Errorf("failed to delete donations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, queryDeleteChallenge, challengeId); err != nil {
			return fmt.Errorf("failed to delete challenge: %w", err)
		}
		return nil
	})
}

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"challenge-stake-go/internal/metrics"
	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/notify"
	"challenge-stake-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateChallengeParams carries the fields a user submits when staking.
type CreateChallengeParams struct {
	UserId      string
	Title       string
	Description string
	StakeAmount decimal.Decimal
	Deadline    time.Time
	Category    string
}

func (s *StakeService) CreateChallenge(ctx context.Context, params CreateChallengeParams) (result *models.CreateChallengeResult, err error) {
	defer observe("create_challenge", time.Now(), &err)

	if params.UserId == "" {
		return nil, fmt.Errorf("%w: user_id is required", store.ErrInvalidInput)
	}
	category, err := s.categories.Resolve(params.Category)
	if err != nil {
		return nil, err
	}

	challenge, balance, err := s.store.Stake(ctx, store.StakeParams{
		UserId:      params.UserId,
		Title:       params.Title,
		Description: params.Description,
		Category:    category,
		StakeAmount: params.StakeAmount,
		Deadline:    params.Deadline,
	})
	if err != nil {
		var fundsErr *store.InsufficientFundsError
		if errors.As(err, &fundsErr) {
			zap.L().Info("Stake rejected for insufficient funds",
				zap.String("user_id", fundsErr.UserId),
				zap.String("balance", fundsErr.CurrentBalance.String()),
				zap.String("required", fundsErr.RequiredAmount.String()))
		}
		return nil, err
	}

	return &models.CreateChallengeResult{ChallengeId: challenge.Id, NewBalance: balance}, nil
}

func (s *StakeService) CompleteChallenge(ctx context.Context, challengeId, userId string) (result *models.SettlementResult, err error) {
	defer observe("complete_challenge", time.Now(), &err)

	result, err = s.store.CompleteChallenge(ctx, challengeId, userId)
	if err != nil {
		return nil, err
	}
	metrics.SettlementsTotal.WithLabelValues(string(result.Status)).Inc()
	s.emitSettlement(ctx, challengeId, notify.EventChallengeCompleted, result.Refunded)
	return result, nil
}

func (s *StakeService) FailChallenge(ctx context.Context, challengeId, userId string) (result *models.SettlementResult, err error) {
	defer observe("fail_challenge", time.Now(), &err)

	result, err = s.store.FailChallenge(ctx, challengeId, userId)
	if err != nil {
		return nil, err
	}
	metrics.SettlementsTotal.WithLabelValues(string(result.Status)).Inc()
	s.emitSettlement(ctx, challengeId, notify.EventChallengeFailed, result.CharityAmount.Add(result.PlatformFee))
	return result, nil
}

// ExpireOverdue fails up to batchSize active challenges whose deadline has
// passed. Challenges settled concurrently are skipped, not reported as errors.
func (s *StakeService) ExpireOverdue(ctx context.Context, batchSize int) (expired int, err error) {
	defer observe("expire_overdue", time.Now(), &err)

	now := s.now()
	overdue, err := s.store.ListOverdueChallenges(ctx, now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue challenges: %w", err)
	}

	var errs []error
	for _, c := range overdue {
		result, err := s.store.ExpireChallenge(ctx, c.Id, now)
		if errors.Is(err, store.ErrAlreadyTerminal) {
			zap.L().Debug("Challenge settled before expiry, skipping", zap.String("challenge_id", c.Id))
			continue
		}
		if err != nil {
			zap.L().Error("Failed to expire challenge", zap.String("challenge_id", c.Id), zap.Error(err))
			errs = append(errs, fmt.Errorf("challenge %s: %w", c.Id, err))
			continue
		}

		expired++
		metrics.SettlementsTotal.WithLabelValues(string(result.Status)).Inc()
		s.emit(ctx, notify.Event{
			Kind:        notify.EventChallengeExpired,
			UserId:      c.UserId,
			ChallengeId: c.Id,
			Title:       c.Title,
			Amount:      c.StakeAmount,
		})
	}

	if expired > 0 {
		zap.L().Info("Expired overdue challenges", zap.Int("count", expired), zap.Int("scanned", len(overdue)))
	}
	return expired, errors.Join(errs...)
}

// DeleteChallenge is the administrative cascade.
func (s *StakeService) DeleteChallenge(ctx context.Context, challengeId string) (err error) {
	defer observe("delete_challenge", time.Now(), &err)
	return s.store.DeleteChallengeCascade(ctx, challengeId)
}

func (s *StakeService) GetChallenge(ctx context.Context, challengeId string) (*models.Challenge, error) {
	return s.store.GetChallenge(ctx, challengeId)
}

func (s *StakeService) GetUserChallenges(ctx context.Context, userId string) ([]models.Challenge, error) {
	return s.store.GetUserChallenges(ctx, userId)
}

func (s *StakeService) emitSettlement(ctx context.Context, challengeId string, kind notify.EventKind, amount decimal.Decimal) {
	c, err := s.store.GetChallenge(ctx, challengeId)
	if err != nil {
		zap.L().Warn("Unable to load challenge for notification", zap.String("challenge_id", challengeId), zap.Error(err))
		return
	}
	s.emit(ctx, notify.Event{
		Kind:        kind,
		UserId:      c.UserId,
		ChallengeId: c.Id,
		Title:       c.Title,
		Amount:      amount,
	})
}

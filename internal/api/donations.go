package api

import (
	"context"
	"time"

	"challenge-stake-go/internal/metrics"
	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/notify"
	"challenge-stake-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *StakeService) Donate(ctx context.Context, donorId, challengeId string, amount decimal.Decimal, reportId, message string) (result *models.DonationResult, err error) {
	defer observe("donate", time.Now(), &err)

	result, err = s.store.Donate(ctx, store.DonationParams{
		DonorId:     donorId,
		ChallengeId: challengeId,
		ReportId:    reportId,
		Amount:      amount,
		Message:     message,
	})
	if err != nil {
		return nil, err
	}
	metrics.DonatedAmountTotal.Add(amount.InexactFloat64())

	c, err := s.store.GetChallenge(ctx, challengeId)
	if err != nil {
		zap.L().Warn("Unable to load challenge for notification", zap.String("challenge_id", challengeId), zap.Error(err))
		return result, nil
	}
	s.emit(ctx, notify.Event{
		Kind:        notify.EventDonationReceived,
		UserId:      c.UserId,
		ChallengeId: c.Id,
		ReportId:    reportId,
		Title:       c.Title,
		Amount:      amount,
	})
	return result, nil
}

func (s *StakeService) GetChallengeDonations(ctx context.Context, challengeId string) ([]models.Donation, error) {
	return s.store.GetChallengeDonations(ctx, challengeId)
}

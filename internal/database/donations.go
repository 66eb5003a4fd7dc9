package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/rules"
	"challenge-stake-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Donate debits the donor and attaches the amount to the challenge and,
// optionally, one of its reports. The owner's balance is not credited.
func (s *Service) Donate(ctx context.Context, params store.DonationParams) (*models.DonationResult, error) {
	if err := rules.ValidateAmount(params.Amount); err != nil {
		return nil, fmt.Errorf("%w: donation of %s", err, params.Amount.String())
	}

	donationId := uuid.New().String()
	var result *models.DonationResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := getChallenge(ctx, tx, params.ChallengeId)
		if err != nil {
			return err
		}

		var report *models.ProgressUpdate
		if params.ReportId != "" {
			report, err = getReport(ctx, tx, params.ReportId)
			if err != nil {
				return err
			}
			if report.ChallengeId != c.Id {
				return fmt.Errorf("%w: report %s does not belong to challenge %s", store.ErrNotFound, params.ReportId, c.Id)
			}
		}

		debit, err := s.debitUser(ctx, tx, store.LedgerParams{
			UserId:      params.DonorId,
			ChallengeId: c.Id,
			Type:        models.TransactionDonation,
			Amount:      params.Amount,
			Description: "Donation to challenge: " + c.Title,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx, queryInsertDonation,
			donationId, params.DonorId, c.Id, params.ReportId, params.Amount.String(), params.Message, now)
		if err != nil {
			return fmt.Errorf("failed to insert donation: %w", err)
		}

		total := c.DonationsAmount.Add(params.Amount)
		if _, err := tx.ExecContext(ctx, queryUpdateChallengeDonations, total.String(), now, c.Id); err != nil {
			return fmt.Errorf("failed to update challenge donations: %w", err)
		}

		if report != nil {
			reportTotal := report.DonationsAmount.Add(params.Amount)
			if _, err := tx.ExecContext(ctx, queryUpdateReportDonations, reportTotal.String(), now, report.Id); err != nil {
				return fmt.Errorf("failed to update report donations: %w", err)
			}
		}

		result = &models.DonationResult{
			Success:           true,
			DonationId:        donationId,
			NewDonationsTotal: total,
			DonorBalance:      debit.BalanceAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Donation attached",
		zap.String("donation_id", donationId),
		zap.String("donor_id", params.DonorId),
		zap.String("challenge_id", params.ChallengeId),
		zap.String("report_id", params.ReportId),
		zap.String("amount", params.Amount.String()),
		zap.String("new_total", result.NewDonationsTotal.String()))
	return result, nil
}

func (s *Service) GetChallengeDonations(ctx context.Context, challengeId string) ([]models.Donation, error) {
	return queryList(ctx, s.db, "donation", scanDonation, queryGetChallengeDonations, challengeId)
}

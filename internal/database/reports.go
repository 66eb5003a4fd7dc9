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

// AddProgress posts a report on an active challenge owned by the author.
func (s *Service) AddProgress(ctx context.Context, params store.ProgressParams) (*models.ProgressUpdate, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: report content is required", store.ErrInvalidInput)
	}

	var report *models.ProgressUpdate
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := getChallenge(ctx, tx, params.ChallengeId)
		if err != nil {
			return err
		}
		if c.UserId != params.UserId {
			return fmt.Errorf("%w: challenge %s is not owned by %s", store.ErrForbidden, c.Id, params.UserId)
		}
		if c.Status.IsTerminal() {
			return fmt.Errorf("%w: challenge %s is %s", store.ErrAlreadyTerminal, c.Id, c.Status)
		}

		now := time.Now().UTC()
		report = &models.ProgressUpdate{
			Id:                 uuid.New().String(),
			ChallengeId:        c.Id,
			UserId:             params.UserId,
			Content:            content,
			MediaRef:           params.MediaRef,
			VerificationStatus: models.VerificationPending,
			DonationsAmount:    decimal.Zero,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		_, err = tx.ExecContext(ctx, queryInsertReport,
			report.Id, report.ChallengeId, report.UserId, report.Content, report.MediaRef, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Progress report added",
		zap.String("report_id", report.Id),
		zap.String("challenge_id", report.ChallengeId),
		zap.String("user_id", report.UserId))
	return report, nil
}

func (s *Service) GetReport(ctx context.Context, reportId string) (*models.ProgressUpdate, error) {
	return getReport(ctx, s.db, reportId)
}

func getReport(ctx context.Context, q querier, reportId string) (*models.ProgressUpdate, error) {
	r, err := scanReport(q.QueryRowContext(ctx, queryGetReport, reportId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: report %s", store.ErrNotFound, reportId)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query report: %w", err)
	}
	return r, nil
}

func (s *Service) GetChallengeReports(ctx context.Context, challengeId string) ([]models.ProgressUpdate, error) {
	return queryList(ctx, s.db, "report", scanReport, queryGetChallengeReports, challengeId)
}

func (s *Service) GetReportVotes(ctx context.Context, reportId string) ([]models.ReportVote, error) {
	return queryList(ctx, s.db, "vote", scanVote, queryGetReportVotes, reportId)
}

// DeleteProgress removes a report owned by userId together with its votes.
func (s *Service) DeleteProgress(ctx context.Context, reportId, userId string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := getReport(ctx, tx, reportId)
		if err != nil {
			return err
		}
		if r.UserId != userId {
			return fmt.Errorf("%w: report %s is not owned by %s", store.ErrForbidden, reportId, userId)
		}
		return s.removeReport(ctx, tx, r)
	})
	if err != nil {
		return err
	}

	zap.L().Info("Progress report deleted", zap.String("report_id", reportId), zap.String("user_id", userId))
	return nil
}

// removeReport takes back any rating the report earned its author, then
// deletes its votes and the report row. A fake report's penalty stays.
func (s *Service) removeReport(ctx context.Context, tx *sql.Tx, r *models.ProgressUpdate) error {
	if delta := rules.RatingDelta(r.VerificationStatus, models.VerificationPending); delta < 0 {
		if _, err := s.applyRatingDelta(ctx, tx, r.UserId, delta); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, queryDeleteReportVotes, r.Id); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteReport, r.Id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// CastVote inserts, retracts or flips the caller's vote and adjusts the
// report counters in the same transaction.
func (s *Service) CastVote(ctx context.Context, params store.VoteParams) (*models.VoteResult, error) {
	if _, err := models.ParseVoteType(string(params.VoteType)); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	var result *models.VoteResult
	var action rules.VoteAction
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := getReport(ctx, tx, params.ReportId)
		if err != nil {
			return err
		}
		if r.UserId == params.UserId {
			return fmt.Errorf("%w: authors cannot vote on their own report", store.ErrForbidden)
		}
		if _, _, err := s.getUserBalanceTx(ctx, tx, params.UserId); err != nil {
			return err
		}

		existing, err := scanVote(tx.QueryRowContext(ctx, queryGetUserVote, params.ReportId, params.UserId))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read existing vote: %w", err)
		}

		var existingType *models.VoteType
		if existing != nil {
			existingType = &existing.VoteType
		}
		outcome := rules.ResolveVote(existingType, params.VoteType)
		action = outcome.Action

		now := time.Now().UTC()
		switch outcome.Action {
		case rules.VoteInsert:
			_, err = tx.ExecContext(ctx, queryInsertVote,
				uuid.New().String(), params.ReportId, params.UserId, string(params.VoteType), params.Reason, now, now)
		case rules.VoteRetract:
			_, err = tx.ExecContext(ctx, queryDeleteVote, existing.Id)
		case rules.VoteFlip:
			_, err = tx.ExecContext(ctx, queryUpdateVote, string(params.VoteType), params.Reason, now, existing.Id)
		}
		if err != nil {
			return fmt.Errorf("failed to %s vote: %w", outcome.Action, err)
		}

		if _, err := tx.ExecContext(ctx, queryUpdateReportVotes, outcome.VerifyDelta, outcome.FakeDelta, now, params.ReportId); err != nil {
			return fmt.Errorf("failed to update vote counters: %w", err)
		}

		result = &models.VoteResult{MyVote: outcome.MyVote}
		return tx.QueryRowContext(ctx, queryGetReportVoteCounts, params.ReportId).Scan(&result.VerifyVotes, &result.FakeVotes)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Vote recorded",
		zap.String("report_id", params.ReportId),
		zap.String("user_id", params.UserId),
		zap.String("action", action.String()),
		zap.Int("verify_votes", result.VerifyVotes),
		zap.Int("fake_votes", result.FakeVotes))
	return result, nil
}

// SetVerificationStatus moves a report to a new status and applies the
// rating delta for that transition to the author atomically.
func (s *Service) SetVerificationStatus(ctx context.Context, reportId string, status models.VerificationStatus) (*models.VerificationResult, error) {
	newStatus, err := models.ParseVerificationStatus(string(status))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}

	var result *models.VerificationResult
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := getReport(ctx, tx, reportId)
		if err != nil {
			return err
		}
		oldStatus := r.VerificationStatus
		if oldStatus == newStatus {
			return fmt.Errorf("%w: report %s is already %s", store.ErrAlreadyTerminal, reportId, newStatus)
		}

		delta := rules.RatingDelta(oldStatus, newStatus)
		newRating, err := s.applyRatingDelta(ctx, tx, r.UserId, delta)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, queryUpdateReportStatus, string(newStatus), time.Now().UTC(), reportId, string(oldStatus))
		if err != nil {
			return fmt.Errorf("failed to update verification status: %w", err)
		}
		if err := expectOneRow(res, "verification status update"); err != nil {
			return err
		}

		result = &models.VerificationResult{
			Success:     true,
			ReportId:    reportId,
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
			RatingDelta: delta,
			NewRating:   newRating,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Verification status changed",
		zap.String("report_id", reportId),
		zap.String("old_status", string(result.OldStatus)),
		zap.String("new_status", string(result.NewStatus)),
		zap.Int("rating_delta", result.RatingDelta),
		zap.Int("new_rating", result.NewRating))
	return result, nil
}

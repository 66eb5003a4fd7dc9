package api

import (
	"context"
	"fmt"
	"time"

	"challenge-stake-go/internal/metrics"
	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/notify"
	"challenge-stake-go/internal/rules"
	"challenge-stake-go/internal/store"

	"go.uber.org/zap"
)

func (s *StakeService) AddProgress(ctx context.Context, challengeId, userId, content, mediaRef string) (report *models.ProgressUpdate, err error) {
	defer observe("add_progress", time.Now(), &err)

	return s.store.AddProgress(ctx, store.ProgressParams{
		ChallengeId: challengeId,
		UserId:      userId,
		Content:     content,
		MediaRef:    mediaRef,
	})
}

func (s *StakeService) DeleteProgress(ctx context.Context, reportId, userId string) (err error) {
	defer observe("delete_progress", time.Now(), &err)
	return s.store.DeleteProgress(ctx, reportId, userId)
}

// CastVote toggles the caller's vote. It never changes verification status.
func (s *StakeService) CastVote(ctx context.Context, reportId, userId string, voteType models.VoteType, reason string) (result *models.VoteResult, err error) {
	defer observe("cast_vote", time.Now(), &err)

	return s.store.CastVote(ctx, store.VoteParams{
		ReportId: reportId,
		UserId:   userId,
		VoteType: voteType,
		Reason:   reason,
	})
}

func (s *StakeService) SetReportVerification(ctx context.Context, reportId string, status models.VerificationStatus) (result *models.VerificationResult, err error) {
	defer observe("set_report_verification", time.Now(), &err)

	result, err = s.store.SetVerificationStatus(ctx, reportId, status)
	if err != nil {
		return nil, err
	}
	metrics.VerificationsTotal.WithLabelValues(string(result.NewStatus)).Inc()

	var kind notify.EventKind
	switch result.NewStatus {
	case models.VerificationVerified:
		kind = notify.EventReportVerified
	case models.VerificationFake:
		kind = notify.EventReportFake
	default:
		return result, nil
	}

	report, err := s.store.GetReport(ctx, reportId)
	if err != nil {
		zap.L().Warn("Unable to load report for notification", zap.String("report_id", reportId), zap.Error(err))
		return result, nil
	}
	s.emit(ctx, notify.Event{
		Kind:        kind,
		UserId:      report.UserId,
		ChallengeId: report.ChallengeId,
		ReportId:    report.Id,
		RatingDelta: result.RatingDelta,
	})
	return result, nil
}

// ApplyVoteConsensus promotes the vote tally to a verification status when it
// has at least minVotes ballots and a strict majority. applied is false when
// the tally is inconclusive or already matches the current status.
func (s *StakeService) ApplyVoteConsensus(ctx context.Context, reportId string, minVotes int) (result *models.VerificationResult, applied bool, err error) {
	report, err := s.store.GetReport(ctx, reportId)
	if err != nil {
		return nil, false, err
	}

	status, ok := rules.ConsensusStatus(report.VerifyVotes, report.FakeVotes, minVotes)
	if !ok || status == report.VerificationStatus {
		zap.L().Debug("No consensus change",
			zap.String("report_id", reportId),
			zap.Int("verify_votes", report.VerifyVotes),
			zap.Int("fake_votes", report.FakeVotes),
			zap.Int("min_votes", minVotes))
		return nil, false, nil
	}

	result, err = s.SetReportVerification(ctx, reportId, status)
	if err != nil {
		return nil, false, fmt.Errorf("failed to apply consensus %s: %w", status, err)
	}
	return result, true, nil
}

func (s *StakeService) GetChallengeReports(ctx context.Context, challengeId string) ([]models.ProgressUpdate, error) {
	return s.store.GetChallengeReports(ctx, challengeId)
}

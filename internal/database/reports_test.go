package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"
)

type reportFixture struct {
	owner     *models.User
	voter     *models.User
	challenge *models.Challenge
	report    *models.ProgressUpdate
}

func setupReport(t *testing.T, s *Service) reportFixture {
	t.Helper()
	owner := createFundedUser(t, s, "owner", "100")
	voter := createFundedUser(t, s, "voter", "0")
	c := createChallenge(t, s, owner.Id, "10")
	report, err := s.AddProgress(context.Background(), store.ProgressParams{
		ChallengeId: c.Id,
		UserId:      owner.Id,
		Content:     "ran 5k",
		MediaRef:    "photo-1",
	})
	if err != nil {
		t.Fatalf("AddProgress failed: %v", err)
	}
	return reportFixture{owner: owner, voter: voter, challenge: c, report: report}
}

func TestAddProgressPreconditions(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	if f.report.VerificationStatus != models.VerificationPending {
		t.Errorf("Expected new report to be pending, got %s", f.report.VerificationStatus)
	}

	tests := []struct {
		name   string
		params store.ProgressParams
		want   error
	}{
		{"missing challenge", store.ProgressParams{ChallengeId: "missing", UserId: f.owner.Id, Content: "x"}, store.ErrNotFound},
		{"not owner", store.ProgressParams{ChallengeId: f.challenge.Id, UserId: f.voter.Id, Content: "x"}, store.ErrForbidden},
		{"empty content", store.ProgressParams{ChallengeId: f.challenge.Id, UserId: f.owner.Id, Content: " "}, store.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddProgress(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := s.CompleteChallenge(ctx, f.challenge.Id, f.owner.Id); err != nil {
		t.Fatalf("CompleteChallenge failed: %v", err)
	}
	_, err := s.AddProgress(ctx, store.ProgressParams{ChallengeId: f.challenge.Id, UserId: f.owner.Id, Content: "late"})
	if !errors.Is(err, store.ErrAlreadyTerminal) {
		t.Errorf("Expected ErrAlreadyTerminal on settled challenge, got %v", err)
	}
}

func TestCastVoteToggleAndFlip(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	vote := func(v models.VoteType) *models.VoteResult {
		t.Helper()
		result, err := s.CastVote(ctx, store.VoteParams{ReportId: f.report.Id, UserId: f.voter.Id, VoteType: v})
		if err != nil {
			t.Fatalf("CastVote(%s) failed: %v", v, err)
		}
		return result
	}

	result := vote(models.VoteVerify)
	if result.VerifyVotes != 1 || result.FakeVotes != 0 || result.MyVote == nil || *result.MyVote != models.VoteVerify {
		t.Errorf("After first verify: %+v", result)
	}

	result = vote(models.VoteVerify)
	if result.VerifyVotes != 0 || result.FakeVotes != 0 || result.MyVote != nil {
		t.Errorf("After retract: %+v", result)
	}

	vote(models.VoteVerify)
	result = vote(models.VoteFake)
	if result.VerifyVotes != 0 || result.FakeVotes != 1 || result.MyVote == nil || *result.MyVote != models.VoteFake {
		t.Errorf("After flip: %+v", result)
	}

	votes, err := s.GetReportVotes(ctx, f.report.Id)
	if err != nil {
		t.Fatalf("GetReportVotes failed: %v", err)
	}
	if len(votes) != 1 || votes[0].VoteType != models.VoteFake {
		t.Errorf("Expected a single fake vote row, got %+v", votes)
	}

	report, err := s.GetReport(ctx, f.report.Id)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if report.VerificationStatus != models.VerificationPending {
		t.Errorf("Votes must not change verification status, got %s", report.VerificationStatus)
	}
}

func TestConcurrentVotesAreAllCounted(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	const voters = 12
	ids := make([]string, voters)
	for i := range ids {
		ids[i] = createFundedUser(t, s, fmt.Sprintf("crowd-%d", i), "0").Id
	}

	castAll := func(voteFor func(i int) models.VoteType) {
		t.Helper()
		var wg sync.WaitGroup
		for i, id := range ids {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				if _, err := s.CastVote(ctx, store.VoteParams{ReportId: f.report.Id, UserId: id, VoteType: voteFor(i)}); err != nil {
					t.Errorf("CastVote(%d) failed: %v", i, err)
				}
			}(i, id)
		}
		wg.Wait()
	}

	castAll(func(int) models.VoteType { return models.VoteVerify })
	report, err := s.GetReport(ctx, f.report.Id)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if report.VerifyVotes != voters || report.FakeVotes != 0 {
		t.Fatalf("Expected %d/0 votes, got %d/%d", voters, report.VerifyVotes, report.FakeVotes)
	}

	// Even voters flip to fake, odd voters repeat verify and so retract.
	castAll(func(i int) models.VoteType {
		if i%2 == 0 {
			return models.VoteFake
		}
		return models.VoteVerify
	})
	report, err = s.GetReport(ctx, f.report.Id)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if report.VerifyVotes != 0 || report.FakeVotes != voters/2 {
		t.Errorf("Expected 0/%d votes after flips and retractions, got %d/%d", voters/2, report.VerifyVotes, report.FakeVotes)
	}

	votes, err := s.GetReportVotes(ctx, f.report.Id)
	if err != nil {
		t.Fatalf("GetReportVotes failed: %v", err)
	}
	if len(votes) != voters/2 {
		t.Errorf("Expected %d vote rows, got %d", voters/2, len(votes))
	}
	for _, v := range votes {
		if v.VoteType != models.VoteFake {
			t.Errorf("Expected only fake votes to remain, got %s", v.VoteType)
		}
	}
}

func TestCastVoteRejections(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	tests := []struct {
		name   string
		params store.VoteParams
		want   error
	}{
		{"author votes", store.VoteParams{ReportId: f.report.Id, UserId: f.owner.Id, VoteType: models.VoteVerify}, store.ErrForbidden},
		{"unknown report", store.VoteParams{ReportId: "missing", UserId: f.voter.Id, VoteType: models.VoteVerify}, store.ErrNotFound},
		{"unknown voter", store.VoteParams{ReportId: f.report.Id, UserId: "ghost", VoteType: models.VoteVerify}, store.ErrNotFound},
		{"bad vote type", store.VoteParams{ReportId: f.report.Id, UserId: f.voter.Id, VoteType: "maybe"}, store.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CastVote(ctx, tt.params); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetVerificationStatusAdjustsRating(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	steps := []struct {
		status    models.VerificationStatus
		delta     int
		newRating int
	}{
		{models.VerificationVerified, 5, 5},
		{models.VerificationFake, -15, 0},
		{models.VerificationVerified, 15, 15},
		{models.VerificationPending, -5, 10},
	}
	for _, step := range steps {
		result, err := s.SetVerificationStatus(ctx, f.report.Id, step.status)
		if err != nil {
			t.Fatalf("SetVerificationStatus(%s) failed: %v", step.status, err)
		}
		if result.RatingDelta != step.delta || result.NewRating != step.newRating {
			t.Errorf("Transition to %s: expected delta %d rating %d, got %d and %d",
				step.status, step.delta, step.newRating, result.RatingDelta, result.NewRating)
		}
		assertRating(t, s, f.owner.Id, step.newRating)
	}
}

func TestFakeThenVerifiedFromZeroRating(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	if _, err := s.SetVerificationStatus(ctx, f.report.Id, models.VerificationFake); err != nil {
		t.Fatalf("SetVerificationStatus(fake) failed: %v", err)
	}
	assertRating(t, s, f.owner.Id, 0)

	if _, err := s.SetVerificationStatus(ctx, f.report.Id, models.VerificationVerified); err != nil {
		t.Fatalf("SetVerificationStatus(verified) failed: %v", err)
	}
	assertRating(t, s, f.owner.Id, 15)
}

func TestSetVerificationStatusRepeatIsRejected(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	if _, err := s.SetVerificationStatus(ctx, f.report.Id, models.VerificationVerified); err != nil {
		t.Fatalf("SetVerificationStatus failed: %v", err)
	}
	if _, err := s.SetVerificationStatus(ctx, f.report.Id, models.VerificationVerified); !errors.Is(err, store.ErrAlreadyTerminal) {
		t.Errorf("Expected ErrAlreadyTerminal on repeat, got %v", err)
	}
	assertRating(t, s, f.owner.Id, 5)

	if _, err := s.SetVerificationStatus(ctx, f.report.Id, "bogus"); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := s.SetVerificationStatus(ctx, "missing", models.VerificationFake); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown report, got %v", err)
	}
}

func TestDeleteProgressReversesRating(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	if _, err := s.CastVote(ctx, store.VoteParams{ReportId: f.report.Id, UserId: f.voter.Id, VoteType: models.VoteVerify}); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if _, err := s.SetVerificationStatus(ctx, f.report.Id, models.VerificationVerified); err != nil {
		t.Fatalf("SetVerificationStatus failed: %v", err)
	}
	assertRating(t, s, f.owner.Id, 5)

	if err := s.DeleteProgress(ctx, f.report.Id, f.voter.Id); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for non-owner delete, got %v", err)
	}

	if err := s.DeleteProgress(ctx, f.report.Id, f.owner.Id); err != nil {
		t.Fatalf("DeleteProgress failed: %v", err)
	}
	assertRating(t, s, f.owner.Id, 0)

	if _, err := s.GetReport(ctx, f.report.Id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected report to be gone, got %v", err)
	}
	votes, err := s.GetReportVotes(ctx, f.report.Id)
	if err != nil || len(votes) != 0 {
		t.Errorf("Expected votes to be gone, got %d (%v)", len(votes), err)
	}
}

func TestDeleteFakeReportKeepsPenalty(t *testing.T) {
	s := setupTestDb(t)
	ctx := context.Background()
	f := setupReport(t, s)

	if _, err := s.SetVerificationStatus(ctx, f.report.Id, models.VerificationVerified); err != nil {
		t.Fatalf("SetVerificationStatus failed: %v", err)
	}
	second, err := s.AddProgress(ctx, store.ProgressParams{ChallengeId: f.challenge.Id, UserId: f.owner.Id, Content: "ran 10k"})
	if err != nil {
		t.Fatalf("AddProgress failed: %v", err)
	}
	if _, err := s.SetVerificationStatus(ctx, second.Id, models.VerificationFake); err != nil {
		t.Fatalf("SetVerificationStatus failed: %v", err)
	}
	// 5 - 10 floors at 0
	assertRating(t, s, f.owner.Id, 0)

	if err := s.DeleteProgress(ctx, second.Id, f.owner.Id); err != nil {
		t.Fatalf("DeleteProgress failed: %v", err)
	}
	assertRating(t, s, f.owner.Id, 0)

	if err := s.DeleteProgress(ctx, f.report.Id, f.owner.Id); err != nil {
		t.Fatalf("DeleteProgress failed: %v", err)
	}
	assertRating(t, s, f.owner.Id, 0)
}

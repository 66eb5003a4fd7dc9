package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"challenge-stake-go/internal/common"
	"challenge-stake-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const usage = `usage: report <command> [flags]

commands:
  add        post a progress report on your challenge
  delete     remove your report and reverse its rating effect
  vote       cast, flip or withdraw a verify/fake vote on a report
  verify     set a report's verification status (moderator)
  consensus  apply the vote majority once enough votes are in (moderator)
  donate     donate to a challenge, optionally attached to a report
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, loggerCleanup := common.Bootstrap()
	defer loggerCleanup()

	command, args := os.Args[1], os.Args[2:]
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	userFlag := fs.String("user", "", "Acting user: id, telegram id, username or email")
	challengeFlag := fs.String("challenge", "", "Challenge id")
	reportFlag := fs.String("report", "", "Report id")
	contentFlag := fs.String("content", "", "Report text")
	mediaFlag := fs.String("media", "", "Media reference attached to the report")
	voteFlag := fs.String("vote", "", "Vote type: verify or fake")
	reasonFlag := fs.String("reason", "", "Reason for the vote")
	statusFlag := fs.String("status", "", "Verification status: pending, verified or fake")
	minVotesFlag := fs.Int("min-votes", 3, "Votes required before consensus applies")
	amountFlag := fs.String("amount", "", "Donation amount")
	messageFlag := fs.String("message", "", "Donation message")
	if err := fs.Parse(args); err != nil {
		zap.L().Fatal("Failed to parse flags", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	svc := services.StakeService

	resolveUser := func() *models.User {
		if *userFlag == "" {
			zap.L().Fatal("--user is required", zap.String("command", command))
		}
		user, err := services.DbService.FindUser(ctx, *userFlag)
		if err != nil {
			zap.L().Fatal("User not found", zap.String("user", *userFlag), zap.Error(err))
		}
		return user
	}
	require := func(name, value string) string {
		if value == "" {
			zap.L().Fatal("missing required flag", zap.String("flag", name), zap.String("command", command))
		}
		return value
	}

	switch command {
	case "add":
		user := resolveUser()
		report, err := svc.AddProgress(ctx, require("challenge", *challengeFlag), user.Id, *contentFlag, *mediaFlag)
		if err != nil {
			zap.L().Fatal("Failed to add progress", zap.Error(err))
		}
		fmt.Printf("✓ Report %s added to challenge %s\n", report.Id, report.ChallengeId)

	case "delete":
		user := resolveUser()
		reportId := require("report", *reportFlag)
		if err := svc.DeleteProgress(ctx, reportId, user.Id); err != nil {
			zap.L().Fatal("Failed to delete report", zap.String("report_id", reportId), zap.Error(err))
		}
		fmt.Printf("✓ Report %s deleted\n", reportId)

	case "vote":
		user := resolveUser()
		voteType, err := models.ParseVoteType(*voteFlag)
		if err != nil {
			zap.L().Fatal("Invalid vote", zap.Error(err))
		}
		result, err := svc.CastVote(ctx, require("report", *reportFlag), user.Id, voteType, *reasonFlag)
		if err != nil {
			zap.L().Fatal("Failed to cast vote", zap.Error(err))
		}
		mine := "none"
		if result.MyVote != nil {
			mine = string(*result.MyVote)
		}
		fmt.Printf("✓ Votes: %d verify / %d fake (your vote: %s)\n", result.VerifyVotes, result.FakeVotes, mine)

	case "verify":
		status, err := models.ParseVerificationStatus(*statusFlag)
		if err != nil {
			zap.L().Fatal("Invalid status", zap.Error(err))
		}
		result, err := svc.SetReportVerification(ctx, require("report", *reportFlag), status)
		if err != nil {
			zap.L().Fatal("Failed to set verification", zap.Error(err))
		}
		printVerification(result)

	case "consensus":
		result, applied, err := svc.ApplyVoteConsensus(ctx, require("report", *reportFlag), *minVotesFlag)
		if err != nil {
			zap.L().Fatal("Failed to apply consensus", zap.Error(err))
		}
		if !applied {
			fmt.Println("No consensus yet: not enough votes or the vote is tied")
			return
		}
		printVerification(result)

	case "donate":
		user := resolveUser()
		amount, err := decimal.NewFromString(*amountFlag)
		if err != nil {
			zap.L().Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
		}
		result, err := svc.Donate(ctx, user.Id, require("challenge", *challengeFlag), amount, *reportFlag, *messageFlag)
		if err != nil {
			zap.L().Fatal("Failed to donate", zap.Error(err))
		}
		currency := cfg.Ledger.Currency
		common.PrintHeader("DONATION RECORDED", common.DefaultWidth)
		fmt.Printf("ID:              %s\n", result.DonationId)
		fmt.Printf("Challenge total: %s\n", common.FormatMoney(result.NewDonationsTotal, currency))
		fmt.Printf("Your balance:    %s\n", common.FormatMoney(result.DonorBalance, currency))
		common.PrintSeparator("=", common.DefaultWidth)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func printVerification(result *models.VerificationResult) {
	fmt.Printf("%s Report %s: %s -> %s (rating %+d, now %d)\n",
		common.StatusMark(string(result.NewStatus)),
		result.ReportId,
		result.OldStatus,
		result.NewStatus,
		result.RatingDelta,
		result.NewRating)
}

/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"challenge-stake-go/internal/api"
	"challenge-stake-go/internal/common"
	"challenge-stake-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const usage = `usage: challenge <command> [flags]

commands:
  create    stake funds on a new challenge
  complete  settle a challenge as completed and refund the stake
  fail      settle a challenge as failed and split the stake
  show      print a challenge with its reports, donations and ledger rows
  list      list a user's challenges
  delete    remove a challenge and everything attached to it (admin)
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
	idFlag := fs.String("id", "", "Challenge id")
	titleFlag := fs.String("title", "", "Challenge title")
	descriptionFlag := fs.String("description", "", "Challenge description")
	stakeFlag := fs.String("stake", "", "Stake amount")
	deadlineFlag := fs.Duration("deadline", 7*24*time.Hour, "Time from now until the deadline")
	categoryFlag := fs.String("category", "", "Challenge category")
	if err := fs.Parse(args); err != nil {
		zap.L().Fatal("Failed to parse flags", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	currency := cfg.Ledger.Currency
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
	requireId := func() string {
		if *idFlag == "" {
			zap.L().Fatal("--id is required", zap.String("command", command))
		}
		return *idFlag
	}

	switch command {
	case "create":
		user := resolveUser()
		stake, err := decimal.NewFromString(*stakeFlag)
		if err != nil {
			zap.L().Fatal("Invalid stake", zap.String("stake", *stakeFlag), zap.Error(err))
		}
		result, err := svc.CreateChallenge(ctx, api.CreateChallengeParams{
			UserId:      user.Id,
			Title:       *titleFlag,
			Description: *descriptionFlag,
			StakeAmount: stake,
			Deadline:    time.Now().Add(*deadlineFlag),
			Category:    *categoryFlag,
		})
		if err != nil {
			zap.L().Fatal("Failed to create challenge", zap.Error(err))
		}
		common.PrintHeader("CHALLENGE CREATED", common.DefaultWidth)
		fmt.Printf("ID:          %s\n", result.ChallengeId)
		fmt.Printf("Staked:      %s\n", common.FormatMoney(stake, currency))
		fmt.Printf("New balance: %s\n", common.FormatMoney(result.NewBalance, currency))
		common.PrintSeparator("=", common.DefaultWidth)

	case "complete", "fail":
		user := resolveUser()
		id := requireId()
		var result *models.SettlementResult
		if command == "complete" {
			result, err = svc.CompleteChallenge(ctx, id, user.Id)
		} else {
			result, err = svc.FailChallenge(ctx, id, user.Id)
		}
		if err != nil {
			zap.L().Fatal("Failed to settle challenge", zap.String("challenge_id", id), zap.Error(err))
		}
		printSettlement(result, currency)

	case "show":
		printChallenge(ctx, svc, requireId(), currency)

	case "list":
		user := resolveUser()
		challenges, err := svc.GetUserChallenges(ctx, user.Id)
		if err != nil {
			zap.L().Fatal("Failed to list challenges", zap.Error(err))
		}
		common.PrintHeader(fmt.Sprintf("CHALLENGES FOR %s", user.Username), common.DefaultWidth)
		for i, c := range challenges {
			fmt.Printf("%s %s %-30s %14s  due %s  (%s)\n",
				common.BoxPrefix(i == len(challenges)-1),
				common.StatusMark(string(c.Status)),
				c.Title,
				common.FormatMoney(c.StakeAmount, currency),
				c.Deadline.Format("2006-01-02 15:04"),
				c.Id)
		}
		common.PrintFooter(fmt.Sprintf("%d challenges", len(challenges)), common.DefaultWidth)

	case "delete":
		id := requireId()
		if err := svc.DeleteChallenge(ctx, id); err != nil {
			zap.L().Fatal("Failed to delete challenge", zap.String("challenge_id", id), zap.Error(err))
		}
		fmt.Printf("✓ Challenge %s deleted\n", id)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func printSettlement(result *models.SettlementResult, currency string) {
	common.PrintHeader("CHALLENGE SETTLED", common.DefaultWidth)
	fmt.Printf("ID:       %s\n", result.ChallengeId)
	fmt.Printf("Status:   %s %s\n", common.StatusMark(string(result.Status)), result.Status)
	if result.Refunded.IsPositive() {
		fmt.Printf("Refunded: %s\n", common.FormatMoney(result.Refunded, currency))
	}
	if result.CharityAmount.IsPositive() {
		fmt.Printf("Charity:  %s\n", common.FormatMoney(result.CharityAmount, currency))
	}
	if result.PlatformFee.IsPositive() {
		fmt.Printf("Fee:      %s\n", common.FormatMoney(result.PlatformFee, currency))
	}
	common.PrintSeparator("=", common.DefaultWidth)
}

func printChallenge(ctx context.Context, svc *api.StakeService, id, currency string) {
	c, err := svc.GetChallenge(ctx, id)
	if err != nil {
		zap.L().Fatal("Failed to get challenge", zap.String("challenge_id", id), zap.Error(err))
	}
	reports, err := svc.GetChallengeReports(ctx, id)
	if err != nil {
		zap.L().Fatal("Failed to get reports", zap.Error(err))
	}
	donations, err := svc.GetChallengeDonations(ctx, id)
	if err != nil {
		zap.L().Fatal("Failed to get donations", zap.Error(err))
	}
	history, err := svc.GetChallengeHistory(ctx, id)
	if err != nil {
		zap.L().Fatal("Failed to get ledger rows", zap.Error(err))
	}

	common.PrintHeader(c.Title, common.WideWidth)
	fmt.Printf("ID:        %s\n", c.Id)
	fmt.Printf("Owner:     %s\n", c.UserId)
	fmt.Printf("Status:    %s %s\n", common.StatusMark(string(c.Status)), c.Status)
	fmt.Printf("Category:  %s\n", c.Category)
	fmt.Printf("Stake:     %s\n", common.FormatMoney(c.StakeAmount, currency))
	fmt.Printf("Donations: %s\n", common.FormatMoney(c.DonationsAmount, currency))
	fmt.Printf("Deadline:  %s\n", c.Deadline.Format("2006-01-02 15:04:05"))

	fmt.Printf("\n┌─ Reports: %d\n", len(reports))
	for i, r := range reports {
		fmt.Printf("%s %s %-9s +%d/-%d  %s  (%s)\n",
			common.BoxPrefix(i == len(reports)-1),
			common.StatusMark(string(r.VerificationStatus)),
			r.VerificationStatus,
			r.VerifyVotes,
			r.FakeVotes,
			r.Content,
			r.Id)
	}

	fmt.Printf("\n┌─ Donations: %d\n", len(donations))
	for i, d := range donations {
		fmt.Printf("%s %14s from %s  %s\n",
			common.BoxPrefix(i == len(donations)-1),
			common.FormatMoney(d.Amount, currency),
			d.DonorId,
			d.Message)
	}

	fmt.Printf("\n┌─ Ledger rows: %d\n", len(history))
	for i, rec := range history {
		fmt.Printf("%s %-13s %12s  %s\n",
			common.BoxPrefix(i == len(history)-1),
			rec.Type,
			common.FormatSigned(rec.Amount),
			rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	common.PrintSeparatorNewline("=", common.WideWidth)
}

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

	"challenge-stake-go/internal/common"
	"challenge-stake-go/internal/database"
	"challenge-stake-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers      int
	usersWithFunds  int
	reconcileErrors int
}

func formatTransactionId(txId string) string {
	if txId == "" {
		return "none"
	}
	if len(txId) > 8 {
		return txId[:8] + "..."
	}
	return txId
}

func printTransaction(tx models.Transaction, isLast bool) {
	fmt.Printf("%s %-13s %12s  %s  (%s, %s)\n",
		common.BoxPrefix(isLast),
		tx.Type,
		common.FormatSigned(tx.Amount),
		tx.CreatedAt.Format("2006-01-02 15:04:05"),
		formatTransactionId(tx.Id),
		tx.Description)
}

func printUserHeader(user common.UserInfo, balance string) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Username, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Balance: %s   Rating: %d\n", balance, user.Rating)
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user common.UserInfo, dbService *database.Service, currency string, history int, reconcile bool) (bool, error) {
	balance, err := dbService.GetUserBalance(ctx, user.Id)
	if err != nil {
		return false, fmt.Errorf("failed to get balance: %w", err)
	}

	printUserHeader(user, common.FormatMoney(balance, currency))

	if reconcile {
		if err := dbService.ReconcileUserBalance(ctx, user.Id); err != nil {
			fmt.Printf("%s ✗ %v\n", common.BoxPrefix(history == 0), err)
			return balance.IsPositive(), err
		}
		fmt.Printf("%s ✓ balance matches ledger\n", common.BoxPrefix(history == 0))
	}

	if history > 0 {
		txs, err := dbService.GetTransactionHistory(ctx, user.Id, history, 0)
		if err != nil {
			return false, fmt.Errorf("failed to get history: %w", err)
		}
		for i, tx := range txs {
			printTransaction(tx, i == len(txs)-1)
		}
	}

	return balance.IsPositive(), nil
}

func printSystemAccounts(ctx context.Context, dbService *database.Service, currency string, reconcile bool, logger *zap.Logger) int {
	failures := 0
	fmt.Println("\n┌─ System accounts")
	accounts := []string{models.AccountCharity, models.AccountPlatformFee}
	for i, name := range accounts {
		isLast := i == len(accounts)-1
		account, err := dbService.GetSystemAccount(ctx, name)
		if err != nil {
			logger.Error("Failed to get system account", zap.String("account", name), zap.Error(err))
			failures++
			continue
		}
		status := ""
		if reconcile {
			status = " ✓"
			if err := dbService.ReconcileSystemAccount(ctx, name); err != nil {
				logger.Error("System account out of balance", zap.String("account", name), zap.Error(err))
				status = " ✗"
				failures++
			}
		}
		fmt.Printf("%s %-15s: %20s (v%d, updated: %s)%s\n",
			common.BoxPrefix(isLast),
			account.Account,
			common.FormatMoney(account.Balance, currency),
			account.Version,
			account.UpdatedAt.Format("2006-01-02 15:04:05"),
			status)
	}
	return failures
}

func main() {
	ctx := context.Background()

	cfg, loggerCleanup := common.Bootstrap()
	defer loggerCleanup()
	logger := zap.L()

	// Parse command line flags
	userFlag := flag.String("user", "", "Filter by user id, telegram id, username or email (optional)")
	historyFlag := flag.Int("history", 0, "Show the N most recent transactions per user")
	reconcileFlag := flag.Bool("reconcile", false, "Check every balance against the transaction log")
	flag.Parse()

	logger.Info("Starting balance query")

	// Read-only: no notification sinks needed
	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := common.InitializeUsers(ctx, dbService, *userFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("USER BALANCE REPORT", common.DefaultWidth)

	stats := balanceStats{}
	for _, user := range users {
		stats.totalUsers++
		funded, err := processUser(ctx, user, dbService, cfg.Ledger.Currency, *historyFlag, *reconcileFlag)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("username", user.Username),
				zap.Error(err))
			stats.reconcileErrors++
		}
		if funded {
			stats.usersWithFunds++
		}
	}

	if *userFlag == "" {
		stats.reconcileErrors += printSystemAccounts(ctx, dbService, cfg.Ledger.Currency, *reconcileFlag, logger)
	}

	summary := fmt.Sprintf("SUMMARY: %d of %d users hold funds, %d problems found",
		stats.usersWithFunds, stats.totalUsers, stats.reconcileErrors)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_funds", stats.usersWithFunds),
		zap.Int("problems", stats.reconcileErrors))
}

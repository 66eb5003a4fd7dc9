package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"challenge-stake-go/internal/common"
	"challenge-stake-go/internal/formance"
	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/rules"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, loggerCleanup := common.Bootstrap()
	defer loggerCleanup()
	logger := zap.L()

	batchFlag := flag.Int("batch", 100, "Transactions fetched per page")
	verifyFlag := flag.Bool("verify", false, "Compare mirrored balances with the local ledger after the pass")
	flag.Parse()

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	mirror, err := formance.NewService(ctx, cfg.Formance, cfg.Ledger.Currency)
	if err != nil {
		logger.Fatal("Failed to initialize Formance mirror", zap.Error(err))
	}
	defer mirror.Close()

	result, err := mirror.MirrorAll(ctx, dbService, *batchFlag)
	if err != nil {
		logger.Fatal("Mirror pass failed",
			zap.Int("posted", result.Posted),
			zap.Int("skipped", result.Skipped),
			zap.Error(err))
	}

	common.PrintHeader("FORMANCE MIRROR", common.DefaultWidth)
	fmt.Printf("Posted:  %d\n", result.Posted)
	fmt.Printf("Skipped: %d (already mirrored)\n", result.Skipped)

	if !*verifyFlag {
		common.PrintSeparator("=", common.DefaultWidth)
		return
	}

	mismatches := 0
	check := func(label, address string, local decimal.Decimal) {
		remote, err := mirror.AccountBalance(ctx, address)
		if err != nil {
			logger.Error("Failed to read mirrored balance", zap.String("address", address), zap.Error(err))
			mismatches++
			return
		}
		mark := "✓"
		if !remote.Equal(local) {
			mark = "✗"
			mismatches++
		}
		fmt.Printf("%s %-40s local %14s  mirror %14s\n", mark, label,
			local.StringFixed(2), remote.StringFixed(2))
	}

	common.PrintSeparatorNewline("-", common.DefaultWidth)
	users, err := dbService.GetUsers(ctx)
	if err != nil {
		logger.Fatal("Failed to get users", zap.Error(err))
	}
	for _, u := range users {
		check(u.Username, rules.UserLedgerAccount(u.Id), u.Balance)
	}
	for _, name := range []string{models.AccountCharity, models.AccountPlatformFee} {
		account, err := dbService.GetSystemAccount(ctx, name)
		if err != nil {
			logger.Fatal("Failed to get system account", zap.String("account", name), zap.Error(err))
		}
		check(name, name, account.Balance)
	}

	common.PrintFooter(fmt.Sprintf("%d mismatched accounts", mismatches), common.DefaultWidth)
	if mismatches > 0 {
		logger.Warn("Mirror verification found mismatches", zap.Int("count", mismatches))
	}
}

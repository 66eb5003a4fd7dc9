package main

import (
	"context"
	"flag"
	"fmt"

	"challenge-stake-go/internal/common"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, loggerCleanup := common.Bootstrap()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id, telegram id, username or email (required)")
	amountFlag := flag.String("amount", "", "Amount to credit, e.g. 100 or 12.50 (required)")
	flag.Parse()

	if *userFlag == "" || *amountFlag == "" {
		zap.L().Fatal("Both flags are required: --user and --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		zap.L().Fatal("Invalid amount", zap.String("amount", *amountFlag), zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := services.DbService.FindUser(ctx, *userFlag)
	if err != nil {
		zap.L().Fatal("User not found", zap.String("user", *userFlag), zap.Error(err))
	}

	result, err := services.StakeService.AddBalance(ctx, user.Id, amount)
	if err != nil {
		zap.L().Fatal("Failed to add balance", zap.String("user_id", user.Id), zap.Error(err))
	}

	common.PrintHeader("BALANCE TOP-UP", common.DefaultWidth)
	fmt.Printf("User:        %s (%s)\n", user.Username, user.Id)
	fmt.Printf("Credited:    %s\n", common.FormatMoney(amount, cfg.Ledger.Currency))
	fmt.Printf("New balance: %s\n", common.FormatMoney(result.NewBalance, cfg.Ledger.Currency))
	common.PrintSeparator("=", common.DefaultWidth)
}

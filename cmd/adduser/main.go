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
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strings"

	"challenge-stake-go/internal/common"
	"challenge-stake-go/internal/store"

	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) < 2 {
		return fmt.Errorf("username must be at least 2 characters")
	}
	return nil
}

func main() {
	ctx := context.Background()

	cfg, loggerCleanup := common.Bootstrap()
	defer loggerCleanup()

	// Parse command line flags
	usernameFlag := flag.String("username", "", "Username (required)")
	emailFlag := flag.String("email", "", "Email address (optional)")
	telegramFlag := flag.Int64("telegram-id", 0, "Telegram chat id for notifications (optional)")
	premiumFlag := flag.Bool("premium", false, "Mark the user as premium")
	flag.Parse()

	if err := validateUsername(*usernameFlag); err != nil {
		zap.L().Fatal("Invalid username", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}

	zap.L().Info("Starting user creation process",
		zap.String("username", *usernameFlag),
		zap.String("email", *emailFlag))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := services.StakeService.RegisterUser(ctx, store.RegisterUserParams{
		Username:   *usernameFlag,
		Email:      *emailFlag,
		TelegramId: *telegramFlag,
		Premium:    *premiumFlag,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateReference) {
			zap.L().Fatal("User already exists", zap.String("username", *usernameFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:       %s\n", user.Id)
	fmt.Printf("Username: %s\n", user.Username)
	if user.Email != "" {
		fmt.Printf("Email:    %s\n", user.Email)
	}
	if user.TelegramId != 0 {
		fmt.Printf("Telegram: %d\n", user.TelegramId)
	}
	fmt.Printf("Balance:  %s\n", common.FormatMoney(user.Balance, cfg.Ledger.Currency))
	fmt.Printf("Rating:   %d\n", user.Rating)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("User created successfully", zap.String("id", user.Id))
}

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

package api

import (
	"context"
	"fmt"
	"time"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *StakeService) RegisterUser(ctx context.Context, params store.RegisterUserParams) (user *models.User, err error) {
	defer observe("register_user", time.Now(), &err)
	return s.store.RegisterUser(ctx, params)
}

// AddBalance records a trusted deposit.
func (s *StakeService) AddBalance(ctx context.Context, userId string, amount decimal.Decimal) (result *models.BalanceResult, err error) {
	defer observe("add_balance", time.Now(), &err)

	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", store.ErrInvalidInput)
	}

	tx, err := s.store.Credit(ctx, store.LedgerParams{
		UserId:      userId,
		Type:        models.TransactionDeposit,
		Amount:      amount,
		Description: "Balance top-up",
	})
	if err != nil {
		zap.L().Error("Deposit failed",
			zap.String("user_id", userId),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	return &models.BalanceResult{Success: true, NewBalance: tx.BalanceAfter}, nil
}

// GetUserBalance returns the spendable balance for a user
func (s *StakeService) GetUserBalance(ctx context.Context, userId string) (decimal.Decimal, error) {
	if userId == "" {
		return decimal.Zero, fmt.Errorf("%w: user_id is required", store.ErrInvalidInput)
	}

	balance, err := s.store.GetUserBalance(ctx, userId)
	if err != nil {
		zap.L().Error("Failed to get user balance", zap.String("user_id", userId), zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to retrieve balance: %w", err)
	}
	return balance, nil
}

// GetTransactionHistory returns paginated transaction history for a user
func (s *StakeService) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.TransactionRecord, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user_id is required", store.ErrInvalidInput)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.store.GetTransactionHistory(ctx, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return toRecords(transactions), nil
}

// GetChallengeHistory returns every ledger row tied to a challenge, sink credits included
func (s *StakeService) GetChallengeHistory(ctx context.Context, challengeId string) ([]models.TransactionRecord, error) {
	transactions, err := s.store.GetChallengeTransactions(ctx, challengeId)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve challenge history: %w", err)
	}
	return toRecords(transactions), nil
}

func toRecords(transactions []models.Transaction) []models.TransactionRecord {
	result := make([]models.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		result[i] = models.TransactionRecord{
			Id:          tx.Id,
			Type:        tx.Type,
			ChallengeId: tx.ChallengeId,
			Amount:      tx.Amount,
			Description: tx.Description,
			CreatedAt:   tx.CreatedAt,
		}
	}
	return result
}

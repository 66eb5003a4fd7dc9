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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying active users")

	users, err := queryList(ctx, s.db, "user", scanUser, queryGetActiveUsers)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))

	user, found, err := s.lookupUser(ctx, queryGetUserById, userId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, userId)
	}

	zap.L().Debug("Retrieved user by ID", zap.String("user_id", userId), zap.String("username", user.Username))
	return user, nil
}

// userLookup is one strategy FindUser tries. found=false means "no match,
// try the next one"; a non-nil error aborts the search.
type userLookup struct {
	name string
	find func(ctx context.Context, identifier string) (user *models.User, found bool, err error)
}

func (s *Service) userLookups() []userLookup {
	return []userLookup{
		{"id", func(ctx context.Context, identifier string) (*models.User, bool, error) {
			return s.lookupUser(ctx, queryGetUserById, identifier)
		}},
		{"telegram_id", func(ctx context.Context, identifier string) (*models.User, bool, error) {
			telegramId, err := strconv.ParseInt(identifier, 10, 64)
			if err != nil || telegramId == 0 {
				return nil, false, nil
			}
			return s.lookupUser(ctx, queryGetUserByTelegramId, telegramId)
		}},
		{"username", func(ctx context.Context, identifier string) (*models.User, bool, error) {
			return s.lookupUser(ctx, queryGetUserByUsername, identifier)
		}},
		{"email", func(ctx context.Context, identifier string) (*models.User, bool, error) {
			if !strings.Contains(identifier, "@") {
				return nil, false, nil
			}
			return s.lookupUser(ctx, queryGetUserByEmail, identifier)
		}},
	}
}

// FindUser resolves an operator-supplied identifier by trying each lookup
// strategy in order and returning the first match.
func (s *Service) FindUser(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: empty user identifier", store.ErrInvalidInput)
	}

	for _, lookup := range s.userLookups() {
		user, found, err := lookup.find(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("user lookup by %s failed: %w", lookup.name, err)
		}
		if found {
			zap.L().Debug("Resolved user",
				zap.String("identifier", identifier),
				zap.String("strategy", lookup.name),
				zap.String("user_id", user.Id))
			return user, nil
		}
	}

	return nil, fmt.Errorf("%w: no user matches %q", store.ErrNotFound, identifier)
}

func (s *Service) lookupUser(ctx context.Context, query string, arg any) (*models.User, bool, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		zap.L().Error("Failed to query user", zap.Any("key", arg), zap.Error(err))
		return nil, false, fmt.Errorf("unable to query user: %w", err)
	}
	return user, true, nil
}

// RegisterUser creates a user and, when an initial balance is configured,
// grants it as a deposit inside the same transaction.
func (s *Service) RegisterUser(ctx context.Context, params store.RegisterUserParams) (*models.User, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", store.ErrInvalidInput)
	}

	userId := uuid.New().String()
	zap.L().Info("Creating user",
		zap.String("id", userId),
		zap.String("username", username),
		zap.String("email", params.Email))

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		_, err := tx.ExecContext(ctx, queryInsertUser, userId, username,
			nullString(params.Email), nullInt64(params.TelegramId), params.Premium, now, now)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: user %s already exists", store.ErrDuplicateReference, username)
			}
			return fmt.Errorf("unable to insert user: %w", err)
		}

		if s.initialBalance.IsPositive() {
			_, err := s.creditUser(ctx, tx, store.LedgerParams{
				UserId:      userId,
				Type:        models.TransactionDeposit,
				Amount:      s.initialBalance,
				Description: "Initial balance",
			})
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Error("Failed to register user", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	zap.L().Info("User created successfully", zap.String("id", userId), zap.String("username", username))
	return s.GetUserById(ctx, userId)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

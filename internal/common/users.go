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
package common

import (
	"context"
	"fmt"

	"challenge-stake-go/internal/models"

	"go.uber.org/zap"
)

// UserFinder is the part of the store command-line utilities need to pick users
type UserFinder interface {
	FindUser(ctx context.Context, identifier string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
}

// UserInfo represents simplified user information for command-line utilities
type UserInfo struct {
	Id       string
	Username string
	Email    string
	Rating   int
}

// InitializeUsers retrieves users based on an optional filter.
// The filter may be an id, telegram id, username or email.
// If filter is empty, returns all users.
func InitializeUsers(ctx context.Context, finder UserFinder, filter string, logger *zap.Logger) ([]UserInfo, error) {
	var users []UserInfo

	if filter != "" {
		logger.Info("Looking up user", zap.String("filter", filter))
		user, err := finder.FindUser(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, toUserInfo(*user))
	} else {
		allUsers, err := finder.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		for _, u := range allUsers {
			users = append(users, toUserInfo(u))
		}
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func toUserInfo(u models.User) UserInfo {
	return UserInfo{
		Id:       u.Id,
		Username: u.Username,
		Email:    u.Email,
		Rating:   u.Rating,
	}
}

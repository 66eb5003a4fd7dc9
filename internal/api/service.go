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

	"challenge-stake-go/internal/metrics"
	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/notify"
	"challenge-stake-go/internal/store"

	"go.uber.org/zap"
)

// StakeService is the operation surface callers use. It validates input,
// delegates atomic work to the store and emits notifications after commit.
type StakeService struct {
	store      store.StakeStore
	notifier   notify.Notifier
	categories Categories
	now        func() time.Time
}

func NewStakeService(st store.StakeStore, notifier notify.Notifier, categories Categories) *StakeService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &StakeService{
		store:      st,
		notifier:   notifier,
		categories: categories,
		now:        time.Now,
	}
}

func (s *StakeService) HealthCheck(ctx context.Context) error {
	_, err := s.store.GetSystemAccount(ctx, models.AccountCharity)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// observe is deferred by every operation with a pointer to its named error.
func observe(operation string, start time.Time, errp *error) {
	metrics.Observe(operation, time.Since(start).Seconds(), *errp)
}

// emit hands an event to the notifier. Delivery failures never reach the caller.
func (s *StakeService) emit(ctx context.Context, event notify.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		zap.L().Warn("Failed to enqueue notification",
			zap.String("kind", string(event.Kind)),
			zap.String("user_id", event.UserId),
			zap.Error(err))
	}
}

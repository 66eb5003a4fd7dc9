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

package expiry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"challenge-stake-go/internal/metrics"

	"go.uber.org/zap"
)

// Expirer settles overdue challenges in batches.
type Expirer interface {
	ExpireOverdue(ctx context.Context, batchSize int) (int, error)
}

// SweeperConfig contains configuration for Sweeper
type SweeperConfig struct {
	Expirer         Expirer
	PollingInterval time.Duration
	BatchSize       int
}

// Sweeper periodically fails active challenges whose deadline has passed
type Sweeper struct {
	expirer         Expirer
	pollingInterval time.Duration
	batchSize       int

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// ANSI color helpers for console output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

func NewSweeper(cfg SweeperConfig) (*Sweeper, error) {
	if cfg.Expirer == nil {
		return nil, fmt.Errorf("expirer is required")
	}
	if cfg.PollingInterval <= 0 {
		return nil, fmt.Errorf("polling interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}

	return &Sweeper{
		expirer:         cfg.Expirer,
		pollingInterval: cfg.PollingInterval,
		batchSize:       cfg.BatchSize,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}, nil
}

// Start begins the sweep loop. The first sweep runs immediately.
func (s *Sweeper) Start(ctx context.Context) {
	zap.L().Info("Starting expiry sweeper",
		zap.Duration("polling_interval", s.pollingInterval),
		zap.Int("batch_size", s.batchSize))
	go s.pollLoop(ctx)
}

// Stop gracefully stops the sweeper
func (s *Sweeper) Stop() {
	zap.L().Info("Stopping expiry sweeper")
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.doneChan
	zap.L().Info("Expiry sweeper stopped")
}

// Done is closed once the loop has exited.
func (s *Sweeper) Done() <-chan struct{} {
	return s.doneChan
}

func (s *Sweeper) pollLoop(ctx context.Context) {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep drains overdue challenges batch by batch until a batch comes back
// short or a stop is requested.
func (s *Sweeper) Sweep(ctx context.Context) int {
	total := 0
	for {
		expired, err := s.expirer.ExpireOverdue(ctx, s.batchSize)
		total += expired
		if err != nil {
			metrics.ExpirySweepsTotal.WithLabelValues("error").Inc()
			fmt.Printf("%s[%s] Expiry sweep failed: %s%s\n", colorRed, time.Now().Format("15:04:05"), err, colorReset)
			zap.L().Error("Expiry sweep failed", zap.Int("expired", total), zap.Error(err))
			return total
		}
		if expired < s.batchSize {
			break
		}
		select {
		case <-s.stopChan:
			return total
		case <-ctx.Done():
			return total
		default:
		}
	}

	metrics.ExpirySweepsTotal.WithLabelValues("ok").Inc()
	if total > 0 {
		fmt.Printf("%s[%s] Expired %d overdue challenges%s\n", colorGreen, time.Now().Format("15:04:05"), total, colorReset)
	} else {
		fmt.Printf("%s[%s] No overdue challenges%s\n", colorCyan, time.Now().Format("15:04:05"), colorReset)
	}
	return total
}

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
	"os/signal"
	"syscall"

	"challenge-stake-go/internal/common"
	"challenge-stake-go/internal/expiry"
	"challenge-stake-go/internal/ops"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, loggerCleanup := common.Bootstrap()
	defer loggerCleanup()

	zap.L().Info("Starting challenge expiry worker",
		zap.Duration("polling_interval", cfg.Expiry.PollingInterval),
		zap.Int("batch_size", cfg.Expiry.BatchSize),
		zap.String("metrics_addr", cfg.Metrics.ListenAddr))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	sweeper, err := expiry.NewSweeper(expiry.SweeperConfig{
		Expirer:         services.StakeService,
		PollingInterval: cfg.Expiry.PollingInterval,
		BatchSize:       cfg.Expiry.BatchSize,
	})
	if err != nil {
		zap.L().Fatal("Failed to create sweeper", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sweeper.Start(gctx)
		<-gctx.Done()
		sweeper.Stop()
		return nil
	})

	if cfg.Metrics.ListenAddr != "" {
		server := ops.NewServer(cfg.Metrics.ListenAddr, services.StakeService)
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Expiry worker stopped with error", zap.Error(err))
		return
	}
	zap.L().Info("Expiry worker shut down cleanly")
}

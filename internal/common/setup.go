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
	"log"
	"strings"

	"challenge-stake-go/internal/api"
	"challenge-stake-go/internal/config"
	"challenge-stake-go/internal/database"
	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/notify"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService    *database.Service
	StakeService *api.StakeService
	Telegram     *notify.Telegram
}

// InitializeLogger installs the global zap logger. LOG_ENV=development
// switches to colored console output.
func InitializeLogger(logEnv string) (*zap.Logger, func()) {
	var (
		logger *zap.Logger
		err    error
	)
	if strings.EqualFold(logEnv, "development") {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = cfg.Build()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// Bootstrap loads configuration and installs the logger it selects.
// Configuration errors are fatal.
func Bootstrap() (*models.Config, func()) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	_, cleanup := InitializeLogger(cfg.LogEnv)
	return cfg, cleanup
}

// InitializeServices opens the ledger database and builds the stake service
// with its notification sinks. A configured Telegram sink is started with ctx.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database, cfg.Ledger)
	if err != nil {
		return nil, err
	}

	names, err := LoadCategories(cfg.Ledger.CategoriesFile)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	if len(names) > 0 {
		zap.L().Info("Loaded challenge categories", zap.Strings("categories", names))
	}

	services := &Services{DbService: dbService}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Enabled {
		sinks := notify.Multi{notify.Log{}}
		if cfg.Notify.TelegramToken != "" {
			telegram, err := notify.NewTelegramFromToken(cfg.Notify.TelegramToken, dbService, cfg.Notify.QueueSize)
			if err != nil {
				dbService.Close()
				return nil, err
			}
			telegram.Start(ctx)
			services.Telegram = telegram
			sinks = append(sinks, telegram)
		}
		notifier = sinks
	}

	services.StakeService = api.NewStakeService(dbService, notifier, api.NewCategories(names))
	return services, nil
}

// InitializeDatabaseOnly initializes just the database service
// Useful for read-only operations like querying balances
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	return database.NewService(ctx, cfg.Database, cfg.Ledger)
}

func (cs *Services) Close() {
	if cs.Telegram != nil {
		cs.Telegram.Stop()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}

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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"challenge-stake-go/internal/models"

	"github.com/shopspring/decimal"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	busyTimeout, err := getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	pollingInterval, err := getEnvDuration("EXPIRY_POLLING_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	feeRate, err := getEnvDecimal("PLATFORM_FEE_RATE", decimal.RequireFromString("0.05"))
	if err != nil {
		return nil, err
	}

	initialBalance, err := getEnvDecimal("INITIAL_BALANCE", decimal.Zero)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "stake.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			BusyTimeout:     busyTimeout,
			RetryAttempts:   getEnvInt("TX_RETRY_ATTEMPTS", 3),
		},
		Ledger: models.LedgerConfig{
			Currency:        getEnvString("LEDGER_CURRENCY", "USD"),
			PlatformFeeRate: feeRate,
			InitialBalance:  initialBalance,
			CategoriesFile:  getEnvString("CATEGORIES_FILE", "categories.yaml"),
		},
		Expiry: models.ExpiryConfig{
			PollingInterval: pollingInterval,
			BatchSize:       getEnvInt("EXPIRY_BATCH_SIZE", 100),
		},
		Notify: models.NotifyConfig{
			Enabled:       getEnvBool("NOTIFY_ENABLED", true),
			TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			QueueSize:     getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		},
		Metrics: models.MetricsConfig{
			ListenAddr: getEnvString("METRICS_ADDR", ":9090"),
		},
		Formance: models.FormanceConfig{
			StackURL:     os.Getenv("FORMANCE_STACK_URL"),
			ClientID:     os.Getenv("FORMANCE_CLIENT_ID"),
			ClientSecret: os.Getenv("FORMANCE_CLIENT_SECRET"),
			LedgerName:   getEnvString("FORMANCE_LEDGER", "challenge-stake"),
		},
		LogEnv: getEnvString("LOG_ENV", "production"),
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

// getEnvDecimal fails loudly: a mistyped money setting must not fall back silently.
func getEnvDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	if value := os.Getenv(key); value != "" {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q (%w)", key, value, err)
		}
		return d, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

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

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.StakeStore.
var _ store.StakeStore = (*Service)(nil)

type Service struct {
	db             *sql.DB
	retryAttempts  int
	feeRate        decimal.Decimal
	initialBalance decimal.Decimal
}

func NewService(ctx context.Context, cfg models.DatabaseConfig, ledger models.LedgerConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}
	if ledger.PlatformFeeRate.IsNegative() || ledger.PlatformFeeRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("platform fee rate must be within [0, 1], got %s", ledger.PlatformFeeRate.String())
	}
	if ledger.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("initial balance cannot be negative, got %s", ledger.InitialBalance.String())
	}

	retryAttempts := cfg.RetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = 1
	}

	// Immediate transactions take the write lock up front so balance
	// read-modify-write cycles serialize across connections.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_txlock=immediate&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{
		db:             db,
		retryAttempts:  retryAttempts,
		feeRate:        ledger.PlatformFeeRate,
		initialBalance: ledger.InitialBalance,
	}
	if err := service.initSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully",
		zap.String("platform_fee_rate", ledger.PlatformFeeRate.String()),
		zap.String("initial_balance", ledger.InitialBalance.String()))
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT UNIQUE,
		telegram_id INTEGER UNIQUE,
		balance TEXT NOT NULL DEFAULT '0',
		rating INTEGER NOT NULL DEFAULT 0 CHECK (rating >= 0),
		premium BOOLEAN NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT 1,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS challenges (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		stake_amount TEXT NOT NULL,
		donations_amount TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'failed')),
		deadline TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_challenges_user_id ON challenges(user_id);
	CREATE INDEX IF NOT EXISTS idx_challenges_status_deadline ON challenges(status, deadline);

	CREATE TABLE IF NOT EXISTS progress_updates (
		id TEXT PRIMARY KEY,
		challenge_id TEXT NOT NULL REFERENCES challenges(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		media_ref TEXT NOT NULL DEFAULT '',
		verify_votes INTEGER NOT NULL DEFAULT 0 CHECK (verify_votes >= 0),
		fake_votes INTEGER NOT NULL DEFAULT 0 CHECK (fake_votes >= 0),
		verification_status TEXT NOT NULL DEFAULT 'pending' CHECK (verification_status IN ('pending', 'verified', 'fake')),
		donations_amount TEXT NOT NULL DEFAULT '0',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_progress_updates_challenge_id ON progress_updates(challenge_id);
	CREATE INDEX IF NOT EXISTS idx_progress_updates_user_id ON progress_updates(user_id);

	CREATE TABLE IF NOT EXISTS report_votes (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL REFERENCES progress_updates(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		vote_type TEXT NOT NULL CHECK (vote_type IN ('verify', 'fake')),
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(report_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_report_votes_report_id ON report_votes(report_id);

	CREATE TABLE IF NOT EXISTS donations (
		id TEXT PRIMARY KEY,
		donor_id TEXT NOT NULL REFERENCES users(id),
		challenge_id TEXT NOT NULL REFERENCES challenges(id),
		report_id TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_donations_challenge_id ON donations(challenge_id);
	CREATE INDEX IF NOT EXISTS idx_donations_donor_id ON donations(donor_id);
	CREATE INDEX IF NOT EXISTS idx_donations_report_id ON donations(report_id);

	-- Append-only audit trail. challenge_id carries no foreign key so rows
	-- survive an administrative cascade.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account TEXT NOT NULL DEFAULT 'user',
		challenge_id TEXT NOT NULL DEFAULT '',
		transaction_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_account ON transactions(user_id, account);
	CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account);
	CREATE INDEX IF NOT EXISTS idx_transactions_challenge_id ON transactions(challenge_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);

	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		debit_amount TEXT NOT NULL DEFAULT '0',
		credit_amount TEXT NOT NULL DEFAULT '0',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_journal_transaction_id ON journal_entries(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_journal_account ON journal_entries(account_id);

	CREATE TABLE IF NOT EXISTS system_accounts (
		account TEXT PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO system_accounts (account) VALUES ('charity');
	INSERT OR IGNORE INTO system_accounts (account) VALUES ('platform:fees');
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// inTx runs fn inside a database transaction, retrying the whole unit when an
// optimistic version check lost a race. Any other error aborts immediately.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if !errors.Is(err, store.ErrConcurrentModification) {
			return err
		}
		zap.L().Warn("Concurrent modification detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.retryAttempts))
	}
	return err
}

func (s *Service) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

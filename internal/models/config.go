package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
	Expiry   ExpiryConfig
	Notify   NotifyConfig
	Metrics  MetricsConfig
	Formance FormanceConfig
	LogEnv   string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
	RetryAttempts   int
}

// LedgerConfig holds the money rules applied by the core
type LedgerConfig struct {
	Currency        string
	PlatformFeeRate decimal.Decimal
	InitialBalance  decimal.Decimal
	CategoriesFile  string
}

// ExpiryConfig holds overdue-challenge sweeper settings
type ExpiryConfig struct {
	PollingInterval time.Duration
	BatchSize       int
}

// NotifyConfig holds notification sink settings
type NotifyConfig struct {
	Enabled       bool
	TelegramToken string
	QueueSize     int
}

// MetricsConfig holds the ops HTTP listener settings
type MetricsConfig struct {
	ListenAddr string
}

// FormanceConfig holds connection settings for the ledger mirror
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

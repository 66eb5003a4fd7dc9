package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"challenge-stake-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidInput           = errors.New("invalid input")
	ErrAlreadyTerminal        = errors.New("already terminal")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicateReference     = errors.New("duplicate reference")
)

// InsufficientFundsError carries the numbers a caller needs to render the failure.
type InsufficientFundsError struct {
	UserId         string
	CurrentBalance decimal.Decimal
	RequiredAmount decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: user %s has %s, needs %s",
		e.UserId, e.CurrentBalance.String(), e.RequiredAmount.String())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// RegisterUserParams contains the fields captured at sign-up.
type RegisterUserParams struct {
	Username   string
	Email      string
	TelegramId int64
	Premium    bool
}

// LedgerParams describes one balance mutation.
type LedgerParams struct {
	UserId      string
	ChallengeId string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
}

// StakeParams contains the parameters for creating a challenge.
type StakeParams struct {
	UserId      string
	Title       string
	Description string
	Category    string
	StakeAmount decimal.Decimal
	Deadline    time.Time
}

// ProgressParams contains the parameters for posting a progress update.
type ProgressParams struct {
	ChallengeId string
	UserId      string
	Content     string
	MediaRef    string
}

// VoteParams contains the parameters for casting a vote.
type VoteParams struct {
	ReportId string
	UserId   string
	VoteType models.VoteType
	Reason   string
}

// DonationParams contains the parameters for attaching a donation.
type DonationParams struct {
	DonorId     string
	ChallengeId string
	ReportId    string
	Amount      decimal.Decimal
	Message     string
}

// StakeStore defines the contract that every backend must satisfy.
type StakeStore interface {
	// --- Users ---
	RegisterUser(ctx context.Context, params RegisterUserParams) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	FindUser(ctx context.Context, identifier string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)

	// --- Ledger ---
	Debit(ctx context.Context, params LedgerParams) (*models.Transaction, error)
	Credit(ctx context.Context, params LedgerParams) (*models.Transaction, error)
	GetUserBalance(ctx context.Context, userId string) (decimal.Decimal, error)
	GetSystemAccount(ctx context.Context, account string) (*models.SystemAccount, error)
	GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error)
	GetChallengeTransactions(ctx context.Context, challengeId string) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	GetJournalEntries(ctx context.Context, transactionId string) ([]models.JournalEntry, error)
	ReconcileUserBalance(ctx context.Context, userId string) error
	ReconcileSystemAccount(ctx context.Context, account string) error

	// --- Challenges ---
	Stake(ctx context.Context, params StakeParams) (*models.Challenge, decimal.Decimal, error)
	CompleteChallenge(ctx context.Context, challengeId, userId string) (*models.SettlementResult, error)
	FailChallenge(ctx context.Context, challengeId, userId string) (*models.SettlementResult, error)
	ExpireChallenge(ctx context.Context, challengeId string, now time.Time) (*models.SettlementResult, error)
	GetChallenge(ctx context.Context, challengeId string) (*models.Challenge, error)
	GetUserChallenges(ctx context.Context, userId string) ([]models.Challenge, error)
	ListOverdueChallenges(ctx context.Context, now time.Time, limit int) ([]models.Challenge, error)
	DeleteChallengeCascade(ctx context.Context, challengeId string) error

	// --- Reports ---
	AddProgress(ctx context.Context, params ProgressParams) (*models.ProgressUpdate, error)
	GetReport(ctx context.Context, reportId string) (*models.ProgressUpdate, error)
	GetChallengeReports(ctx context.Context, challengeId string) ([]models.ProgressUpdate, error)
	DeleteProgress(ctx context.Context, reportId, userId string) error
	CastVote(ctx context.Context, params VoteParams) (*models.VoteResult, error)
	GetReportVotes(ctx context.Context, reportId string) ([]models.ReportVote, error)
	SetVerificationStatus(ctx context.Context, reportId string, status models.VerificationStatus) (*models.VerificationResult, error)

	// --- Donations ---
	Donate(ctx context.Context, params DonationParams) (*models.DonationResult, error)
	GetChallengeDonations(ctx context.Context, challengeId string) ([]models.Donation, error)

	// --- Lifecycle ---
	Close()
}

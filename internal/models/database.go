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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered participant
type User struct {
	Id         string          `db:"id"`
	Username   string          `db:"username"`
	Email      string          `db:"email"`
	TelegramId int64           `db:"telegram_id"`
	Balance    decimal.Decimal `db:"balance"`
	Rating     int             `db:"rating"`
	Premium    bool            `db:"premium"`
	Version    int64           `db:"version"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// Challenge is a staked goal owned by one user
type Challenge struct {
	Id              string          `db:"id"`
	UserId          string          `db:"user_id"`
	Title           string          `db:"title"`
	Description     string          `db:"description"`
	Category        string          `db:"category"`
	StakeAmount     decimal.Decimal `db:"stake_amount"`
	DonationsAmount decimal.Decimal `db:"donations_amount"`
	Status          ChallengeStatus `db:"status"`
	Deadline        time.Time       `db:"deadline"`
	CompletedAt     *time.Time      `db:"completed_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// ProgressUpdate is a progress report posted against a challenge
type ProgressUpdate struct {
	Id                 string             `db:"id"`
	ChallengeId        string             `db:"challenge_id"`
	UserId             string             `db:"user_id"`
	Content            string             `db:"content"`
	MediaRef           string             `db:"media_ref"`
	VerifyVotes        int                `db:"verify_votes"`
	FakeVotes          int                `db:"fake_votes"`
	VerificationStatus VerificationStatus `db:"verification_status"`
	DonationsAmount    decimal.Decimal    `db:"donations_amount"`
	CreatedAt          time.Time          `db:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at"`
}

// ReportVote ties one voter to one progress update
type ReportVote struct {
	Id        string    `db:"id"`
	ReportId  string    `db:"report_id"`
	UserId    string    `db:"user_id"`
	VoteType  VoteType  `db:"vote_type"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Donation is an immutable gift from a donor to a challenge (and optionally one report)
type Donation struct {
	Id          string          `db:"id"`
	DonorId     string          `db:"donor_id"`
	ChallengeId string          `db:"challenge_id"`
	ReportId    string          `db:"report_id"`
	Amount      decimal.Decimal `db:"amount"`
	Message     string          `db:"message"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Transaction represents immutable ledger history.
// Account is AccountUser for rows that move the user's spendable balance,
// otherwise the name of the system sink that was credited.
type Transaction struct {
	Id            string          `db:"id"`
	UserId        string          `db:"user_id"`
	Account       string          `db:"account"`
	ChallengeId   string          `db:"challenge_id"`
	Type          TransactionType `db:"transaction_type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Description   string          `db:"description"`
	CreatedAt     time.Time       `db:"created_at"`
}

// JournalEntry is one side of the double-entry record for a transaction
type JournalEntry struct {
	Id            string          `db:"id"`
	TransactionId string          `db:"transaction_id"`
	AccountId     string          `db:"account_id"`
	DebitAmount   decimal.Decimal `db:"debit_amount"`
	CreditAmount  decimal.Decimal `db:"credit_amount"`
	CreatedAt     time.Time       `db:"created_at"`
}

// SystemAccount holds the balance of a platform-owned sink
type SystemAccount struct {
	Account   string          `db:"account"`
	Balance   decimal.Decimal `db:"balance"`
	Version   int64           `db:"version"`
	UpdatedAt time.Time       `db:"updated_at"`
}

const (
	AccountUser        = "user"
	AccountCharity     = "charity"
	AccountPlatformFee = "platform:fees"
)

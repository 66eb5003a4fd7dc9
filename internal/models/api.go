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

// CreateChallengeResult is returned after a stake is escrowed
type CreateChallengeResult struct {
	ChallengeId string          `json:"challenge_id"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

// SettlementResult is returned by complete, fail and expire
type SettlementResult struct {
	Success       bool            `json:"success"`
	ChallengeId   string          `json:"challenge_id"`
	Status        ChallengeStatus `json:"status"`
	Refunded      decimal.Decimal `json:"refunded,omitempty"`
	CharityAmount decimal.Decimal `json:"charity_amount,omitempty"`
	PlatformFee   decimal.Decimal `json:"platform_fee,omitempty"`
}

// VoteResult reports the tally after a vote action
type VoteResult struct {
	VerifyVotes int       `json:"verify_votes"`
	FakeVotes   int       `json:"fake_votes"`
	MyVote      *VoteType `json:"my_vote"`
}

// VerificationResult reports a moderator status change
type VerificationResult struct {
	Success     bool               `json:"success"`
	ReportId    string             `json:"report_id"`
	OldStatus   VerificationStatus `json:"old_status"`
	NewStatus   VerificationStatus `json:"new_status"`
	RatingDelta int                `json:"rating_delta"`
	NewRating   int                `json:"new_rating"`
}

// DonationResult is returned after a donation is attached
type DonationResult struct {
	Success           bool            `json:"success"`
	DonationId        string          `json:"donation_id"`
	NewDonationsTotal decimal.Decimal `json:"new_donations_total"`
	DonorBalance      decimal.Decimal `json:"donor_balance"`
}

// BalanceResult is returned after a deposit
type BalanceResult struct {
	Success    bool            `json:"success"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// TransactionRecord represents a transaction in the user's history
type TransactionRecord struct {
	Id          string          `json:"id"`
	Type        TransactionType `json:"type"`
	ChallengeId string          `json:"challenge_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

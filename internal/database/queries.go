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

const (
	userColumns = `id, username, COALESCE(email, ''), COALESCE(telegram_id, 0), balance, rating, premium, version, created_at, updated_at`

	// User queries
	queryGetActiveUsers = `
		SELECT ` + userColumns + `
		FROM users
		WHERE active = 1
		ORDER BY created_at`

	queryInsertUser = `
		INSERT INTO users (id, username, email, telegram_id, balance, rating, premium, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, '0', 0, ?, 1, ?, ?)`

	queryGetUserById = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ? AND active = 1`

	queryGetUserByTelegramId = `
		SELECT ` + userColumns + `
		FROM users
		WHERE telegram_id = ? AND active = 1`

	queryGetUserByUsername = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = ? AND active = 1`

	queryGetUserByEmail = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = ? AND active = 1`

	// Balance queries
	queryGetUserBalance = `
		SELECT balance, version
		FROM users
		WHERE id = ? AND active = 1`

	queryUpdateUserBalance = `
		UPDATE users
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	queryGetUserRating = `
		SELECT rating, version
		FROM users
		WHERE id = ? AND active = 1`

	queryUpdateUserRating = `
		UPDATE users
		SET rating = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	querySumUserTransactions = `
		SELECT amount
		FROM transactions
		WHERE user_id = ? AND account = 'user'`

	// System account queries
	queryGetSystemAccount = `
		SELECT account, balance, version, updated_at
		FROM system_accounts
		WHERE account = ?`

	queryUpdateSystemAccount = `
		UPDATE system_accounts
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE account = ? AND version = ?`

	querySumAccountTransactions = `
		SELECT amount
		FROM transactions
		WHERE account = ?`

	// Transaction queries
	transactionColumns = `id, user_id, account, challenge_id, transaction_type, amount, balance_before, balance_after, description, created_at`

	queryInsertTransaction = `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransactionHistory = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = ? AND account = 'user'
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryGetChallengeTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE challenge_id = ?
		ORDER BY created_at, rowid`

	queryListTransactions = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at, rowid
		LIMIT ? OFFSET ?`

	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, transaction_id, account_id, debit_amount, credit_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetJournalEntries = `
		SELECT id, transaction_id, account_id, debit_amount, credit_amount, created_at
		FROM journal_entries
		WHERE transaction_id = ?
		ORDER BY rowid`

	// Challenge queries
	challengeColumns = `id, user_id, title, description, category, stake_amount, donations_amount, status, deadline, completed_at, created_at, updated_at`

	queryInsertChallenge = `
		INSERT INTO challenges (` + challengeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, '0', 'active', ?, NULL, ?, ?)`

	queryGetChallenge = `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE id = ?`

	queryGetUserChallenges = `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`

	queryListOverdueChallenges = `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE status = 'active' AND deadline < ?
		ORDER BY deadline
		LIMIT ?`

	// The status guard makes a second settlement of the same row a no-op.
	querySettleChallenge = `
		UPDATE challenges
		SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND status = 'active'`

	queryUpdateChallengeDonations = `
		UPDATE challenges
		SET donations_amount = ?, updated_at = ?
		WHERE id = ?`

	queryDeleteChallenge = `DELETE FROM challenges WHERE id = ?`

	// Report queries
	reportColumns = `id, challenge_id, user_id, content, media_ref, verify_votes, fake_votes, verification_status, donations_amount, created_at, updated_at`

	queryInsertReport = `
		INSERT INTO progress_updates (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, 0, 0, 'pending', '0', ?, ?)`

	queryGetReport = `
		SELECT ` + reportColumns + `
		FROM progress_updates
		WHERE id = ?`

	queryGetChallengeReports = `
		SELECT ` + reportColumns + `
		FROM progress_updates
		WHERE challenge_id = ?
		ORDER BY created_at, rowid`

	queryUpdateReportVotes = `
		UPDATE progress_updates
		SET verify_votes = MAX(0, verify_votes + ?), fake_votes = MAX(0, fake_votes + ?), updated_at = ?
		WHERE id = ?`

	queryGetReportVoteCounts = `
		SELECT verify_votes, fake_votes
		FROM progress_updates
		WHERE id = ?`

	queryUpdateReportStatus = `
		UPDATE progress_updates
		SET verification_status = ?, updated_at = ?
		WHERE id = ? AND verification_status = ?`

	queryUpdateReportDonations = `
		UPDATE progress_updates
		SET donations_amount = ?, updated_at = ?
		WHERE id = ?`

	queryDeleteReport = `DELETE FROM progress_updates WHERE id = ?`

	queryDeleteChallengeReports = `DELETE FROM progress_updates WHERE challenge_id = ?`

	// Vote queries
	voteColumns = `id, report_id, user_id, vote_type, reason, created_at, updated_at`

	queryGetUserVote = `
		SELECT ` + voteColumns + `
		FROM report_votes
		WHERE report_id = ? AND user_id = ?`

	queryInsertVote = `
		INSERT INTO report_votes (` + voteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryUpdateVote = `
		UPDATE report_votes
		SET vote_type = ?, reason = ?, updated_at = ?
		WHERE id = ?`

	queryDeleteVote = `DELETE FROM report_votes WHERE id = ?`

	queryGetReportVotes = `
		SELECT ` + voteColumns + `
		FROM report_votes
		WHERE report_id = ?
		ORDER BY created_at, rowid`

	queryDeleteReportVotes = `DELETE FROM report_votes WHERE report_id = ?`

	// Donation queries
	donationColumns = `id, donor_id, challenge_id, report_id, amount, message, created_at`

	queryInsertDonation = `
		INSERT INTO donations (` + donationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetChallengeDonations = `
		SELECT ` + donationColumns + `
		FROM donations
		WHERE challenge_id = ?
		ORDER BY created_at, rowid`

	queryDeleteChallengeDonations = `DELETE FROM donations WHERE challenge_id = ?`
)

package formance

import (
	"context"
	"fmt"
	"math/big"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/rules"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Every local transaction maps to one posting. Balances are authoritative in
// SQLite, so the mirror never rejects a posting for lack of funds.
const numscriptPosting = `vars {
  asset $asset
  number $amount
  account $source
  account $destination
  string $tx_type
  string $user_id
  string $challenge_id
  string $amount_human
}

send [$asset $amount] (
  source = $source allowing unbounded overdraft
  destination = $destination
)

set_tx_meta("tx_type", $tx_type)
set_tx_meta("user_id", $user_id)
set_tx_meta("challenge_id", $challenge_id)
set_tx_meta("amount_human", $amount_human)
`

// TransactionLister pages through the local ledger in insertion order.
type TransactionLister interface {
	ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

// MirrorResult summarizes one MirrorAll pass.
type MirrorResult struct {
	Posted  int
	Skipped int
}

// MirrorTransaction posts one local transaction, keyed by its id.
// It reports false when Formance already holds the reference.
func (s *Service) MirrorTransaction(ctx context.Context, tx models.Transaction) (bool, error) {
	source, destination, err := rules.Posting(tx)
	if err != nil {
		return false, err
	}

	amount := tx.Amount.Abs()
	postTx := shared.V2PostTransaction{
		Reference: strPtr(tx.Id),
		Script: &shared.V2PostTransactionScript{
			Plain: numscriptPosting,
			Vars: map[string]string{
				"asset":        formanceAsset(s.currency),
				"amount":       minorUnits(amount, s.currency),
				"source":       source,
				"destination":  destination,
				"tx_type":      string(tx.Type),
				"user_id":      tx.UserId,
				"challenge_id": tx.ChallengeId,
				"amount_human": amount.String(),
			},
		},
	}
	if !tx.CreatedAt.IsZero() {
		ts := tx.CreatedAt
		postTx.Timestamp = &ts
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return false, nil
		}
		return false, fmt.Errorf("error mirroring transaction %s: %w", tx.Id, err)
	}

	zap.L().Debug("Transaction mirrored to Formance",
		zap.String("tx_id", tx.Id),
		zap.String("type", string(tx.Type)),
		zap.String("source", source),
		zap.String("destination", destination),
		zap.String("amount", amount.String()))
	return true, nil
}

// MirrorAll replays the whole local ledger oldest-first. Already mirrored
// references are skipped, so reruns are safe.
func (s *Service) MirrorAll(ctx context.Context, lister TransactionLister, batchSize int) (MirrorResult, error) {
	var result MirrorResult
	if batchSize <= 0 {
		batchSize = 100
	}

	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		txs, err := lister.ListTransactions(ctx, batchSize, offset)
		if err != nil {
			return result, fmt.Errorf("failed to list transactions at offset %d: %w", offset, err)
		}
		for _, tx := range txs {
			posted, err := s.MirrorTransaction(ctx, tx)
			if err != nil {
				return result, err
			}
			if posted {
				result.Posted++
			} else {
				result.Skipped++
			}
		}
		if len(txs) < batchSize {
			break
		}
	}

	zap.L().Info("Formance mirror pass finished",
		zap.String("ledger", s.ledger),
		zap.Int("posted", result.Posted),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// AccountBalance reads the mirrored balance of a ledger account, e.g.
// "users:<id>" or "charity". Unknown accounts read as zero.
func (s *Service) AccountBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		if isNotFoundError(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	fAsset := formanceAsset(s.currency)
	return fromMinorUnits(volumeBalance(resp.V2AccountResponse.Data.Volumes, fAsset), s.currency), nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

func minorUnits(amount decimal.Decimal, currency string) string {
	return amount.Shift(int32(precisionFor(currency))).BigInt().String()
}

func fromMinorUnits(raw *big.Int, currency string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(precisionFor(currency)))
}

package rules

import (
	"fmt"

	"challenge-stake-go/internal/models"
	"challenge-stake-go/internal/store"

	"github.com/shopspring/decimal"
)

// CheckChallengeTransition allows only active -> completed and active -> failed.
func CheckChallengeTransition(from, to models.ChallengeStatus) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: challenge is already %s", store.ErrAlreadyTerminal, from)
	}
	if from != models.ChallengeActive || !to.IsTerminal() {
		return fmt.Errorf("%w: cannot move challenge from %s to %s", store.ErrInvalidInput, from, to)
	}
	return nil
}

// SplitForfeit divides a failed stake between the platform and charity.
// The fee is rounded to cents and charity takes the remainder, so the two
// always sum to the stake.
func SplitForfeit(stake, feeRate decimal.Decimal) (charity, fee decimal.Decimal) {
	fee = stake.Mul(feeRate).Round(2)
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	if fee.GreaterThan(stake) {
		fee = stake
	}
	return stake.Sub(fee), fee
}

// ValidateAmount requires a positive amount with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidAmount, amount.String())
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount %s has more than 2 decimal places", store.ErrInvalidAmount, amount.String())
	}
	return nil
}

package rules

import "challenge-stake-go/internal/models"

type statusPair struct {
	from models.VerificationStatus
	to   models.VerificationStatus
}

// ratingDeltas is the full transition table. Every round trip nets to zero
// so a rating reflects current statuses, not history.
var ratingDeltas = map[statusPair]int{
	{models.VerificationPending, models.VerificationVerified}: 5,
	{models.VerificationPending, models.VerificationFake}:     -10,
	{models.VerificationVerified, models.VerificationFake}:    -15,
	{models.VerificationFake, models.VerificationVerified}:    15,
	{models.VerificationVerified, models.VerificationPending}: -5,
	{models.VerificationFake, models.VerificationPending}:     10,
}

// RatingDelta returns the author's rating change for a status transition.
// Same-to-same transitions return 0.
func RatingDelta(from, to models.VerificationStatus) int {
	return ratingDeltas[statusPair{from, to}]
}

// ApplyRating adds delta to current with a floor at zero.
func ApplyRating(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

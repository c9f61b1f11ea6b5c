// Package rating computes the Elo points exchanged after a match.
package rating

import "math"

const (
	// KFactor scales how much a single match moves a rating.
	KFactor = 32
	// DefaultElo is the rating assigned to players with no history.
	DefaultElo = 1200
)

// Expected returns the logistic expected score for a player against an
// opponent: 1 / (1 + 10^((opponent-own)/400)).
func Expected(own, opponent int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponent-own)/400.0))
}

// Delta returns the points the winner takes from the loser. The exchange
// is zero-sum: callers apply +Delta to the winner and -Delta to the loser.
// The loser's expected score is never recomputed independently, which
// would let rounding produce a non-zero-sum result.
func Delta(winner, loser int) int {
	return int(math.Round(KFactor * (1 - Expected(winner, loser))))
}

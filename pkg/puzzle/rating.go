package puzzle

// ratingCoeff mirrors the usual Elo K-factor brackets: rating changes
// shrink as the player climbs.
func ratingCoeff(elo int) int {
	if elo >= 2400 {
		return 10
	}
	if elo >= 2000 {
		return 20
	}
	return 40
}

// SuggestDeltas derives fixed puzzle rating deltas (solve bonus, fail
// penalty, reveal penalty) from the player's K-factor bracket.
func SuggestDeltas(elo int) (bonus, failPenalty, revealPenalty int) {
	coeff := ratingCoeff(elo)
	return coeff / 4, coeff / 8, coeff / 8
}

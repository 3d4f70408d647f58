package engine

// AbilityModifier converts an ability score to its modifier,
// floor((score-10)/2). Floors toward negative infinity so scores below 10
// round down (8 -> -1, 7 -> -2).
func AbilityModifier(score int32) int32 {
	diff := score - 10
	if diff >= 0 {
		return diff / 2
	}
	return (diff - 1) / 2
}

// ConcentrationDC is the save DC to hold concentration after taking
// damage: half the damage, minimum 10. The damage magnitude is the full
// pre-absorption amount.
func ConcentrationDC(damage int32) int32 {
	dc := damage / 2
	if dc < 10 {
		dc = 10
	}
	return dc
}

package engine

// DeathSaveOutcome is the result of one death saving throw.
type DeathSaveOutcome struct {
	Roll      int32 `json:"roll"`
	Successes int32 `json:"success"`
	Failures  int32 `json:"fail"`
	IsStable  bool  `json:"is_stable"`
	IsDead    bool  `json:"is_dead"`
}

// ResolveDeathSave applies one d20 death save to the given counters.
// Natural 20 stabilizes immediately with the success counter forced to 3.
// Natural 1 counts as two failures. 10 or better is a success, anything
// else a failure. Three accumulated failures mean death.
func ResolveDeathSave(natural, successes, failures int32) DeathSaveOutcome {
	stable := false

	switch {
	case natural == 20:
		stable = true
		successes = 3
	case natural == 1:
		failures += 2
	case natural >= 10:
		successes++
	default:
		failures++
	}

	return DeathSaveOutcome{
		Roll:      natural,
		Successes: successes,
		Failures:  failures,
		IsStable:  stable,
		IsDead:    failures >= 3,
	}
}

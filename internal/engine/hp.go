// Package engine implements the pure combat rules: HP deltas, death saves,
// concentration DCs, and turn order. Functions here take snapshots and
// return results without touching storage, so the rules are testable
// without a live datastore.
package engine

import "github.com/greyhelm/vtt-api/internal/entities"

// HPChange reports the outcome of applying a signed HP delta.
type HPChange struct {
	PriorHP     int32
	PriorTempHP int32
	NewHP       int32
	NewTempHP   int32

	// Absorbed is how much of a damage delta temp HP soaked up.
	Absorbed int32

	// WentUnconscious: HP crossed from >0 to 0 in this application.
	WentUnconscious bool
	// DeathSaveFailAdded: damage landed on an actor already at 0 HP.
	DeathSaveFailAdded bool
	// Recovered: healing brought HP above 0, resetting death saves.
	Recovered bool
}

// ApplyHPDelta mutates the actor's HP state for a signed delta (negative =
// damage, positive = healing) and returns what happened.
//
// Damage drains temp HP first, then current HP, clamped at 0. The three
// post-application branches are keyed on the actor's HP *before* the delta,
// so they are mutually exclusive: dropped-to-zero, damaged-while-down, and
// healed-above-zero, evaluated in that order.
func ApplyHPDelta(actor *entities.ActorInGame, delta int32) HPChange {
	change := HPChange{
		PriorHP:     actor.CurrentHP,
		PriorTempHP: actor.TempHP,
	}

	remaining := delta
	if remaining < 0 && actor.TempHP > 0 {
		absorbed := min(actor.TempHP, -remaining)
		actor.TempHP -= absorbed
		remaining += absorbed
		change.Absorbed = absorbed
	}

	hp := actor.CurrentHP + remaining
	if hp < 0 {
		hp = 0
	}
	actor.CurrentHP = hp

	if hp == 0 && change.PriorHP > 0 {
		actor.IsConscious = false
		actor.IsStable = false
		change.WentUnconscious = true
	}

	if hp == 0 && change.PriorHP == 0 && delta < 0 {
		actor.DeathSavesFail++
		change.DeathSaveFailAdded = true
	}

	if hp > 0 && change.PriorHP == 0 {
		change.Recovered = true
	}
	if hp > 0 {
		actor.IsConscious = true
		actor.IsStable = true
		actor.DeathSavesSuccess = 0
		actor.DeathSavesFail = 0
	}

	change.NewHP = actor.CurrentHP
	change.NewTempHP = actor.TempHP
	return change
}

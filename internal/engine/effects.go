package engine

import "github.com/greyhelm/vtt-api/internal/entities"

// TriggeredEffects filters an attack's or spell's conditional effects down
// to those whose trigger fired: "hit" effects require a landed hit,
// "fail_save" effects require a failed saving throw, and "always" effects
// apply unconditionally. Per-effect saving throws are the caller's job.
func TriggeredEffects(effects []entities.ConditionEffect, hit, failedSave bool) []entities.ConditionEffect {
	triggered := make([]entities.ConditionEffect, 0, len(effects))
	for _, effect := range effects {
		switch effect.On {
		case entities.TriggerAlways:
			triggered = append(triggered, effect)
		case entities.TriggerHit:
			if hit {
				triggered = append(triggered, effect)
			}
		case entities.TriggerFailSave:
			if failedSave {
				triggered = append(triggered, effect)
			}
		}
	}
	return triggered
}

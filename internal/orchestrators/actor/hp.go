package actor

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/engine"
	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/pkg/dice"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
)

// UpdateHPInput applies a signed HP delta on behalf of a user
type UpdateHPInput struct {
	GameID        string
	UserID        string
	ActorInGameID string
	Delta         int32
}

// UpdateHPOutput contains the actor after the delta
type UpdateHPOutput struct {
	Actor               *entities.ActorInGame
	Change              engine.HPChange
	ConcentrationBroken bool
}

// ApplyDamageInput applies a signed HP delta without a gate check
type ApplyDamageInput struct {
	GameID        string
	ActorInGameID string
	Delta         int32
	SourceActorID string
}

// ApplyDamageOutput reports the committed HP change and any concentration
// outcome triggered by damage.
type ApplyDamageOutput struct {
	Actor               *entities.ActorInGame
	Change              engine.HPChange
	ConcentrationBroken bool
	ConcentrationCheck  *dice.SavingThrowResult
}

// RollDeathSaveInput rolls one death saving throw for a downed actor
type RollDeathSaveInput struct {
	GameID        string
	UserID        string
	ActorInGameID string
}

// RollDeathSaveOutput contains the outcome and the actor after it
type RollDeathSaveOutput struct {
	Actor   *entities.ActorInGame
	Outcome engine.DeathSaveOutcome
}

func (o *orchestrator) UpdateHP(ctx context.Context, input *UpdateHPInput) (*UpdateHPOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and actor ID are required")
	}

	if _, err := o.gate.AssertCanAct(ctx, &combat.AssertCanActInput{
		GameID: input.GameID,
		UserID: input.UserID,
	}); err != nil {
		return nil, err
	}

	out, err := o.ApplyDamage(ctx, &ApplyDamageInput{
		GameID:        input.GameID,
		ActorInGameID: input.ActorInGameID,
		Delta:         input.Delta,
	})
	if err != nil {
		return nil, err
	}

	return &UpdateHPOutput{
		Actor:               out.Actor,
		Change:              out.Change,
		ConcentrationBroken: out.ConcentrationBroken,
	}, nil
}

func (o *orchestrator) ApplyDamage(ctx context.Context, input *ApplyDamageInput) (*ApplyDamageOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID and actor ID are required")
	}

	if _, err := o.requireActorInGame(ctx, input.GameID, input.ActorInGameID); err != nil {
		return nil, err
	}

	var (
		change      engine.HPChange
		broke       bool
		check       *dice.SavingThrowResult
		brokenSpell string
	)

	updateOut, err := o.actorRepo.UpdateAtomic(ctx, actors.UpdateAtomicInput{
		ID: input.ActorInGameID,
		Mutate: func(a *entities.ActorInGame) error {
			broke = false
			check = nil
			brokenSpell = ""

			change = engine.ApplyHPDelta(a, input.Delta)

			// Damage tests concentration against the full pre-absorption
			// magnitude, absorbed or not.
			if input.Delta < 0 {
				if conc := a.Concentration(); conc != nil {
					result := dice.RollSavingThrow(o.roller, dice.SavingThrowInput{
						DC:       int(engine.ConcentrationDC(-input.Delta)),
						Modifier: int(engine.AbilityModifier(a.Constitution)),
						Ability:  "con",
						Mode:     dice.ModeNormal,
					})
					check = &result
					if !result.Success {
						brokenSpell = conc.SpellID
						a.ClearConcentration()
						broke = true
					}
				}
			}

			a.UpdatedAt = o.clock.Now().UnixMilli()
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	actor := updateOut.Actor
	o.broadcaster.EmitToRoom(input.GameID, realtime.EventActorHPUpdated, map[string]any{
		"actor_in_game_id": actor.ID,
		"current_hp":       actor.CurrentHP,
		"temp_hp":          actor.TempHP,
		"is_conscious":     actor.IsConscious,
		"is_stable":        actor.IsStable,
		"death_saves_fail": actor.DeathSavesFail,
		"delta":            input.Delta,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		ActorInGameID: actor.ID,
		ActionType:    "hp_update",
		Payload: map[string]any{
			"delta":            input.Delta,
			"source_actor_id":  input.SourceActorID,
			"current_hp":       actor.CurrentHP,
			"temp_hp_absorbed": change.Absorbed,
			"went_unconscious": change.WentUnconscious,
		},
	})

	if broke {
		o.broadcaster.EmitToRoom(input.GameID, realtime.EventConcentrationBroken, map[string]any{
			"actor_in_game_id": actor.ID,
			"spell_id":         brokenSpell,
			"check":            check,
		})
		o.appendLog(ctx, &entities.GameLog{
			GameID:        input.GameID,
			ActorInGameID: actor.ID,
			ActionType:    "concentration_broken",
			Payload: map[string]any{
				"spell_id": brokenSpell,
				"check":    check,
			},
		})
	}

	return &ApplyDamageOutput{
		Actor:               actor,
		Change:              change,
		ConcentrationBroken: broke,
		ConcentrationCheck:  check,
	}, nil
}

func (o *orchestrator) RollDeathSave(ctx context.Context, input *RollDeathSaveInput) (*RollDeathSaveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and actor ID are required")
	}

	if _, err := o.gate.AssertCanAct(ctx, &combat.AssertCanActInput{
		GameID: input.GameID,
		UserID: input.UserID,
	}); err != nil {
		return nil, err
	}
	if _, err := o.requireActorInGame(ctx, input.GameID, input.ActorInGameID); err != nil {
		return nil, err
	}

	var outcome engine.DeathSaveOutcome
	updateOut, err := o.actorRepo.UpdateAtomic(ctx, actors.UpdateAtomicInput{
		ID: input.ActorInGameID,
		Mutate: func(a *entities.ActorInGame) error {
			if a.IsConscious || a.IsStable {
				return errors.InvalidArgument("actor is not dying")
			}

			natural := int32(o.roller.Roll(20))
			outcome = engine.ResolveDeathSave(natural, a.DeathSavesSuccess, a.DeathSavesFail)
			a.DeathSavesSuccess = outcome.Successes
			a.DeathSavesFail = outcome.Failures
			if outcome.IsStable {
				a.IsStable = true
			}
			a.UpdatedAt = o.clock.Now().UnixMilli()
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	actor := updateOut.Actor
	o.broadcaster.EmitToRoom(input.GameID, realtime.EventActorDeathSave, map[string]any{
		"actor_in_game_id": actor.ID,
		"roll":             outcome.Roll,
		"success":          outcome.Successes,
		"fail":             outcome.Failures,
		"is_stable":        outcome.IsStable,
		"is_dead":          outcome.IsDead,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		ActorInGameID: actor.ID,
		ActionType:    "death_save",
		Payload: map[string]any{
			"roll":      outcome.Roll,
			"success":   outcome.Successes,
			"fail":      outcome.Failures,
			"is_stable": outcome.IsStable,
			"is_dead":   outcome.IsDead,
		},
	})

	return &RollDeathSaveOutput{Actor: actor, Outcome: outcome}, nil
}

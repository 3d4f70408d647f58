// Package spellcasting implements spell cast resolution: slot consumption,
// per-target attack or saving-throw mechanics with save-for-half damage,
// spell-linked condition effects, and concentration stamping.
package spellcasting

//go:generate mockgen -destination=mock/mock_service.go -package=spellcastingmock github.com/greyhelm/vtt-api/internal/orchestrators/spellcasting Service

import (
	"context"
	"log/slog"
	"time"

	"github.com/greyhelm/vtt-api/internal/engine"
	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/actor"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/dice"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/catalog"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
)

// Service defines the interface for spell cast resolution
type Service interface {
	CastSpell(ctx context.Context, input *CastSpellInput) (*CastSpellOutput, error)
}

// Config holds the dependencies for the spellcasting orchestrator
type Config struct {
	CatalogRepo catalog.Repository
	ActorRepo   actors.Repository
	CombatRepo  combats.Repository
	LogRepo     gamelogs.Repository
	ActorSvc    actor.Service
	Gate        combat.Service
	Broadcaster realtime.Broadcaster
	Roller      dice.Roller
	IDGenerator idgen.Generator
	Clock       clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CatalogRepo == nil {
		vb.RequiredField("CatalogRepo")
	}
	if c.ActorRepo == nil {
		vb.RequiredField("ActorRepo")
	}
	if c.CombatRepo == nil {
		vb.RequiredField("CombatRepo")
	}
	if c.LogRepo == nil {
		vb.RequiredField("LogRepo")
	}
	if c.ActorSvc == nil {
		vb.RequiredField("ActorSvc")
	}
	if c.Gate == nil {
		vb.RequiredField("Gate")
	}
	if c.Broadcaster == nil {
		vb.RequiredField("Broadcaster")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	catalogRepo catalog.Repository
	actorRepo   actors.Repository
	combatRepo  combats.Repository
	logRepo     gamelogs.Repository
	actorSvc    actor.Service
	gate        combat.Service
	broadcaster realtime.Broadcaster
	roller      dice.Roller
	idGen       idgen.Generator
	clock       clock.Clock
}

// NewOrchestrator creates a new spellcasting orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		catalogRepo: cfg.CatalogRepo,
		actorRepo:   cfg.ActorRepo,
		combatRepo:  cfg.CombatRepo,
		logRepo:     cfg.LogRepo,
		actorSvc:    cfg.ActorSvc,
		gate:        cfg.Gate,
		broadcaster: cfg.Broadcaster,
		roller:      cfg.Roller,
		idGen:       cfg.IDGenerator,
		clock:       cfg.Clock,
	}, nil
}

// CastSpellInput resolves a spell cast against one or more targets
type CastSpellInput struct {
	GameID       string
	UserID       string
	CasterID     string
	SpellID      string
	Level        int32
	TargetIDs    []string
	Advantage    bool
	Disadvantage bool
}

// TargetResult is the per-target outcome of a spell cast
type TargetResult struct {
	TargetID          string                  `json:"target_id"`
	Roll              *dice.D20Roll           `json:"roll,omitempty"`
	Hit               bool                    `json:"hit"`
	Critical          bool                    `json:"critical"`
	Save              *dice.SavingThrowResult `json:"save,omitempty"`
	Damage            int32                   `json:"damage"`
	ConditionsApplied []string                `json:"conditions_applied,omitempty"`
	TargetState       *entities.ActorInGame   `json:"target_state"`
}

// CastSpellOutput aggregates all per-target results of one cast
type CastSpellOutput struct {
	Spell    *entities.Spell
	Slot     *entities.SpellSlot
	RollMode dice.RollMode
	Targets  []TargetResult
}

func (o *orchestrator) CastSpell(ctx context.Context, input *CastSpellInput) (*CastSpellOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.CasterID == "" || input.SpellID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, caster ID, and spell ID are required")
	}
	if len(input.TargetIDs) == 0 {
		return nil, errors.InvalidArgument("at least one target is required")
	}

	if _, err := o.gate.AssertCanAct(ctx, &combat.AssertCanActInput{
		GameID: input.GameID,
		UserID: input.UserID,
	}); err != nil {
		return nil, err
	}

	spellOut, err := o.catalogRepo.GetSpell(ctx, catalog.GetSpellInput{ID: input.SpellID})
	if err != nil {
		return nil, err
	}
	spell := spellOut.Spell

	// The caster must exist in this game.
	if _, err := o.actorSvc.GetActor(ctx, &actor.GetActorInput{
		GameID:        input.GameID,
		ActorInGameID: input.CasterID,
	}); err != nil {
		return nil, err
	}

	// Every target must resolve before any slot or damage mutation.
	targets := make(map[string]*entities.ActorInGame, len(input.TargetIDs))
	for _, targetID := range input.TargetIDs {
		targetOut, err := o.actorSvc.GetActor(ctx, &actor.GetActorInput{
			GameID:        input.GameID,
			ActorInGameID: targetID,
		})
		if err != nil {
			return nil, err
		}
		targets[targetID] = targetOut.Actor
	}

	// One slot per cast, regardless of target count.
	slotOut, err := o.actorRepo.ConsumeSpellSlot(ctx, actors.ConsumeSpellSlotInput{
		ActorInGameID: input.CasterID,
		Level:         input.Level,
	})
	if err != nil {
		return nil, err
	}

	mode := dice.ResolveRollMode(input.Advantage, input.Disadvantage)
	round := o.currentRound(ctx, input.GameID)

	results := make([]TargetResult, 0, len(input.TargetIDs))
	for _, targetID := range input.TargetIDs {
		result, err := o.resolveTarget(ctx, input, spell, targets[targetID], mode, round)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	if spell.IsConcentration {
		if err := o.stampConcentration(ctx, input.CasterID, spell.ID); err != nil {
			return nil, err
		}
	}

	o.broadcaster.EmitToRoom(input.GameID, realtime.EventSpellCast, map[string]any{
		"caster_id": input.CasterID,
		"spell_id":  spell.ID,
		"level":     input.Level,
		"roll_mode": mode,
		"targets":   results,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		ActorInGameID: input.CasterID,
		ActionType:    "spell_cast",
		Payload: map[string]any{
			"spell_id":  spell.ID,
			"level":     input.Level,
			"roll_mode": mode,
			"targets":   results,
		},
	})

	return &CastSpellOutput{
		Spell:    spell,
		Slot:     slotOut.Slot,
		RollMode: mode,
		Targets:  results,
	}, nil
}

func (o *orchestrator) resolveTarget(
	ctx context.Context,
	input *CastSpellInput,
	spell *entities.Spell,
	target *entities.ActorInGame,
	mode dice.RollMode,
	round int32,
) (*TargetResult, error) {
	result := &TargetResult{TargetID: target.ID, TargetState: target}

	var damage int32
	failedSave := false

	switch spell.AttackType {
	case entities.AttackTypeSave:
		save := dice.RollSavingThrow(o.roller, dice.SavingThrowInput{
			DC:       int(10 + input.Level),
			Modifier: int(saveModifier(target, spell.SaveAbility)),
			Ability:  spell.SaveAbility,
			Mode:     mode,
		})
		result.Save = &save
		failedSave = !save.Success

		if spell.DamageFormula != "" {
			damage = int32(dice.RollDamage(o.roller, spell.DamageFormula))
			// Save-for-half, rounded down.
			if save.Success {
				damage /= 2
			}
		}

	default:
		// Attack-type spells use the attack mechanic: natural roll vs AC,
		// critical on a natural 20 doubles the rolled damage.
		roll := dice.RollD20(o.roller, mode)
		result.Roll = &roll
		result.Hit = int32(roll.Natural) >= target.ArmorClass
		result.Critical = roll.Natural == 20

		if result.Hit && spell.DamageFormula != "" {
			damage = int32(dice.RollDamage(o.roller, spell.DamageFormula))
			if result.Critical {
				damage *= 2
			}
		}
	}

	if damage > 0 {
		damageOut, err := o.actorSvc.ApplyDamage(ctx, &actor.ApplyDamageInput{
			GameID:        input.GameID,
			ActorInGameID: target.ID,
			Delta:         -damage,
			SourceActorID: input.CasterID,
		})
		if err != nil {
			return nil, err
		}
		result.Damage = damage
		result.TargetState = damageOut.Actor
	}

	for _, effect := range engine.TriggeredEffects(spell.Conditions, result.Hit, failedSave) {
		if effect.RequiresSave != nil {
			save := dice.RollSavingThrow(o.roller, dice.SavingThrowInput{
				DC:       int(effect.RequiresSave.DC),
				Modifier: int(saveModifier(target, effect.RequiresSave.Ability)),
				Ability:  effect.RequiresSave.Ability,
				Mode:     dice.ModeNormal,
			})
			if save.Success {
				continue
			}
		}

		_, err := o.actorSvc.ApplyCombatCondition(ctx, &actor.ApplyCombatConditionInput{
			GameID:         input.GameID,
			ActorInGameID:  target.ID,
			ConditionID:    effect.ConditionID,
			Round:          round,
			DurationRounds: effect.DurationRounds,
		})
		if err != nil {
			return nil, err
		}
		result.ConditionsApplied = append(result.ConditionsApplied, effect.ConditionID)
	}

	return result, nil
}

// stampConcentration records the concentration entry on the caster,
// silently replacing any prior one.
func (o *orchestrator) stampConcentration(ctx context.Context, casterID, spellID string) error {
	startedAt := o.clock.Now().UTC().Format(time.RFC3339)
	_, err := o.actorRepo.UpdateAtomic(ctx, actors.UpdateAtomicInput{
		ID: casterID,
		Mutate: func(a *entities.ActorInGame) error {
			a.SetConcentration(entities.Concentration{
				SpellID:   spellID,
				StartedAt: startedAt,
			})
			a.UpdatedAt = o.clock.Now().UnixMilli()
			return nil
		},
	})
	return err
}

func saveModifier(target *entities.ActorInGame, ability string) int32 {
	if ability == "con" {
		return engine.AbilityModifier(target.Constitution)
	}
	return 0
}

func (o *orchestrator) currentRound(ctx context.Context, gameID string) int32 {
	out, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: gameID})
	if err != nil {
		return 0
	}
	return out.Combat.Round
}

func (o *orchestrator) appendLog(ctx context.Context, log *entities.GameLog) {
	log.ID = o.idGen.Generate()
	log.CreatedAt = o.clock.Now().UnixMilli()
	if _, err := o.logRepo.Append(ctx, gamelogs.AppendInput{Log: log}); err != nil {
		slog.Error("failed to append game log",
			"game_id", log.GameID,
			"action_type", log.ActionType,
			"error", err)
	}
}

// Package attack implements attack resolution: the to-hit roll against
// armor class, critical detection on the natural roll, damage application
// through the resource engine, and attack-linked condition effects.
package attack

//go:generate mockgen -destination=mock/mock_service.go -package=attackmock github.com/greyhelm/vtt-api/internal/orchestrators/attack Service

import (
	"context"
	"log/slog"

	"github.com/greyhelm/vtt-api/internal/engine"
	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/actor"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/dice"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/catalog"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
)

// Service defines the interface for attack resolution
type Service interface {
	ResolveAttack(ctx context.Context, input *ResolveAttackInput) (*ResolveAttackOutput, error)
}

// Config holds the dependencies for the attack orchestrator
type Config struct {
	CatalogRepo catalog.Repository
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
	combatRepo  combats.Repository
	logRepo     gamelogs.Repository
	actorSvc    actor.Service
	gate        combat.Service
	broadcaster realtime.Broadcaster
	roller      dice.Roller
	idGen       idgen.Generator
	clock       clock.Clock
}

// NewOrchestrator creates a new attack orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		catalogRepo: cfg.CatalogRepo,
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

// ResolveAttackInput resolves one attack against one target
type ResolveAttackInput struct {
	GameID       string
	UserID       string
	AttackerID   string
	TargetID     string
	AttackID     string
	Advantage    bool
	Disadvantage bool
}

// ResolveAttackOutput reports the full attack resolution
type ResolveAttackOutput struct {
	Roll                dice.D20Roll
	Hit                 bool
	Critical            bool
	Damage              int32
	Target              *entities.ActorInGame
	ConditionsApplied   []string
	ConcentrationBroken bool
}

func (o *orchestrator) ResolveAttack(ctx context.Context, input *ResolveAttackInput) (*ResolveAttackOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.AttackerID == "" || input.TargetID == "" || input.AttackID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, attacker ID, target ID, and attack ID are required")
	}

	if _, err := o.gate.AssertCanAct(ctx, &combat.AssertCanActInput{
		GameID: input.GameID,
		UserID: input.UserID,
	}); err != nil {
		return nil, err
	}

	attackOut, err := o.catalogRepo.GetAttack(ctx, catalog.GetAttackInput{ID: input.AttackID})
	if err != nil {
		return nil, err
	}
	attackDef := attackOut.Attack

	// Both actors must exist in this game.
	if _, err := o.actorSvc.GetActor(ctx, &actor.GetActorInput{
		GameID:        input.GameID,
		ActorInGameID: input.AttackerID,
	}); err != nil {
		return nil, err
	}
	targetOut, err := o.actorSvc.GetActor(ctx, &actor.GetActorInput{
		GameID:        input.GameID,
		ActorInGameID: input.TargetID,
	})
	if err != nil {
		return nil, err
	}
	target := targetOut.Actor

	mode := dice.ResolveRollMode(input.Advantage, input.Disadvantage)
	roll := dice.RollD20(o.roller, mode)
	hit := int32(roll.Natural) >= target.ArmorClass
	crit := roll.Natural == 20

	// Damage is rolled once; a critical doubles the rolled total.
	var damage int32
	if hit {
		damage = int32(dice.RollDamage(o.roller, attackDef.DamageFormula))
		if crit {
			damage *= 2
		}
	}

	result := &ResolveAttackOutput{
		Roll:     roll,
		Hit:      hit,
		Critical: crit,
		Target:   target,
	}

	if hit && damage > 0 {
		damageOut, err := o.actorSvc.ApplyDamage(ctx, &actor.ApplyDamageInput{
			GameID:        input.GameID,
			ActorInGameID: input.TargetID,
			Delta:         -damage,
			SourceActorID: input.AttackerID,
		})
		if err != nil {
			return nil, err
		}
		result.Damage = damage
		result.Target = damageOut.Actor
		result.ConcentrationBroken = damageOut.ConcentrationBroken
	}

	round := o.currentRound(ctx, input.GameID)
	applied, err := o.applyConditionEffects(ctx, input.GameID, input.TargetID, target, attackDef.Conditions, hit, round)
	if err != nil {
		return nil, err
	}
	result.ConditionsApplied = applied

	o.broadcaster.EmitToRoom(input.GameID, realtime.EventAttackResolved, map[string]any{
		"attacker_id":        input.AttackerID,
		"target_id":          input.TargetID,
		"attack_id":          attackDef.ID,
		"roll":               roll,
		"hit":                hit,
		"critical":           crit,
		"damage":             result.Damage,
		"target_state":       result.Target,
		"conditions_applied": applied,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		ActorInGameID: input.AttackerID,
		ActionType:    "attack",
		Payload: map[string]any{
			"attacker_id":        input.AttackerID,
			"target_id":          input.TargetID,
			"attack_id":          attackDef.ID,
			"natural":            roll.Natural,
			"rolls":              roll.Rolls,
			"roll_mode":          roll.Mode,
			"hit":                hit,
			"critical":           crit,
			"damage":             result.Damage,
			"conditions_applied": applied,
		},
	})

	return result, nil
}

// applyConditionEffects applies the triggered subset of the definition's
// conditional effects, rolling per-effect saving throws where required.
// Returns the condition ids that stuck.
func (o *orchestrator) applyConditionEffects(
	ctx context.Context,
	gameID, targetID string,
	target *entities.ActorInGame,
	effects []entities.ConditionEffect,
	hit bool,
	round int32,
) ([]string, error) {
	applied := []string{}
	for _, effect := range engine.TriggeredEffects(effects, hit, false) {
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
			GameID:         gameID,
			ActorInGameID:  targetID,
			ConditionID:    effect.ConditionID,
			Round:          round,
			DurationRounds: effect.DurationRounds,
		})
		if err != nil {
			return nil, err
		}
		applied = append(applied, effect.ConditionID)
	}
	return applied, nil
}

// saveModifier derives the target's modifier for a per-effect save. Only
// Constitution is snapshotted onto the actor; other abilities roll flat.
func saveModifier(target *entities.ActorInGame, ability string) int32 {
	if ability == "con" {
		return engine.AbilityModifier(target.Constitution)
	}
	return 0
}

// currentRound reads the active combat's round, or 0 outside combat.
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

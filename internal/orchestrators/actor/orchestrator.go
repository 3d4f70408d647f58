// Package actor implements actor management and the resource engine's
// stateful side: HP application with temp-HP absorption and concentration
// checks, death saves, and condition application and removal.
package actor

//go:generate mockgen -destination=mock/mock_service.go -package=actormock github.com/greyhelm/vtt-api/internal/orchestrators/actor Service

import (
	"context"
	"log/slog"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/dice"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
)

// Service defines the interface for actor state operations
type Service interface {
	CreateActor(ctx context.Context, input *CreateActorInput) (*CreateActorOutput, error)
	GetActor(ctx context.Context, input *GetActorInput) (*GetActorOutput, error)
	ListActors(ctx context.Context, input *ListActorsInput) (*ListActorsOutput, error)

	// UpdateHP applies a signed HP delta on behalf of a user, gated by
	// the action gate.
	UpdateHP(ctx context.Context, input *UpdateHPInput) (*UpdateHPOutput, error)

	// ApplyDamage is the ungated resource-engine entry used by attack and
	// spell resolution after they have passed the gate themselves.
	ApplyDamage(ctx context.Context, input *ApplyDamageInput) (*ApplyDamageOutput, error)

	RollDeathSave(ctx context.Context, input *RollDeathSaveInput) (*RollDeathSaveOutput, error)

	ApplyCondition(ctx context.Context, input *ApplyConditionInput) (*ApplyConditionOutput, error)
	ApplyCombatCondition(ctx context.Context, input *ApplyCombatConditionInput) (*ApplyCombatConditionOutput, error)
	RemoveCondition(ctx context.Context, input *RemoveConditionInput) (*RemoveConditionOutput, error)
	ListConditions(ctx context.Context, input *ListConditionsInput) (*ListConditionsOutput, error)
}

// Config holds the dependencies for the actor orchestrator
type Config struct {
	GameRepo      games.Repository
	ActorRepo     actors.Repository
	ConditionRepo conditions.Repository
	LogRepo       gamelogs.Repository
	Gate          combat.Service
	Broadcaster   realtime.Broadcaster
	Roller        dice.Roller
	IDGenerator   idgen.Generator
	Clock         clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.GameRepo == nil {
		vb.RequiredField("GameRepo")
	}
	if c.ActorRepo == nil {
		vb.RequiredField("ActorRepo")
	}
	if c.ConditionRepo == nil {
		vb.RequiredField("ConditionRepo")
	}
	if c.LogRepo == nil {
		vb.RequiredField("LogRepo")
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
	gameRepo      games.Repository
	actorRepo     actors.Repository
	conditionRepo conditions.Repository
	logRepo       gamelogs.Repository
	gate          combat.Service
	broadcaster   realtime.Broadcaster
	roller        dice.Roller
	idGen         idgen.Generator
	clock         clock.Clock
}

// NewOrchestrator creates a new actor orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		gameRepo:      cfg.GameRepo,
		actorRepo:     cfg.ActorRepo,
		conditionRepo: cfg.ConditionRepo,
		logRepo:       cfg.LogRepo,
		gate:          cfg.Gate,
		broadcaster:   cfg.Broadcaster,
		roller:        cfg.Roller,
		idGen:         cfg.IDGenerator,
		clock:         cfg.Clock,
	}, nil
}

func (o *orchestrator) requireDM(ctx context.Context, gameID, userID string) error {
	out, err := o.gameRepo.GetPlayer(ctx, games.GetPlayerInput{GameID: gameID, UserID: userID})
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.PermissionDenied("you are not a member of this game")
		}
		return err
	}
	if !out.Player.IsActive || out.Player.Role != entities.RoleDM {
		return errors.PermissionDenied("only the DM may do this")
	}
	return nil
}

// requireActorInGame loads the actor and checks game ownership.
func (o *orchestrator) requireActorInGame(ctx context.Context, gameID, actorID string) (*entities.ActorInGame, error) {
	out, err := o.actorRepo.Get(ctx, actors.GetInput{ID: actorID})
	if err != nil {
		return nil, err
	}
	if out.Actor.GameID != gameID {
		return nil, errors.NotFoundf("actor %s not found in game %s", actorID, gameID)
	}
	return out.Actor, nil
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

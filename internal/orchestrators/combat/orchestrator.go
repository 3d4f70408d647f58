// Package combat implements the combat lifecycle and turn order engine:
// starting and ending combats, participant enrollment, initiative order,
// turn and round progression, and the action gate consulted by every
// combat-affecting operation.
package combat

//go:generate mockgen -destination=mock/mock_service.go -package=combatmock github.com/greyhelm/vtt-api/internal/orchestrators/combat Service

import (
	"context"
	"log/slog"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
)

// Service defines the interface for combat lifecycle and turn order
type Service interface {
	StartCombat(ctx context.Context, input *StartCombatInput) (*StartCombatOutput, error)
	EndCombat(ctx context.Context, input *EndCombatInput) (*EndCombatOutput, error)
	GetActiveCombat(ctx context.Context, input *GetActiveCombatInput) (*GetActiveCombatOutput, error)
	GetActiveParticipant(ctx context.Context, input *GetActiveParticipantInput) (*GetActiveParticipantOutput, error)

	AddParticipant(ctx context.Context, input *AddParticipantInput) (*AddParticipantOutput, error)
	RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) (*RemoveParticipantOutput, error)
	UpdateInitiative(ctx context.Context, input *UpdateInitiativeInput) (*UpdateInitiativeOutput, error)
	ListParticipants(ctx context.Context, input *ListParticipantsInput) (*ListParticipantsOutput, error)

	NextTurn(ctx context.Context, input *NextTurnInput) (*NextTurnOutput, error)
	NextRound(ctx context.Context, input *NextRoundInput) (*NextRoundOutput, error)

	// AssertCanAct gates combat-affecting operations: the DM always may
	// act, anyone may act outside combat, and during combat the user must
	// control the actor whose turn it is.
	AssertCanAct(ctx context.Context, input *AssertCanActInput) (*AssertCanActOutput, error)
}

// Config holds the dependencies for the combat orchestrator
type Config struct {
	GameRepo      games.Repository
	ActorRepo     actors.Repository
	CombatRepo    combats.Repository
	ConditionRepo conditions.Repository
	LogRepo       gamelogs.Repository
	Broadcaster   realtime.Broadcaster
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
	if c.CombatRepo == nil {
		vb.RequiredField("CombatRepo")
	}
	if c.ConditionRepo == nil {
		vb.RequiredField("ConditionRepo")
	}
	if c.LogRepo == nil {
		vb.RequiredField("LogRepo")
	}
	if c.Broadcaster == nil {
		vb.RequiredField("Broadcaster")
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
	combatRepo    combats.Repository
	conditionRepo conditions.Repository
	logRepo       gamelogs.Repository
	broadcaster   realtime.Broadcaster
	idGen         idgen.Generator
	clock         clock.Clock
}

// NewOrchestrator creates a new combat orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		gameRepo:      cfg.GameRepo,
		actorRepo:     cfg.ActorRepo,
		combatRepo:    cfg.CombatRepo,
		conditionRepo: cfg.ConditionRepo,
		logRepo:       cfg.LogRepo,
		broadcaster:   cfg.Broadcaster,
		idGen:         cfg.IDGenerator,
		clock:         cfg.Clock,
	}, nil
}

func (o *orchestrator) requirePlayer(ctx context.Context, gameID, userID string) (*entities.GamePlayer, error) {
	out, err := o.gameRepo.GetPlayer(ctx, games.GetPlayerInput{GameID: gameID, UserID: userID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.PermissionDenied("you are not a member of this game")
		}
		return nil, err
	}
	if !out.Player.IsActive {
		return nil, errors.PermissionDenied("you are not a member of this game")
	}
	return out.Player, nil
}

func (o *orchestrator) requireDM(ctx context.Context, gameID, userID string) (*entities.GamePlayer, error) {
	player, err := o.requirePlayer(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if player.Role != entities.RoleDM {
		return nil, errors.PermissionDenied("only the DM may do this")
	}
	return player, nil
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

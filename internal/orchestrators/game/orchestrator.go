// Package game implements game session management: creation, membership,
// character assignment, scenes, tokens, and the audit log read path.
package game

//go:generate mockgen -destination=mock/mock_service.go -package=gamemock github.com/greyhelm/vtt-api/internal/orchestrators/game Service

import (
	"context"
	"log/slog"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
	"github.com/greyhelm/vtt-api/internal/repositories/tokens"
)

// Service defines the interface for game session management
type Service interface {
	CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error)
	GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error)

	JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error)
	LeaveGame(ctx context.Context, input *LeaveGameInput) (*LeaveGameOutput, error)
	KickPlayer(ctx context.Context, input *KickPlayerInput) (*KickPlayerOutput, error)
	AssignCharacter(ctx context.Context, input *AssignCharacterInput) (*AssignCharacterOutput, error)

	CreateScene(ctx context.Context, input *CreateSceneInput) (*CreateSceneOutput, error)
	SetCurrentScene(ctx context.Context, input *SetCurrentSceneInput) (*SetCurrentSceneOutput, error)

	SpawnToken(ctx context.Context, input *SpawnTokenInput) (*SpawnTokenOutput, error)
	MoveToken(ctx context.Context, input *MoveTokenInput) (*MoveTokenOutput, error)

	ListLogs(ctx context.Context, input *ListLogsInput) (*ListLogsOutput, error)
}

// Config holds the dependencies for the game orchestrator
type Config struct {
	GameRepo    games.Repository
	TokenRepo   tokens.Repository
	LogRepo     gamelogs.Repository
	Broadcaster realtime.Broadcaster
	IDGenerator idgen.Generator
	Clock       clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.GameRepo == nil {
		vb.RequiredField("GameRepo")
	}
	if c.TokenRepo == nil {
		vb.RequiredField("TokenRepo")
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
	gameRepo    games.Repository
	tokenRepo   tokens.Repository
	logRepo     gamelogs.Repository
	broadcaster realtime.Broadcaster
	idGen       idgen.Generator
	clock       clock.Clock
}

// NewOrchestrator creates a new game orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		gameRepo:    cfg.GameRepo,
		tokenRepo:   cfg.TokenRepo,
		logRepo:     cfg.LogRepo,
		broadcaster: cfg.Broadcaster,
		idGen:       cfg.IDGenerator,
		clock:       cfg.Clock,
	}, nil
}

func (o *orchestrator) requireMember(ctx context.Context, gameID, userID string) (*entities.GamePlayer, error) {
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
	player, err := o.requireMember(ctx, gameID, userID)
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

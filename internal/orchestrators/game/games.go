package game

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
)

const defaultMaxPlayers = 6

// CreateGameInput creates a game with the caller as DM
type CreateGameInput struct {
	UserID     string
	Name       string
	MaxPlayers int32
}

// CreateGameOutput contains the created game
type CreateGameOutput struct {
	Game *entities.Game
}

// GetGameInput identifies a game
type GetGameInput struct {
	GameID string
	UserID string
}

// GetGameOutput contains the game and its membership list
type GetGameOutput struct {
	Game    *entities.Game
	Players []*entities.GamePlayer
}

// JoinGameInput adds the caller to a game as a player
type JoinGameInput struct {
	GameID string
	UserID string
}

// JoinGameOutput contains the membership row
type JoinGameOutput struct {
	Player *entities.GamePlayer
}

// LeaveGameInput removes the caller from a game
type LeaveGameInput struct {
	GameID string
	UserID string
}

// LeaveGameOutput contains the deactivated membership row
type LeaveGameOutput struct {
	Player *entities.GamePlayer
}

// KickPlayerInput removes another player from a game
type KickPlayerInput struct {
	GameID       string
	UserID       string
	TargetUserID string
}

// KickPlayerOutput contains the deactivated membership row
type KickPlayerOutput struct {
	Player *entities.GamePlayer
}

// AssignCharacterInput links a player to the character they control
type AssignCharacterInput struct {
	GameID       string
	UserID       string
	TargetUserID string
	CharacterID  string
}

// AssignCharacterOutput contains the updated membership row
type AssignCharacterOutput struct {
	Player *entities.GamePlayer
}

// ListLogsInput selects a page of the game's audit log
type ListLogsInput struct {
	GameID string
	UserID string
	Offset int64
	Limit  int64
}

// ListLogsOutput contains the page, newest first
type ListLogsOutput struct {
	Logs []*entities.GameLog
}

func (o *orchestrator) CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidArgument("game name is required")
	}

	maxPlayers := input.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}

	now := o.clock.Now().UnixMilli()
	game := &entities.Game{
		ID:         o.idGen.Generate(),
		Name:       input.Name,
		Status:     entities.GameStatusActive,
		MaxPlayers: maxPlayers,
		CreatedBy:  input.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := o.gameRepo.CreateGame(ctx, games.CreateGameInput{
		Game: game,
		Creator: &entities.GamePlayer{
			GameID:   game.ID,
			UserID:   input.UserID,
			Role:     entities.RoleDM,
			IsActive: true,
			JoinedAt: now,
		},
	})
	if err != nil {
		return nil, err
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:     game.ID,
		ActionType: "game_created",
		Payload:    map[string]any{"name": game.Name, "created_by": input.UserID},
	})

	return &CreateGameOutput{Game: game}, nil
}

func (o *orchestrator) GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	if _, err := o.requireMember(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	gameOut, err := o.gameRepo.GetGame(ctx, games.GetGameInput{ID: input.GameID})
	if err != nil {
		return nil, err
	}
	playersOut, err := o.gameRepo.ListPlayers(ctx, games.ListPlayersInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}

	return &GetGameOutput{Game: gameOut.Game, Players: playersOut.Players}, nil
}

func (o *orchestrator) JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	gameOut, err := o.gameRepo.GetGame(ctx, games.GetGameInput{ID: input.GameID})
	if err != nil {
		return nil, err
	}
	game := gameOut.Game

	if game.Status != entities.GameStatusActive {
		return nil, errors.FailedPreconditionf("game is %s and cannot be joined", game.Status)
	}

	existing, err := o.gameRepo.GetPlayer(ctx, games.GetPlayerInput{
		GameID: input.GameID,
		UserID: input.UserID,
	})
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && existing.Player.IsActive {
		return nil, errors.AlreadyExists("you are already in this game")
	}

	playersOut, err := o.gameRepo.ListPlayers(ctx, games.ListPlayersInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}
	activeCount := int32(0)
	for _, p := range playersOut.Players {
		if p.IsActive {
			activeCount++
		}
	}
	if activeCount >= game.MaxPlayers {
		return nil, errors.FailedPrecondition("game is full")
	}

	player := &entities.GamePlayer{
		GameID:   input.GameID,
		UserID:   input.UserID,
		Role:     entities.RolePlayer,
		IsActive: true,
		JoinedAt: o.clock.Now().UnixMilli(),
	}
	// A returning player keeps their character assignment.
	if existing != nil {
		player.AssignedCharacterID = existing.Player.AssignedCharacterID
	}

	if _, err := o.gameRepo.PutPlayer(ctx, games.PutPlayerInput{Player: player}); err != nil {
		return nil, err
	}

	o.broadcaster.EmitToRoom(input.GameID, realtime.EventPlayerJoined, map[string]any{
		"user_id": input.UserID,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		ActionType: "player_joined",
		Payload:    map[string]any{"user_id": input.UserID},
	})

	return &JoinGameOutput{Player: player}, nil
}

func (o *orchestrator) LeaveGame(ctx context.Context, input *LeaveGameInput) (*LeaveGameOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	player, err := o.requireMember(ctx, input.GameID, input.UserID)
	if err != nil {
		return nil, err
	}
	if player.Role == entities.RoleDM {
		return nil, errors.PermissionDenied("the DM cannot leave their own game")
	}

	player.IsActive = false
	if _, err := o.gameRepo.PutPlayer(ctx, games.PutPlayerInput{Player: player}); err != nil {
		return nil, err
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		ActionType: "player_left",
		Payload:    map[string]any{"user_id": input.UserID},
	})

	return &LeaveGameOutput{Player: player}, nil
}

func (o *orchestrator) KickPlayer(ctx context.Context, input *KickPlayerInput) (*KickPlayerOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" || input.TargetUserID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and target user ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}
	if input.TargetUserID == input.UserID {
		return nil, errors.PermissionDenied("the DM cannot kick themselves")
	}

	targetOut, err := o.gameRepo.GetPlayer(ctx, games.GetPlayerInput{
		GameID: input.GameID,
		UserID: input.TargetUserID,
	})
	if err != nil {
		return nil, err
	}

	target := targetOut.Player
	target.IsActive = false
	if _, err := o.gameRepo.PutPlayer(ctx, games.PutPlayerInput{Player: target}); err != nil {
		return nil, err
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		ActionType: "player_kicked",
		Payload:    map[string]any{"user_id": input.TargetUserID, "by": input.UserID},
	})

	return &KickPlayerOutput{Player: target}, nil
}

func (o *orchestrator) AssignCharacter(ctx context.Context, input *AssignCharacterInput) (*AssignCharacterOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" || input.TargetUserID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and target user ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	targetOut, err := o.gameRepo.GetPlayer(ctx, games.GetPlayerInput{
		GameID: input.GameID,
		UserID: input.TargetUserID,
	})
	if err != nil {
		return nil, err
	}

	target := targetOut.Player
	target.AssignedCharacterID = input.CharacterID
	if _, err := o.gameRepo.PutPlayer(ctx, games.PutPlayerInput{Player: target}); err != nil {
		return nil, err
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		ActionType: "character_assigned",
		Payload: map[string]any{
			"user_id":      input.TargetUserID,
			"character_id": input.CharacterID,
		},
	})

	return &AssignCharacterOutput{Player: target}, nil
}

func (o *orchestrator) ListLogs(ctx context.Context, input *ListLogsInput) (*ListLogsOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	if _, err := o.requireMember(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	out, err := o.logRepo.List(ctx, gamelogs.ListInput{
		GameID: input.GameID,
		Offset: input.Offset,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ListLogsOutput{Logs: out.Logs}, nil
}

package game

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
	"github.com/greyhelm/vtt-api/internal/repositories/tokens"
)

// CreateSceneInput adds a scene to a game
type CreateSceneInput struct {
	GameID string
	UserID string
	Name   string
}

// CreateSceneOutput contains the created scene
type CreateSceneOutput struct {
	Scene *entities.Scene
}

// SetCurrentSceneInput switches the game's current scene
type SetCurrentSceneInput struct {
	GameID  string
	UserID  string
	SceneID string
}

// SetCurrentSceneOutput contains the updated game
type SetCurrentSceneOutput struct {
	Game *entities.Game
}

// SpawnTokenInput places a token on a scene
type SpawnTokenInput struct {
	GameID        string
	UserID        string
	SceneID       string
	ActorInGameID string
	Label         string
	X             int32
	Y             int32
}

// SpawnTokenOutput contains the created token
type SpawnTokenOutput struct {
	Token *entities.Token
}

// MoveTokenInput moves a token on its scene
type MoveTokenInput struct {
	GameID  string
	UserID  string
	TokenID string
	X       int32
	Y       int32
}

// MoveTokenOutput contains the moved token
type MoveTokenOutput struct {
	Token *entities.Token
}

func (o *orchestrator) CreateScene(ctx context.Context, input *CreateSceneInput) (*CreateSceneOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" || input.Name == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and scene name are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	scene := &entities.Scene{
		ID:        o.idGen.Generate(),
		GameID:    input.GameID,
		Name:      input.Name,
		CreatedAt: o.clock.Now().UnixMilli(),
	}
	if _, err := o.gameRepo.CreateScene(ctx, games.CreateSceneInput{Scene: scene}); err != nil {
		return nil, err
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		SceneID:    scene.ID,
		ActionType: "scene_created",
		Payload:    map[string]any{"name": scene.Name},
	})

	return &CreateSceneOutput{Scene: scene}, nil
}

func (o *orchestrator) SetCurrentScene(ctx context.Context, input *SetCurrentSceneInput) (*SetCurrentSceneOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" || input.SceneID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and scene ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	sceneOut, err := o.gameRepo.GetScene(ctx, games.GetSceneInput{ID: input.SceneID})
	if err != nil {
		return nil, err
	}
	if sceneOut.Scene.GameID != input.GameID {
		return nil, errors.NotFoundf("scene %s not found in game %s", input.SceneID, input.GameID)
	}

	gameOut, err := o.gameRepo.GetGame(ctx, games.GetGameInput{ID: input.GameID})
	if err != nil {
		return nil, err
	}
	game := gameOut.Game
	game.CurrentSceneID = input.SceneID
	game.UpdatedAt = o.clock.Now().UnixMilli()

	if _, err := o.gameRepo.UpdateGame(ctx, games.UpdateGameInput{Game: game}); err != nil {
		return nil, err
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		SceneID:    input.SceneID,
		ActionType: "scene_changed",
	})

	return &SetCurrentSceneOutput{Game: game}, nil
}

func (o *orchestrator) SpawnToken(ctx context.Context, input *SpawnTokenInput) (*SpawnTokenOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" || input.SceneID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and scene ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	sceneOut, err := o.gameRepo.GetScene(ctx, games.GetSceneInput{ID: input.SceneID})
	if err != nil {
		return nil, err
	}
	if sceneOut.Scene.GameID != input.GameID {
		return nil, errors.NotFoundf("scene %s not found in game %s", input.SceneID, input.GameID)
	}

	token := &entities.Token{
		ID:            o.idGen.Generate(),
		GameID:        input.GameID,
		SceneID:       input.SceneID,
		ActorInGameID: input.ActorInGameID,
		Label:         input.Label,
		X:             input.X,
		Y:             input.Y,
	}
	if _, err := o.tokenRepo.Create(ctx, tokens.CreateInput{Token: token}); err != nil {
		return nil, err
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		SceneID:       input.SceneID,
		ActorInGameID: input.ActorInGameID,
		ActionType:    "token_spawned",
		Payload:       map[string]any{"token_id": token.ID, "x": token.X, "y": token.Y},
	})

	return &SpawnTokenOutput{Token: token}, nil
}

func (o *orchestrator) MoveToken(ctx context.Context, input *MoveTokenInput) (*MoveTokenOutput, error) {
	if input == nil || input.GameID == "" || input.UserID == "" || input.TokenID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and token ID are required")
	}

	if _, err := o.requireMember(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	tokenOut, err := o.tokenRepo.Get(ctx, tokens.GetInput{ID: input.TokenID})
	if err != nil {
		return nil, err
	}
	token := tokenOut.Token
	if token.GameID != input.GameID {
		return nil, errors.NotFoundf("token %s not found in game %s", input.TokenID, input.GameID)
	}

	token.X = input.X
	token.Y = input.Y
	if _, err := o.tokenRepo.Update(ctx, tokens.UpdateInput{Token: token}); err != nil {
		return nil, err
	}

	o.broadcaster.EmitToRoom(input.GameID, realtime.EventTokenMoved, map[string]any{
		"token_id": token.ID,
		"scene_id": token.SceneID,
		"x":        token.X,
		"y":        token.Y,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		SceneID:       token.SceneID,
		ActorInGameID: token.ActorInGameID,
		ActionType:    "token_moved",
		Payload:       map[string]any{"token_id": token.ID, "x": token.X, "y": token.Y},
	})

	return &MoveTokenOutput{Token: token}, nil
}

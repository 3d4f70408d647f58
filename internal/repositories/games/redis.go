package games

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
)

const (
	gameKeyPrefix  = "game:"
	sceneKeyPrefix = "scene:"

	playersIndexSuffix = ":players"
	playerKeyInfix     = ":player:"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis games repository.
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed games repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func gameKey(id string) string { return gameKeyPrefix + id }

func playersIndexKey(gameID string) string { return gameKeyPrefix + gameID + playersIndexSuffix }

func playerKey(gameID, userID string) string {
	return gameKeyPrefix + gameID + playerKeyInfix + userID
}

func sceneKey(id string) string { return sceneKeyPrefix + id }

func (r *redisRepository) CreateGame(ctx context.Context, input CreateGameInput) (*CreateGameOutput, error) {
	if input.Game == nil || input.Game.ID == "" {
		return nil, errors.InvalidArgument("game with ID is required")
	}
	if input.Creator == nil {
		return nil, errors.InvalidArgument("creator membership is required")
	}

	exists, err := r.client.Exists(ctx, gameKey(input.Game.ID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check game existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("game %s already exists", input.Game.ID)
	}

	gameData, err := json.Marshal(input.Game)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal game")
	}
	playerData, err := json.Marshal(input.Creator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal creator")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, gameKey(input.Game.ID), gameData, 0)
	pipe.Set(ctx, playerKey(input.Game.ID, input.Creator.UserID), playerData, 0)
	pipe.SAdd(ctx, playersIndexKey(input.Game.ID), input.Creator.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to create game")
	}

	return &CreateGameOutput{Game: input.Game}, nil
}

func (r *redisRepository) GetGame(ctx context.Context, input GetGameInput) (*GetGameOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	result, err := r.client.Get(ctx, gameKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("game %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get game")
	}

	var game entities.Game
	if err := json.Unmarshal([]byte(result), &game); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal game")
	}

	return &GetGameOutput{Game: &game}, nil
}

func (r *redisRepository) UpdateGame(ctx context.Context, input UpdateGameInput) (*UpdateGameOutput, error) {
	if input.Game == nil || input.Game.ID == "" {
		return nil, errors.InvalidArgument("game with ID is required")
	}

	exists, err := r.client.Exists(ctx, gameKey(input.Game.ID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check game existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("game %s not found", input.Game.ID)
	}

	data, err := json.Marshal(input.Game)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal game")
	}
	if err := r.client.Set(ctx, gameKey(input.Game.ID), data, 0).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to update game")
	}

	return &UpdateGameOutput{Game: input.Game}, nil
}

func (r *redisRepository) GetPlayer(ctx context.Context, input GetPlayerInput) (*GetPlayerOutput, error) {
	if input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	result, err := r.client.Get(ctx, playerKey(input.GameID, input.UserID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("user %s is not a member of game %s", input.UserID, input.GameID)
		}
		return nil, errors.Wrap(err, "failed to get player")
	}

	var player entities.GamePlayer
	if err := json.Unmarshal([]byte(result), &player); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal player")
	}

	return &GetPlayerOutput{Player: &player}, nil
}

func (r *redisRepository) PutPlayer(ctx context.Context, input PutPlayerInput) (*PutPlayerOutput, error) {
	if input.Player == nil || input.Player.GameID == "" || input.Player.UserID == "" {
		return nil, errors.InvalidArgument("player with game ID and user ID is required")
	}

	data, err := json.Marshal(input.Player)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal player")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, playerKey(input.Player.GameID, input.Player.UserID), data, 0)
	pipe.SAdd(ctx, playersIndexKey(input.Player.GameID), input.Player.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to put player")
	}

	return &PutPlayerOutput{Player: input.Player}, nil
}

func (r *redisRepository) ListPlayers(ctx context.Context, input ListPlayersInput) (*ListPlayersOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	userIDs, err := r.client.SMembers(ctx, playersIndexKey(input.GameID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list player index")
	}

	players := make([]*entities.GamePlayer, 0, len(userIDs))
	for _, userID := range userIDs {
		out, err := r.GetPlayer(ctx, GetPlayerInput{GameID: input.GameID, UserID: userID})
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, playersIndexKey(input.GameID), userID)
				continue
			}
			return nil, err
		}
		players = append(players, out.Player)
	}

	return &ListPlayersOutput{Players: players}, nil
}

func (r *redisRepository) CreateScene(ctx context.Context, input CreateSceneInput) (*CreateSceneOutput, error) {
	if input.Scene == nil || input.Scene.ID == "" || input.Scene.GameID == "" {
		return nil, errors.InvalidArgument("scene with ID and game ID is required")
	}

	data, err := json.Marshal(input.Scene)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal scene")
	}
	if err := r.client.Set(ctx, sceneKey(input.Scene.ID), data, 0).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to create scene")
	}

	return &CreateSceneOutput{Scene: input.Scene}, nil
}

func (r *redisRepository) GetScene(ctx context.Context, input GetSceneInput) (*GetSceneOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("scene ID is required")
	}

	result, err := r.client.Get(ctx, sceneKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("scene %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get scene")
	}

	var scene entities.Scene
	if err := json.Unmarshal([]byte(result), &scene); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scene")
	}

	return &GetSceneOutput{Scene: &scene}, nil
}

package conditions

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
)

const (
	conditionKeyPrefix = "actorcond:"
	actorIndexPrefix   = "actor:"
	actorIndexSuffix   = ":conditions"
	gameIndexPrefix    = "game:"
	gameIndexSuffix    = ":conditions"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis conditions repository.
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

// NewRedis creates a new Redis-backed conditions repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func conditionKey(id string) string { return conditionKeyPrefix + id }

func actorIndexKey(actorInGameID string) string {
	return actorIndexPrefix + actorInGameID + actorIndexSuffix
}

func gameIndexKey(gameID string) string { return gameIndexPrefix + gameID + gameIndexSuffix }

func (r *redisRepository) Apply(ctx context.Context, input ApplyInput) (*ApplyOutput, error) {
	if input.Condition == nil || input.Condition.ID == "" {
		return nil, errors.InvalidArgument("condition with ID is required")
	}
	if input.Condition.ActorInGameID == "" {
		return nil, errors.InvalidArgument("condition actor ID is required")
	}
	if input.Condition.GameID == "" {
		return nil, errors.InvalidArgument("condition game ID is required")
	}

	data, err := json.Marshal(input.Condition)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal condition")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, conditionKey(input.Condition.ID), data, 0)
	pipe.SAdd(ctx, actorIndexKey(input.Condition.ActorInGameID), input.Condition.ID)
	pipe.SAdd(ctx, gameIndexKey(input.Condition.GameID), input.Condition.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to apply condition")
	}

	return &ApplyOutput{Condition: input.Condition}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("condition ID is required")
	}

	cond, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Condition: cond}, nil
}

func (r *redisRepository) load(ctx context.Context, id string) (*entities.ActorCondition, error) {
	result, err := r.client.Get(ctx, conditionKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("condition %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to get condition")
	}

	var cond entities.ActorCondition
	if err := json.Unmarshal([]byte(result), &cond); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal condition")
	}
	return &cond, nil
}

func (r *redisRepository) ListForActor(ctx context.Context, input ListForActorInput) (*ListForActorOutput, error) {
	if input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	conditions, err := r.listIndex(ctx, actorIndexKey(input.ActorInGameID))
	if err != nil {
		return nil, err
	}
	return &ListForActorOutput{Conditions: conditions}, nil
}

func (r *redisRepository) ListForGame(ctx context.Context, input ListForGameInput) (*ListForGameOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	conditions, err := r.listIndex(ctx, gameIndexKey(input.GameID))
	if err != nil {
		return nil, err
	}
	return &ListForGameOutput{Conditions: conditions}, nil
}

func (r *redisRepository) listIndex(ctx context.Context, indexKey string) ([]*entities.ActorCondition, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conditions")
	}

	conditions := make([]*entities.ActorCondition, 0, len(ids))
	for _, id := range ids {
		cond, err := r.load(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				// Dangling index entry, clean it up.
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, err
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("condition ID is required")
	}

	cond, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := r.remove(ctx, cond); err != nil {
		return nil, err
	}
	return &DeleteOutput{Condition: cond}, nil
}

func (r *redisRepository) remove(ctx context.Context, cond *entities.ActorCondition) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, conditionKey(cond.ID))
	pipe.SRem(ctx, actorIndexKey(cond.ActorInGameID), cond.ID)
	pipe.SRem(ctx, gameIndexKey(cond.GameID), cond.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to delete condition")
	}
	return nil
}

func (r *redisRepository) ExpireDue(ctx context.Context, input ExpireDueInput) (*ExpireDueOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	all, err := r.listIndex(ctx, gameIndexKey(input.GameID))
	if err != nil {
		return nil, err
	}

	expired := []*entities.ActorCondition{}
	for _, cond := range all {
		if cond.ExpiresOnRound == nil || input.Round < *cond.ExpiresOnRound {
			continue
		}
		if err := r.remove(ctx, cond); err != nil {
			return nil, err
		}
		expired = append(expired, cond)
	}

	return &ExpireDueOutput{Expired: expired}, nil
}

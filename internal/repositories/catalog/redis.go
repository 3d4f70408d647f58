package catalog

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
)

const (
	attackKeyPrefix    = "attack:"
	spellKeyPrefix     = "spell:"
	conditionKeyPrefix = "condition:"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis catalog repository.
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

// NewRedis creates a new Redis-backed catalog repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal catalog entry")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to store catalog entry")
	}
	return nil
}

func (r *redisRepository) get(ctx context.Context, key string, v any) error {
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return errors.NotFoundf("catalog entry %s not found", key)
		}
		return errors.Wrap(err, "failed to get catalog entry")
	}
	if err := json.Unmarshal([]byte(result), v); err != nil {
		return errors.Wrap(err, "failed to unmarshal catalog entry")
	}
	return nil
}

func (r *redisRepository) PutAttack(ctx context.Context, input PutAttackInput) (*PutAttackOutput, error) {
	if input.Attack == nil || input.Attack.ID == "" {
		return nil, errors.InvalidArgument("attack with ID is required")
	}
	if err := r.put(ctx, attackKeyPrefix+input.Attack.ID, input.Attack); err != nil {
		return nil, err
	}
	return &PutAttackOutput{Attack: input.Attack}, nil
}

func (r *redisRepository) GetAttack(ctx context.Context, input GetAttackInput) (*GetAttackOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("attack ID is required")
	}
	var attack entities.Attack
	if err := r.get(ctx, attackKeyPrefix+input.ID, &attack); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFoundf("attack %s not found", input.ID)
		}
		return nil, err
	}
	return &GetAttackOutput{Attack: &attack}, nil
}

func (r *redisRepository) PutSpell(ctx context.Context, input PutSpellInput) (*PutSpellOutput, error) {
	if input.Spell == nil || input.Spell.ID == "" {
		return nil, errors.InvalidArgument("spell with ID is required")
	}
	if err := r.put(ctx, spellKeyPrefix+input.Spell.ID, input.Spell); err != nil {
		return nil, err
	}
	return &PutSpellOutput{Spell: input.Spell}, nil
}

func (r *redisRepository) GetSpell(ctx context.Context, input GetSpellInput) (*GetSpellOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("spell ID is required")
	}
	var spell entities.Spell
	if err := r.get(ctx, spellKeyPrefix+input.ID, &spell); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFoundf("spell %s not found", input.ID)
		}
		return nil, err
	}
	return &GetSpellOutput{Spell: &spell}, nil
}

func (r *redisRepository) PutCondition(ctx context.Context, input PutConditionInput) (*PutConditionOutput, error) {
	if input.Condition == nil || input.Condition.ID == "" {
		return nil, errors.InvalidArgument("condition with ID is required")
	}
	if err := r.put(ctx, conditionKeyPrefix+input.Condition.ID, input.Condition); err != nil {
		return nil, err
	}
	return &PutConditionOutput{Condition: input.Condition}, nil
}

func (r *redisRepository) GetCondition(ctx context.Context, input GetConditionInput) (*GetConditionOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("condition ID is required")
	}
	var cond entities.Condition
	if err := r.get(ctx, conditionKeyPrefix+input.ID, &cond); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFoundf("condition %s not found", input.ID)
		}
		return nil, err
	}
	return &GetConditionOutput{Condition: &cond}, nil
}

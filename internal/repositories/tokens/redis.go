package tokens

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
)

const (
	tokenKeyPrefix   = "token:"
	sceneIndexPrefix = "scene:"
	sceneIndexSuffix = ":tokens"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis tokens repository.
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

// NewRedis creates a new Redis-backed tokens repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func tokenKey(id string) string { return tokenKeyPrefix + id }

func sceneIndexKey(sceneID string) string { return sceneIndexPrefix + sceneID + sceneIndexSuffix }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Token == nil || input.Token.ID == "" {
		return nil, errors.InvalidArgument("token with ID is required")
	}
	if input.Token.SceneID == "" {
		return nil, errors.InvalidArgument("token scene ID is required")
	}

	data, err := json.Marshal(input.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal token")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tokenKey(input.Token.ID), data, 0)
	pipe.SAdd(ctx, sceneIndexKey(input.Token.SceneID), input.Token.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to create token")
	}

	return &CreateOutput{Token: input.Token}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("token ID is required")
	}

	token, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Token: token}, nil
}

func (r *redisRepository) load(ctx context.Context, id string) (*entities.Token, error) {
	result, err := r.client.Get(ctx, tokenKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("token %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to get token")
	}

	var token entities.Token
	if err := json.Unmarshal([]byte(result), &token); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal token")
	}
	return &token, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Token == nil || input.Token.ID == "" {
		return nil, errors.InvalidArgument("token with ID is required")
	}

	existing, err := r.load(ctx, input.Token.ID)
	if err != nil {
		return nil, err
	}
	if existing.SceneID != input.Token.SceneID {
		return nil, errors.InvalidArgument("token cannot change scene")
	}

	data, err := json.Marshal(input.Token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal token")
	}
	if err := r.client.Set(ctx, tokenKey(input.Token.ID), data, 0).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to update token")
	}

	return &UpdateOutput{Token: input.Token}, nil
}

func (r *redisRepository) ListByScene(ctx context.Context, input ListBySceneInput) (*ListBySceneOutput, error) {
	if input.SceneID == "" {
		return nil, errors.InvalidArgument("scene ID is required")
	}

	ids, err := r.client.SMembers(ctx, sceneIndexKey(input.SceneID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tokens")
	}

	tokens := make([]*entities.Token, 0, len(ids))
	for _, id := range ids {
		token, err := r.load(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, sceneIndexKey(input.SceneID), id)
				continue
			}
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return &ListBySceneOutput{Tokens: tokens}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("token ID is required")
	}

	token, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, tokenKey(token.ID))
	pipe.SRem(ctx, sceneIndexKey(token.SceneID), token.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to delete token")
	}

	return &DeleteOutput{Token: token}, nil
}

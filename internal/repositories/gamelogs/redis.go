package gamelogs

import (
	"context"
	"encoding/json"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
)

const (
	logListPrefix = "game:"
	logListSuffix = ":logs"

	defaultPageSize = 50
	maxPageSize     = 200
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis game log repository.
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

// NewRedis creates a new Redis-backed game log repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func logListKey(gameID string) string { return logListPrefix + gameID + logListSuffix }

func (r *redisRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if input.Log == nil || input.Log.ID == "" {
		return nil, errors.InvalidArgument("log entry with ID is required")
	}
	if input.Log.GameID == "" {
		return nil, errors.InvalidArgument("log game ID is required")
	}
	if input.Log.ActionType == "" {
		return nil, errors.InvalidArgument("log action type is required")
	}

	data, err := json.Marshal(input.Log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal log entry")
	}

	// LPUSH keeps the list newest-first so List is a plain LRANGE.
	if err := r.client.LPush(ctx, logListKey(input.Log.GameID), data).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to append log entry")
	}

	return &AppendOutput{Log: input.Log}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}
	if input.Offset < 0 {
		return nil, errors.InvalidArgument("offset cannot be negative")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	rows, err := r.client.LRange(ctx, logListKey(input.GameID), input.Offset, input.Offset+limit-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list log entries")
	}

	logs := make([]*entities.GameLog, 0, len(rows))
	for _, row := range rows {
		var entry entities.GameLog
		if err := json.Unmarshal([]byte(row), &entry); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal log entry")
		}
		logs = append(logs, &entry)
	}

	return &ListOutput{Logs: logs}, nil
}

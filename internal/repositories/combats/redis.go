package combats

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
)

const (
	combatKeyPrefix    = "combat:"
	participantsSuffix = ":participants"
	activePointerInfix = ":combat:active"
	gameKeyPrefix      = "game:"
	maxOptimisticTry   = 5
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis combats repository.
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

// NewRedis creates a new Redis-backed combats repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func combatKey(id string) string { return combatKeyPrefix + id }

func participantsKey(combatID string) string { return combatKeyPrefix + combatID + participantsSuffix }

func activePointerKey(gameID string) string { return gameKeyPrefix + gameID + activePointerInfix }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Combat == nil || input.Combat.ID == "" {
		return nil, errors.InvalidArgument("combat with ID is required")
	}
	if input.Combat.GameID == "" {
		return nil, errors.InvalidArgument("combat game ID is required")
	}

	// SetNX on the active pointer is the one-active-combat-per-game gate.
	claimed, err := r.client.SetNX(ctx, activePointerKey(input.Combat.GameID), input.Combat.ID, 0).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to claim active combat pointer")
	}
	if !claimed {
		return nil, errors.AlreadyExists("there is already an active combat")
	}

	combatData, err := json.Marshal(input.Combat)
	if err != nil {
		r.client.Del(ctx, activePointerKey(input.Combat.GameID))
		return nil, errors.Wrap(err, "failed to marshal combat")
	}
	emptyParticipants, _ := json.Marshal([]entities.CombatParticipant{})

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, combatKey(input.Combat.ID), combatData, 0)
	pipe.Set(ctx, participantsKey(input.Combat.ID), emptyParticipants, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		r.client.Del(ctx, activePointerKey(input.Combat.GameID))
		return nil, errors.Wrap(err, "failed to create combat")
	}

	return &CreateOutput{Combat: input.Combat}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("combat ID is required")
	}

	combat, err := r.loadCombat(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Combat: combat}, nil
}

func (r *redisRepository) loadCombat(ctx context.Context, id string) (*entities.Combat, error) {
	result, err := r.client.Get(ctx, combatKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("combat %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to get combat")
	}

	var combat entities.Combat
	if err := json.Unmarshal([]byte(result), &combat); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal combat")
	}
	return &combat, nil
}

func (r *redisRepository) GetActive(ctx context.Context, input GetActiveInput) (*GetActiveOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	combatID, err := r.client.Get(ctx, activePointerKey(input.GameID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("no active combat")
		}
		return nil, errors.Wrap(err, "failed to resolve active combat")
	}

	combat, err := r.loadCombat(ctx, combatID)
	if err != nil {
		return nil, err
	}
	return &GetActiveOutput{Combat: combat}, nil
}

func (r *redisRepository) GetState(ctx context.Context, input GetStateInput) (*GetStateOutput, error) {
	if input.CombatID == "" {
		return nil, errors.InvalidArgument("combat ID is required")
	}

	combat, err := r.loadCombat(ctx, input.CombatID)
	if err != nil {
		return nil, err
	}

	participants, err := r.loadParticipants(ctx, input.CombatID)
	if err != nil {
		return nil, err
	}

	return &GetStateOutput{State: &State{Combat: combat, Participants: participants}}, nil
}

func (r *redisRepository) loadParticipants(ctx context.Context, combatID string) ([]entities.CombatParticipant, error) {
	result, err := r.client.Get(ctx, participantsKey(combatID)).Result()
	if err != nil {
		if err == redis.Nil {
			return []entities.CombatParticipant{}, nil
		}
		return nil, errors.Wrap(err, "failed to get participants")
	}

	var participants []entities.CombatParticipant
	if err := json.Unmarshal([]byte(result), &participants); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal participants")
	}
	return participants, nil
}

func (r *redisRepository) Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error) {
	if input.CombatID == "" {
		return nil, errors.InvalidArgument("combat ID is required")
	}
	if input.Fn == nil {
		return nil, errors.InvalidArgument("mutate function is required")
	}

	cKey := combatKey(input.CombatID)
	pKey := participantsKey(input.CombatID)
	var committed *State

	txn := func(tx *redis.Tx) error {
		combatJSON, err := tx.Get(ctx, cKey).Result()
		if err != nil {
			if err == redis.Nil {
				return errors.NotFoundf("combat %s not found", input.CombatID)
			}
			return err
		}

		var combat entities.Combat
		if err := json.Unmarshal([]byte(combatJSON), &combat); err != nil {
			return errors.Wrap(err, "failed to unmarshal combat")
		}

		participants := []entities.CombatParticipant{}
		participantsJSON, err := tx.Get(ctx, pKey).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			if err := json.Unmarshal([]byte(participantsJSON), &participants); err != nil {
				return errors.Wrap(err, "failed to unmarshal participants")
			}
		}

		state := &State{Combat: &combat, Participants: participants}
		if err := input.Fn(state); err != nil {
			return err
		}

		combatData, err := json.Marshal(state.Combat)
		if err != nil {
			return errors.Wrap(err, "failed to marshal combat")
		}
		participantData, err := json.Marshal(state.Participants)
		if err != nil {
			return errors.Wrap(err, "failed to marshal participants")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cKey, combatData, 0)
			pipe.Set(ctx, pKey, participantData, 0)
			return nil
		})
		if err != nil {
			return err
		}

		committed = state
		return nil
	}

	for attempt := 0; attempt < maxOptimisticTry; attempt++ {
		err := r.client.Watch(ctx, txn, cKey, pKey)
		if err == nil {
			return &MutateOutput{State: committed}, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to mutate combat state")
	}

	return nil, errors.Abortedf("combat %s mutation contended, giving up", input.CombatID)
}

func (r *redisRepository) End(ctx context.Context, input EndInput) (*EndOutput, error) {
	if input.Combat == nil || input.Combat.ID == "" {
		return nil, errors.InvalidArgument("combat with ID is required")
	}
	if input.Combat.IsActive {
		return nil, errors.InvalidArgument("combat must be marked inactive before ending")
	}

	data, err := json.Marshal(input.Combat)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal combat")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, combatKey(input.Combat.ID), data, 0)
	pipe.Del(ctx, activePointerKey(input.Combat.GameID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to end combat")
	}

	return &EndOutput{Combat: input.Combat}, nil
}

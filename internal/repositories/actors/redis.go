package actors

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
)

const (
	actorKeyPrefix   = "actor:"
	gameActorsInfix  = ":actors"
	slotKeyInfix     = ":slot:"
	gameKeyPrefix    = "game:"
	maxOptimisticTry = 5
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis actors repository.
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

// NewRedis creates a new Redis-backed actors repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func actorKey(id string) string { return actorKeyPrefix + id }

func gameActorsKey(gameID string) string { return gameKeyPrefix + gameID + gameActorsInfix }

func slotKey(actorID string, level int32) string {
	return fmt.Sprintf("%s%s%s%d", actorKeyPrefix, actorID, slotKeyInfix, level)
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Actor == nil || input.Actor.ID == "" {
		return nil, errors.InvalidArgument("actor with ID is required")
	}
	if input.Actor.GameID == "" {
		return nil, errors.InvalidArgument("actor game ID is required")
	}
	if _, err := input.Actor.Source(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.Actor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal actor")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, actorKey(input.Actor.ID), data, 0)
	pipe.SAdd(ctx, gameActorsKey(input.Actor.GameID), input.Actor.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to create actor")
	}

	return &CreateOutput{Actor: input.Actor}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	result, err := r.client.Get(ctx, actorKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("actor %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get actor")
	}

	var actor entities.ActorInGame
	if err := json.Unmarshal([]byte(result), &actor); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal actor")
	}

	return &GetOutput{Actor: &actor}, nil
}

func (r *redisRepository) ListByGame(ctx context.Context, input ListByGameInput) (*ListByGameOutput, error) {
	if input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	actorIDs, err := r.client.SMembers(ctx, gameActorsKey(input.GameID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list actor index")
	}

	actors := make([]*entities.ActorInGame, 0, len(actorIDs))
	for _, id := range actorIDs {
		out, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, gameActorsKey(input.GameID), id)
				continue
			}
			return nil, err
		}
		actors = append(actors, out.Actor)
	}

	return &ListByGameOutput{Actors: actors}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Actor == nil || input.Actor.ID == "" {
		return nil, errors.InvalidArgument("actor with ID is required")
	}

	exists, err := r.client.Exists(ctx, actorKey(input.Actor.ID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check actor existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("actor %s not found", input.Actor.ID)
	}

	data, err := json.Marshal(input.Actor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal actor")
	}
	if err := r.client.Set(ctx, actorKey(input.Actor.ID), data, 0).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to update actor")
	}

	return &UpdateOutput{Actor: input.Actor}, nil
}

func (r *redisRepository) UpdateAtomic(ctx context.Context, input UpdateAtomicInput) (*UpdateAtomicOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}
	if input.Mutate == nil {
		return nil, errors.InvalidArgument("mutate function is required")
	}

	key := actorKey(input.ID)
	var committed *entities.ActorInGame

	txn := func(tx *redis.Tx) error {
		result, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return errors.NotFoundf("actor %s not found", input.ID)
			}
			return err
		}

		var actor entities.ActorInGame
		if err := json.Unmarshal([]byte(result), &actor); err != nil {
			return errors.Wrap(err, "failed to unmarshal actor")
		}

		if err := input.Mutate(&actor); err != nil {
			return err
		}

		data, err := json.Marshal(&actor)
		if err != nil {
			return errors.Wrap(err, "failed to marshal actor")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		committed = &actor
		return nil
	}

	for attempt := 0; attempt < maxOptimisticTry; attempt++ {
		err := r.client.Watch(ctx, txn, key)
		if err == nil {
			return &UpdateAtomicOutput{Actor: committed}, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to update actor atomically")
	}

	return nil, errors.Abortedf("actor %s update contended, giving up", input.ID)
}

func (r *redisRepository) GetByBaseCharacter(ctx context.Context, input GetByBaseCharacterInput) (*GetByBaseCharacterOutput, error) {
	if input.GameID == "" || input.CharacterID == "" {
		return nil, errors.InvalidArgument("game ID and character ID are required")
	}

	listOut, err := r.ListByGame(ctx, ListByGameInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}

	for _, actor := range listOut.Actors {
		if actor.BaseCharacterID == input.CharacterID {
			return &GetByBaseCharacterOutput{Actor: actor}, nil
		}
	}

	return nil, errors.NotFoundf("no actor for character %s in game %s", input.CharacterID, input.GameID)
}

func (r *redisRepository) PutSpellSlot(ctx context.Context, input PutSpellSlotInput) (*PutSpellSlotOutput, error) {
	if input.Slot == nil || input.Slot.ActorInGameID == "" {
		return nil, errors.InvalidArgument("slot with actor ID is required")
	}
	if input.Slot.Level < 1 {
		return nil, errors.InvalidArgument("slot level must be at least 1")
	}

	data, err := json.Marshal(input.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal spell slot")
	}
	if err := r.client.Set(ctx, slotKey(input.Slot.ActorInGameID, input.Slot.Level), data, 0).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to put spell slot")
	}

	return &PutSpellSlotOutput{Slot: input.Slot}, nil
}

func (r *redisRepository) GetSpellSlot(ctx context.Context, input GetSpellSlotInput) (*GetSpellSlotOutput, error) {
	if input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	result, err := r.client.Get(ctx, slotKey(input.ActorInGameID, input.Level)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no level %d slot record for actor %s", input.Level, input.ActorInGameID)
		}
		return nil, errors.Wrap(err, "failed to get spell slot")
	}

	var slot entities.SpellSlot
	if err := json.Unmarshal([]byte(result), &slot); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal spell slot")
	}

	return &GetSpellSlotOutput{Slot: &slot}, nil
}

func (r *redisRepository) ConsumeSpellSlot(ctx context.Context, input ConsumeSpellSlotInput) (*ConsumeSpellSlotOutput, error) {
	if input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}

	key := slotKey(input.ActorInGameID, input.Level)
	var committed *entities.SpellSlot

	txn := func(tx *redis.Tx) error {
		result, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return errors.NotFoundf("no level %d slot record for actor %s", input.Level, input.ActorInGameID)
			}
			return err
		}

		var slot entities.SpellSlot
		if err := json.Unmarshal([]byte(result), &slot); err != nil {
			return errors.Wrap(err, "failed to unmarshal spell slot")
		}

		if slot.SlotsUsed >= slot.SlotsMax {
			return errors.InvalidArgument("no spell slots available")
		}
		slot.SlotsUsed++

		data, err := json.Marshal(&slot)
		if err != nil {
			return errors.Wrap(err, "failed to marshal spell slot")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		committed = &slot
		return nil
	}

	for attempt := 0; attempt < maxOptimisticTry; attempt++ {
		err := r.client.Watch(ctx, txn, key)
		if err == nil {
			return &ConsumeSpellSlotOutput{Slot: committed}, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to consume spell slot")
	}

	return nil, errors.Abortedf("slot consumption for actor %s contended, giving up", input.ActorInGameID)
}

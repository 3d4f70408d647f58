package actor

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
)

// SlotInit seeds one spell-slot level when an actor is created.
type SlotInit struct {
	Level    int32
	SlotsMax int32
}

// CreateActorInput instantiates a character or monster template into a
// game. Exactly one of BaseCharacterID / BaseMonsterID must be set.
type CreateActorInput struct {
	GameID          string
	UserID          string
	BaseCharacterID string
	BaseMonsterID   string
	NameOverride    string
	MaxHP           int32
	ArmorClass      int32
	Constitution    int32
	SpellSlots      []SlotInit
}

// CreateActorOutput contains the created actor
type CreateActorOutput struct {
	Actor *entities.ActorInGame
}

// GetActorInput identifies an actor within a game
type GetActorInput struct {
	GameID        string
	ActorInGameID string
}

// GetActorOutput contains the actor
type GetActorOutput struct {
	Actor *entities.ActorInGame
}

// ListActorsInput identifies a game
type ListActorsInput struct {
	GameID string
}

// ListActorsOutput contains the game's actors
type ListActorsOutput struct {
	Actors []*entities.ActorInGame
}

func (o *orchestrator) CreateActor(ctx context.Context, input *CreateActorInput) (*CreateActorOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}
	if input.MaxHP <= 0 {
		return nil, errors.InvalidArgument("max HP must be positive")
	}

	// Exactly one template source.
	if _, err := entities.NewActorSource(input.BaseCharacterID, input.BaseMonsterID); err != nil {
		return nil, err
	}

	if err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}
	if _, err := o.gameRepo.GetGame(ctx, games.GetGameInput{ID: input.GameID}); err != nil {
		return nil, err
	}

	now := o.clock.Now().UnixMilli()
	actor := &entities.ActorInGame{
		ID:              o.idGen.Generate(),
		GameID:          input.GameID,
		BaseCharacterID: input.BaseCharacterID,
		BaseMonsterID:   input.BaseMonsterID,
		NameOverride:    input.NameOverride,
		CurrentHP:       input.MaxHP,
		MaxHPOverride:   input.MaxHP,
		ArmorClass:      input.ArmorClass,
		Constitution:    input.Constitution,
		IsConscious:     true,
		IsStable:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := o.actorRepo.Create(ctx, actors.CreateInput{Actor: actor}); err != nil {
		return nil, err
	}

	for _, slot := range input.SpellSlots {
		_, err := o.actorRepo.PutSpellSlot(ctx, actors.PutSpellSlotInput{
			Slot: &entities.SpellSlot{
				ActorInGameID: actor.ID,
				Level:         slot.Level,
				SlotsMax:      slot.SlotsMax,
			},
		})
		if err != nil {
			return nil, err
		}
	}

	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		ActorInGameID: actor.ID,
		ActionType:    "actor_created",
		Payload: map[string]any{
			"base_character_id": input.BaseCharacterID,
			"base_monster_id":   input.BaseMonsterID,
			"max_hp":            input.MaxHP,
		},
	})

	return &CreateActorOutput{Actor: actor}, nil
}

func (o *orchestrator) GetActor(ctx context.Context, input *GetActorInput) (*GetActorOutput, error) {
	if input == nil || input.GameID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID and actor ID are required")
	}

	actor, err := o.requireActorInGame(ctx, input.GameID, input.ActorInGameID)
	if err != nil {
		return nil, err
	}
	return &GetActorOutput{Actor: actor}, nil
}

func (o *orchestrator) ListActors(ctx context.Context, input *ListActorsInput) (*ListActorsOutput, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	out, err := o.actorRepo.ListByGame(ctx, actors.ListByGameInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}
	return &ListActorsOutput{Actors: out.Actors}, nil
}

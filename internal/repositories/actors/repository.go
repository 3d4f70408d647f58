// Package actors provides storage for actors-in-game and their spell slots.
package actors

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=actorsmock github.com/greyhelm/vtt-api/internal/repositories/actors Repository

// CreateInput contains the actor to store
type CreateInput struct {
	Actor *entities.ActorInGame
}

// CreateOutput contains the stored actor
type CreateOutput struct {
	Actor *entities.ActorInGame
}

// GetInput identifies an actor
type GetInput struct {
	ID string
}

// GetOutput contains the actor
type GetOutput struct {
	Actor *entities.ActorInGame
}

// ListByGameInput identifies a game
type ListByGameInput struct {
	GameID string
}

// ListByGameOutput contains all actors in the game
type ListByGameOutput struct {
	Actors []*entities.ActorInGame
}

// UpdateInput replaces an actor row
type UpdateInput struct {
	Actor *entities.ActorInGame
}

// UpdateOutput contains the updated actor
type UpdateOutput struct {
	Actor *entities.ActorInGame
}

// UpdateAtomicInput runs Mutate against a fresh read of the actor and
// commits only if the row was not concurrently modified.
type UpdateAtomicInput struct {
	ID     string
	Mutate func(actor *entities.ActorInGame) error
}

// UpdateAtomicOutput contains the committed actor state
type UpdateAtomicOutput struct {
	Actor *entities.ActorInGame
}

// GetByBaseCharacterInput resolves the actor instantiated from a character
// template within one game.
type GetByBaseCharacterInput struct {
	GameID      string
	CharacterID string
}

// GetByBaseCharacterOutput contains the matching actor
type GetByBaseCharacterOutput struct {
	Actor *entities.ActorInGame
}

// PutSpellSlotInput upserts a slot record
type PutSpellSlotInput struct {
	Slot *entities.SpellSlot
}

// PutSpellSlotOutput contains the stored slot record
type PutSpellSlotOutput struct {
	Slot *entities.SpellSlot
}

// GetSpellSlotInput identifies a slot record
type GetSpellSlotInput struct {
	ActorInGameID string
	Level         int32
}

// GetSpellSlotOutput contains the slot record
type GetSpellSlotOutput struct {
	Slot *entities.SpellSlot
}

// ConsumeSpellSlotInput identifies the slot level to consume
type ConsumeSpellSlotInput struct {
	ActorInGameID string
	Level         int32
}

// ConsumeSpellSlotOutput contains the slot record after consumption
type ConsumeSpellSlotOutput struct {
	Slot *entities.SpellSlot
}

// Repository defines the storage interface for actors in game
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	ListByGame(ctx context.Context, input ListByGameInput) (*ListByGameOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// UpdateAtomic serializes read-modify-write cycles on one actor row so
	// concurrent damage applications cannot both read stale HP.
	UpdateAtomic(ctx context.Context, input UpdateAtomicInput) (*UpdateAtomicOutput, error)

	GetByBaseCharacter(ctx context.Context, input GetByBaseCharacterInput) (*GetByBaseCharacterOutput, error)

	PutSpellSlot(ctx context.Context, input PutSpellSlotInput) (*PutSpellSlotOutput, error)
	GetSpellSlot(ctx context.Context, input GetSpellSlotInput) (*GetSpellSlotOutput, error)

	// ConsumeSpellSlot atomically increments slots_used, failing with
	// InvalidArgument when no slot is available and NotFound when the
	// actor has no slot record at that level.
	ConsumeSpellSlot(ctx context.Context, input ConsumeSpellSlotInput) (*ConsumeSpellSlotOutput, error)
}

// Package catalog provides storage for attack, spell, and condition
// definitions referenced by action resolution.
package catalog

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=catalogmock github.com/greyhelm/vtt-api/internal/repositories/catalog Repository

// PutAttackInput contains the attack definition to store
type PutAttackInput struct {
	Attack *entities.Attack
}

// PutAttackOutput contains the stored attack
type PutAttackOutput struct {
	Attack *entities.Attack
}

// GetAttackInput identifies an attack definition
type GetAttackInput struct {
	ID string
}

// GetAttackOutput contains the attack definition
type GetAttackOutput struct {
	Attack *entities.Attack
}

// PutSpellInput contains the spell definition to store
type PutSpellInput struct {
	Spell *entities.Spell
}

// PutSpellOutput contains the stored spell
type PutSpellOutput struct {
	Spell *entities.Spell
}

// GetSpellInput identifies a spell definition
type GetSpellInput struct {
	ID string
}

// GetSpellOutput contains the spell definition
type GetSpellOutput struct {
	Spell *entities.Spell
}

// PutConditionInput contains the condition definition to store
type PutConditionInput struct {
	Condition *entities.Condition
}

// PutConditionOutput contains the stored condition
type PutConditionOutput struct {
	Condition *entities.Condition
}

// GetConditionInput identifies a condition definition
type GetConditionInput struct {
	ID string
}

// GetConditionOutput contains the condition definition
type GetConditionOutput struct {
	Condition *entities.Condition
}

// Repository defines the storage interface for catalog definitions
type Repository interface {
	PutAttack(ctx context.Context, input PutAttackInput) (*PutAttackOutput, error)
	GetAttack(ctx context.Context, input GetAttackInput) (*GetAttackOutput, error)

	PutSpell(ctx context.Context, input PutSpellInput) (*PutSpellOutput, error)
	GetSpell(ctx context.Context, input GetSpellInput) (*GetSpellOutput, error)

	PutCondition(ctx context.Context, input PutConditionInput) (*PutConditionOutput, error)
	GetCondition(ctx context.Context, input GetConditionInput) (*GetConditionOutput, error)
}

// Package tokens provides storage for scene tokens.
package tokens

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=tokensmock github.com/greyhelm/vtt-api/internal/repositories/tokens Repository

// CreateInput contains the token to store
type CreateInput struct {
	Token *entities.Token
}

// CreateOutput contains the stored token
type CreateOutput struct {
	Token *entities.Token
}

// GetInput identifies a token
type GetInput struct {
	ID string
}

// GetOutput contains the token
type GetOutput struct {
	Token *entities.Token
}

// UpdateInput contains the token to overwrite
type UpdateInput struct {
	Token *entities.Token
}

// UpdateOutput contains the updated token
type UpdateOutput struct {
	Token *entities.Token
}

// ListBySceneInput identifies a scene
type ListBySceneInput struct {
	SceneID string
}

// ListBySceneOutput contains the scene's tokens
type ListBySceneOutput struct {
	Tokens []*entities.Token
}

// DeleteInput identifies the token to remove
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the removed token
type DeleteOutput struct {
	Token *entities.Token
}

// Repository defines the storage interface for tokens
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	ListByScene(ctx context.Context, input ListBySceneInput) (*ListBySceneOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

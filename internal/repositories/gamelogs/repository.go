// Package gamelogs provides append-only storage for the game audit log.
package gamelogs

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=gamelogsmock github.com/greyhelm/vtt-api/internal/repositories/gamelogs Repository

// AppendInput contains the log entry to append
type AppendInput struct {
	Log *entities.GameLog
}

// AppendOutput contains the stored entry
type AppendOutput struct {
	Log *entities.GameLog
}

// ListInput selects a page of a game's log, newest first
type ListInput struct {
	GameID string
	Offset int64
	Limit  int64
}

// ListOutput contains the selected page
type ListOutput struct {
	Logs []*entities.GameLog
}

// Repository defines the storage interface for game logs
type Repository interface {
	// Append stores the entry. Log writes never fail the action that
	// produced them; callers log append errors and move on.
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)

	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

package actor

import (
	"context"
	"time"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
)

// One combat round corresponds to six seconds of wall-clock time for
// manually applied conditions.
const roundDuration = 6 * time.Second

// ApplyConditionInput attaches a condition manually, outside combat
// resolution. A non-nil DurationRounds converts to a wall-clock expiry;
// nil means indefinite.
type ApplyConditionInput struct {
	GameID         string
	UserID         string
	ActorInGameID  string
	ConditionID    string
	DurationRounds *int32
}

// ApplyConditionOutput contains the applied condition row
type ApplyConditionOutput struct {
	Condition *entities.ActorCondition
}

// ApplyCombatConditionInput attaches a condition from attack or spell
// resolution with a round-based expiry relative to the current round.
type ApplyCombatConditionInput struct {
	GameID         string
	ActorInGameID  string
	ConditionID    string
	Round          int32
	DurationRounds *int32
}

// ApplyCombatConditionOutput contains the applied condition row
type ApplyCombatConditionOutput struct {
	Condition *entities.ActorCondition
}

// RemoveConditionInput removes an applied condition by row ID
type RemoveConditionInput struct {
	GameID           string
	UserID           string
	ActorConditionID string
}

// RemoveConditionOutput contains the removed row
type RemoveConditionOutput struct {
	Condition *entities.ActorCondition
}

// ListConditionsInput identifies an actor
type ListConditionsInput struct {
	GameID        string
	ActorInGameID string
}

// ListConditionsOutput contains the actor's applied conditions
type ListConditionsOutput struct {
	Conditions []*entities.ActorCondition
}

func (o *orchestrator) ApplyCondition(ctx context.Context, input *ApplyConditionInput) (*ApplyConditionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.ActorInGameID == "" || input.ConditionID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, actor ID, and condition ID are required")
	}

	if err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}
	if _, err := o.requireActorInGame(ctx, input.GameID, input.ActorInGameID); err != nil {
		return nil, err
	}

	now := o.clock.Now()
	cond := &entities.ActorCondition{
		ID:            o.idGen.Generate(),
		ActorInGameID: input.ActorInGameID,
		GameID:        input.GameID,
		ConditionID:   input.ConditionID,
		AppliedAt:     now.UnixMilli(),
	}
	if input.DurationRounds != nil {
		cond.ExpiresAt = now.Add(time.Duration(*input.DurationRounds) * roundDuration).UnixMilli()
	}

	if _, err := o.conditionRepo.Apply(ctx, conditions.ApplyInput{Condition: cond}); err != nil {
		return nil, err
	}

	o.emitConditionApplied(ctx, cond)
	return &ApplyConditionOutput{Condition: cond}, nil
}

func (o *orchestrator) ApplyCombatCondition(ctx context.Context, input *ApplyCombatConditionInput) (*ApplyCombatConditionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.ActorInGameID == "" || input.ConditionID == "" {
		return nil, errors.InvalidArgument("game ID, actor ID, and condition ID are required")
	}

	cond := &entities.ActorCondition{
		ID:             o.idGen.Generate(),
		ActorInGameID:  input.ActorInGameID,
		GameID:         input.GameID,
		ConditionID:    input.ConditionID,
		AppliedOnRound: input.Round,
		AppliedAt:      o.clock.Now().UnixMilli(),
	}
	if input.DurationRounds != nil {
		expires := input.Round + *input.DurationRounds
		cond.ExpiresOnRound = &expires
	}

	if _, err := o.conditionRepo.Apply(ctx, conditions.ApplyInput{Condition: cond}); err != nil {
		return nil, err
	}

	o.emitConditionApplied(ctx, cond)
	return &ApplyCombatConditionOutput{Condition: cond}, nil
}

func (o *orchestrator) emitConditionApplied(ctx context.Context, cond *entities.ActorCondition) {
	o.broadcaster.EmitToRoom(cond.GameID, realtime.EventConditionApplied, map[string]any{
		"actor_in_game_id": cond.ActorInGameID,
		"condition_id":     cond.ConditionID,
		"expires_on_round": cond.ExpiresOnRound,
		"expires_at":       cond.ExpiresAt,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:        cond.GameID,
		ActorInGameID: cond.ActorInGameID,
		ActionType:    "condition_applied",
		Payload: map[string]any{
			"condition_id":     cond.ConditionID,
			"expires_on_round": cond.ExpiresOnRound,
			"expires_at":       cond.ExpiresAt,
		},
	})
}

func (o *orchestrator) RemoveCondition(ctx context.Context, input *RemoveConditionInput) (*RemoveConditionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.ActorConditionID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and condition row ID are required")
	}

	if err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	getOut, err := o.conditionRepo.Get(ctx, conditions.GetInput{ID: input.ActorConditionID})
	if err != nil {
		return nil, err
	}
	if getOut.Condition.GameID != input.GameID {
		return nil, errors.NotFoundf("condition %s not found in game %s", input.ActorConditionID, input.GameID)
	}

	deleteOut, err := o.conditionRepo.Delete(ctx, conditions.DeleteInput{ID: input.ActorConditionID})
	if err != nil {
		return nil, err
	}

	cond := deleteOut.Condition
	o.broadcaster.EmitToRoom(input.GameID, realtime.EventConditionRemoved, map[string]any{
		"actor_in_game_id": cond.ActorInGameID,
		"condition_id":     cond.ConditionID,
		"reason":           "manual",
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:        input.GameID,
		ActorInGameID: cond.ActorInGameID,
		ActionType:    "condition_removed",
		Payload: map[string]any{
			"condition_id": cond.ConditionID,
			"reason":       "manual",
		},
	})

	return &RemoveConditionOutput{Condition: cond}, nil
}

func (o *orchestrator) ListConditions(ctx context.Context, input *ListConditionsInput) (*ListConditionsOutput, error) {
	if input == nil || input.GameID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID and actor ID are required")
	}

	if _, err := o.requireActorInGame(ctx, input.GameID, input.ActorInGameID); err != nil {
		return nil, err
	}

	out, err := o.conditionRepo.ListForActor(ctx, conditions.ListForActorInput{ActorInGameID: input.ActorInGameID})
	if err != nil {
		return nil, err
	}
	return &ListConditionsOutput{Conditions: out.Conditions}, nil
}

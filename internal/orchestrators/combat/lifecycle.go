package combat

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/engine"
	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
)

// StartCombatInput starts a combat on a scene
type StartCombatInput struct {
	GameID  string
	SceneID string
	UserID  string
}

// StartCombatOutput contains the started combat
type StartCombatOutput struct {
	Combat *entities.Combat
}

// EndCombatInput ends the game's active combat
type EndCombatInput struct {
	GameID string
	UserID string
}

// EndCombatOutput contains the ended combat
type EndCombatOutput struct {
	Combat *entities.Combat
}

// GetActiveCombatInput identifies a game
type GetActiveCombatInput struct {
	GameID string
}

// GetActiveCombatOutput contains the active combat and its participants
type GetActiveCombatOutput struct {
	Combat       *entities.Combat
	Participants []entities.CombatParticipant
}

// GetActiveParticipantInput identifies a game
type GetActiveParticipantInput struct {
	GameID string
}

// GetActiveParticipantOutput contains the participant whose turn it is.
// Participant is nil when the game has no active combat or the combat has
// no active participants.
type GetActiveParticipantOutput struct {
	Participant *entities.CombatParticipant
}

func (o *orchestrator) StartCombat(ctx context.Context, input *StartCombatInput) (*StartCombatOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.SceneID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID, scene ID, and user ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	sceneOut, err := o.gameRepo.GetScene(ctx, games.GetSceneInput{ID: input.SceneID})
	if err != nil {
		return nil, err
	}
	if sceneOut.Scene.GameID != input.GameID {
		return nil, errors.NotFoundf("scene %s not found in game %s", input.SceneID, input.GameID)
	}

	combat := &entities.Combat{
		ID:               o.idGen.Generate(),
		GameID:           input.GameID,
		SceneID:          input.SceneID,
		Round:            1,
		CurrentTurnIndex: 0,
		IsActive:         true,
		StartedAt:        o.clock.Now().UnixMilli(),
	}

	if _, err := o.combatRepo.Create(ctx, combats.CreateInput{Combat: combat}); err != nil {
		return nil, err
	}

	o.broadcaster.EmitToRoom(input.GameID, realtime.EventCombatStarted, map[string]any{
		"combat_id": combat.ID,
		"scene_id":  combat.SceneID,
		"round":     combat.Round,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		SceneID:    input.SceneID,
		ActionType: "combat_start",
		Payload:    map[string]any{"combat_id": combat.ID},
	})

	return &StartCombatOutput{Combat: combat}, nil
}

func (o *orchestrator) EndCombat(ctx context.Context, input *EndCombatInput) (*EndCombatOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	activeOut, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: input.GameID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.FailedPrecondition("no active combat to end")
		}
		return nil, err
	}

	combat := activeOut.Combat
	combat.IsActive = false
	combat.EndedAt = o.clock.Now().UnixMilli()

	if _, err := o.combatRepo.End(ctx, combats.EndInput{Combat: combat}); err != nil {
		return nil, err
	}

	o.broadcaster.EmitToRoom(input.GameID, realtime.EventCombatEnded, map[string]any{
		"combat_id": combat.ID,
		"round":     combat.Round,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		SceneID:    combat.SceneID,
		ActionType: "combat_end",
		Payload:    map[string]any{"combat_id": combat.ID, "rounds": combat.Round},
	})

	return &EndCombatOutput{Combat: combat}, nil
}

func (o *orchestrator) GetActiveCombat(ctx context.Context, input *GetActiveCombatInput) (*GetActiveCombatOutput, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	activeOut, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}

	stateOut, err := o.combatRepo.GetState(ctx, combats.GetStateInput{CombatID: activeOut.Combat.ID})
	if err != nil {
		return nil, err
	}

	return &GetActiveCombatOutput{
		Combat:       stateOut.State.Combat,
		Participants: stateOut.State.Participants,
	}, nil
}

func (o *orchestrator) GetActiveParticipant(ctx context.Context, input *GetActiveParticipantInput) (*GetActiveParticipantOutput, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.InvalidArgument("game ID is required")
	}

	activeOut, err := o.GetActiveCombat(ctx, &GetActiveCombatInput{GameID: input.GameID})
	if err != nil {
		if errors.IsNotFound(err) {
			return &GetActiveParticipantOutput{}, nil
		}
		return nil, err
	}

	participant := currentParticipant(activeOut.Combat, activeOut.Participants)
	return &GetActiveParticipantOutput{Participant: participant}, nil
}

// currentParticipant resolves the active participant at the combat's turn
// index, in turn order. Nil when the active subset is empty or the index
// is out of range.
func currentParticipant(combat *entities.Combat, participants []entities.CombatParticipant) *entities.CombatParticipant {
	active := engine.ActiveParticipants(participants)
	if len(active) == 0 {
		return nil
	}

	engine.SortByTurnOrder(active)
	idx := int(combat.CurrentTurnIndex)
	if idx < 0 || idx >= len(active) {
		return nil
	}

	p := active[idx]
	return &p
}

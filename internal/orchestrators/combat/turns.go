package combat

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/engine"
	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/realtime"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
)

// AddParticipantInput enrolls an actor into the active combat
type AddParticipantInput struct {
	GameID        string
	UserID        string
	ActorInGameID string
	Initiative    int32
}

// AddParticipantOutput contains the new participant and the reordered list
type AddParticipantOutput struct {
	Participant  *entities.CombatParticipant
	Participants []entities.CombatParticipant
}

// RemoveParticipantInput removes an actor from the active combat
type RemoveParticipantInput struct {
	GameID        string
	UserID        string
	ActorInGameID string
}

// RemoveParticipantOutput contains the reordered remaining participants
type RemoveParticipantOutput struct {
	Participants []entities.CombatParticipant
}

// UpdateInitiativeInput changes one participant's initiative
type UpdateInitiativeInput struct {
	GameID        string
	UserID        string
	ActorInGameID string
	Initiative    int32
}

// UpdateInitiativeOutput contains the reordered participants
type UpdateInitiativeOutput struct {
	Participants []entities.CombatParticipant
}

// ListParticipantsInput identifies a game's active combat
type ListParticipantsInput struct {
	GameID string
}

// ListParticipantsOutput contains the participants in turn order
type ListParticipantsOutput struct {
	Participants []entities.CombatParticipant
}

// NextTurnInput advances the active combat to the next turn
type NextTurnInput struct {
	GameID string
	UserID string
}

// NextTurnOutput reports the position after the advance
type NextTurnOutput struct {
	Combat      *entities.Combat
	NewRound    bool
	Participant *entities.CombatParticipant
}

// NextRoundInput advances the active combat to the next round directly
type NextRoundInput struct {
	GameID string
	UserID string
}

// NextRoundOutput contains the combat after the round advance
type NextRoundOutput struct {
	Combat *entities.Combat
}

func (o *orchestrator) AddParticipant(ctx context.Context, input *AddParticipantInput) (*AddParticipantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and actor ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	actorOut, err := o.actorRepo.Get(ctx, actors.GetInput{ID: input.ActorInGameID})
	if err != nil {
		return nil, err
	}
	if actorOut.Actor.GameID != input.GameID {
		return nil, errors.NotFoundf("actor %s not found in game %s", input.ActorInGameID, input.GameID)
	}

	activeOut, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}

	participant := entities.CombatParticipant{
		ID:            o.idGen.Generate(),
		CombatID:      activeOut.Combat.ID,
		ActorInGameID: input.ActorInGameID,
		Initiative:    input.Initiative,
		IsActive:      true,
		IsConscious:   actorOut.Actor.IsConscious,
	}

	mutateOut, err := o.combatRepo.Mutate(ctx, combats.MutateInput{
		CombatID: activeOut.Combat.ID,
		Fn: func(state *combats.State) error {
			for _, p := range state.Participants {
				if p.ActorInGameID == input.ActorInGameID {
					return errors.AlreadyExists("actor is already in this combat")
				}
			}
			state.Participants = append(state.Participants, participant)
			engine.Reorder(state.Participants)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return &AddParticipantOutput{
		Participant:  &participant,
		Participants: mutateOut.State.Participants,
	}, nil
}

func (o *orchestrator) RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) (*RemoveParticipantOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and actor ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	activeOut, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}

	mutateOut, err := o.combatRepo.Mutate(ctx, combats.MutateInput{
		CombatID: activeOut.Combat.ID,
		Fn: func(state *combats.State) error {
			kept := state.Participants[:0]
			found := false
			for _, p := range state.Participants {
				if p.ActorInGameID == input.ActorInGameID {
					found = true
					continue
				}
				kept = append(kept, p)
			}
			if !found {
				return errors.NotFoundf("actor %s is not in this combat", input.ActorInGameID)
			}
			state.Participants = kept
			engine.Reorder(state.Participants)

			// Keep the index in range after the list shrinks.
			active := engine.ActiveParticipants(state.Participants)
			if int(state.Combat.CurrentTurnIndex) >= len(active) {
				state.Combat.CurrentTurnIndex = 0
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return &RemoveParticipantOutput{Participants: mutateOut.State.Participants}, nil
}

func (o *orchestrator) UpdateInitiative(ctx context.Context, input *UpdateInitiativeInput) (*UpdateInitiativeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" || input.ActorInGameID == "" {
		return nil, errors.InvalidArgument("game ID, user ID, and actor ID are required")
	}

	if _, err := o.requireDM(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	activeOut, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}

	mutateOut, err := o.combatRepo.Mutate(ctx, combats.MutateInput{
		CombatID: activeOut.Combat.ID,
		Fn: func(state *combats.State) error {
			found := false
			for i := range state.Participants {
				if state.Participants[i].ActorInGameID == input.ActorInGameID {
					state.Participants[i].Initiative = input.Initiative
					found = true
					break
				}
			}
			if !found {
				return errors.NotFoundf("actor %s is not in this combat", input.ActorInGameID)
			}
			engine.Reorder(state.Participants)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return &UpdateInitiativeOutput{Participants: mutateOut.State.Participants}, nil
}

func (o *orchestrator) ListParticipants(ctx context.Context, input *ListParticipantsInput) (*ListParticipantsOutput, error) {
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

	return &ListParticipantsOutput{Participants: stateOut.State.Participants}, nil
}

func (o *orchestrator) NextTurn(ctx context.Context, input *NextTurnInput) (*NextTurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	if err := o.requireTurnController(ctx, input.GameID, input.UserID); err != nil {
		return nil, err
	}

	activeOut, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: input.GameID})
	if err != nil {
		return nil, err
	}

	var advance engine.TurnAdvance
	mutateOut, err := o.combatRepo.Mutate(ctx, combats.MutateInput{
		CombatID: activeOut.Combat.ID,
		Fn: func(state *combats.State) error {
			active := engine.ActiveParticipants(state.Participants)
			if len(active) == 0 {
				return errors.FailedPrecondition("combat has no active participants")
			}
			advance = engine.AdvanceTurn(state.Combat.CurrentTurnIndex, state.Combat.Round, len(active))
			state.Combat.CurrentTurnIndex = advance.Index
			state.Combat.Round = advance.Round
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	combat := mutateOut.State.Combat
	if advance.NewRound {
		o.sweepExpiredConditions(ctx, input.GameID, combat.SceneID, combat.Round)
		o.broadcaster.EmitToRoom(input.GameID, realtime.EventCombatRoundChanged, map[string]any{
			"combat_id": combat.ID,
			"round":     combat.Round,
		})
		o.appendLog(ctx, &entities.GameLog{
			GameID:     input.GameID,
			SceneID:    combat.SceneID,
			ActionType: "round_advance",
			Payload:    map[string]any{"combat_id": combat.ID, "round": combat.Round},
		})
	}

	participant := currentParticipant(combat, mutateOut.State.Participants)
	o.broadcaster.EmitToRoom(input.GameID, realtime.EventCombatTurnChanged, map[string]any{
		"combat_id":          combat.ID,
		"round":              combat.Round,
		"current_turn_index": combat.CurrentTurnIndex,
		"participant":        participant,
	})

	return &NextTurnOutput{
		Combat:      combat,
		NewRound:    advance.NewRound,
		Participant: participant,
	}, nil
}

func (o *orchestrator) NextRound(ctx context.Context, input *NextRoundInput) (*NextRoundOutput, error) {
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
		return nil, err
	}

	mutateOut, err := o.combatRepo.Mutate(ctx, combats.MutateInput{
		CombatID: activeOut.Combat.ID,
		Fn: func(state *combats.State) error {
			state.Combat.Round++
			state.Combat.CurrentTurnIndex = 0
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	combat := mutateOut.State.Combat
	o.sweepExpiredConditions(ctx, input.GameID, combat.SceneID, combat.Round)
	o.broadcaster.EmitToRoom(input.GameID, realtime.EventCombatRoundChanged, map[string]any{
		"combat_id": combat.ID,
		"round":     combat.Round,
	})
	o.appendLog(ctx, &entities.GameLog{
		GameID:     input.GameID,
		SceneID:    combat.SceneID,
		ActionType: "round_advance",
		Payload:    map[string]any{"combat_id": combat.ID, "round": combat.Round},
	})

	return &NextRoundOutput{Combat: combat}, nil
}

// sweepExpiredConditions removes every condition whose round-based expiry
// is due at the new round and emits one removal event per condition.
func (o *orchestrator) sweepExpiredConditions(ctx context.Context, gameID, sceneID string, round int32) {
	expireOut, err := o.conditionRepo.ExpireDue(ctx, conditions.ExpireDueInput{
		GameID: gameID,
		Round:  round,
	})
	if err != nil {
		// The round advance already committed; expiry retries next round.
		o.appendLog(ctx, &entities.GameLog{
			GameID:     gameID,
			SceneID:    sceneID,
			ActionType: "condition_sweep_failed",
			Payload:    map[string]any{"round": round, "error": err.Error()},
		})
		return
	}

	for _, cond := range expireOut.Expired {
		o.broadcaster.EmitToRoom(gameID, realtime.EventConditionRemoved, map[string]any{
			"actor_in_game_id": cond.ActorInGameID,
			"condition_id":     cond.ConditionID,
			"reason":           "expired",
			"round":            round,
		})
		o.appendLog(ctx, &entities.GameLog{
			GameID:        gameID,
			SceneID:       sceneID,
			ActorInGameID: cond.ActorInGameID,
			ActionType:    "condition_expired",
			Payload: map[string]any{
				"condition_id": cond.ConditionID,
				"round":        round,
			},
		})
	}
}

// requireTurnController permits the DM, or the player controlling the
// actor whose turn it currently is.
func (o *orchestrator) requireTurnController(ctx context.Context, gameID, userID string) error {
	player, err := o.requirePlayer(ctx, gameID, userID)
	if err != nil {
		return err
	}
	if player.Role == entities.RoleDM {
		return nil
	}

	participantOut, err := o.GetActiveParticipant(ctx, &GetActiveParticipantInput{GameID: gameID})
	if err != nil {
		return err
	}
	if participantOut.Participant == nil {
		return errors.FailedPrecondition("no active combat")
	}

	if player.AssignedCharacterID == "" {
		return errors.PermissionDenied("you do not control any actor")
	}

	actorOut, err := o.actorRepo.GetByBaseCharacter(ctx, actors.GetByBaseCharacterInput{
		GameID:      gameID,
		CharacterID: player.AssignedCharacterID,
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.PermissionDenied("you do not control any actor")
		}
		return err
	}

	if actorOut.Actor.ID != participantOut.Participant.ActorInGameID {
		return errors.PermissionDenied("not your turn")
	}
	return nil
}

package combat

import (
	"context"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
)

// AssertCanActInput asks whether a user may take a combat-affecting action
// right now.
type AssertCanActInput struct {
	GameID string
	UserID string
}

// AssertCanActOutput reports the resolved acting actor, when one applies.
// ActorInGameID is empty for the DM and outside combat.
type AssertCanActOutput struct {
	ActorInGameID string
}

func (o *orchestrator) AssertCanAct(ctx context.Context, input *AssertCanActInput) (*AssertCanActOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.GameID == "" || input.UserID == "" {
		return nil, errors.InvalidArgument("game ID and user ID are required")
	}

	player, err := o.requirePlayer(ctx, input.GameID, input.UserID)
	if err != nil {
		return nil, err
	}

	// The DM always may act.
	if player.Role == entities.RoleDM {
		return &AssertCanActOutput{}, nil
	}

	// Outside combat anyone may act.
	activeOut, err := o.combatRepo.GetActive(ctx, combats.GetActiveInput{GameID: input.GameID})
	if err != nil {
		if errors.IsNotFound(err) {
			return &AssertCanActOutput{}, nil
		}
		return nil, err
	}

	if player.AssignedCharacterID == "" {
		return nil, errors.PermissionDenied("you do not control any actor")
	}

	actorOut, err := o.actorRepo.GetByBaseCharacter(ctx, actors.GetByBaseCharacterInput{
		GameID:      input.GameID,
		CharacterID: player.AssignedCharacterID,
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.PermissionDenied("you do not control any actor")
		}
		return nil, err
	}

	stateOut, err := o.combatRepo.GetState(ctx, combats.GetStateInput{CombatID: activeOut.Combat.ID})
	if err != nil {
		return nil, err
	}

	participant := currentParticipant(stateOut.State.Combat, stateOut.State.Participants)
	if participant == nil || participant.ActorInGameID != actorOut.Actor.ID {
		return nil, errors.PermissionDenied("not your turn")
	}

	return &AssertCanActOutput{ActorInGameID: actorOut.Actor.ID}, nil
}

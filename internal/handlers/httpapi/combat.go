package httpapi

import (
	"net/http"

	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
)

func (h *Handler) handleStartCombat(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		SceneID string `json:"scene_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.StartCombat(r.Context(), &combat.StartCombatInput{
		GameID:  r.PathValue("gameID"),
		SceneID: body.SceneID,
		UserID:  uid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"combat": out.Combat})
}

func (h *Handler) handleEndCombat(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.EndCombat(r.Context(), &combat.EndCombatInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"combat": out.Combat})
}

func (h *Handler) handleGetActiveCombat(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.GetActiveCombat(r.Context(), &combat.GetActiveCombatInput{
		GameID: r.PathValue("gameID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"combat":       out.Combat,
		"participants": out.Participants,
	})
}

func (h *Handler) handleGetActiveParticipant(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.GetActiveParticipant(r.Context(), &combat.GetActiveParticipantInput{
		GameID: r.PathValue("gameID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"participant": out.Participant})
}

func (h *Handler) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.ListParticipants(r.Context(), &combat.ListParticipantsInput{
		GameID: r.PathValue("gameID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"participants": out.Participants})
}

func (h *Handler) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ActorInGameID string `json:"actor_in_game_id"`
		Initiative    int32  `json:"initiative"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.AddParticipant(r.Context(), &combat.AddParticipantInput{
		GameID:        r.PathValue("gameID"),
		UserID:        uid,
		ActorInGameID: body.ActorInGameID,
		Initiative:    body.Initiative,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"participant":  out.Participant,
		"participants": out.Participants,
	})
}

func (h *Handler) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.RemoveParticipant(r.Context(), &combat.RemoveParticipantInput{
		GameID:        r.PathValue("gameID"),
		UserID:        uid,
		ActorInGameID: r.PathValue("actorID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"participants": out.Participants})
}

func (h *Handler) handleUpdateInitiative(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Initiative int32 `json:"initiative"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.UpdateInitiative(r.Context(), &combat.UpdateInitiativeInput{
		GameID:        r.PathValue("gameID"),
		UserID:        uid,
		ActorInGameID: r.PathValue("actorID"),
		Initiative:    body.Initiative,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"participants": out.Participants})
}

func (h *Handler) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.NextTurn(r.Context(), &combat.NextTurnInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"combat":      out.Combat,
		"new_round":   out.NewRound,
		"participant": out.Participant,
	})
}

func (h *Handler) handleNextRound(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.combatService.NextRound(r.Context(), &combat.NextRoundInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"combat": out.Combat})
}

package httpapi

import (
	"net/http"

	"github.com/greyhelm/vtt-api/internal/orchestrators/actor"
)

func (h *Handler) handleCreateActor(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		BaseCharacterID string `json:"base_character_id"`
		BaseMonsterID   string `json:"base_monster_id"`
		NameOverride    string `json:"name_override"`
		MaxHP           int32  `json:"max_hp"`
		ArmorClass      int32  `json:"armor_class"`
		Constitution    int32  `json:"constitution"`
		SpellSlots      []struct {
			Level    int32 `json:"level"`
			SlotsMax int32 `json:"slots_max"`
		} `json:"spell_slots"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	slots := make([]actor.SlotInit, 0, len(body.SpellSlots))
	for _, s := range body.SpellSlots {
		slots = append(slots, actor.SlotInit{Level: s.Level, SlotsMax: s.SlotsMax})
	}

	out, err := h.actorService.CreateActor(r.Context(), &actor.CreateActorInput{
		GameID:          r.PathValue("gameID"),
		UserID:          uid,
		BaseCharacterID: body.BaseCharacterID,
		BaseMonsterID:   body.BaseMonsterID,
		NameOverride:    body.NameOverride,
		MaxHP:           body.MaxHP,
		ArmorClass:      body.ArmorClass,
		Constitution:    body.Constitution,
		SpellSlots:      slots,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"actor": out.Actor})
}

func (h *Handler) handleGetActor(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.actorService.GetActor(r.Context(), &actor.GetActorInput{
		GameID:        r.PathValue("gameID"),
		ActorInGameID: r.PathValue("actorID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"actor": out.Actor})
}

func (h *Handler) handleListActors(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.actorService.ListActors(r.Context(), &actor.ListActorsInput{
		GameID: r.PathValue("gameID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"actors": out.Actors})
}

func (h *Handler) handleUpdateHP(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Delta int32 `json:"delta"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.actorService.UpdateHP(r.Context(), &actor.UpdateHPInput{
		GameID:        r.PathValue("gameID"),
		UserID:        uid,
		ActorInGameID: r.PathValue("actorID"),
		Delta:         body.Delta,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"actor":                out.Actor,
		"change":               out.Change,
		"concentration_broken": out.ConcentrationBroken,
	})
}

func (h *Handler) handleRollDeathSave(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.actorService.RollDeathSave(r.Context(), &actor.RollDeathSaveInput{
		GameID:        r.PathValue("gameID"),
		UserID:        uid,
		ActorInGameID: r.PathValue("actorID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"actor":   out.Actor,
		"outcome": out.Outcome,
	})
}

func (h *Handler) handleApplyCondition(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ConditionID    string `json:"condition_id"`
		DurationRounds *int32 `json:"duration_rounds"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.actorService.ApplyCondition(r.Context(), &actor.ApplyConditionInput{
		GameID:         r.PathValue("gameID"),
		UserID:         uid,
		ActorInGameID:  r.PathValue("actorID"),
		ConditionID:    body.ConditionID,
		DurationRounds: body.DurationRounds,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"condition": out.Condition})
}

func (h *Handler) handleRemoveCondition(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.actorService.RemoveCondition(r.Context(), &actor.RemoveConditionInput{
		GameID:           r.PathValue("gameID"),
		UserID:           uid,
		ActorConditionID: r.PathValue("conditionID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"condition": out.Condition})
}

func (h *Handler) handleListConditions(w http.ResponseWriter, r *http.Request) {
	if _, err := userID(r); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.actorService.ListConditions(r.Context(), &actor.ListConditionsInput{
		GameID:        r.PathValue("gameID"),
		ActorInGameID: r.PathValue("actorID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conditions": out.Conditions})
}

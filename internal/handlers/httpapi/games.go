package httpapi

import (
	"net/http"
	"strconv"

	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/game"
)

func (h *Handler) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Name       string `json:"name"`
		MaxPlayers int32  `json:"max_players"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.CreateGame(r.Context(), &game.CreateGameInput{
		UserID:     uid,
		Name:       body.Name,
		MaxPlayers: body.MaxPlayers,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"game": out.Game})
}

func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.GetGame(r.Context(), &game.GetGameInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game":    out.Game,
		"players": out.Players,
	})
}

func (h *Handler) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.JoinGame(r.Context(), &game.JoinGameInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"player": out.Player})
}

func (h *Handler) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.LeaveGame(r.Context(), &game.LeaveGameInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"player": out.Player})
}

func (h *Handler) handleKickPlayer(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.KickPlayer(r.Context(), &game.KickPlayerInput{
		GameID:       r.PathValue("gameID"),
		UserID:       uid,
		TargetUserID: body.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"player": out.Player})
}

func (h *Handler) handleAssignCharacter(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		UserID      string `json:"user_id"`
		CharacterID string `json:"character_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.AssignCharacter(r.Context(), &game.AssignCharacterInput{
		GameID:       r.PathValue("gameID"),
		UserID:       uid,
		TargetUserID: body.UserID,
		CharacterID:  body.CharacterID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"player": out.Player})
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	offset, err := queryInt64(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt64(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.ListLogs(r.Context(), &game.ListLogsInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": out.Logs})
}

func (h *Handler) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.CreateScene(r.Context(), &game.CreateSceneInput{
		GameID: r.PathValue("gameID"),
		UserID: uid,
		Name:   body.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"scene": out.Scene})
}

func (h *Handler) handleSetCurrentScene(w http.ResponseWriter, r *http.Request) {
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

	out, err := h.gameService.SetCurrentScene(r.Context(), &game.SetCurrentSceneInput{
		GameID:  r.PathValue("gameID"),
		UserID:  uid,
		SceneID: body.SceneID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"game": out.Game})
}

func (h *Handler) handleSpawnToken(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		SceneID       string `json:"scene_id"`
		ActorInGameID string `json:"actor_in_game_id"`
		Label         string `json:"label"`
		X             int32  `json:"x"`
		Y             int32  `json:"y"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.SpawnToken(r.Context(), &game.SpawnTokenInput{
		GameID:        r.PathValue("gameID"),
		UserID:        uid,
		SceneID:       body.SceneID,
		ActorInGameID: body.ActorInGameID,
		Label:         body.Label,
		X:             body.X,
		Y:             body.Y,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"token": out.Token})
}

func (h *Handler) handleMoveToken(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		X int32 `json:"x"`
		Y int32 `json:"y"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.gameService.MoveToken(r.Context(), &game.MoveTokenInput{
		GameID:  r.PathValue("gameID"),
		UserID:  uid,
		TokenID: r.PathValue("tokenID"),
		X:       body.X,
		Y:       body.Y,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": out.Token})
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.InvalidArgumentf("%s must be an integer", name)
	}
	return v, nil
}

// Package httpapi exposes the orchestrators over a JSON HTTP API plus a
// websocket subscription endpoint. Handlers are thin: decode, delegate,
// encode. Authorization lives in the orchestrators; identity arrives
// pre-authenticated in the X-User-ID header.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/actor"
	"github.com/greyhelm/vtt-api/internal/orchestrators/attack"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/orchestrators/game"
	"github.com/greyhelm/vtt-api/internal/orchestrators/spellcasting"
	"github.com/greyhelm/vtt-api/internal/realtime"
)

const userIDHeader = "X-User-ID"

// Config holds dependencies for the HTTP handler
type Config struct {
	GameService   game.Service
	CombatService combat.Service
	ActorService  actor.Service
	AttackService attack.Service
	SpellService  spellcasting.Service
	Hub           *realtime.Hub
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.GameService == nil {
		vb.RequiredField("GameService")
	}
	if c.CombatService == nil {
		vb.RequiredField("CombatService")
	}
	if c.ActorService == nil {
		vb.RequiredField("ActorService")
	}
	if c.AttackService == nil {
		vb.RequiredField("AttackService")
	}
	if c.SpellService == nil {
		vb.RequiredField("SpellService")
	}
	if c.Hub == nil {
		vb.RequiredField("Hub")
	}

	return vb.Build()
}

// Handler routes HTTP requests to the orchestrators
type Handler struct {
	gameService   game.Service
	combatService combat.Service
	actorService  actor.Service
	attackService attack.Service
	spellService  spellcasting.Service
	hub           *realtime.Hub
}

// NewHandler creates a new HTTP handler with the given configuration
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		gameService:   cfg.GameService,
		combatService: cfg.CombatService,
		actorService:  cfg.ActorService,
		attackService: cfg.AttackService,
		spellService:  cfg.SpellService,
		hub:           cfg.Hub,
	}, nil
}

// Routes builds the request mux for the API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("POST /v1/games", h.handleCreateGame)
	mux.HandleFunc("GET /v1/games/{gameID}", h.handleGetGame)
	mux.HandleFunc("POST /v1/games/{gameID}/join", h.handleJoinGame)
	mux.HandleFunc("POST /v1/games/{gameID}/leave", h.handleLeaveGame)
	mux.HandleFunc("POST /v1/games/{gameID}/kick", h.handleKickPlayer)
	mux.HandleFunc("POST /v1/games/{gameID}/assign-character", h.handleAssignCharacter)
	mux.HandleFunc("GET /v1/games/{gameID}/logs", h.handleListLogs)

	mux.HandleFunc("POST /v1/games/{gameID}/scenes", h.handleCreateScene)
	mux.HandleFunc("PUT /v1/games/{gameID}/current-scene", h.handleSetCurrentScene)
	mux.HandleFunc("POST /v1/games/{gameID}/tokens", h.handleSpawnToken)
	mux.HandleFunc("POST /v1/games/{gameID}/tokens/{tokenID}/move", h.handleMoveToken)

	mux.HandleFunc("POST /v1/games/{gameID}/actors", h.handleCreateActor)
	mux.HandleFunc("GET /v1/games/{gameID}/actors", h.handleListActors)
	mux.HandleFunc("GET /v1/games/{gameID}/actors/{actorID}", h.handleGetActor)
	mux.HandleFunc("POST /v1/games/{gameID}/actors/{actorID}/hp", h.handleUpdateHP)
	mux.HandleFunc("POST /v1/games/{gameID}/actors/{actorID}/death-save", h.handleRollDeathSave)
	mux.HandleFunc("POST /v1/games/{gameID}/actors/{actorID}/conditions", h.handleApplyCondition)
	mux.HandleFunc("GET /v1/games/{gameID}/actors/{actorID}/conditions", h.handleListConditions)
	mux.HandleFunc("DELETE /v1/games/{gameID}/conditions/{conditionID}", h.handleRemoveCondition)

	mux.HandleFunc("POST /v1/games/{gameID}/combat", h.handleStartCombat)
	mux.HandleFunc("POST /v1/games/{gameID}/combat/end", h.handleEndCombat)
	mux.HandleFunc("GET /v1/games/{gameID}/combat", h.handleGetActiveCombat)
	mux.HandleFunc("GET /v1/games/{gameID}/combat/current-participant", h.handleGetActiveParticipant)
	mux.HandleFunc("GET /v1/games/{gameID}/combat/participants", h.handleListParticipants)
	mux.HandleFunc("POST /v1/games/{gameID}/combat/participants", h.handleAddParticipant)
	mux.HandleFunc("DELETE /v1/games/{gameID}/combat/participants/{actorID}", h.handleRemoveParticipant)
	mux.HandleFunc("PUT /v1/games/{gameID}/combat/participants/{actorID}/initiative", h.handleUpdateInitiative)
	mux.HandleFunc("POST /v1/games/{gameID}/combat/next-turn", h.handleNextTurn)
	mux.HandleFunc("POST /v1/games/{gameID}/combat/next-round", h.handleNextRound)

	mux.HandleFunc("POST /v1/games/{gameID}/attacks", h.handleResolveAttack)
	mux.HandleFunc("POST /v1/games/{gameID}/spells/cast", h.handleCastSpell)

	mux.HandleFunc("GET /v1/games/{gameID}/ws", h.handleSubscribe)

	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if gameID == "" {
		writeError(w, errors.InvalidArgument("game ID is required"))
		return
	}
	if err := h.hub.Subscribe(w, r, gameID); err != nil {
		slog.Error("websocket subscribe failed", "game_id", gameID, "error", err)
	}
}

// userID extracts the authenticated caller. Empty means unauthenticated;
// the orchestrators reject empty user ids, but checking here gives a 401
// instead of a 400.
func userID(r *http.Request) (string, error) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		return "", errors.Unauthenticated("missing " + userIDHeader + " header")
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.InvalidArgument("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidArgument("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	message := err.Error()

	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	if code == errors.CodeInternal {
		slog.Error("internal error", "error", err)
		message = "internal error"
	}

	writeJSON(w, code.HTTPStatus(), map[string]string{
		"code":    code.String(),
		"message": message,
	})
}

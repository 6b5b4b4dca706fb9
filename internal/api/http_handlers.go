package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lifelens-island/internal/app/game"
	"lifelens-island/internal/app/savings"
	"lifelens-island/internal/app/treasuremap"
	"lifelens-island/internal/domain/island"
)

type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

type Handler struct {
	logger      zerolog.Logger
	auth        TokenParser
	game        *game.Service
	savings     *savings.Service
	ready       func(ctx context.Context) error
	corsOrigin  string
	maxBodySize int64
}

type contextKey string

const userIDContextKey contextKey = "user_id"

func NewHandler(logger zerolog.Logger, auth TokenParser, gameSvc *game.Service, savingsSvc *savings.Service, ready func(ctx context.Context) error, corsOrigin string, maxBodySize int64) *Handler {
	return &Handler{logger: logger, auth: auth, game: gameSvc, savings: savingsSvc, ready: ready, corsOrigin: corsOrigin, maxBodySize: maxBodySize}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.cors)

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.readiness)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/island/ws", h.islandWS)

		v1.Group(func(protected chi.Router) {
			protected.Use(middleware.Timeout(30 * time.Second))
			protected.Use(h.authMiddleware)

			protected.Get("/island", h.getIsland)
			protected.Post("/island/purchase", h.purchase)
			protected.Post("/island/place", h.place)
			protected.Post("/island/voice-over", h.toggleVoiceOver)
			protected.Post("/island/leave", h.leaveScreen)
			protected.Get("/island/map.pdf", h.treasureMap)

			protected.Post("/quests/generate", h.generateQuest)
			protected.Post("/quests/{questID}/open", h.openQuest)
			protected.Post("/quests/session/answer", h.submitAnswer)
			protected.Post("/quests/session/hint", h.requestHint)
			protected.Delete("/quests/session", h.closeQuest)

			protected.Get("/savings", h.listSavings)
			protected.Post("/savings", h.recordSaving)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (h *Handler) getIsland(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.game.View(r.Context(), uid)
	if err != nil {
		h.writeError(w, uid, "view island", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Piece string `json:"piece"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	view, err := h.game.Purchase(r.Context(), uid, strings.TrimSpace(req.Piece))
	if err != nil {
		h.writeError(w, uid, "purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Piece string `json:"piece"`
		X     int    `json:"x"`
		Y     int    `json:"y"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	placed, err := h.game.Place(r.Context(), uid, strings.TrimSpace(req.Piece), island.Coord{X: req.X, Y: req.Y})
	if err != nil {
		h.writeError(w, uid, "place", err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

func (h *Handler) toggleVoiceOver(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	enabled, err := h.game.ToggleVoiceOver(r.Context(), uid)
	if err != nil {
		h.writeError(w, uid, "toggle voice-over", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voice_over": enabled})
}

func (h *Handler) leaveScreen(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	h.game.LeaveScreen(uid)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) treasureMap(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	st, err := h.game.Snapshot(r.Context(), uid)
	if err != nil {
		h.writeError(w, uid, "snapshot island", err)
		return
	}
	pdf, err := treasuremap.Render(h.game.WorldMap(), st, "My Treasure Island")
	if err != nil {
		h.writeError(w, uid, "render treasure map", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="treasure-map.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) generateQuest(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	q, err := h.game.GenerateQuest(r.Context(), uid)
	if err != nil {
		h.writeError(w, uid, "generate quest", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) openQuest(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.game.OpenQuest(r.Context(), uid, chi.URLParam(r, "questID"))
	if err != nil {
		h.writeError(w, uid, "open quest", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	res, err := h.game.SubmitAnswer(r.Context(), uid, req.Value)
	if err != nil {
		h.writeError(w, uid, "submit answer", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) requestHint(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	hint, err := h.game.RequestHint(r.Context(), uid)
	if err != nil {
		h.writeError(w, uid, "request hint", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hint": hint})
}

func (h *Handler) closeQuest(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := h.game.CloseQuest(uid); err != nil {
		h.writeError(w, uid, "close quest", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSavings(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	deposits, err := h.savings.List(r.Context(), uid)
	if err != nil {
		h.writeError(w, uid, "list savings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": deposits, "total": savings.Sum(deposits)})
}

func (h *Handler) recordSaving(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount float64 `json:"amount"`
		Note   string  `json:"note"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	d, err := h.savings.Record(r.Context(), uid, req.Amount, req.Note)
	if err != nil {
		h.writeError(w, uid, "record saving", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
	}
	return uid, ok
}

// writeError maps game errors onto HTTP statuses; anything unrecognised is logged
// and reported as an internal error.
func (h *Handler) writeError(w http.ResponseWriter, uid uuid.UUID, op string, err error) {
	var cooldown *game.CooldownError
	if errors.As(err, &cooldown) {
		secs := int(cooldown.Remaining.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": err.Error(), "code": "generation_cooldown", "retry_after_seconds": secs})
		return
	}
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("user_id", uid.String()).Str("op", op).Msg("request failed")
		writeJSON(w, status, map[string]any{"error": "internal error", "code": code})
		return
	}
	if status == http.StatusBadGateway {
		h.logger.Warn().Err(err).Str("user_id", uid.String()).Str("op", op).Msg("content provider failed")
	}
	writeJSON(w, status, map[string]any{"error": err.Error(), "code": code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient_funds"
	case errors.Is(err, game.ErrIllegalPlacement):
		return http.StatusUnprocessableEntity, "illegal_placement"
	case errors.Is(err, game.ErrUnknownPiece):
		return http.StatusBadRequest, "unknown_piece"
	case errors.Is(err, game.ErrGenerationQuotaExceeded):
		return http.StatusTooManyRequests, "generation_quota_exceeded"
	case errors.Is(err, game.ErrGenerationCooldownActive):
		return http.StatusTooManyRequests, "generation_cooldown"
	case errors.Is(err, game.ErrContentProvider):
		return http.StatusBadGateway, "content_provider"
	case errors.Is(err, game.ErrQuestNotFound):
		return http.StatusNotFound, "quest_not_found"
	case errors.Is(err, game.ErrQuestCompleted):
		return http.StatusConflict, "quest_completed"
	case errors.Is(err, game.ErrNoSession):
		return http.StatusConflict, "no_session"
	case errors.Is(err, game.ErrReadingPhase):
		return http.StatusTooEarly, "reading_phase"
	case errors.Is(err, game.ErrSessionClosing):
		return http.StatusConflict, "session_closing"
	case errors.Is(err, game.ErrInvalidGuess), errors.Is(err, game.ErrInvalidAnswer):
		return http.StatusBadRequest, "invalid_answer"
	case errors.Is(err, game.ErrHintUsed):
		return http.StatusConflict, "hint_used"
	case errors.Is(err, game.ErrHintUnavailable):
		return http.StatusBadRequest, "hint_unavailable"
	case errors.Is(err, game.ErrGenerationInFlight):
		return http.StatusConflict, "generation_in_flight"
	case errors.Is(err, game.ErrStaleResult):
		return http.StatusConflict, "stale_result"
	case errors.Is(err, savings.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	}
	return http.StatusInternalServerError, "internal"
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing bearer token"})
			return
		}
		uid, err := h.auth.ParseToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid token"})
			return
		}
		ctx := context.WithValue(r.Context(), userIDContextKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(userIDContextKey)
	uid, ok := v.(uuid.UUID)
	return uid, ok
}

func (h *Handler) cors(next http.Handler) http.Handler {
	origin := h.corsOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

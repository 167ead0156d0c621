package agent

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/krea02/ai-agent-demo/internal/api"
	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/identity"
)

const (
	defaultMaxRequestBodySize = 1 << 20
	defaultMaxAudioSize       = 10 << 20
)

// HandlerConfig bounds request sizes and rates.
type HandlerConfig struct {
	MaxBodyBytes      int64
	MaxAudioBytes     int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Handler serves the quote turn API.
type Handler struct {
	svc         *Service
	rateLimiter *RateLimiter
	cfg         HandlerConfig
}

// TurnRequest is the body of POST /api/quote/turn.
type TurnRequest struct {
	Message string `json:"message"`
}

// SpeakRequest is the body of POST /api/quote/speak.
type SpeakRequest struct {
	Text string `json:"text"`
}

// SpeakResponse carries synthesized audio, base64 encoded in JSON.
type SpeakResponse struct {
	Audio []byte `json:"audio"`
}

// TranscriptResponse is the body of GET /api/quote/session/transcript.
type TranscriptResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

// NewHandler creates an HTTP handler for svc.
func NewHandler(svc *Service, cfg HandlerConfig) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxRequestBodySize
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = defaultMaxAudioSize
	}
	return &Handler{
		svc:         svc,
		rateLimiter: NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		cfg:         cfg,
	}
}

// RegisterRoutes registers the quote routes. Session identity middleware
// must already be installed.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/quote", func(r chi.Router) {
		r.Post("/turn", h.HandleTurn)
		r.Post("/audio", h.HandleAudio)
		r.Post("/speak", h.HandleSpeak)
		r.Delete("/session", h.HandleReset)
		r.Get("/session/transcript", h.HandleTranscript)
	})
}

// Close stops background work.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
}

// HandleTurn handles POST /api/quote/turn.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	key := identity.SessionKeyFromContext(r.Context())
	if !h.rateLimiter.Allow(key) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	res, err := h.svc.HandleTurn(r.Context(), key, req.Message, TurnOptions{
		Speak:   wantsSpeech(r),
		Channel: "http",
	})
	if err != nil {
		h.turnError(w, r, key, err)
		return
	}
	api.JSON(w, http.StatusOK, res)
}

// HandleSpeak handles POST /api/quote/speak, replaying a reply as audio.
func (h *Handler) HandleSpeak(w http.ResponseWriter, r *http.Request) {
	key := identity.SessionKeyFromContext(r.Context())
	if !h.rateLimiter.Allow(key) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	audio, err := h.svc.Speak(r.Context(), req.Text)
	if err != nil {
		h.turnError(w, r, key, err)
		return
	}
	api.JSON(w, http.StatusOK, SpeakResponse{Audio: audio})
}

// HandleAudio handles POST /api/quote/audio with the raw recording as body.
func (h *Handler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	key := identity.SessionKeyFromContext(r.Context())
	if !h.rateLimiter.Allow(key) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxAudioBytes)
	audio, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "audio too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(audio) == 0 {
		api.Error(w, http.StatusBadRequest, "audio is required")
		return
	}

	res, err := h.svc.HandleAudioTurn(r.Context(), key, audio, TurnOptions{
		Speak:   wantsSpeech(r),
		Channel: "http_audio",
	})
	if err != nil {
		h.turnError(w, r, key, err)
		return
	}
	api.JSON(w, http.StatusOK, res)
}

// HandleReset handles DELETE /api/quote/session.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	key := identity.SessionKeyFromContext(r.Context())
	if err := h.svc.ResetSession(r.Context(), key); err != nil {
		h.turnError(w, r, key, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTranscript handles GET /api/quote/session/transcript.
func (h *Handler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	key := identity.SessionKeyFromContext(r.Context())
	msgs, err := h.svc.Transcript(r.Context(), key)
	if err != nil {
		h.turnError(w, r, key, err)
		return
	}
	api.JSON(w, http.StatusOK, TranscriptResponse{SessionID: key, Messages: msgs})
}

// turnError maps service errors to responses. Details only go to the log.
func (h *Handler) turnError(w http.ResponseWriter, r *http.Request, key string, err error) {
	switch {
	case errors.Is(err, ErrEmptyUtterance):
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	case errors.Is(err, ErrEmptyTranscript):
		api.Error(w, http.StatusUnprocessableEntity, "no speech recognized")
		return
	}

	slog.Error("quote request failed",
		"session_id", key,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"error", err,
	)
	status := http.StatusInternalServerError
	if errors.Is(err, ErrCollaboratorUnavailable) {
		status = http.StatusBadGateway
	}
	api.Error(w, status, "something went wrong")
}

func wantsSpeech(r *http.Request) bool {
	switch r.URL.Query().Get("speak") {
	case "1", "true", "yes":
		return true
	}
	return false
}

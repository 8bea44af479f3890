package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danieleFFF/XPoll/internal/broadcast"
	"github.com/danieleFFF/XPoll/internal/models"
	"github.com/danieleFFF/XPoll/internal/service"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionHandler exposes the session engine over HTTP and hands websocket
// subscribers to the broadcast hub.
type SessionHandler struct {
	s        *service.SessionService
	hub      *broadcast.Hub
	l        *zap.Logger
	upgrader websocket.Upgrader
}

func New(s *service.SessionService, hub *broadcast.Hub, l *zap.Logger) *SessionHandler {
	return &SessionHandler{
		s:   s,
		hub: hub,
		l:   l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/sessions/{code}", h.GetSession)
	mux.HandleFunc("POST /api/sessions/{code}/join", h.JoinSession)
	mux.HandleFunc("POST /api/sessions/{code}/leave", h.LeaveSession)
	mux.HandleFunc("POST /api/sessions/{code}/launch", h.LaunchPoll)
	mux.HandleFunc("POST /api/sessions/{code}/close", h.ClosePoll)
	mux.HandleFunc("POST /api/sessions/{code}/results", h.ShowResults)
	mux.HandleFunc("POST /api/sessions/{code}/exit", h.ExitWithoutResults)
	mux.HandleFunc("DELETE /api/sessions/{code}", h.DeleteSession)
	mux.HandleFunc("POST /api/sessions/{code}/votes", h.SubmitVotes)
	mux.HandleFunc("GET /api/sessions/{code}/time", h.GetRemainingTime)
	mux.HandleFunc("GET /api/sessions/{code}/results", h.GetResults)
	mux.HandleFunc("GET /api/sessions/{code}/results/{participantName}", h.GetParticipantResults)
	mux.HandleFunc("GET /ws/session/{code}", h.Subscribe)
}

type CreateSessionRequest struct {
	CreatorID     string            `json:"creator_id"`
	CreatorUserID string            `json:"creator_user_id,omitempty"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	TimeLimit     int               `json:"time_limit,omitempty"`
	HasScore      bool              `json:"has_score"`
	IsAnonymous   bool              `json:"is_anonymous"`
	Questions     []models.Question `json:"questions"`
}

type JoinRequest struct {
	DisplayName string `json:"display_name"`
	UserID      string `json:"user_id,omitempty"`
}

type LeaveRequest struct {
	ParticipantName string `json:"participant_name"`
}

type CreatorRequest struct {
	CreatorID string `json:"creator_id"`
}

type VoteRequest struct {
	ParticipantName string         `json:"participant_name"`
	Answers         map[string]int `json:"answers"`
}

type RemainingTimeResponse struct {
	RemainingSeconds int `json:"remaining_seconds"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Title == "" {
		h.writeError(w, http.StatusBadRequest, "title is required", "")
		return
	}
	for _, q := range req.Questions {
		if len(q.Options) < 2 {
			h.writeError(w, http.StatusBadRequest, models.ErrNotEnoughOptions.Error(), "")
			return
		}
	}

	session, err := h.s.CreateSession(service.CreateSessionInput{
		CreatorID:     req.CreatorID,
		CreatorUserID: req.CreatorUserID,
		Poll: models.Poll{
			Title:       req.Title,
			Description: req.Description,
			TimeLimit:   req.TimeLimit,
			HasScore:    req.HasScore,
			IsAnonymous: req.IsAnonymous,
			ShowResults: true,
			Questions:   req.Questions,
		},
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.s.GetSession(r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	result, err := h.s.JoinSession(r.PathValue("code"), req.DisplayName, req.UserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := h.s.LeaveSession(r.PathValue("code"), req.ParticipantName); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) LaunchPoll(w http.ResponseWriter, r *http.Request) {
	h.creatorAction(w, r, h.s.LaunchPoll)
}

func (h *SessionHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	h.creatorAction(w, r, h.s.ClosePoll)
}

func (h *SessionHandler) ShowResults(w http.ResponseWriter, r *http.Request) {
	h.creatorAction(w, r, h.s.ShowResults)
}

func (h *SessionHandler) ExitWithoutResults(w http.ResponseWriter, r *http.Request) {
	h.creatorAction(w, r, h.s.ExitWithoutResults)
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.creatorAction(w, r, h.s.DeleteSession)
}

// creatorAction funnels the presenter-only lifecycle transitions, which all
// share the same request shape and error mapping.
func (h *SessionHandler) creatorAction(w http.ResponseWriter, r *http.Request, action func(code, creatorID string) error) {
	var req CreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := action(r.PathValue("code"), req.CreatorID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := h.s.SubmitVotes(r.PathValue("code"), req.ParticipantName, req.Answers); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SessionHandler) GetRemainingTime(w http.ResponseWriter, r *http.Request) {
	remaining, err := h.s.GetRemainingTime(r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, RemainingTimeResponse{RemainingSeconds: remaining})
}

func (h *SessionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.s.Results(r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

func (h *SessionHandler) GetParticipantResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.s.GetParticipantResults(r.PathValue("code"), r.PathValue("participantName"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

// Subscribe upgrades the connection and registers it on the session's topic.
func (h *SessionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if _, err := h.s.GetSession(code); err != nil {
		h.writeServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := &broadcast.Client{
		Topic: broadcast.Topic(code),
		Conn:  conn,
		Send:  make(chan []byte, 64),
	}
	h.hub.Register <- client
	go client.WritePump()
	go client.ReadPump(h.hub)
}

// writeServiceError maps engine sentinels to status codes so clients never
// have to string-match.
func (h *SessionHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error(), "SESSION_NOT_FOUND")
	case errors.Is(err, models.ErrParticipantNotFound):
		h.writeError(w, http.StatusNotFound, err.Error(), "PARTICIPANT_NOT_FOUND")
	case errors.Is(err, models.ErrNameTaken):
		h.writeError(w, http.StatusConflict, err.Error(), "NAME_TAKEN")
	case errors.Is(err, models.ErrSessionClosed):
		h.writeError(w, http.StatusGone, err.Error(), "SESSION_CLOSED")
	case errors.Is(err, models.ErrNotCreator):
		h.writeError(w, http.StatusForbidden, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, models.ErrInvalidState):
		h.writeError(w, http.StatusConflict, err.Error(), "INVALID_STATE")
	case errors.Is(err, models.ErrVotingNotOpen):
		h.writeError(w, http.StatusConflict, err.Error(), "VOTING_NOT_OPEN")
	case errors.Is(err, models.ErrNameEmpty):
		h.writeError(w, http.StatusBadRequest, err.Error(), "NAME_EMPTY")
	default:
		h.l.Error("internal error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "something went wrong", "")
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg, code string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.l.Error("failed to encode response", zap.Error(err))
	}
}

package repository

import (
	"encoding/json"
	"fmt"

	"github.com/danieleFFF/XPoll/internal/models"
	"github.com/tarantool/go-tarantool"
	"go.uber.org/zap"
)

const sessionsSpace = "sessions"

// TarantoolStore persists session aggregates in a Tarantool space keyed by
// code. The aggregate is serialized to a JSON field so participants and votes
// always travel with their session in one atomic tuple write.
type TarantoolStore struct {
	db *tarantool.Connection
	l  *zap.Logger
}

func NewTarantoolStore(db *tarantool.Connection, l *zap.Logger) *TarantoolStore {
	return &TarantoolStore{
		db: db,
		l:  l,
	}
}

func (r *TarantoolStore) Load(code string) (*models.Session, error) {
	resp, err := r.db.Select(sessionsSpace, "primary", 0, 1, tarantool.IterEq, []interface{}{code})
	if err != nil {
		r.l.Debug("failed to select session", zap.Error(err))
		return nil, fmt.Errorf("repository: database select error: %w", err)
	}
	r.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.Any("resp", resp.Data),
		zap.String("error", resp.Error))

	if len(resp.Data) == 0 {
		r.l.Debug("session not found", zap.String("code", code))
		return nil, models.ErrSessionNotFound
	}
	tuple, ok := resp.Data[0].([]interface{})
	if !ok || len(tuple) < 2 {
		r.l.Debug("unexpected data type", zap.Any("data", resp.Data))
		return nil, models.ErrFailedToProcessData
	}
	raw, ok := tuple[1].(string)
	if !ok {
		r.l.Debug("unexpected type for session field", zap.Any("session_field", tuple[1]))
		return nil, models.ErrFailedToProcessData
	}

	var session models.Session
	if err = json.Unmarshal([]byte(raw), &session); err != nil {
		r.l.Debug("failed to unmarshal session", zap.Error(err))
		return nil, fmt.Errorf("repository: failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *TarantoolStore) Save(session *models.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		r.l.Debug("failed to marshal session", zap.Error(err))
		return fmt.Errorf("repository: json marshal error: %w", err)
	}

	resp, err := r.db.Replace(sessionsSpace, []interface{}{session.Code, string(sessionJSON)})
	if err != nil {
		r.l.Debug("failed to replace session", zap.Error(err))
		return fmt.Errorf("repository: database replace error: %w", err)
	}
	r.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.Any("resp", resp.Data),
		zap.String("error", resp.Error))
	return nil
}

func (r *TarantoolStore) Delete(code string) error {
	resp, err := r.db.Delete(sessionsSpace, "primary", []interface{}{code})
	if err != nil {
		r.l.Debug("failed to delete session", zap.Error(err))
		return fmt.Errorf("repository: database delete error: %w", err)
	}
	r.l.Debug("tarantool response",
		zap.Uint32("status_code", resp.Code),
		zap.Any("resp", resp.Data),
		zap.String("error", resp.Error))
	return nil
}

func (r *TarantoolStore) ExistsCode(code string) (bool, error) {
	resp, err := r.db.Select(sessionsSpace, "primary", 0, 1, tarantool.IterEq, []interface{}{code})
	if err != nil {
		r.l.Debug("failed to select session", zap.Error(err))
		return false, fmt.Errorf("repository: database select error: %w", err)
	}
	return len(resp.Data) > 0, nil
}

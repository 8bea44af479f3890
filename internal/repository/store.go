package repository

import "github.com/danieleFFF/XPoll/internal/models"

// SessionStore is durable keyed storage for the session aggregate. Load and
// Save move the whole aggregate at once so callers can run every mutation as
// one load-mutate-save sequence under per-code exclusivity.
type SessionStore interface {
	// Load returns the aggregate for the code, or models.ErrSessionNotFound.
	Load(code string) (*models.Session, error)
	// Save upserts the aggregate keyed by its code.
	Save(session *models.Session) error
	// Delete removes the aggregate. Deleting an unknown code is not an error.
	Delete(code string) error
	// ExistsCode reports whether a session with the code exists.
	ExistsCode(code string) (bool, error)
}

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/danieleFFF/XPoll/internal/models"
)

func testSession(code string) *models.Session {
	return &models.Session{
		Code:      code,
		CreatorID: "creator-1",
		State:     models.StateWaiting,
		Poll: models.Poll{
			Title: "test poll",
			Questions: []models.Question{
				{
					ID:   "q1",
					Text: "pick one",
					Options: []models.Option{
						{ID: 1, Text: "a", IsCorrect: true},
						{ID: 2, Text: "b"},
					},
				},
			},
		},
		CreatedAt: time.Now(),
	}
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Load("ABC234"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := store.Save(testSession("ABC234")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load("ABC234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Code != "ABC234" || loaded.Poll.Title != "test poll" {
		t.Errorf("loaded session does not match saved one: %+v", loaded)
	}
}

func TestMemoryStoreLoadReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save(testSession("ABC234")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _ := store.Load("ABC234")
	first.Participants = append(first.Participants, models.Participant{ID: "p1", Name: "alice"})
	first.State = models.StateClosed

	second, _ := store.Load("ABC234")
	if len(second.Participants) != 0 {
		t.Errorf("mutating a loaded snapshot leaked into the store")
	}
	if second.State != models.StateWaiting {
		t.Errorf("expected state WAITING, got %s", second.State)
	}
}

func TestMemoryStoreExistsAndDelete(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save(testSession("ABC234")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err := store.ExistsCode("ABC234")
	if err != nil || !exists {
		t.Fatalf("expected code to exist, got exists=%v err=%v", exists, err)
	}

	if err := store.Delete("ABC234"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exists, _ = store.ExistsCode("ABC234")
	if exists {
		t.Errorf("expected code to be gone after delete")
	}
	if _, err := store.Load("ABC234"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

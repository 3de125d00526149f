package app

import (
	"github.com/ayusman/guineaday/internal/engine"
	"github.com/ayusman/guineaday/internal/store"
)

// storeJournal writes engine session records to the session table.
type storeJournal struct {
	sessions *store.SessionRepository
}

func (j *storeJournal) SaveSession(r engine.Record) error {
	return j.sessions.Save(toStoreSession(r))
}

func toStoreSession(r engine.Record) *store.Session {
	s := &store.Session{
		ID:        r.ID,
		Mode:      string(r.Mode),
		Policy:    r.Policy,
		Outcome:   string(r.Outcome),
		Progress:  r.Progress,
		Bodies:    r.Bodies,
		Zones:     r.Zones,
		StartedAt: r.StartedAt,
	}
	if r.Completion != nil {
		s.CompletedBody = r.Completion.Body
		s.CompletedZone = r.Completion.Zone
	}
	if !r.EndedAt.IsZero() {
		ended := r.EndedAt
		s.EndedAt = &ended
	}
	return s
}

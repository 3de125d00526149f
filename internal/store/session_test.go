package store

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func sampleSession(id string, started time.Time) *Session {
	return &Session{
		ID:        id,
		Mode:      "pointer",
		Policy:    "zone",
		Outcome:   OutcomeActive,
		Bodies:    []string{"Patches", "Sunny"},
		Zones:     []string{"Carrot"},
		StartedAt: started,
	}
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.Save(sampleSession("s1", started)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByID("s1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Outcome != OutcomeActive {
		t.Errorf("Outcome = %q, want %q", got.Outcome, OutcomeActive)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.EndedAt != nil {
		t.Errorf("EndedAt = %v, want nil", got.EndedAt)
	}
	if !reflect.DeepEqual(got.Bodies, []string{"Patches", "Sunny"}) {
		t.Errorf("Bodies = %v", got.Bodies)
	}
	if !reflect.DeepEqual(got.Zones, []string{"Carrot"}) {
		t.Errorf("Zones = %v", got.Zones)
	}
}

func TestSessionRepository_SaveUpserts(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := sampleSession("s1", started)
	if err := repo.Save(sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ended := started.Add(90 * time.Second)
	sess.Outcome = OutcomeCompleted
	sess.CompletedBody = "Sunny"
	sess.CompletedZone = "Carrot"
	sess.EndedAt = &ended
	if err := repo.Save(sess); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := repo.GetByID("s1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Outcome != OutcomeCompleted || got.CompletedBody != "Sunny" || got.CompletedZone != "Carrot" {
		t.Errorf("got %+v, want completed by Sunny at Carrot", got)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(ended) {
		t.Errorf("EndedAt = %v, want %v", got.EndedAt, ended)
	}
	if len(got.Bodies) != 2 {
		t.Errorf("labels duplicated on upsert: %v", got.Bodies)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := repo.Save(sampleSession(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() returned %d sessions, want 3", len(all))
	}
	if all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("List() order = %s,%s,%s; want newest first", all[0].ID, all[1].ID, all[2].ID)
	}
	if len(all[1].Bodies) != 2 {
		t.Errorf("List() should load labels, got %v", all[1].Bodies)
	}

	recent, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("List(2) returned %d sessions", len(recent))
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Save(sampleSession("s1", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Delete("s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByID("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	var labels int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM session_labels").Scan(&labels); err != nil {
		t.Fatalf("count labels: %v", err)
	}
	if labels != 0 {
		t.Errorf("labels should cascade on delete, %d left", labels)
	}

	if err := repo.Delete("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() missing error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_InvalidOutcome(t *testing.T) {
	s := newTestStore(t)

	sess := sampleSession("s1", time.Now())
	sess.Outcome = "paused"
	if err := s.Sessions().Save(sess); err == nil {
		t.Error("Save() should reject an unknown outcome")
	}
}

func TestSessionRepository_Stats(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	outcomes := []string{OutcomeCompleted, OutcomeCompleted, OutcomeAbandoned, OutcomeActive}
	for i, o := range outcomes {
		sess := sampleSession(string(rune('a'+i)), time.Now())
		sess.Outcome = o
		if err := repo.Save(sess); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := map[string]int{OutcomeCompleted: 2, OutcomeAbandoned: 1, OutcomeActive: 1}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("Stats() = %v, want %v", stats, want)
	}
}

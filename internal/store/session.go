package store

import (
	"database/sql"
	"errors"
	"time"
)

// Outcome values stored for a session.
const (
	OutcomeActive    = "active"
	OutcomeCompleted = "completed"
	OutcomeAbandoned = "abandoned"
)

// Session is one journaled interaction session.
type Session struct {
	ID            string     `json:"id"`
	Mode          string     `json:"mode"`
	Policy        string     `json:"policy"`
	Outcome       string     `json:"outcome"`
	Progress      float64    `json:"progress"`
	CompletedBody string     `json:"completed_body,omitempty"`
	CompletedZone string     `json:"completed_zone,omitempty"`
	Bodies        []string   `json:"bodies"`
	Zones         []string   `json:"zones"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Save inserts a session or replaces the stored row with the same ID.
// Labels are rewritten in the same transaction.
func (r *SessionRepository) Save(sess *Session) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var ended any
	if sess.EndedAt != nil {
		ended = *sess.EndedAt
	}

	_, err = tx.Exec(
		`INSERT INTO sessions (id, mode, policy, outcome, progress, completed_body, completed_zone, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			policy = excluded.policy,
			outcome = excluded.outcome,
			progress = excluded.progress,
			completed_body = excluded.completed_body,
			completed_zone = excluded.completed_zone,
			ended_at = excluded.ended_at`,
		sess.ID, sess.Mode, sess.Policy, sess.Outcome, sess.Progress,
		sess.CompletedBody, sess.CompletedZone, sess.StartedAt, ended,
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM session_labels WHERE session_id = ?`, sess.ID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO session_labels (session_id, kind, position, label) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, label := range sess.Bodies {
		if _, err := stmt.Exec(sess.ID, "body", i, label); err != nil {
			return err
		}
	}
	for i, label := range sess.Zones {
		if _, err := stmt.Exec(sess.ID, "zone", i, label); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a session with its labels.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, mode, policy, outcome, progress, completed_body, completed_zone, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Mode, &sess.Policy, &sess.Outcome, &sess.Progress,
		&sess.CompletedBody, &sess.CompletedZone, &sess.StartedAt, &ended)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}

	if err := r.loadLabels(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// List retrieves the most recent sessions, newest first. A non-positive
// limit returns all of them.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, mode, policy, outcome, progress, completed_body, completed_zone, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var ended sql.NullTime
		err := rows.Scan(&sess.ID, &sess.Mode, &sess.Policy, &sess.Outcome, &sess.Progress,
			&sess.CompletedBody, &sess.CompletedZone, &sess.StartedAt, &ended)
		if err != nil {
			return nil, err
		}
		if ended.Valid {
			t := ended.Time
			sess.EndedAt = &t
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, sess := range sessions {
		if err := r.loadLabels(sess); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Delete removes a session and its labels.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Stats counts sessions by outcome.
func (r *SessionRepository) Stats() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM sessions GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		stats[outcome] = n
	}
	return stats, rows.Err()
}

func (r *SessionRepository) loadLabels(sess *Session) error {
	rows, err := r.db.Query(
		`SELECT kind, label FROM session_labels WHERE session_id = ? ORDER BY kind, position`,
		sess.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	sess.Bodies = []string{}
	sess.Zones = []string{}
	for rows.Next() {
		var kind, label string
		if err := rows.Scan(&kind, &label); err != nil {
			return err
		}
		if kind == "body" {
			sess.Bodies = append(sess.Bodies, label)
		} else {
			sess.Zones = append(sess.Zones, label)
		}
	}
	return rows.Err()
}

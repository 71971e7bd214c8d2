package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lotas/blattwerk/internal/types"
)

// SaveSession stores a session with all its tabs in one transaction.
// A named session replaces any earlier session with the same profile and
// name; unnamed sessions always append. Returns the session ID.
func SaveSession(db *sql.DB, s *types.Session) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Convert empty name to nil so unnamed sessions stay distinct under
	// the (profile, name) unique constraint.
	var nameVal interface{}
	if s.Name != "" {
		nameVal = s.Name
		if _, err := tx.Exec(
			"DELETE FROM sessions WHERE profile = ? AND name = ?",
			s.Profile, s.Name,
		); err != nil {
			return 0, fmt.Errorf("replace session %q: %w", s.Name, err)
		}
	}

	res, err := tx.Exec(
		"INSERT INTO sessions (name, profile, active_index, tab_count) VALUES (?, ?, ?, ?)",
		nameVal, s.Profile, s.ActiveIndex, len(s.Tabs),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	sessionID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get session id: %w", err)
	}

	for i, tab := range s.Tabs {
		history, err := json.Marshal(tab.History)
		if err != nil {
			return 0, fmt.Errorf("marshal history for tab %q: %w", tab.URL, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO session_tabs (session_id, position, tab_id, url, title, history, history_index)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, i, tab.ID, tab.URL, tab.Title, string(history), tab.HistoryIndex,
		); err != nil {
			return 0, fmt.Errorf("insert tab %q: %w", tab.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return sessionID, nil
}

// ListSessions returns session metadata for a profile, newest first.
// An empty profile lists every session.
func ListSessions(db *sql.DB, profile string) ([]types.SessionMeta, error) {
	query := "SELECT id, name, profile, saved_at, tab_count FROM sessions"
	var args []interface{}
	if profile != "" {
		query += " WHERE profile = ?"
		args = append(args, profile)
	}
	query += " ORDER BY saved_at DESC, id DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var result []types.SessionMeta
	for rows.Next() {
		var m types.SessionMeta
		var name sql.NullString
		if err := rows.Scan(&m.ID, &name, &m.Profile, &m.SavedAt, &m.TabCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if name.Valid {
			m.Name = name.String
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetSession loads a full session with its tabs by ID.
func GetSession(db *sql.DB, id int64) (*types.Session, error) {
	s := &types.Session{}
	var name sql.NullString
	err := db.QueryRow(
		"SELECT name, profile, saved_at, active_index FROM sessions WHERE id = ?", id,
	).Scan(&name, &s.Profile, &s.SavedAt, &s.ActiveIndex)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if name.Valid {
		s.Name = name.String
	}

	rows, err := db.Query(
		`SELECT tab_id, url, title, history, history_index
		 FROM session_tabs WHERE session_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query session tabs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tab types.SessionTab
		var history string
		if err := rows.Scan(&tab.ID, &tab.URL, &tab.Title, &history, &tab.HistoryIndex); err != nil {
			return nil, fmt.Errorf("scan session tab: %w", err)
		}
		if err := json.Unmarshal([]byte(history), &tab.History); err != nil {
			return nil, fmt.Errorf("parse history for tab %q: %w", tab.URL, err)
		}
		s.Tabs = append(s.Tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session tabs: %w", err)
	}
	return s, nil
}

// GetSessionByName loads a named session for a profile.
func GetSessionByName(db *sql.DB, profile, name string) (*types.Session, error) {
	var id int64
	err := db.QueryRow(
		"SELECT id FROM sessions WHERE profile = ? AND name = ?",
		profile, name,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %q not found for profile %q", name, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("query session by name: %w", err)
	}
	return GetSession(db, id)
}

// GetLatestSession returns the most recently saved session for a
// profile. Returns nil, nil when the profile has none.
func GetLatestSession(db *sql.DB, profile string) (*types.Session, error) {
	var id int64
	err := db.QueryRow(
		"SELECT id FROM sessions WHERE profile = ? ORDER BY saved_at DESC, id DESC LIMIT 1",
		profile,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest session: %w", err)
	}
	return GetSession(db, id)
}

// DeleteSession removes a session by ID. Tabs are cascade-deleted.
func DeleteSession(db *sql.DB, id int64) error {
	res, err := db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %d not found", id)
	}
	return nil
}

package storage

import (
	"database/sql"
	"fmt"

	"github.com/lotas/blattwerk/internal/types"
)

// SiteCount is one row of the top-sites aggregation.
type SiteCount struct {
	URL    string
	Title  string
	Visits int
}

// AddVisit records a page visit.
func AddVisit(db *sql.DB, url, title, tabID string) error {
	_, err := db.Exec(
		"INSERT INTO visits (url, title, tab_id) VALUES (?, ?, ?)",
		url, title, tabID,
	)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// ListVisits returns the most recent visits, newest first. limit <= 0
// means no limit.
func ListVisits(db *sql.DB, limit int) ([]types.Visit, error) {
	query := "SELECT id, url, title, tab_id, visited_at FROM visits ORDER BY visited_at DESC, id DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var result []types.Visit
	for rows.Next() {
		var v types.Visit
		if err := rows.Scan(&v.ID, &v.URL, &v.Title, &v.TabID, &v.VisitedAt); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// SearchVisits matches URL or title against a substring, newest first.
func SearchVisits(db *sql.DB, query string, limit int) ([]types.Visit, error) {
	q := "SELECT id, url, title, tab_id, visited_at FROM visits WHERE url LIKE ? OR title LIKE ? ORDER BY visited_at DESC, id DESC"
	pattern := "%" + query + "%"
	args := []interface{}{pattern, pattern}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("search visits: %w", err)
	}
	defer rows.Close()

	var result []types.Visit
	for rows.Next() {
		var v types.Visit
		if err := rows.Scan(&v.ID, &v.URL, &v.Title, &v.TabID, &v.VisitedAt); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// TopSites returns the most visited URLs with their latest title.
func TopSites(db *sql.DB, limit int) ([]SiteCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`
		SELECT url,
		       (SELECT title FROM visits v2 WHERE v2.url = v.url ORDER BY visited_at DESC LIMIT 1),
		       COUNT(*) AS n
		FROM visits v
		GROUP BY url
		ORDER BY n DESC, MAX(visited_at) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top sites: %w", err)
	}
	defer rows.Close()

	var result []SiteCount
	for rows.Next() {
		var s SiteCount
		if err := rows.Scan(&s.URL, &s.Title, &s.Visits); err != nil {
			return nil, fmt.Errorf("scan top site: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CountVisits returns the size of the history.
func CountVisits(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM visits").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ClearVisits deletes the whole visit history and returns how many rows
// went away.
func ClearVisits(db *sql.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM visits")
	if err != nil {
		return 0, fmt.Errorf("clear visits: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lotas/blattwerk/internal/types"
)

// AddBookmark saves a URL. Bookmarking the same URL twice is an error.
func AddBookmark(db *sql.DB, url, title string) (types.Bookmark, error) {
	res, err := db.Exec(
		"INSERT INTO bookmarks (url, title) VALUES (?, ?)",
		url, title,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return types.Bookmark{}, fmt.Errorf("already bookmarked: %s", url)
		}
		return types.Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Bookmark{}, fmt.Errorf("get bookmark id: %w", err)
	}
	return GetBookmark(db, id)
}

// GetBookmark loads one bookmark by ID.
func GetBookmark(db *sql.DB, id int64) (types.Bookmark, error) {
	var b types.Bookmark
	err := db.QueryRow(
		"SELECT id, url, title, created_at FROM bookmarks WHERE id = ?", id,
	).Scan(&b.ID, &b.URL, &b.Title, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return types.Bookmark{}, fmt.Errorf("bookmark %d not found", id)
	}
	if err != nil {
		return types.Bookmark{}, fmt.Errorf("query bookmark: %w", err)
	}
	return b, nil
}

// ListBookmarks returns all bookmarks, newest first.
func ListBookmarks(db *sql.DB) ([]types.Bookmark, error) {
	rows, err := db.Query(
		"SELECT id, url, title, created_at FROM bookmarks ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var result []types.Bookmark
	for rows.Next() {
		var b types.Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// SearchBookmarks matches URL or title against a substring, newest
// first.
func SearchBookmarks(db *sql.DB, query string) ([]types.Bookmark, error) {
	pattern := "%" + query + "%"
	rows, err := db.Query(
		"SELECT id, url, title, created_at FROM bookmarks WHERE url LIKE ? OR title LIKE ? ORDER BY created_at DESC, id DESC",
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search bookmarks: %w", err)
	}
	defer rows.Close()

	var result []types.Bookmark
	for rows.Next() {
		var b types.Bookmark
		if err := rows.Scan(&b.ID, &b.URL, &b.Title, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// IsBookmarked reports whether a URL is saved.
func IsBookmarked(db *sql.DB, url string) (bool, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM bookmarks WHERE url = ?", url).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteBookmark removes a bookmark by ID.
func DeleteBookmark(db *sql.DB, id int64) error {
	res, err := db.Exec("DELETE FROM bookmarks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("bookmark %d not found", id)
	}
	return nil
}

// DeleteBookmarkByURL removes a bookmark by its URL. Used by the toggle
// in the browser view, so a missing bookmark is not an error.
func DeleteBookmarkByURL(db *sql.DB, url string) error {
	_, err := db.Exec("DELETE FROM bookmarks WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

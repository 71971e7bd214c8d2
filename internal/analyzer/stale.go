package analyzer

import (
	"time"

	"github.com/lotas/blattwerk/internal/types"
)

// StaleBookmark is a bookmark with no recent visit.
type StaleBookmark struct {
	Bookmark    types.Bookmark
	LastVisited time.Time // zero when never visited
	Days        int       // days since last visit, or since creation when never visited
}

// StaleBookmarks returns bookmarks whose page has not been visited within
// thresholdDays. A bookmark that was never visited ages from its creation
// date, so freshly added bookmarks are not reported.
func StaleBookmarks(bookmarks []types.Bookmark, visits []types.Visit, thresholdDays int) []StaleBookmark {
	threshold := time.Duration(thresholdDays) * 24 * time.Hour
	now := time.Now()

	latest := make(map[string]time.Time)
	for _, v := range visits {
		n := NormalizeURL(v.URL)
		if v.VisitedAt.After(latest[n]) {
			latest[n] = v.VisitedAt
		}
	}

	var out []StaleBookmark
	for _, b := range bookmarks {
		last, visited := latest[NormalizeURL(b.URL)]
		ref := last
		if !visited {
			ref = b.CreatedAt
		}
		age := now.Sub(ref)
		if age <= threshold {
			continue
		}
		sb := StaleBookmark{Bookmark: b, Days: int(age.Hours() / 24)}
		if visited {
			sb.LastVisited = last
		}
		out = append(out, sb)
	}
	return out
}

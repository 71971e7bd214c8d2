// Package analyzer inspects bookmarks, visit history, and saved sessions for
// duplicates, rot, and summary stats.
package analyzer

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lotas/blattwerk/internal/types"
)

// DeadLink is the check result for one bookmark.
type DeadLink struct {
	Bookmark types.Bookmark
	IsDead   bool
	Reason   string
}

var skipPrefixes = []string{"about:", "file:", "chrome:", "resource:", "data:"}

func shouldSkip(url string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// CheckDeadBookmarks probes each bookmark with a HEAD request and writes a
// result per checked bookmark to results. At most 10 requests run at once.
// Internal URLs are skipped entirely. Blocks until all checks finish; the
// caller owns closing the channel.
func CheckDeadBookmarks(bookmarks []types.Bookmark, results chan<- DeadLink) {
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	sem := make(chan struct{}, 10)
	var wg sync.WaitGroup

	for _, b := range bookmarks {
		if shouldSkip(b.URL) {
			continue
		}

		wg.Add(1)
		go func(b types.Bookmark) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := DeadLink{Bookmark: b}

			req, err := http.NewRequest(http.MethodHead, b.URL, nil)
			if err != nil {
				result.IsDead = true
				result.Reason = "invalid URL"
				results <- result
				return
			}

			resp, err := client.Do(req)
			if err != nil {
				result.IsDead = true
				result.Reason = "unreachable"
				results <- result
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == 404 || resp.StatusCode == 410 {
				result.IsDead = true
				result.Reason = fmt.Sprintf("%d", resp.StatusCode)
			}

			results <- result
		}(b)
	}

	wg.Wait()
}

package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/blattwerk/internal/types"
)

func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	params := u.Query()
	for k := range params {
		sort.Strings(params[k])
	}
	u.RawQuery = params.Encode()
	result := u.String()
	if strings.HasSuffix(result, "/") && result != u.Scheme+"://"+u.Host+"/" {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// DuplicateGroup is a set of bookmarks that point at the same page once
// their URLs are normalized.
type DuplicateGroup struct {
	URL       string
	Bookmarks []types.Bookmark
}

// FindDuplicateBookmarks groups bookmarks by normalized URL. Groups of one
// are not reported. Group order follows first appearance in the input.
func FindDuplicateBookmarks(list []types.Bookmark) []DuplicateGroup {
	groups := make(map[string][]types.Bookmark)
	var order []string

	for _, b := range list {
		n := NormalizeURL(b.URL)
		if _, seen := groups[n]; !seen {
			order = append(order, n)
		}
		groups[n] = append(groups[n], b)
	}

	var out []DuplicateGroup
	for _, n := range order {
		if len(groups[n]) < 2 {
			continue
		}
		out = append(out, DuplicateGroup{URL: n, Bookmarks: groups[n]})
	}
	return out
}

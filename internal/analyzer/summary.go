package analyzer

import (
	"net/url"

	"github.com/lotas/blattwerk/internal/types"
)

// Stats summarizes a saved session.
type Stats struct {
	Tabs           int
	UniqueHosts    int
	DeepestHistory int
	HistoryEntries int
}

func Summarize(s *types.Session) Stats {
	stats := Stats{Tabs: len(s.Tabs)}
	hosts := make(map[string]bool)

	for _, tab := range s.Tabs {
		if u, err := url.Parse(tab.URL); err == nil && u.Host != "" {
			hosts[u.Host] = true
		}
		stats.HistoryEntries += len(tab.History)
		if len(tab.History) > stats.DeepestHistory {
			stats.DeepestHistory = len(tab.History)
		}
	}

	stats.UniqueHosts = len(hosts)
	return stats
}

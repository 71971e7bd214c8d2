// Package search turns address-bar input into a URL: either the input
// itself (when it looks like one) or a query against the configured
// search engine.
package search

import (
	"fmt"
	"net/url"
	"strings"
)

// Engine identifies a search provider. The zero value is not valid; use
// DefaultEngine.
type Engine string

const (
	DuckDuckGo Engine = "duckduckgo"
	Google     Engine = "google"
	Bing       Engine = "bing"
	Brave      Engine = "brave"
)

const DefaultEngine = DuckDuckGo

// Engines lists the supported providers in display order.
func Engines() []Engine {
	return []Engine{DuckDuckGo, Google, Bing, Brave}
}

// ParseEngine maps a config value to an Engine, case-insensitively.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "duckduckgo", "ddg":
		return DuckDuckGo, nil
	case "google":
		return Google, nil
	case "bing":
		return Bing, nil
	case "brave":
		return Brave, nil
	default:
		return "", fmt.Errorf("unknown search engine %q (want duckduckgo, google, bing or brave)", s)
	}
}

// Name returns the provider's display name.
func (e Engine) Name() string {
	switch e {
	case Google:
		return "Google"
	case Bing:
		return "Bing"
	case Brave:
		return "Brave"
	default:
		return "DuckDuckGo"
	}
}

// QueryURL builds the results-page URL for a query.
func (e Engine) QueryURL(query string) string {
	q := url.QueryEscape(query)
	switch e {
	case Google:
		return "https://www.google.com/search?q=" + q
	case Bing:
		return "https://www.bing.com/search?q=" + q
	case Brave:
		return "https://search.brave.com/search?q=" + q
	default:
		return "https://duckduckgo.com/?q=" + q
	}
}

// Normalize resolves address-bar input. Input with a scheme or an
// internal about: address passes through unchanged; input containing a
// dot is taken as a bare host and gets https:// prefixed; anything else
// becomes a search against the engine. Empty input stays empty.
func Normalize(input string, engine Engine) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if strings.HasPrefix(input, "about:") {
		return input
	}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return input
	}
	if strings.Contains(input, ".") && !strings.ContainsAny(input, " \t") {
		return "https://" + input
	}
	return engine.QueryURL(input)
}

// Package fetch retrieves web pages and distills them into plain text and
// links for the terminal content view.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	readability "github.com/go-shiori/go-readability"

	"github.com/lotas/blattwerk/internal/applog"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) blattwerk/1.0"

var skipPrefixes = []string{"about:", "file:", "chrome:", "resource:", "data:", "javascript:"}

// Link is a hyperlink found on a fetched page, resolved to an absolute URL.
type Link struct {
	Text string
	URL  string
}

// Page is a fetched page distilled to readable text.
type Page struct {
	URL       string
	Title     string
	Text      string
	Links     []Link
	FetchedAt time.Time
}

// Client fetches pages over HTTP. Safe for concurrent use.
type Client struct {
	http *resty.Client
}

// NewClient returns a client with the given request timeout and
// User-Agent header. A zero or negative timeout falls back to 15
// seconds; an empty agent falls back to the built-in one.
func NewClient(timeout time.Duration, agent string) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if agent == "" {
		agent = defaultUserAgent
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", agent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return &Client{http: c}
}

// Fetchable reports whether the client can load a URL. Internal pages such
// as about:home are rendered locally, not fetched.
func Fetchable(rawURL string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return false
		}
	}
	return true
}

// Page fetches rawURL and extracts its title, readable text, and links.
func (c *Client) Page(ctx context.Context, rawURL string) (*Page, error) {
	if !Fetchable(rawURL) {
		return nil, fmt.Errorf("cannot fetch internal URL %s", rawURL)
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", rawURL, err)
	}

	resp, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode())
	}

	body := resp.String()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	page := &Page{
		URL:       rawURL,
		Title:     documentTitle(doc, base),
		Links:     documentLinks(doc, base),
		FetchedAt: time.Now(),
	}

	article, err := readability.FromReader(strings.NewReader(body), base)
	if err != nil {
		applog.Error("fetch.readability", err, "url", rawURL)
		page.Text = collapseSpace(doc.Find("body").Text())
		return page, nil
	}

	if article.Title != "" {
		page.Title = article.Title
	}
	page.Text = strings.TrimSpace(article.TextContent)
	if page.Text == "" {
		page.Text = collapseSpace(doc.Find("body").Text())
	}
	return page, nil
}

func documentTitle(doc *goquery.Document, base *url.URL) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = base.Host
	}
	return title
}

func documentLinks(doc *goquery.Document, base *url.URL) []Link {
	var links []Link
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		absolute := resolveURL(href, base)
		if absolute == "" || seen[absolute] {
			return
		}
		seen[absolute] = true

		text := collapseSpace(s.Text())
		if text == "" {
			text = absolute
		}
		links = append(links, Link{Text: text, URL: absolute})
	})

	return links
}

// resolveURL converts a href to an absolute URL, dropping fragments and
// schemes that cannot be navigated to.
func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "vbscript:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Package wiki talks to the EVE University MediaWiki API.
//
// It covers the five read paths the tools need (opensearch, page parse,
// intro extract, category members, backlinks), converts page HTML to
// Markdown, and caches raw API responses in SQLite. Failures surface as
// fixed, client-safe error messages; the underlying cause goes to the
// server log.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/time/rate"
)

// BaseURL is the human-facing wiki root, used to build page links.
const BaseURL = "https://wiki.eveuniversity.org/wiki/"

// Fixed upstream failure messages. These are the only strings a client
// ever sees for a failed fetch.
var (
	ErrTimeout      = errors.New("Request timed out. Wiki may be slow.")
	ErrUpstream     = errors.New("Wiki API returned an error. Please try again.")
	ErrFetchFailed  = errors.New("Request failed. Please try again later.")
	ErrPageMissing  = errors.New("Page does not exist.")
	ErrParseFailure = errors.New("Error parsing page content. The page format may be unexpected.")
)

// Client is a MediaWiki API client with response caching and a
// courtesy throttle so bursts of tool calls don't hammer the wiki.
type Client struct {
	apiURL   string
	http     *http.Client
	throttle *rate.Limiter
	cache    *Cache
	conv     *md.Converter
	log      *slog.Logger
}

// NewClient creates a client for the given api.php endpoint. cache may
// be nil (caching disabled); logger may be nil (default logger).
func NewClient(apiURL string, timeout time.Duration, cache *Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiURL: apiURL,
		http:   &http.Client{Timeout: timeout},
		// Up to 5 requests/second against the wiki, small burst.
		throttle: rate.NewLimiter(rate.Limit(5), 5),
		cache:    cache,
		conv:     md.NewConverter("", true, nil),
		log:      logger,
	}
}

// SearchResult is one opensearch hit.
type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Page is a fully rendered wiki page.
type Page struct {
	Title      string
	URL        string
	Categories []string
	Markdown   string
}

// Summary is the intro extract of a page.
type Summary struct {
	Title   string
	URL     string
	Extract string
}

// PageURL builds the canonical wiki URL for a page title.
func PageURL(title string) string {
	return BaseURL + url.QueryEscape(strings.ReplaceAll(title, " ", "_"))
}

// Search runs an opensearch query in the main namespace.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	body, err := c.fetch(ctx, url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {strconv.Itoa(limit)},
		"namespace": {"0"},
		"format":    {"json"},
	})
	if err != nil {
		return nil, err
	}

	// OpenSearch responds with [query, [titles], [descriptions], [urls]].
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, c.upstreamError("opensearch decode", err, body)
	}
	var titles, descriptions, urls []string
	if len(raw) > 1 {
		_ = json.Unmarshal(raw[1], &titles)
	}
	if len(raw) > 2 {
		_ = json.Unmarshal(raw[2], &descriptions)
	}
	if len(raw) > 3 {
		_ = json.Unmarshal(raw[3], &urls)
	}

	results := make([]SearchResult, 0, len(titles))
	for i, title := range titles {
		r := SearchResult{Title: title, URL: PageURL(title)}
		if i < len(descriptions) {
			r.Description = descriptions[i]
		}
		if i < len(urls) && urls[i] != "" {
			r.URL = urls[i]
		}
		results = append(results, r)
	}
	return results, nil
}

// PageMarkdown fetches a page and converts its HTML to Markdown.
func (c *Client) PageMarkdown(ctx context.Context, title string) (*Page, error) {
	body, err := c.fetch(ctx, url.Values{
		"action":     {"parse"},
		"page":       {title},
		"prop":       {"text|displaytitle|categories"},
		"disabletoc": {"true"},
		"format":     {"json"},
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Error *apiError `json:"error"`
		Parse *struct {
			Text         map[string]string `json:"text"`
			DisplayTitle string            `json:"displaytitle"`
			Categories   []map[string]any  `json:"categories"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.upstreamError("parse decode", err, body)
	}
	if resp.Error != nil {
		// MediaWiki reports unknown pages through the error object.
		c.log.Warn("wiki parse error", "title", title, "code", resp.Error.Code)
		return nil, ErrPageMissing
	}
	if resp.Parse == nil {
		return nil, ErrParseFailure
	}

	html, ok := resp.Parse.Text["*"]
	if !ok {
		return nil, ErrParseFailure
	}
	markdown, err := c.conv.ConvertString(html)
	if err != nil {
		c.log.Warn("html to markdown conversion failed", "title", title, "err", err)
		return nil, ErrParseFailure
	}
	// MediaWiki leaves section edit links behind in the rendered HTML.
	// The converter may escape the brackets, so strip both spellings.
	markdown = strings.ReplaceAll(markdown, "[ edit ]", "")
	markdown = strings.ReplaceAll(markdown, `\[ edit \]`, "")

	page := &Page{
		Title:    title,
		URL:      PageURL(title),
		Markdown: strings.TrimSpace(markdown),
	}
	if resp.Parse.DisplayTitle != "" {
		page.Title = resp.Parse.DisplayTitle
	}
	for _, cat := range resp.Parse.Categories {
		if name, ok := cat["*"].(string); ok {
			page.Categories = append(page.Categories, name)
		}
	}
	return page, nil
}

// Summary fetches the plain-text intro extract of a page.
func (c *Client) Summary(ctx context.Context, title string) (*Summary, error) {
	body, err := c.fetch(ctx, url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"true"},
		"explaintext": {"true"},
		"titles":      {title},
		"format":      {"json"},
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Error *apiError `json:"error"`
		Query *struct {
			Pages map[string]struct {
				Title   string          `json:"title"`
				Extract string          `json:"extract"`
				Missing json.RawMessage `json:"missing"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.upstreamError("extract decode", err, body)
	}
	if resp.Error != nil {
		return nil, ErrUpstream
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return nil, ErrPageMissing
	}

	for _, page := range resp.Query.Pages {
		if page.Missing != nil {
			return nil, ErrPageMissing
		}
		s := &Summary{Title: title, URL: PageURL(title), Extract: strings.TrimSpace(page.Extract)}
		if page.Title != "" {
			s.Title = page.Title
		}
		return s, nil
	}
	return nil, ErrPageMissing
}

// Category lists page titles in a category, main namespace only.
func (c *Client) Category(ctx context.Context, category string, limit int) ([]string, error) {
	body, err := c.fetch(ctx, url.Values{
		"action":      {"query"},
		"list":        {"categorymembers"},
		"cmtitle":     {"Category:" + category},
		"cmlimit":     {strconv.Itoa(limit)},
		"cmnamespace": {"0"},
		"format":      {"json"},
	})
	if err != nil {
		return nil, err
	}
	return c.decodeTitleList(body, "categorymembers")
}

// Backlinks lists page titles that link to the given page.
func (c *Client) Backlinks(ctx context.Context, title string, limit int) ([]string, error) {
	body, err := c.fetch(ctx, url.Values{
		"action":      {"query"},
		"list":        {"backlinks"},
		"bltitle":     {title},
		"bllimit":     {strconv.Itoa(limit)},
		"blnamespace": {"0"},
		"format":      {"json"},
	})
	if err != nil {
		return nil, err
	}
	return c.decodeTitleList(body, "backlinks")
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (c *Client) decodeTitleList(body []byte, listKey string) ([]string, error) {
	var resp struct {
		Error *apiError `json:"error"`
		Query map[string][]struct {
			Title string `json:"title"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.upstreamError("list decode", err, body)
	}
	if resp.Error != nil {
		return nil, ErrUpstream
	}

	members := resp.Query[listKey]
	titles := make([]string, 0, len(members))
	for _, m := range members {
		titles = append(titles, m.Title)
	}
	return titles, nil
}

// fetch issues one GET against the API, consulting the cache first.
// Successful bodies are cached under the encoded query string.
func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, error) {
	key := params.Encode()
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return body, nil
		}
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, ErrFetchFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+key, nil)
	if err != nil {
		return nil, ErrFetchFailed
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Warn("wiki request timed out", "params", key)
			return nil, ErrTimeout
		}
		c.log.Warn("wiki request failed", "params", key, "err", err)
		return nil, ErrFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("wiki returned non-200", "params", key, "status", resp.StatusCode)
		return nil, ErrUpstream
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrFetchFailed
	}

	if c.cache != nil {
		if err := c.cache.Put(key, body); err != nil {
			c.log.Warn("wiki cache write failed", "err", err)
		}
	}
	return body, nil
}

func (c *Client) upstreamError(stage string, err error, body []byte) error {
	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200]
	}
	c.log.Warn("unexpected wiki response", "stage", stage, "err", err, "body", preview)
	return ErrUpstream
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

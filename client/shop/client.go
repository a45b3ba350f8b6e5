package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront.GO/model/cart"
)

// Platform cart routes.
const (
	routeCart   = "/cart.js"
	routeUpdate = "/cart/update.js"
	routeChange = "/cart/change.js"
	routeAdd    = "/cart/add.js"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the storefront root, e.g. https://shop.example.com
	BaseURL string
	// Sections to request alongside every mutation so responses carry the
	// re-rendered fragments.
	Sections []string
	// SectionsURL is the path rendered sections are resolved against.
	SectionsURL string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client is a thin wrapper over the platform's cart API. It performs no retries
// and holds no cart state: every call returns a complete, freshly parsed
// snapshot, and a failed call leaves whatever the caller rendered untouched.
type Client struct {
	base        string
	sections    []string
	sectionsURL string
	http        *http.Client
}

// New creates a Client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	sectionsURL := cfg.SectionsURL
	if sectionsURL == "" {
		sectionsURL = "/"
	}
	return &Client{
		base:        strings.TrimRight(cfg.BaseURL, "/"),
		sections:    cfg.Sections,
		sectionsURL: sectionsURL,
		http:        hc,
	}
}

// FetchCart GETs the current cart and returns its snapshot.
func (c *Client) FetchCart(ctx context.Context) (*cart.Snapshot, error) {
	return c.getSnapshot(ctx, c.base+routeCart)
}

// FetchSection GETs one rendered section fragment for the cart page.
func (c *Client) FetchSection(ctx context.Context, sectionID string) (string, error) {
	u := fmt.Sprintf("%s/cart?section_id=%s", c.base, url.QueryEscape(sectionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", &NetworkError{URL: u, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &NetworkError{URL: u, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: u, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &NetworkError{URL: u, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return string(body), nil
}

// FetchSections fetches several section fragments concurrently, keyed by
// section id. Used to warm the fragment cache on startup.
func (c *Client) FetchSections(ctx context.Context, sectionIDs ...string) (map[string]string, error) {
	out := make(map[string]string, len(sectionIDs))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range sectionIDs {
		id := id
		g.Go(func() error {
			html, err := c.FetchSection(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = html
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLines POSTs a batch of line quantity changes keyed by line key; 0
// removes the line. The returned snapshot is post-mutation state and may carry
// in-band Errors (quantity clamped, line not found) with HTTP 200.
func (c *Client) UpdateLines(ctx context.Context, updates map[string]int) (*cart.Snapshot, error) {
	payload := map[string]interface{}{
		"updates":      updates,
		"sections":     c.sections,
		"sections_url": c.sectionsURL,
	}
	return c.postSnapshot(ctx, c.base+routeUpdate, payload)
}

// ChangeLine POSTs a single-line quantity change addressed by 1-based line
// index, the shape the remove buttons use.
func (c *Client) ChangeLine(ctx context.Context, line int, quantity int) (*cart.Snapshot, error) {
	payload := map[string]interface{}{
		"line":         line,
		"quantity":     quantity,
		"sections":     c.sections,
		"sections_url": c.sectionsURL,
	}
	return c.postSnapshot(ctx, c.base+routeChange, payload)
}

// AddLine adds a single new line (gifts, shipping protection add-ons).
func (c *Client) AddLine(ctx context.Context, variantID string, quantity int, properties map[string]string) (*cart.Snapshot, error) {
	return c.AddLines(ctx, []cart.AddLine{{VariantID: variantID, Quantity: quantity, Properties: properties}})
}

// AddLines adds a batch of new lines in one request (kit adds).
func (c *Client) AddLines(ctx context.Context, lines []cart.AddLine) (*cart.Snapshot, error) {
	payload := map[string]interface{}{
		"items":        lines,
		"sections":     c.sections,
		"sections_url": c.sectionsURL,
	}
	return c.postSnapshot(ctx, c.base+routeAdd, payload)
}

// UpdateNote stores the cart note. The platform echoes the cart back; callers
// that need the snapshot can refetch.
func (c *Client) UpdateNote(ctx context.Context, note string) error {
	_, err := c.postSnapshot(ctx, c.base+routeUpdate, map[string]interface{}{"note": note})
	return err
}

func (c *Client) getSnapshot(ctx context.Context, u string) (*cart.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) postSnapshot(ctx context.Context, u string, payload map[string]interface{}) (*cart.Snapshot, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ParseError{URL: u, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*cart.Snapshot, error) {
	u := req.URL.String()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: u, Err: err}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &NetworkError{URL: u, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{URL: u, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		// add.js rejects with 4xx and {status, message, description}; normalize
		// into the in-band errors shape so callers handle one contract.
		snap := &cart.Snapshot{Errors: map[string]string{}}
		if d, ok := raw["description"].(string); ok && d != "" {
			snap.Errors["cart"] = d
		} else if m, ok := raw["message"].(string); ok {
			snap.Errors["cart"] = m
		} else {
			snap.Errors["cart"] = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return snap, nil
	}
	snap, err := cart.Decode(raw)
	if err != nil {
		return nil, &ParseError{URL: u, Err: err}
	}
	return snap, nil
}

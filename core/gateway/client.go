package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/fieldmask"
)

// =============================================================================
// Configuration
// =============================================================================

const (
	DefaultBaseURL          = "https://firestore.googleapis.com/v1"
	DefaultCollectionRoot   = "artifacts"
	DefaultCollection       = "protocols"
	DefaultPrimarySegment   = "public"
	DefaultSecondarySegment = "resistance"
	DefaultTimeout          = 15 * time.Second
	DefaultCacheTTL         = 30 * time.Second

	defaultCacheCounters = 10_000
	defaultCacheMaxCost  = 1_000
	defaultCacheBuffer   = 64
)

// Config holds the remote store coordinates. The two namespace segments
// are the wire names of the primary and secondary partitions.
type Config struct {
	ProjectID        string
	AppID            string
	APIKey           string
	BaseURL          string
	CollectionRoot   string
	Collection       string
	PrimarySegment   string
	SecondarySegment string
	Timeout          time.Duration
	CacheTTL         time.Duration
	Logger           *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults. ProjectID and
// AppID have no defaults and must be supplied.
func DefaultConfig() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		CollectionRoot:   DefaultCollectionRoot,
		Collection:       DefaultCollection,
		PrimarySegment:   DefaultPrimarySegment,
		SecondarySegment: DefaultSecondarySegment,
		Timeout:          DefaultTimeout,
		CacheTTL:         DefaultCacheTTL,
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CollectionRoot == "" {
		cfg.CollectionRoot = DefaultCollectionRoot
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.PrimarySegment == "" {
		cfg.PrimarySegment = DefaultPrimarySegment
	}
	if cfg.SecondarySegment == "" {
		cfg.SecondarySegment = DefaultSecondarySegment
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// =============================================================================
// Client
// =============================================================================

// Client implements Store against the remote typed-value REST API.
type Client struct {
	config Config
	client *http.Client
	cache  *ristretto.Cache
	logger *slog.Logger
}

type cachedFetch struct {
	doc document.Document
	ns  Namespace
}

// NewClient creates a remote store client.
func NewClient(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if cfg.ProjectID == "" {
		return nil, errors.New("gateway: project id required")
	}
	if cfg.AppID == "" {
		return nil, errors.New("gateway: app id required")
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultCacheCounters,
		MaxCost:     defaultCacheMaxCost,
		BufferItems: defaultCacheBuffer,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: cache init: %w", err)
	}

	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: cfg.Logger,
	}, nil
}

// Close releases the read cache.
func (c *Client) Close() {
	c.cache.Close()
}

func (c *Client) segment(ns Namespace) string {
	if ns == NamespaceSecondary {
		return c.config.SecondarySegment
	}
	return c.config.PrimarySegment
}

func (c *Client) collectionURL(ns Namespace) string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s/%s/%s/data/%s",
		c.config.BaseURL, c.config.ProjectID, c.config.CollectionRoot,
		c.config.AppID, c.segment(ns), c.config.Collection)
}

func (c *Client) documentURL(ns Namespace, id string) string {
	return c.collectionURL(ns) + "/" + url.PathEscape(id)
}

func (c *Client) query(extra url.Values) string {
	q := url.Values{}
	if c.config.APIKey != "" {
		q.Set("key", c.config.APIKey)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// =============================================================================
// Fetch
// =============================================================================

// Fetch tries the primary namespace, then the secondary. The namespace
// that satisfied the fetch is returned and must be used for every later
// write of this id.
func (c *Client) Fetch(ctx context.Context, id string) (document.Document, Namespace, error) {
	for _, ns := range []Namespace{NamespacePrimary, NamespaceSecondary} {
		doc, err := c.fetchOne(ctx, ns, id)
		if err == nil {
			c.cache.SetWithTTL(id, cachedFetch{doc: document.CloneDocument(doc), ns: ns}, 1, c.config.CacheTTL)
			return doc, ns, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, ns, err
		}
	}
	return nil, NamespacePrimary, fmt.Errorf("fetch %q: %w", id, ErrNotFound)
}

// CachedFetch serves reads that tolerate a short staleness window, such
// as one-shot summary lookups. Cache hits return a private clone.
func (c *Client) CachedFetch(ctx context.Context, id string) (document.Document, Namespace, error) {
	if hit, ok := c.cache.Get(id); ok {
		if cached, ok := hit.(cachedFetch); ok {
			return document.CloneDocument(cached.doc), cached.ns, nil
		}
	}
	return c.Fetch(ctx, id)
}

func (c *Client) fetchOne(ctx context.Context, ns Namespace, id string) (document.Document, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.documentURL(ns, id)+c.query(nil), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %q from %s: %w", id, ns, err)
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status < 200 || status > 299:
		return nil, fmt.Errorf("fetch %q from %s: status %d: %s", id, ns, status, truncateBody(body))
	}

	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %q from %s: %w", id, ns, err)
	}
	return doc, nil
}

// =============================================================================
// Writes
// =============================================================================

// Patch sends a mask-scoped partial update. Mask entries are domain
// paths and translate verbatim to wire field paths.
func (c *Client) Patch(ctx context.Context, id string, ns Namespace, update fieldmask.Update) error {
	body, err := EncodeDocument(update.Partial)
	if err != nil {
		return fmt.Errorf("patch %q: %w", id, err)
	}

	extra := url.Values{}
	for _, entry := range update.Mask {
		extra.Add("updateMask.fieldPaths", entry)
	}

	status, respBody, err := c.do(ctx, http.MethodPatch, c.documentURL(ns, id)+c.query(extra), body)
	if err != nil {
		return fmt.Errorf("patch %q: %w", id, err)
	}
	if status < 200 || status > 299 {
		return &RemoteWriteError{Status: status, Body: truncateBody(respBody)}
	}

	c.cache.Del(id)
	c.logger.Debug("patched document", "id", id, "namespace", string(ns), "mask", update.Mask)
	return nil
}

// Delete removes the document from its namespace. A missing document
// counts as success; deletion is idempotent from the caller's view.
func (c *Client) Delete(ctx context.Context, id string, ns Namespace) error {
	status, body, err := c.do(ctx, http.MethodDelete, c.documentURL(ns, id)+c.query(nil), nil)
	if err != nil {
		return fmt.Errorf("delete %q: %w", id, err)
	}
	if status != http.StatusNotFound && (status < 200 || status > 299) {
		return &RemoteWriteError{Status: status, Body: truncateBody(body)}
	}

	c.cache.Del(id)
	c.logger.Debug("deleted document", "id", id, "namespace", string(ns))
	return nil
}

// Create writes a complete document. An unmasked patch overwrites the
// whole document and creates it when absent.
func (c *Client) Create(ctx context.Context, id string, ns Namespace, doc document.Document) error {
	body, err := EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("create %q: %w", id, err)
	}

	status, respBody, err := c.do(ctx, http.MethodPatch, c.documentURL(ns, id)+c.query(nil), body)
	if err != nil {
		return fmt.Errorf("create %q: %w", id, err)
	}
	if status < 200 || status > 299 {
		return &RemoteWriteError{Status: status, Body: truncateBody(respBody)}
	}

	c.cache.Del(id)
	c.logger.Info("created document", "id", id, "namespace", string(ns))
	return nil
}

// =============================================================================
// Listing
// =============================================================================

// List returns one summary row per document in the namespace, following
// pagination until exhausted.
func (c *Client) List(ctx context.Context, ns Namespace) ([]Summary, error) {
	var summaries []Summary
	pageToken := ""

	for {
		extra := url.Values{}
		if pageToken != "" {
			extra.Set("pageToken", pageToken)
		}

		status, body, err := c.do(ctx, http.MethodGet, c.collectionURL(ns)+c.query(extra), nil)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", ns, err)
		}
		if status < 200 || status > 299 {
			return nil, fmt.Errorf("list %s: status %d: %s", ns, status, truncateBody(body))
		}

		page, next, err := decodeListPage(body)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", ns, err)
		}
		summaries = append(summaries, page...)

		if next == "" {
			return summaries, nil
		}
		pageToken = next
	}
}

// =============================================================================
// HTTP plumbing
// =============================================================================

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

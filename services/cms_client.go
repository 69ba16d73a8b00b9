package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio-backend/metrics"
	"portfolio-backend/models"
)

// ArticleScope selects which CMS query a list call issues.
type ArticleScope string

const (
	ScopeAll   ArticleScope = "all"
	ScopeDraft ArticleScope = "draft"

	maxPayloadBytes = 8 << 20
)

// CMSClient reads articles from the headless CMS (Strapi REST API).
type CMSClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics

	maxPayload int64
}

// CMSOption customizes a CMSClient.
type CMSOption func(*CMSClient)

func WithHTTPClient(c *http.Client) CMSOption {
	return func(cl *CMSClient) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithCMSLogger(l *slog.Logger) CMSOption {
	return func(cl *CMSClient) {
		if l != nil {
			cl.logger = l
		}
	}
}

func WithCMSMetrics(m *metrics.Metrics) CMSOption {
	return func(cl *CMSClient) { cl.metrics = m }
}

// NewCMSClient builds a client for baseURL (for example
// https://cms.example.org/api). Every request is bounded by timeout.
func NewCMSClient(baseURL, apiKey string, timeout time.Duration, opts ...CMSOption) *CMSClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &CMSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		http:    &http.Client{},
		logger:  slog.Default(),

		maxPayload: maxPayloadBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAllArticles returns the "all articles" query. Failures are logged and
// yield an empty list.
func (c *CMSClient) FetchAllArticles(ctx context.Context) []models.ArticleSummary {
	return c.fetchOrEmpty(ctx, ScopeAll)
}

// FetchDraftArticles returns the draft-status query. Failures are logged and
// yield an empty list.
func (c *CMSClient) FetchDraftArticles(ctx context.Context) []models.ArticleSummary {
	return c.fetchOrEmpty(ctx, ScopeDraft)
}

func (c *CMSClient) fetchOrEmpty(ctx context.Context, scope ArticleScope) []models.ArticleSummary {
	articles, err := c.ListArticles(ctx, scope)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.logger.Warn("cms payload rejected", "query", string(scope), "fields", verr.Fields)
		} else {
			c.logger.Error("cms fetch failed", "query", string(scope), "error", err)
		}
		return []models.ArticleSummary{}
	}
	return articles
}

// ListArticles issues one list query and validates the payload.
func (c *CMSClient) ListArticles(ctx context.Context, scope ArticleScope) ([]models.ArticleSummary, error) {
	params := url.Values{}
	if scope == ScopeDraft {
		params.Set("status", "draft")
	}

	start := time.Now()
	raw, err := c.get(ctx, "/articles", params)
	if err != nil {
		c.metrics.ObserveCMS(string(scope), metrics.OutcomeTransportError, time.Since(start))
		return nil, fmt.Errorf("list %s articles: %w", scope, err)
	}

	articles, err := ValidateArticleList(raw)
	if err != nil {
		c.metrics.ObserveCMS(string(scope), metrics.OutcomeInvalid, time.Since(start))
		return nil, fmt.Errorf("list %s articles: %w", scope, err)
	}

	c.metrics.ObserveCMS(string(scope), metrics.OutcomeOK, time.Since(start))
	c.logger.Debug("cms list fetched", "query", string(scope), "count", len(articles))
	return articles, nil
}

// FetchArticleBody loads one fully populated article by documentId. A missing
// article yields ErrArticleNotFound; anything else is a transport or
// validation error.
func (c *CMSClient) FetchArticleBody(ctx context.Context, documentID string) (*models.ArticleBody, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, ErrArticleNotFound
	}

	params := url.Values{}
	params.Set("populate", "*")

	start := time.Now()
	raw, err := c.get(ctx, "/articles/"+url.PathEscape(documentID), params)
	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound {
			c.metrics.ObserveCMS("body", metrics.OutcomeNotFound, time.Since(start))
			return nil, ErrArticleNotFound
		}
		c.metrics.ObserveCMS("body", metrics.OutcomeTransportError, time.Since(start))
		return nil, fmt.Errorf("fetch article %s: %w", documentID, err)
	}

	body, err := ValidateArticle(raw)
	switch {
	case errors.Is(err, ErrArticleNotFound):
		c.metrics.ObserveCMS("body", metrics.OutcomeNotFound, time.Since(start))
		return nil, ErrArticleNotFound
	case err != nil:
		c.metrics.ObserveCMS("body", metrics.OutcomeInvalid, time.Since(start))
		return nil, fmt.Errorf("fetch article %s: %w", documentID, err)
	}

	c.metrics.ObserveCMS("body", metrics.OutcomeOK, time.Since(start))
	return body, nil
}

func (c *CMSClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(raw)) > c.maxPayload {
		return nil, fmt.Errorf("%w: more than %d bytes from %q", ErrPayloadTooLarge, c.maxPayload, endpoint)
	}
	return raw, nil
}

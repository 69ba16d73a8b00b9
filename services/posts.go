package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-backend/models"
)

// ErrPostNotFound means no article in the summary list carries the slug.
var ErrPostNotFound = errors.New("post not found")

// ArticleReader is everything the HTTP layer reads from the CMS.
type ArticleReader interface {
	ArticleSource
	FetchArticleBody(ctx context.Context, documentID string) (*models.ArticleBody, error)
}

var _ ArticleReader = (*CMSClient)(nil)

// PostService assembles blog post pages from CMS data.
type PostService struct {
	cms      ArticleReader
	renderer *Renderer
	siteURL  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewPostService(cms ArticleReader, renderer *Renderer, siteURL string, logger *slog.Logger) *PostService {
	if renderer == nil {
		renderer = NewRenderer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		cms:      cms,
		renderer: renderer,
		siteURL:  strings.TrimRight(siteURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// ListPostMeta returns the metadata of every published article, newest
// first.
func (s *PostService) ListPostMeta(ctx context.Context) []models.PostMeta {
	articles := s.publishedArticles(ctx)
	out := make([]models.PostMeta, 0, len(articles))
	for _, a := range articles {
		out = append(out, models.PostMeta{
			BlogID:      a.DocumentID,
			Slug:        a.Slug,
			Title:       a.Title,
			PublishedAt: a.PublishedAt,
		})
	}
	return out
}

// GetPost resolves slug to a documentId through the published summaries,
// fetches the body and merges both. It returns ErrPostNotFound when the slug
// is unknown or not published yet and ErrArticleNotFound when the body is
// gone.
func (s *PostService) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	meta, ok := findBySlug(s.publishedArticles(ctx), slug)
	if !ok {
		return nil, ErrPostNotFound
	}

	body, err := s.cms.FetchArticleBody(ctx, meta.DocumentID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		BlogID:      meta.DocumentID,
		Slug:        meta.Slug,
		Title:       firstNonEmpty(body.Title, meta.Title, "Untitled"),
		Description: firstNonEmpty(body.Description, meta.Description),
		UpdatedAt:   body.UpdatedAt,
		Author:      body.Author,
		Blocks:      body.Blocks,
		TweetIDs:    []string{},
	}
	// meta is published, so its publishedAt is set.
	post.PublishedAt = *meta.PublishedAt
	if body.PublishedAt != nil {
		post.PublishedAt = *body.PublishedAt
	}
	if post.Blocks == nil {
		post.Blocks = []models.Block{}
	}
	if s.siteURL != "" {
		post.URL = fmt.Sprintf("%s/blog/%s", s.siteURL, meta.Slug)
	}

	rendered, err := s.renderer.Render(joinBlocks(post.Blocks))
	if err != nil {
		s.logger.Warn("render post failed", "slug", slug, "error", err)
	} else {
		post.HTML = rendered.HTML
		post.TweetIDs = rendered.TweetIDs
		post.ReadingMinutes = rendered.ReadingMinutes
	}

	return post, nil
}

// publishedArticles applies the same publication rule as /api/publication to
// the "all" query.
func (s *PostService) publishedArticles(ctx context.Context) []models.ArticleSummary {
	return ResolvePublication(s.cms.FetchAllArticles(ctx), nil, s.now()).Published
}

func findBySlug(articles []models.ArticleSummary, slug string) (models.ArticleSummary, bool) {
	if slug == "" {
		return models.ArticleSummary{}, false
	}
	for _, a := range articles {
		if a.Slug == slug && a.DocumentID != "" {
			return a, true
		}
	}
	return models.ArticleSummary{}, false
}

func joinBlocks(blocks []models.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b.Body) != "" {
			parts = append(parts, b.Body)
		}
	}
	return strings.Join(parts, "\n\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

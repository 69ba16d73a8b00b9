package controllers

import (
	"context"
	"log/slog"

	"portfolio-backend/models"
	"portfolio-backend/services"
)

// Publisher computes the published / coming-soon split.
type Publisher interface {
	Resolve(ctx context.Context) models.PublicationView
}

// PostReader assembles blog post pages.
type PostReader interface {
	ListPostMeta(ctx context.Context) []models.PostMeta
	GetPost(ctx context.Context, slug string) (*models.Post, error)
}

// ViewTracker records and reads page views.
type ViewTracker interface {
	Increment(slug string)
	GetAllCounts(ctx context.Context) ([]models.ViewCount, error)
	GetViewCount(ctx context.Context, slug string) int64
	Ping(ctx context.Context) error
}

var (
	_ Publisher   = (*services.Resolver)(nil)
	_ PostReader  = (*services.PostService)(nil)
	_ ViewTracker = (*services.ViewCounter)(nil)
)

// Handler serves the blog API.
type Handler struct {
	cms       services.ArticleReader
	publisher Publisher
	posts     PostReader
	views     ViewTracker
	logger    *slog.Logger
}

func NewHandler(cms services.ArticleReader, publisher Publisher, posts PostReader, views ViewTracker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cms:       cms,
		publisher: publisher,
		posts:     posts,
		views:     views,
		logger:    logger,
	}
}

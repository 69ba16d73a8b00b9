package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolio-backend/models"
)

// ArticleSource is the part of the CMS client the resolver depends on. Both
// calls degrade to an empty list instead of failing.
type ArticleSource interface {
	FetchAllArticles(ctx context.Context) []models.ArticleSummary
	FetchDraftArticles(ctx context.Context) []models.ArticleSummary
}

var _ ArticleSource = (*CMSClient)(nil)

// Resolver splits CMS articles into published and coming-soon posts.
type Resolver struct {
	source ArticleSource
	logger *slog.Logger
	now    func() time.Time
}

func NewResolver(source ArticleSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, logger: logger, now: time.Now}
}

// WithClock replaces the resolver's notion of "now".
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve runs both CMS queries in parallel and reconciles them. It never
// fails: a query that could not be served contributes nothing.
func (r *Resolver) Resolve(ctx context.Context) models.PublicationView {
	var all, drafts []models.ArticleSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all = r.source.FetchAllArticles(gctx)
		return nil
	})
	g.Go(func() error {
		drafts = r.source.FetchDraftArticles(gctx)
		return nil
	})
	_ = g.Wait()

	now := r.now()
	view := ResolvePublication(all, drafts, now)

	if dropped := countScheduledOutsideDrafts(all, drafts, now); dropped > 0 {
		r.logger.Debug("scheduled posts missing from draft query", "count", dropped)
	}
	r.logger.Debug("publication resolved",
		"all", len(all),
		"drafts", len(drafts),
		"published", len(view.Published),
		"coming_soon", len(view.ComingSoon))

	return view
}

// ResolvePublication is the reconciliation rule.
//
// published: items with publishedAt <= now, newest first, one per documentId.
// comingSoon: draft items with no publishedAt (or one in the future) whose
// documentId is not published. Drafts without a documentId never collide.
func ResolvePublication(all, drafts []models.ArticleSummary, now time.Time) models.PublicationView {
	published := make([]models.ArticleSummary, 0, len(all))
	for _, a := range all {
		if a.IsPublishedAt(now) {
			published = append(published, a)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].PublishedAt.After(*published[j].PublishedAt)
	})

	publishedIDs := make(map[string]struct{}, len(published))
	deduped := published[:0]
	for _, a := range published {
		if a.DocumentID != "" {
			if _, seen := publishedIDs[a.DocumentID]; seen {
				continue
			}
			publishedIDs[a.DocumentID] = struct{}{}
		}
		deduped = append(deduped, a)
	}
	published = deduped

	comingSoon := make([]models.ArticleSummary, 0, len(drafts))
	upcomingIDs := map[string]struct{}{}
	for _, d := range drafts {
		if d.PublishedAt != nil && !d.PublishedAt.After(now) {
			continue
		}
		if d.DocumentID != "" {
			if _, ok := publishedIDs[d.DocumentID]; ok {
				continue
			}
			if _, ok := upcomingIDs[d.DocumentID]; ok {
				continue
			}
			upcomingIDs[d.DocumentID] = struct{}{}
		}
		comingSoon = append(comingSoon, d)
	}

	return models.PublicationView{Published: published, ComingSoon: comingSoon}
}

// countScheduledOutsideDrafts counts future-dated articles from the "all"
// query the draft query did not return; those end up in neither bucket.
func countScheduledOutsideDrafts(all, drafts []models.ArticleSummary, now time.Time) int {
	inDrafts := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		if d.DocumentID != "" {
			inDrafts[d.DocumentID] = struct{}{}
		}
	}
	n := 0
	for _, a := range all {
		if a.PublishedAt == nil || !a.PublishedAt.After(now) {
			continue
		}
		if _, ok := inDrafts[a.DocumentID]; !ok {
			n++
		}
	}
	return n
}

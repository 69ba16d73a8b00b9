package models

import "time"

// ArticleSummary is the metadata the CMS returns for one article.
type ArticleSummary struct {
	ID          int64      `json:"id,omitempty"`
	DocumentID  string     `json:"documentId"`
	Slug        string     `json:"slug,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	PublishedAt *time.Time `json:"publishedAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// IsPublishedAt reports whether the article is live at the given instant.
func (a ArticleSummary) IsPublishedAt(now time.Time) bool {
	return a.PublishedAt != nil && !a.PublishedAt.After(now)
}

type Author struct {
	Name string `json:"name"`
}

// Block is one content segment of an article; Body holds raw markup.
type Block struct {
	Body string `json:"body"`
}

// ArticleBody is a fully populated article.
type ArticleBody struct {
	ArticleSummary
	Author *Author `json:"author,omitempty"`
	Blocks []Block `json:"blocks"`
}

// PublicationView is derived per request and never stored.
type PublicationView struct {
	Published  []ArticleSummary `json:"published"`
	ComingSoon []ArticleSummary `json:"comingSoon"`
}

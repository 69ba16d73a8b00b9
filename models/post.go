package models

import "time"

// Post is what the blog post page consumes: the CMS body merged with the
// metadata used to find it plus the rendered content.
type Post struct {
	BlogID         string     `json:"blogId"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	PublishedAt    time.Time  `json:"publishedAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	Author         *Author    `json:"author,omitempty"`
	Blocks         []Block    `json:"blocks"`
	HTML           string     `json:"html"`
	TweetIDs       []string   `json:"tweetIds"`
	ReadingMinutes int        `json:"readingMinutes"`
	URL            string     `json:"url,omitempty"`
}

// PostMeta is the list entry returned by /api/blog-posts.
type PostMeta struct {
	BlogID      string     `json:"blogId"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"publishedAt"`
}

package models

// ViewCount is the number of recorded page views for a slug.
type ViewCount struct {
	Slug  string `bson:"slug" json:"slug"`
	Count int64  `bson:"count" json:"count"`
}

package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrArticleNotFound is returned when the CMS has no article for an id.
var ErrArticleNotFound = errors.New("article not found")

// ErrPayloadTooLarge is returned when a CMS response exceeds the read limit.
var ErrPayloadTooLarge = errors.New("cms payload too large")

// UpstreamError represents an unexpected HTTP status from the CMS.
type UpstreamError struct {
	StatusCode int
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %q", e.StatusCode, e.URL)
}

// ValidationError lists the field paths of a CMS payload that failed the
// expected shape.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid cms payload: " + strings.Join(e.Fields, ", ")
}

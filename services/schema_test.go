package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArticleList(t *testing.T) {
	raw := []byte(`{"data":[
		{"id":1,"documentId":"a","title":"Hello","description":null,"slug":"hello",
		 "publishedAt":"2024-01-01T10:00:00.000Z","updatedAt":"2024-01-02T10:00:00.000Z","createdAt":"2023-12-31"},
		{"id":2,"documentId":"b","title":"Draft","slug":null,"publishedAt":null}
	]}`)

	articles, err := ValidateArticleList(raw)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, int64(1), articles[0].ID)
	assert.Equal(t, "a", articles[0].DocumentID)
	assert.Equal(t, "hello", articles[0].Slug)
	require.NotNil(t, articles[0].PublishedAt)
	assert.True(t, articles[0].PublishedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	require.NotNil(t, articles[0].CreatedAt)
	assert.Equal(t, "2023-12-31", articles[0].CreatedAt.Format("2006-01-02"))

	assert.Empty(t, articles[1].Slug)
	assert.Nil(t, articles[1].PublishedAt)
}

func TestValidateArticleList_ToleratesExtraAttributes(t *testing.T) {
	raw := []byte(`{"data":[{"documentId":"a","title":"Hello","locale":"en","cover":{"url":"/x.png"}}],
		"meta":{"pagination":{"page":1,"pageSize":25,"total":1}}}`)

	articles, err := ValidateArticleList(raw)

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Hello", articles[0].Title)
}

func TestValidateArticleList_NullData(t *testing.T) {
	articles, err := ValidateArticleList([]byte(`{"data":null}`))
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestValidateArticleList_MissingTitle(t *testing.T) {
	raw := []byte(`{"data":[{"documentId":"a","title":"ok"},{"documentId":"b"}]}`)

	_, err := ValidateArticleList(raw)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
	require.Len(t, verr.Fields, 1)
	assert.Contains(t, verr.Fields[0], "[1]")
	assert.True(t, strings.HasSuffix(verr.Fields[0], "title"), verr.Fields[0])
}

func TestValidateArticleList_BadTimestamp(t *testing.T) {
	raw := []byte(`{"data":[{"documentId":"a","title":"x","publishedAt":"not a date"}]}`)

	_, err := ValidateArticleList(raw)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, strings.HasSuffix(verr.Fields[0], "publishedAt"), verr.Fields[0])
}

func TestValidateArticleList_WrongType(t *testing.T) {
	raw := []byte(`{"data":[{"documentId":"a","title":42}]}`)

	_, err := ValidateArticleList(raw)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields[0], "title")
}

func TestValidateArticleList_NotJSON(t *testing.T) {
	_, err := ValidateArticleList([]byte(`<html>gateway timeout</html>`))

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestValidateArticle(t *testing.T) {
	raw := []byte(`{"data":{"documentId":"a","title":"Hello","slug":"hello",
		"publishedAt":"2024-01-01T00:00:00Z","author":{"name":"Daniel"},
		"blocks":[{"body":"# One"},{"body":"two"}]}}`)

	body, err := ValidateArticle(raw)
	require.NoError(t, err)

	assert.Equal(t, "Hello", body.Title)
	require.NotNil(t, body.Author)
	assert.Equal(t, "Daniel", body.Author.Name)
	require.Len(t, body.Blocks, 2)
	assert.Equal(t, "# One", body.Blocks[0].Body)
}

func TestValidateArticle_NullDataIsNotFound(t *testing.T) {
	_, err := ValidateArticle([]byte(`{"data":null}`))
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestValidateArticle_BlockWithoutBody(t *testing.T) {
	_, err := ValidateArticle([]byte(`{"data":{"documentId":"a","title":"x","blocks":[{}]}}`))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields[0], "blocks[0]")
}

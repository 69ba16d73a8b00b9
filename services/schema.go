package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"

	"portfolio-backend/models"
)

// cmsArticle mirrors one record of the CMS `data` array. Pointers keep
// "absent" apart from "empty" so the validator can check presence.
type cmsArticle struct {
	ID          *int64     `json:"id"`
	DocumentID  *string    `json:"documentId"`
	Title       *string    `json:"title" validate:"required"`
	Description *string    `json:"description"`
	Slug        *string    `json:"slug"`
	PublishedAt *string    `json:"publishedAt" validate:"omitempty,timestamp"`
	UpdatedAt   *string    `json:"updatedAt" validate:"omitempty,timestamp"`
	CreatedAt   *string    `json:"createdAt" validate:"omitempty,timestamp"`
	Author      *cmsAuthor `json:"author"`
	Blocks      []cmsBlock `json:"blocks" validate:"omitempty,dive"`
}

type cmsAuthor struct {
	Name string `json:"name"`
}

type cmsBlock struct {
	Body *string `json:"body" validate:"required"`
}

type cmsListEnvelope struct {
	Data []cmsArticle `json:"data" validate:"omitempty,dive"`
}

type cmsSingleEnvelope struct {
	Data *cmsArticle `json:"data"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func schemaValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
			_, err := parseTimestamp(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// ValidateArticleList checks a `{ data: [...] }` payload and converts it to
// summaries. A null or missing data array is an empty list.
func ValidateArticleList(raw []byte) ([]models.ArticleSummary, error) {
	var env cmsListEnvelope
	if err := decodePayload(raw, &env); err != nil {
		return nil, err
	}
	if err := structErrors(schemaValidator().Struct(env)); err != nil {
		return nil, err
	}

	out := make([]models.ArticleSummary, 0, len(env.Data))
	for _, rec := range env.Data {
		out = append(out, rec.summary())
	}
	return out, nil
}

// ValidateArticle checks a `{ data: {...} }` payload. A null data object is
// reported as ErrArticleNotFound.
func ValidateArticle(raw []byte) (*models.ArticleBody, error) {
	var env cmsSingleEnvelope
	if err := decodePayload(raw, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, ErrArticleNotFound
	}
	if err := structErrors(schemaValidator().Struct(env)); err != nil {
		return nil, err
	}

	body := &models.ArticleBody{
		ArticleSummary: env.Data.summary(),
		Blocks:         make([]models.Block, 0, len(env.Data.Blocks)),
	}
	if env.Data.Author != nil {
		body.Author = &models.Author{Name: env.Data.Author.Name}
	}
	for _, b := range env.Data.Blocks {
		body.Blocks = append(body.Blocks, models.Block{Body: deref(b.Body)})
	}
	return body, nil
}

func decodePayload(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "(root)"
			}
			return &ValidationError{Fields: []string{field}}
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return &ValidationError{Fields: []string{"(root)"}}
		}
		return fmt.Errorf("decode cms payload: %w", err)
	}
	return nil
}

func structErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate cms payload: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe.Namespace()))
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the envelope type name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (r cmsArticle) summary() models.ArticleSummary {
	s := models.ArticleSummary{
		DocumentID:  deref(r.DocumentID),
		Slug:        deref(r.Slug),
		Title:       deref(r.Title),
		Description: deref(r.Description),
		PublishedAt: timePtr(r.PublishedAt),
		UpdatedAt:   timePtr(r.UpdatedAt),
		CreatedAt:   timePtr(r.CreatedAt),
	}
	if r.ID != nil {
		s.ID = *r.ID
	}
	return s
}

func parseTimestamp(s string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
}

func timePtr(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t, err := parseTimestamp(*s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

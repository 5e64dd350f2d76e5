package articles

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"akili/pkg/models"
)

var (
	ErrEmptyPatch      = errors.New("no fields to update")
	ErrInvalidStatus   = errors.New("status must be one of: published, draft, scheduled")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrEmptyContent    = errors.New("content must not be empty")
	ErrEmptyCategory   = errors.New("category must not be empty")
	ErrMissingSchedule = errors.New("scheduled articles need a scheduledDate")
)

// ArticlePatch lists the fields an editor may change. Nil means unchanged.
type ArticlePatch struct {
	Title          *string    `json:"title"`
	Content        *string    `json:"content"`
	Excerpt        *string    `json:"excerpt"`
	Author         *string    `json:"author"`
	PublishDate    *string    `json:"publishDate"`
	Category       *string    `json:"category"`
	Subcategory    *string    `json:"subcategory"`
	ImageURL       *string    `json:"imageUrl"`
	Tags           *[]string  `json:"tags"`
	Status         *string    `json:"status"`
	Featured       *bool      `json:"featured"`
	SEOTitle       *string    `json:"seoTitle"`
	SEODescription *string    `json:"seoDescription"`
	SEOKeywords    *[]string  `json:"seoKeywords"`
	ScheduledDate  *time.Time `json:"scheduledDate"`
}

func (p ArticlePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Excerpt == nil && p.Author == nil &&
		p.PublishDate == nil && p.Category == nil && p.Subcategory == nil && p.ImageURL == nil &&
		p.Tags == nil && p.Status == nil && p.Featured == nil && p.SEOTitle == nil &&
		p.SEODescription == nil && p.SEOKeywords == nil && p.ScheduledDate == nil
}

// Validate checks the patch on its own.
func (p ArticlePatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return ErrEmptyContent
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Status != nil && !models.ValidStatus(*p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ValidateAgainst checks the patch in the context of the stored record.
func (p ArticlePatch) ValidateAgainst(existing *models.Article) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Status != nil && *p.Status == models.StatusScheduled &&
		p.ScheduledDate == nil && existing.ScheduledDate == nil {
		return ErrMissingSchedule
	}
	return nil
}

// assignments returns the SET clauses for the non-nil fields. A new content
// also refreshes read_time.
func (p ArticlePatch) assignments() ([]string, []any, error) {
	var sets []string
	var args []any

	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	addJSON := func(col string, v []string) error {
		if v == nil {
			v = []string{}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", col, err)
		}
		add(col, string(b))
		return nil
	}

	if p.Title != nil {
		add("title", strings.TrimSpace(*p.Title))
	}
	if p.Content != nil {
		add("content", *p.Content)
		add("read_time", ReadTime(*p.Content))
	}
	if p.Excerpt != nil {
		add("excerpt", *p.Excerpt)
	}
	if p.Author != nil {
		add("author", *p.Author)
	}
	if p.PublishDate != nil {
		add("publish_date", *p.PublishDate)
	}
	if p.Category != nil {
		add("category", strings.TrimSpace(*p.Category))
	}
	if p.Subcategory != nil {
		add("subcategory", nullString(*p.Subcategory))
	}
	if p.ImageURL != nil {
		add("image_url", *p.ImageURL)
	}
	if p.Tags != nil {
		if err := addJSON("tags", *p.Tags); err != nil {
			return nil, nil, err
		}
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Featured != nil {
		add("featured", *p.Featured)
	}
	if p.SEOTitle != nil {
		add("seo_title", nullString(*p.SEOTitle))
	}
	if p.SEODescription != nil {
		add("seo_description", nullString(*p.SEODescription))
	}
	if p.SEOKeywords != nil {
		if err := addJSON("seo_keywords", *p.SEOKeywords); err != nil {
			return nil, nil, err
		}
	}
	if p.ScheduledDate != nil {
		add("scheduled_date", p.ScheduledDate.UTC())
	}
	return sets, args, nil
}

// BulkPatch is the subset of fields the dashboard toggles across a selection.
type BulkPatch struct {
	Status   *string `json:"status"`
	Featured *bool   `json:"featured"`
}

func (p BulkPatch) Validate() error {
	if p.Status == nil && p.Featured == nil {
		return ErrEmptyPatch
	}
	if p.Status != nil && !models.ValidStatus(*p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func (p BulkPatch) assignments() ([]string, []any) {
	var sets []string
	var args []any
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *p.Status)
	}
	if p.Featured != nil {
		sets = append(sets, "featured = ?")
		args = append(args, *p.Featured)
	}
	return sets, args
}

// IsValidationError reports whether err came from patch or draft validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyPatch) || errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyTitle) || errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrEmptyCategory) || errors.Is(err, ErrMissingSchedule)
}

package models

import "time"

// Article statuses.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
)

type Article struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt"`
	Author         string     `json:"author"`
	AuthorID       string     `json:"authorId,omitempty"`
	PublishDate    string     `json:"publishDate"`
	Category       string     `json:"category"`
	Subcategory    string     `json:"subcategory,omitempty"`
	ImageURL       string     `json:"imageUrl"`
	Tags           []string   `json:"tags"`
	ViewCount      int        `json:"viewCount"`
	ReadTime       string     `json:"readTime"`
	Status         string     `json:"status"`
	Featured       bool       `json:"featured"`
	SourceURL      string     `json:"sourceUrl,omitempty"`
	SEOTitle       string     `json:"seoTitle,omitempty"`
	SEODescription string     `json:"seoDescription,omitempty"`
	SEOKeywords    []string   `json:"seoKeywords,omitempty"`
	ScheduledDate  *time.Time `json:"scheduledDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPublished, StatusDraft, StatusScheduled:
		return true
	}
	return false
}

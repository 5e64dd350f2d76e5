package articles

import (
	"strings"
	"time"

	"akili/pkg/models"
)

// Draft is the admin "new article" form.
type Draft struct {
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt"`
	PublishDate    string     `json:"publishDate"`
	Category       string     `json:"category"`
	Subcategory    string     `json:"subcategory"`
	ImageURL       string     `json:"imageUrl"`
	Tags           []string   `json:"tags"`
	Status         string     `json:"status"`
	Featured       bool       `json:"featured"`
	SEOTitle       string     `json:"seoTitle"`
	SEODescription string     `json:"seoDescription"`
	SEOKeywords    []string   `json:"seoKeywords"`
	ScheduledDate  *time.Time `json:"scheduledDate"`
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(d.Content) == "" {
		return ErrEmptyContent
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if !models.ValidStatus(d.Status) {
		return ErrInvalidStatus
	}
	if d.Status == models.StatusScheduled && d.ScheduledDate == nil {
		return ErrMissingSchedule
	}
	return nil
}

// Build turns a validated draft into an article authored by author. Derived
// fields follow the dashboard form: excerpt from content, read time from word
// count, publish date set to now when publishing immediately.
func (d Draft) Build(author *models.AdminUser, now time.Time) models.Article {
	now = now.UTC()

	excerpt := d.Excerpt
	if strings.TrimSpace(excerpt) == "" {
		excerpt = Excerpt(d.Content)
	}

	publishDate := d.PublishDate
	if d.Status == models.StatusPublished || publishDate == "" {
		publishDate = now.Format(time.RFC3339)
	}

	title := strings.TrimSpace(d.Title)
	seoTitle := d.SEOTitle
	if seoTitle == "" {
		seoTitle = title
	}
	seoDescription := d.SEODescription
	if seoDescription == "" {
		seoDescription = d.Excerpt
	}

	a := models.Article{
		Title:          title,
		Content:        d.Content,
		Excerpt:        excerpt,
		Author:         "Admin",
		PublishDate:    publishDate,
		Category:       strings.TrimSpace(d.Category),
		Subcategory:    d.Subcategory,
		ImageURL:       d.ImageURL,
		Tags:           d.Tags,
		ReadTime:       ReadTime(d.Content),
		Status:         d.Status,
		Featured:       d.Featured,
		SEOTitle:       seoTitle,
		SEODescription: seoDescription,
		SEOKeywords:    d.SEOKeywords,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if d.Status == models.StatusScheduled && d.ScheduledDate != nil {
		t := d.ScheduledDate.UTC()
		a.ScheduledDate = &t
	}

	if author != nil {
		a.AuthorID = author.ID
		switch {
		case author.DisplayName != "":
			a.Author = author.DisplayName
		case author.Email != "":
			a.Author = author.Email
		}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a
}

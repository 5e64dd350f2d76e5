package events

import "time"

// Event types broadcast to dashboard clients.
const (
	ArticleCreated      = "article.created"
	ArticleUpdated      = "article.updated"
	ArticleDeleted      = "article.deleted"
	ArticlesBulkUpdated = "articles.bulk_updated"
	ArticlesBulkDeleted = "articles.bulk_deleted"
	CategoryCreated     = "category.created"
	CategoryUpdated     = "category.updated"
	CategoryDeleted     = "category.deleted"
	CategoriesReordered = "categories.reordered"
	MediaUploaded       = "media.uploaded"
	MediaDeleted        = "media.deleted"
	IngestCompleted     = "ingest.completed"
)

type Event struct {
	Type string    `json:"type"`
	IDs  []string  `json:"ids,omitempty"`
	By   string    `json:"by,omitempty"` // admin user id, empty for ingestion
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

// Publisher is what mutating handlers depend on.
type Publisher interface {
	Publish(ev Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}

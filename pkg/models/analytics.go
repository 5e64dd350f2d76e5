package models

import "time"

type PageView struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
	At        time.Time `json:"timestamp"`
}

type ArticleViews struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
}

type CategoryViews struct {
	Name  string `json:"name"`
	Views int    `json:"views"`
}

// AnalyticsSummary is the dashboard overview for a date range.
type AnalyticsSummary struct {
	Date           string          `json:"date"`
	PageViews      int             `json:"pageViews"`
	UniqueVisitors int             `json:"uniqueVisitors"`
	TopArticles    []ArticleViews  `json:"topArticles"`
	TopCategories  []CategoryViews `json:"topCategories"`
}

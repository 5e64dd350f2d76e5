package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"akili/internal/events"
	"akili/pkg/models"
)

const (
	DefaultPlaceholderImage = "/api/placeholder/800/500"
	DefaultReadTime         = "5 min read"
	DefaultConcurrency      = 4
	unknownAuthor           = "Unknown"
)

// Store is the part of the article repository ingestion writes through.
type Store interface {
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Create(ctx context.Context, a *models.Article) error
}

// Failure records an item that could not be checked or saved.
type Failure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

type Result struct {
	Added   int              `json:"added"`
	Items   []models.Article `json:"items"`
	Skipped int              `json:"skipped"`
	Failed  []Failure        `json:"failed"`
}

// Service runs one sync: fetch, dedup by exact title, classify, persist.
type Service struct {
	Provider   Provider
	Classifier Classifier // nil means keyword classification only
	Store      Store
	Events     events.Publisher
	Log        *zap.Logger

	Concurrency      int
	PlaceholderImage string
	ReadTime         string
	Now              func() time.Time
}

func NewService(p Provider, c Classifier, store Store, pub events.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Provider:         p,
		Classifier:       c,
		Store:            store,
		Events:           pub,
		Log:              logger,
		Concurrency:      DefaultConcurrency,
		PlaceholderImage: DefaultPlaceholderImage,
		ReadTime:         DefaultReadTime,
		Now:              time.Now,
	}
}

type outcome struct {
	article *models.Article
	skipped bool
	failure *Failure
}

// Run performs one sync. A provider error aborts before anything is written.
// Per-item store errors are collected in Result.Failed and do not stop the
// other items. Result.Items keeps provider order.
func (s *Service) Run(ctx context.Context, p Params) (Result, error) {
	res := Result{Items: []models.Article{}, Failed: []Failure{}}

	items, err := s.Provider.Fetch(ctx, p)
	if err != nil {
		return res, err
	}

	unique, dupes := dedupBatch(items)
	res.Skipped = dupes

	outcomes := make([]outcome, len(unique))

	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, it := range unique {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = s.processItem(gctx, it)
			return nil
		})
	}
	_ = g.Wait()

	var added []string
	for _, o := range outcomes {
		switch {
		case o.article != nil:
			res.Items = append(res.Items, *o.article)
			added = append(added, o.article.ID)
		case o.failure != nil:
			res.Failed = append(res.Failed, *o.failure)
		case o.skipped:
			res.Skipped++
		}
	}
	res.Added = len(res.Items)

	s.Log.Info("news sync finished",
		zap.String("provider", s.Provider.Name()),
		zap.Int("fetched", len(items)),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", len(res.Failed)),
	)
	if res.Added > 0 || len(res.Failed) > 0 {
		s.Events.Publish(events.Event{
			Type: events.IngestCompleted,
			IDs:  added,
			Data: map[string]int{"added": res.Added, "skipped": res.Skipped, "failed": len(res.Failed)},
		})
	}

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("news sync interrupted: %w", err)
	}
	return res, nil
}

// dedupBatch drops blank titles and repeated titles within one fetch; the
// first occurrence wins. It returns how many items were dropped.
func dedupBatch(items []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		if _, ok := seen[it.Title]; ok {
			continue
		}
		seen[it.Title] = struct{}{}
		out = append(out, it)
	}
	return out, len(items) - len(out)
}

func (s *Service) processItem(ctx context.Context, it Item) outcome {
	exists, err := s.Store.ExistsByTitle(ctx, it.Title)
	if err != nil {
		s.Log.Warn("dedup check failed", zap.String("title", it.Title), zap.Error(err))
		return outcome{failure: &Failure{Title: it.Title, Error: err.Error()}}
	}
	if exists {
		s.Log.Debug("skip existing title", zap.String("title", it.Title))
		return outcome{skipped: true}
	}

	a := s.buildArticle(it, s.classify(ctx, it))
	if err := s.Store.Create(ctx, &a); err != nil {
		s.Log.Warn("save article failed", zap.String("title", it.Title), zap.Error(err))
		return outcome{failure: &Failure{Title: it.Title, Error: err.Error()}}
	}
	return outcome{article: &a}
}

func (s *Service) classify(ctx context.Context, it Item) string {
	if s.Classifier != nil {
		cat, err := s.Classifier.Classify(ctx, it.Title+". "+it.ShortDescription)
		if err == nil && strings.TrimSpace(cat) != "" {
			return cat
		}
		s.Log.Debug("classifier fell back to keywords", zap.String("title", it.Title), zap.Error(err))
	}
	return KeywordCategory(it.Title + " " + it.ShortDescription)
}

func (s *Service) buildArticle(it Item, category string) models.Article {
	now := s.Now().UTC()

	author := it.Source
	if author == "" {
		author = unknownAuthor
	}
	published := it.PublishDate
	if published == "" {
		published = now.Format(time.RFC3339)
	}
	image := it.TopImage
	if image == "" {
		image = s.PlaceholderImage
	}

	return models.Article{
		Title:       it.Title,
		Content:     it.ShortDescription,
		Excerpt:     it.ShortDescription,
		Author:      author,
		PublishDate: published,
		Category:    category,
		ImageURL:    image,
		Tags:        []string{},
		ViewCount:   0,
		ReadTime:    s.ReadTime,
		Status:      models.StatusPublished,
		Featured:    false,
		SourceURL:   it.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

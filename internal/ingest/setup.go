package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"akili/internal/events"
	"akili/pkg/utils"
)

// FromConfig wires a Service from settings. Without a Google API key the
// service classifies with keywords only.
func FromConfig(ctx context.Context, cfg utils.Config, store Store, pub events.Publisher, logger *zap.Logger) (*Service, error) {
	logger = logger.Named("ingest")

	provider := NewRapidAPIProvider(
		cfg.News.APIURL,
		cfg.News.APIHost,
		cfg.News.APIKey,
		time.Duration(cfg.News.TimeoutSec)*time.Second,
	)

	var classifier Classifier
	if cfg.Classifier.APIKey != "" {
		g, err := NewGeminiClassifier(ctx, cfg.Classifier.APIKey, cfg.Classifier.Model,
			time.Duration(cfg.Classifier.TimeoutSec)*time.Second)
		if err != nil {
			return nil, err
		}
		classifier = g
	} else {
		logger.Info("no classifier api key; using keyword categories only")
	}

	svc := NewService(provider, classifier, store, pub, logger)
	svc.Concurrency = cfg.Ingest.Concurrency
	if cfg.Ingest.PlaceholderImage != "" {
		svc.PlaceholderImage = cfg.Ingest.PlaceholderImage
	}
	if cfg.Ingest.ReadTime != "" {
		svc.ReadTime = cfg.Ingest.ReadTime
	}
	return svc, nil
}

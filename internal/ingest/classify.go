package ingest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Categories is the closed vocabulary the classifier is asked to pick from.
var Categories = []string{
	"Finance",
	"Tech",
	"Politics",
	"Sports",
	"World News",
	"Business",
	"Arts & Entertainment",
	"Lifestyle",
}

// FallbackCategory is used when no keyword rule matches.
const FallbackCategory = "General"

// Classifier maps headline text to a category name.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// ErrEmptyAnswer is returned when the model reply has no usable letters.
var ErrEmptyAnswer = errors.New("classifier returned no category")

// contentGenerator is the slice of *genai.Models the classifier uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier asks a Gemini model for one category name.
type GeminiClassifier struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

func NewGeminiClassifier(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClassifier{models: client.Models, model: model, timeout: timeout}, nil
}

func classifyPrompt(text string) string {
	return "Classify the following news headline+summary into ONE of these categories exactly: " +
		strings.Join(Categories, ", ") + ". Respond with category name only.\n\nText:\n" + text
}

func (g *GeminiClassifier) Classify(ctx context.Context, text string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(classifyPrompt(text)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	cat := Canonicalize(Sanitize(resp.Text()))
	if cat == "" {
		return "", ErrEmptyAnswer
	}
	return cat, nil
}

var disallowed = regexp.MustCompile(`[^A-Za-z &]`)

// Sanitize keeps ASCII letters, spaces and ampersands, then trims.
func Sanitize(s string) string {
	return strings.TrimSpace(disallowed.ReplaceAllString(strings.TrimSpace(s), ""))
}

// Canonicalize returns the vocabulary spelling of s when it matches one
// case-insensitively; other answers pass through unchanged.
func Canonicalize(s string) string {
	for _, c := range Categories {
		if strings.EqualFold(c, s) {
			return c
		}
	}
	return s
}

type keywordRule struct {
	category string
	pattern  *regexp.Regexp
}

// First match wins, so order matters: "stock market AI" is Finance.
var keywordRules = []keywordRule{
	{"Finance", regexp.MustCompile(`(stock|market|fed|interest|bank|finance|econom|ipo|inflation)`)},
	{"Tech", regexp.MustCompile(`(tech|ai|quantum|software|startup|chip|semiconductor|computer|robot)`)},
	{"Politics", regexp.MustCompile(`(election|policy|parliament|senate|president|government|diplomacy)`)},
	{"Sports", regexp.MustCompile(`(olympic|football|basketball|soccer|tennis|sport)`)},
	{"World News", regexp.MustCompile(`(climate|world|international|summit|war|peace|global)`)},
	{"Arts & Entertainment", regexp.MustCompile(`(movie|music|celebrity|entertainment|theater|art)`)},
	{"Lifestyle", regexp.MustCompile(`(health|medicine|cancer|diet|fitness|lifestyle|travel|food|fashion)`)},
}

// KeywordClassifier is the deterministic fallback. Patterns are plain
// substrings, so "ai" also matches inside "said".
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, text string) (string, error) {
	return KeywordCategory(text), nil
}

func KeywordCategory(text string) string {
	t := strings.ToLower(text)
	for _, r := range keywordRules {
		if r.pattern.MatchString(t) {
			return r.category
		}
	}
	return FallbackCategory
}

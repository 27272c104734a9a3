package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/m0nesy/f1kz-be/internal/models"
)

// newsPrompt asks the model for a strict-JSON feed of five current F1 news
// items in the five known categories.
const newsPrompt = `You are the sports news editor of a Formula 1 fan site. Generate current Formula 1 news in a neutral journalistic style.

Requirements:
- Be brief and factual
- No editorializing or introductions
- No Markdown
- Treat the date as today

Answer STRICTLY as JSON:
{
  "news": [
    {
      "title": "Headline",
      "summary": "Short description (2-3 sentences)",
      "category": "race | transfers | teams | drivers | technical",
      "date": "YYYY-MM-DD"
    }
  ]
}

Number of news items: 5`

const newsCacheKey = "news/latest"

// ErrNoFeed is returned by Latest when no feed has been generated yet (or
// the cached one expired).
var ErrNoFeed = errors.New("no news feed available")

// TextGenerator is the slice of the AI bridge the news service needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// NewsServiceProvider defines the interface for the news feed service.
type NewsServiceProvider interface {
	Latest() ([]models.NewsItem, error)
	Refresh(ctx context.Context) ([]models.NewsItem, error)
}

// NewsService generates and caches the AI news feed.
type NewsService struct {
	generator TextGenerator
	cache     *gocache.Cache
}

// NewNewsService creates a NewsService whose feeds live for ttl.
func NewNewsService(generator TextGenerator, ttl time.Duration) *NewsService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &NewsService{
		generator: generator,
		cache:     gocache.New(ttl, 2*ttl),
	}
}

// Latest returns the cached feed, or ErrNoFeed when nothing is cached.
func (s *NewsService) Latest() ([]models.NewsItem, error) {
	if v, ok := s.cache.Get(newsCacheKey); ok {
		return v.([]models.NewsItem), nil
	}
	return nil, ErrNoFeed
}

// Refresh asks the model for a fresh feed, parses it, and replaces the
// cached one.
func (s *NewsService) Refresh(ctx context.Context) ([]models.NewsItem, error) {
	raw, err := s.generator.GenerateText(ctx, newsPrompt)
	if err != nil {
		return nil, err
	}

	items, err := ParseNewsFeed(raw)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(newsCacheKey, items)
	log.Info().Int("items", len(items)).Msg("News feed refreshed")
	return items, nil
}

// newsEnvelope is the wrapper shape the prompt asks for.
type newsEnvelope struct {
	News []models.NewsItem `json:"news"`
}

// ParseNewsFeed turns raw model output into validated news items. Models do
// not always follow the format to the letter, so this accepts a fenced code
// block, a bare JSON array, or a {"news": [...]} object. Items with an
// unknown category or missing title fail the whole parse.
func ParseNewsFeed(raw string) ([]models.NewsItem, error) {
	text := stripCodeFences(raw)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty model output")
	}

	var items []models.NewsItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var envelope newsEnvelope
		if err := json.Unmarshal([]byte(text), &envelope); err != nil {
			return nil, fmt.Errorf("model output is not valid news JSON: %w", err)
		}
		if envelope.News == nil {
			return nil, fmt.Errorf("model output has no news array")
		}
		items = envelope.News
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("model output has no news items")
	}

	for i := range items {
		if strings.TrimSpace(items[i].Title) == "" {
			return nil, fmt.Errorf("news item %d has no title", i)
		}
		if !models.ValidCategory(items[i].Category) {
			return nil, fmt.Errorf("news item %d has unknown category %q", i, items[i].Category)
		}
		items[i].ID = uuid.New().String()
	}
	return items, nil
}

// stripCodeFences removes a surrounding ```json ... ``` block if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

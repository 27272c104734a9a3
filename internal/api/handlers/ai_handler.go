package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m0nesy/f1kz-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AIGenerator is the slice of the AI bridge the handlers use.
type AIGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// AIHandler exposes the generative endpoints.
type AIHandler struct {
	client AIGenerator
	news   services.NewsServiceProvider
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(client AIGenerator, news services.NewsServiceProvider) *AIHandler {
	return &AIHandler{client: client, news: news}
}

// PromptPayload is the request body for the generate endpoints.
type PromptPayload struct {
	Prompt string `json:"prompt"`
}

// GenerateNews forwards a prompt to the text model and returns the raw model
// output under "news". Parsing the output into items is the caller's choice;
// the curated feed lives at /news/latest.
func (h *AIHandler) GenerateNews(w http.ResponseWriter, r *http.Request) {
	var payload PromptPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Prompt == "" {
		respondError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	text, err := h.client.GenerateText(r.Context(), payload.Prompt)
	if err != nil {
		log.Error().Err(err).Msg("News generation failed")
		respondError(w, http.StatusBadGateway, "Failed to generate news")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"news": text})
}

// GenerateImage forwards a prompt to the image model and returns the decoded
// image bytes.
func (h *AIHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var payload PromptPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Prompt == "" {
		respondError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	buf, err := h.client.GenerateImage(r.Context(), payload.Prompt)
	if err != nil {
		log.Error().Err(err).Msg("Image generation failed")
		respondError(w, http.StatusBadGateway, "Failed to generate image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf)
}

// LatestNews serves the cached, parsed news feed, generating one on demand
// the first time.
func (h *AIHandler) LatestNews(w http.ResponseWriter, r *http.Request) {
	items, err := h.news.Latest()
	if errors.Is(err, services.ErrNoFeed) {
		items, err = h.news.Refresh(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to produce news feed")
		respondError(w, http.StatusBadGateway, "Failed to generate news")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"news": items})
}

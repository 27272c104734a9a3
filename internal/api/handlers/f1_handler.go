package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// F1Fetcher is the slice of the upstream client the proxy handlers use.
type F1Fetcher interface {
	Fetch(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// F1Handler proxies read requests to the external F1 statistics API. Bodies
// are relayed verbatim; every failure becomes the same 502 answer.
type F1Handler struct {
	client F1Fetcher
}

// NewF1Handler creates a new F1Handler.
func NewF1Handler(client F1Fetcher) *F1Handler {
	return &F1Handler{client: client}
}

// Routes mounts the /f1api proxy endpoints mirrored by the frontend's query
// layer.
func (h *F1Handler) Routes(r chi.Router) {
	r.Get("/drivers", h.passthrough("drivers"))
	r.Get("/drivers/search", h.passthrough("drivers/search"))
	r.Get("/drivers/{id}", h.param("drivers", "id"))

	r.Get("/teams", h.passthrough("teams"))
	r.Get("/teams/search", h.passthrough("teams/search"))
	r.Get("/teams/{id}", h.param("teams", "id"))
	r.Get("/teams/{id}/drivers", func(w http.ResponseWriter, r *http.Request) {
		h.forward(w, r, "teams/"+chi.URLParam(r, "id")+"/drivers")
	})

	r.Get("/last/fp1", h.passthrough("current/last/fp1"))
	r.Get("/last/fp2", h.passthrough("current/last/fp2"))
	r.Get("/last/fp3", h.passthrough("current/last/fp3"))
	r.Get("/last/qualy", h.passthrough("current/last/qualy"))
	r.Get("/last/race", h.passthrough("current/last/race"))
	r.Get("/last/sprint/qualy", h.passthrough("current/last/sprint/qualy"))
	r.Get("/last/sprint/race", h.passthrough("current/last/sprint/race"))

	r.Get("/standings/drivers", h.passthrough("current/drivers-championship"))
	r.Get("/standings/teams", h.passthrough("current/constructors-championship"))

	r.Get("/races", h.passthrough("current"))
	r.Get("/races/last", h.passthrough("current/last"))
	r.Get("/races/next", h.passthrough("current/next"))
	r.Get("/races/{year}", h.param("", "year"))
	r.Get("/races/{year}/{round}", func(w http.ResponseWriter, r *http.Request) {
		h.forward(w, r, chi.URLParam(r, "year")+"/"+chi.URLParam(r, "round"))
	})
}

// LegacyRoutes mounts the older /f1 route group kept for existing clients.
func (h *F1Handler) LegacyRoutes(r chi.Router) {
	r.Get("/drivers", h.passthrough("drivers"))
	r.Get("/standings/drivers", h.passthrough("current/drivers-championship"))
	r.Get("/standings/teams", h.passthrough("current/constructors-championship"))
	r.Get("/current/drivers", h.passthrough("current/drivers"))
	r.Get("/current/teams", h.passthrough("current/teams"))
}

// passthrough forwards to a fixed upstream path, relaying the query string.
func (h *F1Handler) passthrough(upstreamPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.forward(w, r, upstreamPath)
	}
}

// param forwards to prefix/<url param>.
func (h *F1Handler) param(prefix, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := chi.URLParam(r, name)
		if prefix != "" {
			path = prefix + "/" + path
		}
		h.forward(w, r, path)
	}
}

func (h *F1Handler) forward(w http.ResponseWriter, r *http.Request, upstreamPath string) {
	data, err := h.client.Fetch(r.Context(), upstreamPath, r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Error fetching data from external F1 API")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// Package web serves the landing page and its static assets.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xeze-org/exercise-tracker/internal/store"
)

// AssetStore returns the bytes and content type stored under key.
type AssetStore interface {
	Open(ctx context.Context, key string) ([]byte, string, error)
}

// Handler serves views/index.html at / and files under public/.
type Handler struct {
	assets AssetStore
	logger *slog.Logger
}

func NewHandler(assets AssetStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{assets: assets, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/public/*", h.Public)
}

// Index serves the landing page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "views/index.html")
}

// Public serves a static asset.
func (h *Handler) Public(w http.ResponseWriter, r *http.Request) {
	name, ok := assetName(chi.URLParam(r, "*"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.serve(w, r, "public/"+name)
}

// assetName rejects empty names and any name with a ".." segment so a
// request cannot climb out of public/.
func assetName(raw string) (string, bool) {
	for _, seg := range strings.Split(raw, "/") {
		if seg == ".." {
			return "", false
		}
	}
	name := strings.TrimPrefix(path.Clean("/"+raw), "/")
	if name == "" {
		return "", false
	}
	return name, true
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, key string) {
	data, ct, err := h.assets.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrAssetNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("asset read failed", "key", key, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	_, _ = w.Write(data)
}

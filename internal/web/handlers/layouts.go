package handlers

import (
	"net/http"

	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/go-chi/chi/v5"
)

// LayoutsHandler serves the layout catalog.
type LayoutsHandler struct {
	catalog *layout.Catalog
}

// NewLayoutsHandler creates a new layouts handler
func NewLayoutsHandler(c *layout.Catalog) *LayoutsHandler {
	return &LayoutsHandler{catalog: c}
}

// LayoutResponse describes one layout.
type LayoutResponse struct {
	ID         string         `json:"id"`
	FrameCount int            `json:"frame_count"`
	Frames     []layout.Frame `json:"frames"`
	Fallback   bool           `json:"fallback"`
}

// LayoutListResponse is the catalog listing.
type LayoutListResponse struct {
	Layouts  []LayoutResponse `json:"layouts"`
	ViewBox  layout.ViewBox   `json:"view_box"`
	Fallback string           `json:"fallback"`
}

func (h *LayoutsHandler) toResponse(l *layout.Layout) LayoutResponse {
	return LayoutResponse{
		ID:         l.ID,
		FrameCount: l.FrameCount(),
		Frames:     l.Frames,
		Fallback:   l.ID == h.catalog.Fallback().ID,
	}
}

// List returns every layout in catalog order.
func (h *LayoutsHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.catalog.All()
	resp := LayoutListResponse{
		Layouts:  make([]LayoutResponse, 0, len(all)),
		ViewBox:  h.catalog.ViewBox(),
		Fallback: h.catalog.Fallback().ID,
	}
	for _, l := range all {
		resp.Layouts = append(resp.Layouts, h.toResponse(l))
	}
	respondJSON(w, http.StatusOK, resp)
}

// lookup resolves the {id} URL parameter, writing a 404 when it is unknown.
func (h *LayoutsHandler) lookup(w http.ResponseWriter, r *http.Request) (*layout.Layout, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing layout ID")
		return nil, false
	}
	l, ok := h.catalog.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "layout not found")
		return nil, false
	}
	return l, true
}

// Get returns a single layout.
func (h *LayoutsHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.toResponse(l))
}

// Template returns the layout's raw SVG template.
func (h *LayoutsHandler) Template(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(l.Template))
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Prithvi-997/origin-brew/internal/album"
	"github.com/Prithvi-997/origin-brew/internal/constants"
	"github.com/Prithvi-997/origin-brew/internal/engine"
	"github.com/Prithvi-997/origin-brew/internal/layout"
	"github.com/Prithvi-997/origin-brew/internal/page"
	"github.com/Prithvi-997/origin-brew/internal/photo"
	"github.com/Prithvi-997/origin-brew/internal/trace"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Edit operations accepted by AlbumsHandler.Edit.
const (
	OpReorder      = "reorder"
	OpDelete       = "delete"
	OpDuplicate    = "duplicate"
	OpSwap         = "swap"
	OpMove         = "move"
	OpChangeLayout = "change_layout"
	OpRegenerate   = "regenerate"
)

// AlbumsHandler handles album generation and editing endpoints
type AlbumsHandler struct {
	generator  *album.Generator
	editor     *album.Editor
	jobManager *JobManager
	logger     *log.Logger
}

// NewAlbumsHandler creates a new albums handler
func NewAlbumsHandler(g *album.Generator, jm *JobManager, logger *log.Logger) *AlbumsHandler {
	return &AlbumsHandler{
		generator:  g,
		editor:     g.Editor(),
		jobManager: jm,
		logger:     logger,
	}
}

// GenerateRequest represents an album generation request
type GenerateRequest struct {
	Photos []photo.Photo `json:"photos"`
}

// EditRequest applies one edit operation to a page list. Which fields are
// read depends on Operation.
type EditRequest struct {
	Operation   string         `json:"operation"`
	Pages       []page.Page    `json:"pages"`
	Photos      []photo.Photo  `json:"photos"`
	Index       int            `json:"index"`
	From        int            `json:"from"`
	To          int            `json:"to"`
	Source      album.FrameRef `json:"source"`
	Target      album.FrameRef `json:"target"`
	LayoutID    string         `json:"layout_id"`
	Indices     []int          `json:"indices"`
	KeepLayouts bool           `json:"keep_layouts"`
}

// validatePhotos checks the photo list of a generation request.
func validatePhotos(photos []photo.Photo) error {
	if len(photos) == 0 {
		return errors.New("photos are required")
	}
	if len(photos) > constants.MaxPhotosPerRequest {
		return fmt.Errorf("too many photos: %d (max %d)", len(photos), constants.MaxPhotosPerRequest)
	}
	if _, err := photo.NewPool(photos); err != nil {
		return err
	}
	return nil
}

// Generate plans an album synchronously.
func (h *AlbumsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePhotos(req.Photos); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.generator.Generate(r.Context(), req.Photos, trace.New(nil))
	if err != nil {
		h.logger.Error("album generation failed", "photos", len(req.Photos), "error", err)
		respondError(w, http.StatusInternalServerError, "album generation failed")
		return
	}
	h.logger.Info("album generated", "photos", len(req.Photos), "pages", len(res.Pages), "planner", res.Planner)
	respondJSON(w, http.StatusOK, res)
}

// StartJob starts an album generation in the background.
func (h *AlbumsHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePhotos(req.Photos); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := uuid.New().String()
	job := h.jobManager.CreateJob(jobID, len(req.Photos))

	go h.runAlbumJob(job, req.Photos)

	respondJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      jobID,
		"photo_count": len(req.Photos),
		"status":      string(JobStatusPending),
	})
}

// runAlbumJob runs the generation in the background, streaming trace events
// to the job's listeners.
func (h *AlbumsHandler) runAlbumJob(job *AlbumJob, photos []photo.Photo) {
	ctx, cancel := context.WithCancel(context.Background())
	job.setCancel(cancel)
	defer cancel()

	if !job.start() {
		return
	}
	job.SendEvent(JobEvent{Type: "started", Message: "Album generation started"})

	tr := trace.New(func(e trace.Event) {
		job.SendEvent(JobEvent{Type: "trace", Message: e.Message, Data: e})
	})
	res, err := h.generator.Generate(ctx, photos, tr)
	if !job.finish(res, err) {
		return
	}
	if err != nil {
		h.logger.Error("album job failed", "job", job.ID, "error", err)
		job.SendEvent(JobEvent{Type: "job_error", Message: err.Error()})
		return
	}
	h.logger.Info("album job completed", "job", job.ID, "pages", len(res.Pages))
	job.SendEvent(JobEvent{Type: "completed", Data: res})
}

// lookupJob resolves the {jobId} URL parameter, writing an error response
// when it is missing or unknown.
func (h *AlbumsHandler) lookupJob(w http.ResponseWriter, r *http.Request) *AlbumJob {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return nil
	}
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return nil
	}
	return job
}

// JobStatus returns the status of an album job
func (h *AlbumsHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	job := h.lookupJob(w, r)
	if job == nil {
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// Events streams job events via SSE
func (h *AlbumsHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r,
		func(id string) SSEJob {
			job := h.jobManager.GetJob(id)
			if job == nil {
				return nil
			}
			return job
		},
		func(job SSEJob) any {
			return job.(*AlbumJob).Snapshot()
		},
	)
}

// CancelJob cancels an album job
func (h *AlbumsHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	job := h.lookupJob(w, r)
	if job == nil {
		return
	}
	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]any{
		"cancelled": job.GetStatus() == JobStatusCancelled,
		"status":    job.GetStatus(),
	})
}

// Edit applies an edit operation to the supplied pages and returns the new
// page list.
func (h *AlbumsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Pages) == 0 {
		respondError(w, http.StatusBadRequest, "pages are required")
		return
	}
	if len(req.Photos) > constants.MaxPhotosPerRequest {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("too many photos: %d (max %d)", len(req.Photos), constants.MaxPhotosPerRequest))
		return
	}
	pool, err := photo.NewPool(req.Photos)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var res *album.Result
	var pages []page.Page
	switch req.Operation {
	case OpReorder:
		pages, err = h.editor.Reorder(req.Pages, req.From, req.To)
	case OpDelete:
		pages, err = h.editor.Delete(req.Pages, req.Index)
	case OpDuplicate:
		pages, err = h.editor.Duplicate(req.Pages, req.Index, pool)
	case OpSwap:
		pages, err = h.editor.SwapPhotos(req.Pages, req.Source, req.Target, pool)
	case OpMove:
		pages, err = h.editor.MovePhoto(req.Pages, req.Source, req.Target, pool)
	case OpChangeLayout:
		pages, err = h.editor.ChangeLayout(req.Pages, req.Index, req.LayoutID, pool)
	case OpRegenerate:
		res, err = h.generator.Regenerate(r.Context(), req.Pages, req.Indices, req.Photos, req.KeepLayouts, trace.New(nil))
	default:
		respondError(w, http.StatusBadRequest, "unknown operation: "+req.Operation)
		return
	}
	if err != nil {
		status := editErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("album edit failed", "operation", sanitizeForLog(req.Operation), "error", err)
			respondError(w, status, "album edit failed")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	if res == nil {
		res = &album.Result{Pages: pages}
	}
	respondJSON(w, http.StatusOK, res)
}

// editErrorStatus maps edit errors to HTTP status codes. Anything not caused
// by engine failure is a problem with the submitted pages or photos.
func editErrorStatus(err error) int {
	switch {
	case errors.Is(err, album.ErrIncompleteAlbum), errors.Is(err, engine.ErrEngineExhausted):
		return http.StatusInternalServerError
	case errors.Is(err, album.ErrNoLayout), errors.Is(err, layout.ErrUnknownLayout):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

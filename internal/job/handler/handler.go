package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"herald/internal/address"
	jobservice "herald/internal/job/service"
	"herald/internal/status"
	id "herald/pkg/domain"
	dErrors "herald/pkg/domain-errors"
	"herald/pkg/platform/httputil"
	"herald/pkg/requestcontext"
)

// Service defines the job operations the handler needs.
type Service interface {
	Create(ctx context.Context, ownerID id.OwnerID, messageRef string, addr address.Address) (*jobservice.CreateResult, error)
}

// StatusReader answers status polls.
type StatusReader interface {
	StatusOf(ctx context.Context, jobID id.JobID, ownerID id.OwnerID) (*status.View, error)
}

// Handler wires delivery-job endpoints to the job service and the status
// aggregator.
type Handler struct {
	service  Service
	statuses StatusReader
	logger   *slog.Logger
}

// New constructs a job handler with its dependencies.
func New(service Service, statuses StatusReader, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		statuses: statuses,
		logger:   logger,
	}
}

// Register mounts delivery-job endpoints on the router. The router is
// expected to already carry the auth middleware for these routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/delivery-jobs", h.HandleCreate)
	r.Get("/delivery-jobs/{jobID}", h.HandleStatus)
}

// HandleCreate handles POST /delivery-jobs requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	ownerID := requestcontext.OwnerID(ctx)
	if ownerID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateJobRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Create(ctx, ownerID, req.MessageRef, req.Address.ToDomain())
	if err != nil {
		h.logger.WarnContext(ctx, "delivery job creation failed",
			"request_id", requestID,
			"owner_id", ownerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "delivery job accepted",
		"request_id", requestID,
		"job_id", result.Job.ID,
		"office_count", len(result.Offices),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, CreateJobResponse{
		JobID:   result.Job.ID,
		Offices: FromOffices(result.Offices),
	})
}

// HandleStatus handles GET /delivery-jobs/{jobID} requests. Safe to poll at
// high frequency: a pure read with no side effects.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID := requestcontext.OwnerID(ctx)
	if ownerID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	jobID, err := id.ParseJobID(chi.URLParam(r, "jobID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "delivery job not found"))
		return
	}

	view, err := h.statuses.StatusOf(ctx, jobID, ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromView(view))
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"herald/internal/address"
	"herald/internal/directory"
	dErrors "herald/pkg/domain-errors"
	"herald/pkg/platform/httputil"
	"herald/pkg/requestcontext"
)

// Resolver resolves an address to a jurisdiction.
type Resolver interface {
	Resolve(ctx context.Context, addr address.Address) (address.Jurisdiction, error)
}

// OfficeDirectory answers which offices represent a jurisdiction.
type OfficeDirectory interface {
	OfficesFor(ctx context.Context, jur address.Jurisdiction) ([]directory.Office, error)
}

// Handler exposes address resolution as a preview endpoint: who would
// receive a message from this address, without creating a job.
type Handler struct {
	resolver  Resolver
	directory OfficeDirectory
	logger    *slog.Logger
}

func New(resolver Resolver, dir OfficeDirectory, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, directory: dir, logger: logger}
}

// Register mounts the resolve endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/address/resolve", h.HandleResolve)
}

// ResolveRequest is the HTTP request body for POST /address/resolve.
type ResolveRequest struct {
	Address AddressPayload `json:"address"`
}

// AddressPayload is the wire shape of a constituent address.
type AddressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	RegionCode string `json:"region_code"`
	PostalCode string `json:"postal_code"`
}

// Validate implements the Validatable interface for
// httputil.DecodeAndPrepare. Field-level checks live in the resolver.
func (r *ResolveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// JurisdictionResponse is the wire shape of a resolved jurisdiction.
type JurisdictionResponse struct {
	CellID       string `json:"cell_id"`
	RegionCode   string `json:"region_code"`
	DistrictCode string `json:"district_code,omitempty"`
}

// OfficeResponse is the wire shape of one office.
type OfficeResponse struct {
	Code           string `json:"code"`
	Chamber        string `json:"chamber"`
	HolderName     string `json:"holder_name"`
	RegionCode     string `json:"region_code"`
	DistrictCode   string `json:"district_code,omitempty"`
	IsVotingMember bool   `json:"is_voting_member"`
	DelegateKind   string `json:"delegate_kind,omitempty"`
}

// ResolveResponse is the HTTP response for POST /address/resolve.
type ResolveResponse struct {
	Jurisdiction JurisdictionResponse `json:"jurisdiction"`
	Offices      []OfficeResponse     `json:"offices"`
}

// HandleResolve handles POST /address/resolve requests.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResolveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	addr := address.Address{
		Street:     strings.TrimSpace(req.Address.Street),
		City:       strings.TrimSpace(req.Address.City),
		RegionCode: strings.ToUpper(strings.TrimSpace(req.Address.RegionCode)),
		PostalCode: strings.TrimSpace(req.Address.PostalCode),
	}

	jur, err := h.resolver.Resolve(ctx, addr)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	offices, err := h.directory.OfficesFor(ctx, jur)
	if err != nil {
		h.logger.ErrorContext(ctx, "office lookup failed for resolved jurisdiction",
			"request_id", requestID,
			"region_code", jur.RegionCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := ResolveResponse{
		Jurisdiction: JurisdictionResponse{
			CellID:       jur.CellID,
			RegionCode:   jur.RegionCode,
			DistrictCode: jur.DistrictCode,
		},
		Offices: make([]OfficeResponse, len(offices)),
	}
	for i, o := range offices {
		resp.Offices[i] = OfficeResponse{
			Code:           o.Code,
			Chamber:        string(o.Chamber),
			HolderName:     o.HolderName,
			RegionCode:     o.RegionCode,
			DistrictCode:   o.DistrictCode,
			IsVotingMember: o.IsVotingMember,
			DelegateKind:   string(o.DelegateKind),
		}
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

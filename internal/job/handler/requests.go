package handler

import (
	"strings"

	"herald/internal/address"
	dErrors "herald/pkg/domain-errors"
)

// AddressPayload is the wire shape of a constituent address.
type AddressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	RegionCode string `json:"region_code"`
	PostalCode string `json:"postal_code"`
}

// ToDomain converts the payload to the immutable domain address. Field-level
// validation (postal code format, required fields) happens in the resolver.
func (a AddressPayload) ToDomain() address.Address {
	return address.Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		RegionCode: strings.ToUpper(strings.TrimSpace(a.RegionCode)),
		PostalCode: strings.TrimSpace(a.PostalCode),
	}
}

// CreateJobRequest is the HTTP request body for POST /delivery-jobs.
type CreateJobRequest struct {
	MessageRef string         `json:"message_ref"`
	Address    AddressPayload `json:"address"`
}

// Validate validates the request shape. Implements the Validatable
// interface for httputil.DecodeAndPrepare.
func (r *CreateJobRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.MessageRef = strings.TrimSpace(r.MessageRef)
	if r.MessageRef == "" {
		return dErrors.New(dErrors.CodeValidation, "message_ref is required")
	}
	return nil
}

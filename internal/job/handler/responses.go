package handler

import (
	"time"

	"herald/internal/directory"
	"herald/internal/job"
	"herald/internal/status"
	id "herald/pkg/domain"
)

// OfficeResponse is the wire shape of one delivery target.
type OfficeResponse struct {
	Code           string `json:"code"`
	Chamber        string `json:"chamber"`
	HolderName     string `json:"holder_name"`
	RegionCode     string `json:"region_code"`
	DistrictCode   string `json:"district_code,omitempty"`
	IsVotingMember bool   `json:"is_voting_member"`
	DelegateKind   string `json:"delegate_kind,omitempty"`
}

// FromOffice converts a domain office to its wire shape.
func FromOffice(o directory.Office) OfficeResponse {
	return OfficeResponse{
		Code:           o.Code,
		Chamber:        string(o.Chamber),
		HolderName:     o.HolderName,
		RegionCode:     o.RegionCode,
		DistrictCode:   o.DistrictCode,
		IsVotingMember: o.IsVotingMember,
		DelegateKind:   string(o.DelegateKind),
	}
}

// FromOffices converts a slice of offices, preserving order.
func FromOffices(offices []directory.Office) []OfficeResponse {
	out := make([]OfficeResponse, len(offices))
	for i, o := range offices {
		out[i] = FromOffice(o)
	}
	return out
}

// CreateJobResponse is the HTTP response for POST /delivery-jobs.
type CreateJobResponse struct {
	JobID   id.JobID         `json:"job_id"`
	Offices []OfficeResponse `json:"offices"`
}

// ResultResponse is the wire shape of one per-office outcome.
type ResultResponse struct {
	OfficeID       string     `json:"office_id"`
	Outcome        string     `json:"outcome"`
	ConfirmationID *string    `json:"confirmation_id,omitempty"`
	ErrorKind      string     `json:"error_kind,omitempty"`
	AttemptedAt    *time.Time `json:"attempted_at,omitempty"`
	AttemptCount   int        `json:"attempt_count"`
}

// StatusResponse is the HTTP response for GET /delivery-jobs/{jobID}.
type StatusResponse struct {
	JobID    id.JobID         `json:"job_id"`
	Status   string           `json:"status"`
	Progress int              `json:"progress"`
	Results  []ResultResponse `json:"results"`
}

// FromView converts an aggregator view to its wire shape.
func FromView(v *status.View) *StatusResponse {
	results := make([]ResultResponse, len(v.Results))
	for i, r := range v.Results {
		rr := ResultResponse{
			OfficeID:       r.OfficeID,
			Outcome:        string(r.Outcome),
			ConfirmationID: r.ConfirmationID,
			ErrorKind:      string(r.ErrorKind),
			AttemptCount:   r.AttemptCount,
		}
		if r.Outcome != job.OutcomePending {
			t := r.AttemptedAt
			rr.AttemptedAt = &t
		}
		results[i] = rr
	}
	return &StatusResponse{
		JobID:    v.JobID,
		Status:   string(v.Status),
		Progress: v.Progress,
		Results:  results,
	}
}

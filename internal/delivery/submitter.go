package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"herald/internal/directory"
	"herald/internal/job"
	"herald/internal/message"
	"herald/internal/platform/config"
)

// Receipt is the upstream office's acknowledgment. ConfirmationID is nil
// when the office accepted without issuing one.
type Receipt struct {
	ConfirmationID *string
}

// Submitter delivers one message to one office. Each chamber has its own
// implementation because the chambers' external protocols differ in
// authentication, payload shape, and failure semantics.
type Submitter interface {
	Submit(ctx context.Context, office directory.Office, msg message.Message) (*Receipt, error)
}

// classifyStatus maps an upstream HTTP status to an error kind.
func classifyStatus(status int) job.ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return job.ErrorKindTransientRateLimited
	case status >= 500:
		return job.ErrorKindTransientNetwork
	case status == http.StatusNotFound || status == http.StatusGone:
		return job.ErrorKindPermanentUnreachable
	default:
		return job.ErrorKindRejectedPayload
	}
}

// UpperSubmitter speaks the upper chamber's submission protocol: API-key
// auth, office addressed in the payload.
type UpperSubmitter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewUpperSubmitter(cfg config.SubmitConfig) *UpperSubmitter {
	return &UpperSubmitter{
		baseURL: cfg.UpperBaseURL,
		apiKey:  cfg.UpperAPIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type upperPayload struct {
	OfficeCode string `json:"office_code"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

type upperResponse struct {
	ConfirmationID string `json:"confirmation_id"`
}

func (s *UpperSubmitter) Submit(ctx context.Context, office directory.Office, msg message.Message) (*Receipt, error) {
	payload, err := json.Marshal(upperPayload{
		OfficeCode: office.Code,
		Subject:    msg.Subject,
		Body:       msg.Body,
	})
	if err != nil {
		return nil, &SubmitError{Kind: job.ErrorKindRejectedPayload, Message: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, &SubmitError{Kind: job.ErrorKindRejectedPayload, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SubmitError{Kind: job.ErrorKindTransientNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, &SubmitError{
			Kind:    classifyStatus(resp.StatusCode),
			Message: fmt.Sprintf("upper chamber endpoint returned status %d", resp.StatusCode),
		}
	}

	var body upperResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.ConfirmationID == "" {
		// Accepted but unconfirmed is still success.
		return &Receipt{}, nil
	}
	return &Receipt{ConfirmationID: &body.ConfirmationID}, nil
}

// LowerSubmitter speaks the lower chamber's submission protocol: bearer-token
// auth, office addressed in the path.
type LowerSubmitter struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewLowerSubmitter(cfg config.SubmitConfig) *LowerSubmitter {
	return &LowerSubmitter{
		baseURL: cfg.LowerBaseURL,
		token:   cfg.LowerToken,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type lowerPayload struct {
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

type lowerResponse struct {
	TrackingID string `json:"tracking_id"`
}

func (s *LowerSubmitter) Submit(ctx context.Context, office directory.Office, msg message.Message) (*Receipt, error) {
	payload, err := json.Marshal(lowerPayload{
		Topic: msg.Subject,
		Text:  msg.Body,
	})
	if err != nil {
		return nil, &SubmitError{Kind: job.ErrorKindRejectedPayload, Message: fmt.Sprintf("marshal payload: %v", err)}
	}

	url := fmt.Sprintf("%s/offices/%s/submissions", s.baseURL, office.Code)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &SubmitError{Kind: job.ErrorKindRejectedPayload, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SubmitError{Kind: job.ErrorKindTransientNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &SubmitError{
			Kind:    classifyStatus(resp.StatusCode),
			Message: fmt.Sprintf("lower chamber endpoint returned status %d", resp.StatusCode),
		}
	}

	var body lowerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.TrackingID == "" {
		return &Receipt{}, nil
	}
	return &Receipt{ConfirmationID: &body.TrackingID}, nil
}

package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/address"
	"herald/internal/delivery"
	"herald/internal/directory"
	"herald/internal/dispatch"
	"herald/internal/job"
	jobservice "herald/internal/job/service"
	jwt_token "herald/internal/jwt_token"
	"herald/internal/message"
	"herald/internal/status"
	httptransport "herald/internal/transport/http"
	id "herald/pkg/domain"
	"herald/pkg/testutil"
)

type fixedGeocoder struct {
	jur address.Jurisdiction
	err error
}

func (g *fixedGeocoder) Locate(ctx context.Context, addr address.Address) (address.Jurisdiction, error) {
	return g.jur, g.err
}

// scriptedSubmitter fails with the scripted kinds in order, then succeeds.
type scriptedSubmitter struct {
	kinds []job.ErrorKind
}

func (s *scriptedSubmitter) Submit(ctx context.Context, office directory.Office, msg message.Message) (*delivery.Receipt, error) {
	if len(s.kinds) > 0 {
		kind := s.kinds[0]
		s.kinds = s.kinds[1:]
		return nil, &delivery.SubmitError{Kind: kind, Message: "scripted failure"}
	}
	return &delivery.Receipt{}, nil
}

// syncDispatcher delivers every task inline, so a status poll right after
// create sees terminal results.
type syncDispatcher struct {
	worker *delivery.Worker
}

func (d *syncDispatcher) Enqueue(ctx context.Context, j *job.DeliveryJob, offices []directory.Office) error {
	for _, office := range offices {
		d.worker.Handle(ctx, dispatch.Task{
			JobID:      j.ID,
			OwnerID:    j.OwnerID,
			OfficeID:   office.Code,
			Chamber:    office.Chamber,
			MessageRef: j.MessageRef,
		})
	}
	return nil
}

type env struct {
	router http.Handler
	jwt    *jwt_token.JWTService
}

func newEnv(t *testing.T, geocoder address.Geocoder, dispatcher jobservice.Dispatcher) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	officeStore := directory.NewInMemory()
	directory.SeedDevOffices(officeStore)
	messages := message.NewInMemory()
	message.SeedDevMessages(messages)
	jobs := job.NewInMemory()

	resolver := address.NewResolver(geocoder, logger)
	svc := jobservice.NewJobService(resolver, directory.New(officeStore, logger), messages, jobs, dispatcher, nil, logger)
	jwtService := jwt_token.NewJWTService("test-signing-key", "herald", "herald")

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:    logger,
		Validator: jwtService,
		Jobs:      New(svc, status.NewAggregator(svc), logger),
	})
	return &env{router: router, jwt: jwtService}
}

func newDeliveringEnv(t *testing.T, upper, lower delivery.Submitter) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	officeStore := directory.NewInMemory()
	directory.SeedDevOffices(officeStore)
	messages := message.NewInMemory()
	message.SeedDevMessages(messages)
	jobs := job.NewInMemory()

	worker := delivery.NewWorker(officeStore, messages, upper, lower, jobs, 3, time.Millisecond, nil, logger)

	resolver := address.NewResolver(&fixedGeocoder{jur: address.Jurisdiction{RegionCode: "CA", DistrictCode: "12"}}, logger)
	svc := jobservice.NewJobService(resolver, directory.New(officeStore, logger), messages, jobs, &syncDispatcher{worker: worker}, nil, logger)
	jwtService := jwt_token.NewJWTService("test-signing-key", "herald", "herald")

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:    logger,
		Validator: jwtService,
		Jobs:      New(svc, status.NewAggregator(svc), logger),
	})
	return &env{router: router, jwt: jwtService}
}

func (e *env) authorize(t *testing.T, req *http.Request, ownerID id.OwnerID) {
	t.Helper()
	token, err := e.jwt.GenerateOwnerToken(uuid.UUID(ownerID), time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

func createBody(messageRef string) map[string]any {
	return map[string]any{
		"message_ref": messageRef,
		"address": map[string]string{
			"street":      "123 Main St",
			"city":        "Sacramento",
			"region_code": "ca",
			"postal_code": "95814",
		},
	}
}

func TestCreateJobRequiresAuth(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{}, &syncDispatcher{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", createBody("msg-infrastructure-2026"))
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestCreateJobRejectsGarbageToken(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{}, &syncDispatcher{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", createBody("msg-infrastructure-2026"))
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestCreateJobReturnsOffices(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{jur: address.Jurisdiction{RegionCode: "CA", DistrictCode: "12"}}, &recordingDispatcher{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", createBody("msg-infrastructure-2026"))
	e.authorize(t, req, id.NewOwnerID())
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[CreateJobResponse](t, rr)
	assert.False(t, resp.JobID.IsZero())
	require.Len(t, resp.Offices, 3)
	assert.Equal(t, "upper", resp.Offices[0].Chamber)
	assert.Equal(t, "upper", resp.Offices[1].Chamber)
	assert.Equal(t, "lower", resp.Offices[2].Chamber)
}

func TestCreateJobTerritoryTargetsSingleDelegate(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{jur: address.Jurisdiction{RegionCode: "PR"}}, &recordingDispatcher{})

	body := createBody("msg-infrastructure-2026")
	body["address"].(map[string]string)["region_code"] = "pr"
	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", body)
	e.authorize(t, req, id.NewOwnerID())
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[CreateJobResponse](t, rr)
	require.Len(t, resp.Offices, 1)
	assert.False(t, resp.Offices[0].IsVotingMember)
	assert.Equal(t, "resident-commissioner", resp.Offices[0].DelegateKind)
}

func TestCreateJobInvalidPostalCode(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{}, &recordingDispatcher{})

	body := createBody("msg-infrastructure-2026")
	body["address"].(map[string]string)["postal_code"] = "9581"
	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", body)
	e.authorize(t, req, id.NewOwnerID())
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, "validation_error")
}

func TestCreateJobUnknownMessageRef(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{jur: address.Jurisdiction{RegionCode: "CA", DistrictCode: "12"}}, &recordingDispatcher{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", createBody("msg-unknown"))
	e.authorize(t, req, id.NewOwnerID())
	rr := testutil.DoRequest(e.router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestStatusLifecycle(t *testing.T) {
	e := newDeliveringEnv(t, &scriptedSubmitter{}, &scriptedSubmitter{})
	ownerID := id.NewOwnerID()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", createBody("msg-infrastructure-2026"))
	e.authorize(t, req, ownerID)
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	created := testutil.UnmarshalResponse[CreateJobResponse](t, rr)

	statusReq := testutil.NewRequest(t, http.MethodGet, "/delivery-jobs/"+created.JobID.String())
	e.authorize(t, statusReq, ownerID)
	statusRR := testutil.DoRequest(e.router, statusReq)
	testutil.AssertStatus(t, statusRR, http.StatusOK)

	view := testutil.UnmarshalResponse[StatusResponse](t, statusRR)
	assert.Equal(t, "completed", view.Status)
	assert.Equal(t, 100, view.Progress)
	require.Len(t, view.Results, 3)
	for _, r := range view.Results {
		assert.Equal(t, "succeeded", r.Outcome)
		assert.NotNil(t, r.AttemptedAt)
	}
}

func TestStatusPartialWhenOneLaneFails(t *testing.T) {
	// The lower lane fails permanently; senators still get the message.
	e := newDeliveringEnv(t,
		&scriptedSubmitter{},
		&scriptedSubmitter{kinds: []job.ErrorKind{job.ErrorKindPermanentUnreachable}},
	)
	ownerID := id.NewOwnerID()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", createBody("msg-infrastructure-2026"))
	e.authorize(t, req, ownerID)
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	created := testutil.UnmarshalResponse[CreateJobResponse](t, rr)

	statusReq := testutil.NewRequest(t, http.MethodGet, "/delivery-jobs/"+created.JobID.String())
	e.authorize(t, statusReq, ownerID)
	statusRR := testutil.DoRequest(e.router, statusReq)
	testutil.AssertStatus(t, statusRR, http.StatusOK)

	view := testutil.UnmarshalResponse[StatusResponse](t, statusRR)
	assert.Equal(t, "partial", view.Status)
	assert.Equal(t, 100, view.Progress)

	failed := view.Results[len(view.Results)-1]
	assert.Equal(t, "failed", failed.Outcome)
	assert.Equal(t, "permanent-unreachable", failed.ErrorKind)
}

func TestStatusForbiddenForOtherOwner(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{jur: address.Jurisdiction{RegionCode: "CA", DistrictCode: "12"}}, &recordingDispatcher{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/delivery-jobs", createBody("msg-infrastructure-2026"))
	e.authorize(t, req, id.NewOwnerID())
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	created := testutil.UnmarshalResponse[CreateJobResponse](t, rr)

	statusReq := testutil.NewRequest(t, http.MethodGet, "/delivery-jobs/"+created.JobID.String())
	e.authorize(t, statusReq, id.NewOwnerID())
	statusRR := testutil.DoRequest(e.router, statusReq)

	testutil.AssertStatus(t, statusRR, http.StatusForbidden)
}

func TestStatusUnknownJobID(t *testing.T) {
	e := newEnv(t, &fixedGeocoder{}, &recordingDispatcher{})

	for _, path := range []string{
		"/delivery-jobs/" + id.NewJobID().String(),
		"/delivery-jobs/not-a-uuid",
	} {
		req := testutil.NewRequest(t, http.MethodGet, path)
		e.authorize(t, req, id.NewOwnerID())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	}
}

// recordingDispatcher accepts tasks without delivering them, so created jobs
// stay queued.
type recordingDispatcher struct{}

func (d *recordingDispatcher) Enqueue(ctx context.Context, j *job.DeliveryJob, offices []directory.Office) error {
	return nil
}

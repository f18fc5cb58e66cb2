package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/address"
	"herald/internal/directory"
	httptransport "herald/internal/transport/http"
	"herald/pkg/testutil"
)

type fixedGeocoder struct {
	jur address.Jurisdiction
	err error
}

func (g *fixedGeocoder) Locate(ctx context.Context, addr address.Address) (address.Jurisdiction, error) {
	return g.jur, g.err
}

func newRouter(t *testing.T, geocoder address.Geocoder) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	store := directory.NewInMemory()
	directory.SeedDevOffices(store)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Logger:  logger,
		Address: New(address.NewResolver(geocoder, logger), directory.New(store, logger), logger),
	})
}

func resolveBody(regionCode, postalCode string) map[string]any {
	return map[string]any{
		"address": map[string]string{
			"street":      "123 Main St",
			"city":        "Sacramento",
			"region_code": regionCode,
			"postal_code": postalCode,
		},
	}
}

func TestResolveReturnsJurisdictionAndOffices(t *testing.T) {
	router := newRouter(t, &fixedGeocoder{jur: address.Jurisdiction{
		CellID:       "cell-ca-12",
		RegionCode:   "CA",
		DistrictCode: "12",
	}})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/address/resolve", resolveBody("ca", "95814"))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[ResolveResponse](t, rr)
	assert.Equal(t, "CA", resp.Jurisdiction.RegionCode)
	assert.Equal(t, "12", resp.Jurisdiction.DistrictCode)
	require.Len(t, resp.Offices, 3)
	assert.Equal(t, "upper", resp.Offices[0].Chamber)
	assert.Equal(t, "lower", resp.Offices[2].Chamber)
}

func TestResolveTerritory(t *testing.T) {
	router := newRouter(t, &fixedGeocoder{jur: address.Jurisdiction{
		CellID:     "cell-dc",
		RegionCode: "DC",
	}})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/address/resolve", resolveBody("dc", "20001"))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[ResolveResponse](t, rr)
	require.Len(t, resp.Offices, 1)
	assert.False(t, resp.Offices[0].IsVotingMember)
	assert.Equal(t, "delegate", resp.Offices[0].DelegateKind)
}

func TestResolveInvalidPostalCode(t *testing.T) {
	router := newRouter(t, &fixedGeocoder{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/address/resolve", resolveBody("CA", "abc"))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, "validation_error")
}

func TestResolveGeocoderDown(t *testing.T) {
	router := newRouter(t, &fixedGeocoder{err: errors.New("connection refused")})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/address/resolve", resolveBody("CA", "95814"))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	testutil.AssertErrorCode(t, rr, "unavailable")
}

func TestResolveMalformedBody(t *testing.T) {
	router := newRouter(t, &fixedGeocoder{})

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/address/resolve", "{not json")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

package address

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"herald/internal/platform/config"
)

// HTTPGeocoder calls the external geocoding service over HTTP. The service
// answers with the census cell containing the address and its derived
// region/district codes.
type HTTPGeocoder struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGeocoder(cfg config.GeocoderConfig) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type geocodeResponse struct {
	CellID       string `json:"cell_id"`
	RegionCode   string `json:"region_code"`
	DistrictCode string `json:"district_code"`
}

// Locate queries the geocoder. Any transport error, non-200 status, or
// timeout is returned as-is; the resolver classifies it as unavailable.
func (g *HTTPGeocoder) Locate(ctx context.Context, addr Address) (Jurisdiction, error) {
	q := url.Values{}
	q.Set("street", addr.Street)
	q.Set("city", addr.City)
	q.Set("region", addr.RegionCode)
	q.Set("postal_code", addr.PostalCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/geocode?"+q.Encode(), nil)
	if err != nil {
		return Jurisdiction{}, fmt.Errorf("build geocode request: %w", err)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return Jurisdiction{}, fmt.Errorf("geocode request after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Jurisdiction{}, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Jurisdiction{}, fmt.Errorf("decode geocode response: %w", err)
	}

	return Jurisdiction{
		CellID:       body.CellID,
		RegionCode:   body.RegionCode,
		DistrictCode: body.DistrictCode,
	}, nil
}

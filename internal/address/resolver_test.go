package address

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "herald/pkg/domain-errors"
)

type fakeGeocoder struct {
	jur Jurisdiction
	err error
}

func (f *fakeGeocoder) Locate(ctx context.Context, addr Address) (Jurisdiction, error) {
	return f.jur, f.err
}

func validAddress() Address {
	return Address{
		Street:     "123 Main St",
		City:       "Sacramento",
		RegionCode: "CA",
		PostalCode: "95814",
	}
}

func newTestResolver(g Geocoder) *Resolver {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewResolver(g, logger)
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Address)
	}{
		{"missing street", func(a *Address) { a.Street = "  " }},
		{"missing city", func(a *Address) { a.City = "" }},
		{"missing region code", func(a *Address) { a.RegionCode = "" }},
		{"postal code too short", func(a *Address) { a.PostalCode = "9581" }},
		{"postal code with letters", func(a *Address) { a.PostalCode = "95a14" }},
		{"postal code with bad extension", func(a *Address) { a.PostalCode = "95814-12" }},
	}

	resolver := newTestResolver(&fakeGeocoder{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)

			_, err := resolver.Resolve(context.Background(), addr)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestResolvePostalCodeFormats(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{jur: Jurisdiction{RegionCode: "CA"}})

	for _, code := range []string{"95814", "95814-1234"} {
		addr := validAddress()
		addr.PostalCode = code
		_, err := resolver.Resolve(context.Background(), addr)
		assert.NoError(t, err, code)
	}
}

func TestResolveSuccess(t *testing.T) {
	want := Jurisdiction{CellID: "cell-1", RegionCode: "CA", DistrictCode: "12"}
	resolver := newTestResolver(&fakeGeocoder{jur: want})

	got, err := resolver.Resolve(context.Background(), validAddress())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveGeocoderFailure(t *testing.T) {
	resolver := newTestResolver(&fakeGeocoder{err: errors.New("connection refused")})

	_, err := resolver.Resolve(context.Background(), validAddress())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

package directory

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/internal/address"
	dErrors "herald/pkg/domain-errors"
)

func newTestDirectory(t *testing.T) (*Directory, *InMemory) {
	t.Helper()
	store := NewInMemory()
	SeedDevOffices(store)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return New(store, logger), store
}

func TestOfficesForState(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	offices, err := dir.OfficesFor(ctx, address.Jurisdiction{
		CellID:       "cell-ca-12",
		RegionCode:   "CA",
		DistrictCode: "12",
	})
	require.NoError(t, err)
	require.Len(t, offices, 3)

	// Senators first, alphabetical by holder name, then the representative.
	assert.Equal(t, "Adam Schiff", offices[0].HolderName)
	assert.Equal(t, ChamberUpper, offices[0].Chamber)
	assert.Equal(t, "Alex Padilla", offices[1].HolderName)
	assert.Equal(t, ChamberUpper, offices[1].Chamber)
	assert.Equal(t, "us-rep-CA-12", offices[2].Code)
	assert.Equal(t, ChamberLower, offices[2].Chamber)

	for _, o := range offices {
		assert.True(t, o.IsVotingMember)
	}
}

func TestOfficesForStateDistrictSelection(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	offices, err := dir.OfficesFor(ctx, address.Jurisdiction{
		RegionCode:   "CA",
		DistrictCode: "13",
	})
	require.NoError(t, err)
	require.Len(t, offices, 3)
	assert.Equal(t, "us-rep-CA-13", offices[2].Code)
}

func TestOfficesForFederalDistrict(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	offices, err := dir.OfficesFor(ctx, address.Jurisdiction{
		CellID:     "cell-dc",
		RegionCode: "DC",
	})
	require.NoError(t, err)
	require.Len(t, offices, 1)
	assert.Equal(t, ChamberLower, offices[0].Chamber)
	assert.False(t, offices[0].IsVotingMember)
	assert.Equal(t, DelegateKindDelegate, offices[0].DelegateKind)
}

func TestOfficesForPuertoRico(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	offices, err := dir.OfficesFor(ctx, address.Jurisdiction{
		RegionCode: "PR",
	})
	require.NoError(t, err)
	require.Len(t, offices, 1)
	assert.Equal(t, DelegateKindResidentCommissioner, offices[0].DelegateKind)
	assert.False(t, offices[0].IsVotingMember)
}

func TestOfficesForUnknownRegion(t *testing.T) {
	dir, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := dir.OfficesFor(ctx, address.Jurisdiction{RegionCode: "ZZ"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestOfficesForInconsistentReferenceData(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	// A state with one senator missing from the roster.
	require.NoError(t, store.Upsert(ctx, Office{
		Code: "us-sen-OR-1", Chamber: ChamberUpper, HolderName: "Jeff Merkley", RegionCode: "OR", IsVotingMember: true,
	}))
	require.NoError(t, store.Upsert(ctx, Office{
		Code: "us-rep-OR-03", Chamber: ChamberLower, HolderName: "Maxine Dexter", RegionCode: "OR", DistrictCode: "03", IsVotingMember: true,
	}))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	dir := New(store, logger)

	_, err := dir.OfficesFor(ctx, address.Jurisdiction{RegionCode: "OR", DistrictCode: "03"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestIsNonVotingRegion(t *testing.T) {
	for _, region := range []string{"DC", "PR", "GU", "VI", "AS", "MP"} {
		assert.True(t, IsNonVotingRegion(region), region)
	}
	assert.False(t, IsNonVotingRegion("CA"))
	assert.False(t, IsNonVotingRegion("WY"))
}

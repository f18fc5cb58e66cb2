package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	t.Run("list for an unknown region returns not found", func(t *testing.T) {
		_, err := store.ListByRegion(ctx, "ZZ")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("find for an unknown code returns not found", func(t *testing.T) {
		_, err := store.FindByCode(ctx, "nope")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("upsert then list and find", func(t *testing.T) {
		office := Office{
			Code: "us-sen-VT-1", Chamber: ChamberUpper, HolderName: "Peter Welch", RegionCode: "VT", IsVotingMember: true,
		}
		require.NoError(t, store.Upsert(ctx, office))

		listed, err := store.ListByRegion(ctx, "VT")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, office, listed[0])

		found, err := store.FindByCode(ctx, "us-sen-VT-1")
		require.NoError(t, err)
		assert.Equal(t, office, *found)
	})

	t.Run("upsert replaces an existing office without duplicating it", func(t *testing.T) {
		updated := Office{
			Code: "us-sen-VT-1", Chamber: ChamberUpper, HolderName: "New Holder", RegionCode: "VT", IsVotingMember: true,
		}
		require.NoError(t, store.Upsert(ctx, updated))

		listed, err := store.ListByRegion(ctx, "VT")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "New Holder", listed[0].HolderName)
	})
}

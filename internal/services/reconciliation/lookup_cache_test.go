package reconciliation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/settlement-reconciler/internal/testutil/fixtures"
	"github.com/kevin07696/settlement-reconciler/internal/testutil/mocks"
)

func TestLookupCache(t *testing.T) {
	ctx := context.Background()

	t.Run("remote lookup happens once per customer", func(t *testing.T) {
		lookup := mocks.NewMockInvoiceLookup().
			WithInvoice(fixtures.NewInvoice("cus_1").WithLine("A", 1, "10").Build())
		cache := NewLookupCache(lookup)

		first, err := cache.LatestInvoice(ctx, "cus_1")
		require.NoError(t, err)
		second, err := cache.LatestInvoice(ctx, "cus_1")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, lookup.CallsFor("cus_1"))
		assert.Equal(t, LookupStats{Requests: 2, Remote: 1, CacheHits: 1}, cache.Stats())
	})

	t.Run("missing invoice is cached", func(t *testing.T) {
		lookup := mocks.NewMockInvoiceLookup()
		cache := NewLookupCache(lookup)

		for i := 0; i < 3; i++ {
			inv, err := cache.LatestInvoice(ctx, "cus_none")
			require.NoError(t, err)
			assert.Nil(t, inv)
		}
		assert.Equal(t, 1, lookup.CallsFor("cus_none"))
		assert.Equal(t, 1, cache.Stats().NotFound)
	})

	t.Run("failure is cached and returns no invoice", func(t *testing.T) {
		boom := errors.New("connection reset")
		lookup := mocks.NewMockInvoiceLookup().WithError("cus_err", boom)
		cache := NewLookupCache(lookup)

		inv, err := cache.LatestInvoice(ctx, "cus_err")
		assert.Nil(t, inv)
		assert.ErrorIs(t, err, boom)

		inv, err = cache.LatestInvoice(ctx, "cus_err")
		assert.Nil(t, inv)
		assert.ErrorIs(t, err, boom)

		assert.Equal(t, 1, lookup.CallsFor("cus_err"))
		stats := cache.Stats()
		assert.Equal(t, 1, stats.Failures)
		assert.Equal(t, 1, stats.CacheHits)
	})
}

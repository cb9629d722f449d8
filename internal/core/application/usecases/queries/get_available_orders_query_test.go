package queries_test

import (
	"testing"

	"foodcourt/internal/core/application/usecases/queries"
	"foodcourt/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetAvailableOrdersQuery(t *testing.T) {
	location, err := kernel.NewGeoPoint(-23.5505, -46.6333)
	require.NoError(t, err)

	t.Run("valid_with_location", func(t *testing.T) {
		tenantID := kernel.NewUUID()
		query, err := queries.NewGetAvailableOrdersQuery(tenantID, &location)

		require.NoError(t, err)
		assert.NoError(t, query.Validate())
		assert.True(t, query.TenantID().IsEqual(tenantID))
		require.NotNil(t, query.DriverLocation())
		assert.True(t, query.DriverLocation().IsEqual(location))
	})

	t.Run("valid_without_location", func(t *testing.T) {
		query, err := queries.NewGetAvailableOrdersQuery(kernel.NewUUID(), nil)

		require.NoError(t, err)
		assert.Nil(t, query.DriverLocation())
	})

	t.Run("empty_tenant", func(t *testing.T) {
		_, err := queries.NewGetAvailableOrdersQuery(kernel.UUID{}, &location)
		assert.Error(t, err)
	})

	t.Run("unconstructed_query_fails_validation", func(t *testing.T) {
		var query queries.GetAvailableOrdersQuery
		assert.ErrorIs(t, query.Validate(), queries.ErrGetAvailableOrdersQueryIsNotConstructed)
	})
}

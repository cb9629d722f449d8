package services_test

import (
	"testing"

	"foodcourt/internal/core/domain/model/kernel"
	"foodcourt/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func TestDistanceKm(t *testing.T) {
	t.Run("zero_distance_for_identical_points", func(t *testing.T) {
		p := point(t, -23.5505, -46.6333)
		assert.Zero(t, services.DistanceKm(p, p))
	})

	t.Run("one_degree_of_longitude_at_the_equator", func(t *testing.T) {
		d := services.DistanceKm(point(t, 0, 0), point(t, 0, 1))
		assert.InDelta(t, 111.19, d, 0.01)
	})

	t.Run("is_symmetric", func(t *testing.T) {
		a := point(t, -23.5505, -46.6333)
		b := point(t, -23.5629, -46.6544)

		assert.Equal(t, services.DistanceKm(a, b), services.DistanceKm(b, a))
	})

	t.Run("rounds_to_two_decimals", func(t *testing.T) {
		d := services.DistanceKm(point(t, 0, 0), point(t, 0, 0.001))
		assert.Equal(t, d, float64(int(d*100))/100)
	})
}

func TestEtaMinutes(t *testing.T) {
	t.Run("thirty_km_is_one_hour_plus_buffer", func(t *testing.T) {
		assert.Equal(t, 75, services.EtaMinutes(30))
	})

	t.Run("zero_distance_is_just_the_buffer", func(t *testing.T) {
		assert.Equal(t, 15, services.EtaMinutes(0))
	})

	t.Run("rounds_travel_time_up", func(t *testing.T) {
		// 1 km at 30 km/h is exactly 2 minutes; 1.1 km rounds up to 3.
		assert.Equal(t, 17, services.EtaMinutes(1))
		assert.Equal(t, 18, services.EtaMinutes(1.1))
	})
}

func TestFeePolicy_DeliveryFee(t *testing.T) {
	base, err := kernel.NewMoney(500)
	require.NoError(t, err)
	perKm, err := kernel.NewMoney(200)
	require.NoError(t, err)
	policy := services.NewFeePolicy(base, perKm)

	t.Run("zero_distance_charges_the_base_fee", func(t *testing.T) {
		assert.Equal(t, int64(500), policy.DeliveryFee(0).Cents())
	})

	t.Run("distance_component_rounds_up_to_the_next_cent", func(t *testing.T) {
		// 2.5 km * 200 cents = 500 cents exactly.
		assert.Equal(t, int64(1000), policy.DeliveryFee(2.5).Cents())
		// 2.501 km * 200 cents = 500.2 cents, rounds up to 501.
		assert.Equal(t, int64(1001), policy.DeliveryFee(2.501).Cents())
	})
}

func TestRankNearest(t *testing.T) {
	t.Run("orders_by_ascending_distance", func(t *testing.T) {
		target := point(t, 0, 0)
		far := services.DriverCandidate{DriverID: kernel.NewUUID(), Location: point(t, 0, 2)}
		near := services.DriverCandidate{DriverID: kernel.NewUUID(), Location: point(t, 0, 0.5)}
		mid := services.DriverCandidate{DriverID: kernel.NewUUID(), Location: point(t, 0, 1)}

		ranked := services.RankNearest(target, []services.DriverCandidate{far, near, mid})

		require.Len(t, ranked, 3)
		assert.True(t, ranked[0].DriverID.IsEqual(near.DriverID))
		assert.True(t, ranked[1].DriverID.IsEqual(mid.DriverID))
		assert.True(t, ranked[2].DriverID.IsEqual(far.DriverID))
	})

	t.Run("equal_distances_keep_input_order", func(t *testing.T) {
		target := point(t, 0, 0)
		first := services.DriverCandidate{DriverID: kernel.NewUUID(), Location: point(t, 0, 1)}
		second := services.DriverCandidate{DriverID: kernel.NewUUID(), Location: point(t, 1, 0)}

		ranked := services.RankNearest(target, []services.DriverCandidate{first, second})

		assert.True(t, ranked[0].DriverID.IsEqual(first.DriverID))
		assert.True(t, ranked[1].DriverID.IsEqual(second.DriverID))
	})

	t.Run("does_not_mutate_the_input", func(t *testing.T) {
		target := point(t, 0, 0)
		far := services.DriverCandidate{DriverID: kernel.NewUUID(), Location: point(t, 0, 2)}
		near := services.DriverCandidate{DriverID: kernel.NewUUID(), Location: point(t, 0, 1)}
		input := []services.DriverCandidate{far, near}

		_ = services.RankNearest(target, input)

		assert.True(t, input[0].DriverID.IsEqual(far.DriverID))
	})
}

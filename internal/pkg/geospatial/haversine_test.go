package geospatial_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/imoveis/internal/pkg/geospatial"
)

func TestHaversine_SamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{43.263, -2.935},
		{-23.5505, -46.6333},
		{90, 0},
		{-90, 180},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, geospatial.Haversine(p[0], p[1], p[0], p[1]), "point %v", p)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	cases := []struct{ lat1, lon1, lat2, lon2 float64 }{
		{0, 0, 0, 0.02},
		{43.263, -2.935, 43.2627, -2.9253},
		{-23.5505, -46.6333, -22.9068, -43.1729},
		{51.5074, -0.1278, 40.7128, -74.0060},
	}
	for _, c := range cases {
		ab := geospatial.Haversine(c.lat1, c.lon1, c.lat2, c.lon2)
		ba := geospatial.Haversine(c.lat2, c.lon2, c.lat1, c.lon1)
		assert.InDelta(t, ab, ba, 1e-6)
	}
}

func TestHaversine_OneDegreeLatitudeAtEquator(t *testing.T) {
	d := geospatial.Haversine(0, 0, 1, 0)
	assert.InDelta(t, 111195.0, d, 100.0)
}

func TestHaversine_SmallLongitudeOffset(t *testing.T) {
	// 0.02 degrees of longitude on the equator is roughly 2224 m.
	d := geospatial.Haversine(0, 0, 0, 0.02)
	assert.InDelta(t, 2223.9, d, 1.0)
	assert.Greater(t, d, 2000.0)
	assert.Less(t, d, 3000.0)
}

func TestHaversine_OutOfRangeInputsAccepted(t *testing.T) {
	d := geospatial.Haversine(95, 200, 0, 0)
	assert.False(t, math.IsNaN(d))
	assert.GreaterOrEqual(t, d, 0.0)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 2223.9, geospatial.RoundTo(2223.8985, 1))
	assert.Equal(t, 0.0, geospatial.RoundTo(0.04, 1))
	assert.Equal(t, 12.0, geospatial.RoundTo(11.96, 1))
}

func TestRoundTo_HalfwayCases(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.15, 0.1},   // binary value is just below .15
		{10.25, 10.2}, // exact tie goes to even
		{10.35, 10.3}, // binary value is just below .35
		{0.45, 0.5},   // binary value is just above .45
		{2.5, 2.5},
		{-10.25, -10.2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, geospatial.RoundTo(c.in, 1), "RoundTo(%v, 1)", c.in)
	}
}

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatLngAccessors(t *testing.T) {
	p := NewLatLng(51.5, -0.12)

	assert.InDelta(t, 51.5, p.Lat(), 1e-12)
	assert.InDelta(t, -0.12, p.Lng(), 1e-12)
	assert.True(t, p.IsValid())
	assert.Equal(t, "51.500000,-0.120000", p.String())
}

func TestLatLngEqual(t *testing.T) {
	a := NewLatLng(10, 20)

	assert.True(t, a.Equal(NewLatLng(10, 20)))
	assert.True(t, a.Equal(NewLatLng(10+1e-12, 20-1e-12)))
	assert.False(t, a.Equal(NewLatLng(10.0001, 20)))
	assert.False(t, a.Equal(NewLatLng(10, 20.0001)))
}

func TestLatLngDistance(t *testing.T) {
	// One degree of longitude on the equator.
	d := NewLatLng(0, 0).Distance(NewLatLng(0, 1))
	assert.InDelta(t, 111319.49, d, 1)
}

func TestWebMercatorScale(t *testing.T) {
	var m WebMercator

	assert.Equal(t, 256.0, m.Scale(0))
	assert.Equal(t, 512.0, m.Scale(1))
	assert.InDelta(t, 256*math.Sqrt2, m.Scale(0.5), 1e-9)
}

func TestWebMercatorProjectOrigin(t *testing.T) {
	var m WebMercator

	pt := m.Project(NewLatLng(0, 0), 0)
	assert.InDelta(t, 128, pt.X, 1e-9)
	assert.InDelta(t, 128, pt.Y, 1e-9)

	pt = m.Project(NewLatLng(0, -180), 2)
	assert.InDelta(t, 0, pt.X, 1e-9)
	assert.InDelta(t, 512, pt.Y, 1e-9)
}

func TestWebMercatorClampsLatitude(t *testing.T) {
	var m WebMercator

	top := m.Project(NewLatLng(89.9, 0), 0)
	assert.InDelta(t, 0, top.Y, 1e-6)

	bottom := m.Project(NewLatLng(-89.9, 0), 0)
	assert.InDelta(t, 256, bottom.Y, 1e-6)
}

func TestWebMercatorRoundTrip(t *testing.T) {
	var m WebMercator

	tests := []struct {
		name string
		pos  LatLng
		zoom float64
	}{
		{"equator", NewLatLng(0, 0), 0},
		{"london", NewLatLng(51.5074, -0.1278), 10},
		{"sydney fractional", NewLatLng(-33.8688, 151.2093), 12.37},
		{"near pole", NewLatLng(84, 179), 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := m.Project(tt.pos, tt.zoom)
			back := m.Unproject(pt, tt.zoom)
			require.InDelta(t, tt.pos.Lat(), back.Lat(), 1e-9)
			require.InDelta(t, tt.pos.Lng(), back.Lng(), 1e-9)
		})
	}
}

func TestPointHelpers(t *testing.T) {
	assert.True(t, IsZeroPoint(Point{}))
	assert.False(t, IsZeroPoint(Pt(0, 1e-12)))

	p := Pt(3, 4).Sub(Pt(1, 1))
	assert.Equal(t, Pt(2, 3), p)
	assert.Equal(t, Pt(2, 3), RoundPoint(Pt(1.6, 2.5)))
}

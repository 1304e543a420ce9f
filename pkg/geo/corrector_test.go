package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/content-migrate/pkg/model"
)

func TestCorrector_SwappedParis(t *testing.T) {
	c := NewCorrector()

	r := c.Correct(2.3522, 48.8566)

	assert.Equal(t, CorrectionSwapped, r.Correction)
	assert.Equal(t, 48.8566, r.Latitude)
	assert.Equal(t, 2.3522, r.Longitude)
	assert.True(t, r.Changed())
}

func TestCorrector_Cases(t *testing.T) {
	tests := []struct {
		name       string
		strict     bool
		lat, lng   float64
		wantLat    float64
		wantLng    float64
		correction Correction
	}{
		{"valid lyon", false, 45.764, 4.8357, 45.764, 4.8357, CorrectionAlreadyValid},
		{"valid brest negative lng", false, 48.39, -4.48, 48.39, -4.48, CorrectionAlreadyValid},
		{"swapped brest", false, -4.48, 48.39, 48.39, -4.48, CorrectionSwapped},
		{"unknown location", false, 0, 0, 0, 0, CorrectionUnknownLocation},
		{"new york left alone", false, 40.71, -74.0, 40.71, -74.0, CorrectionNone},
		{"east africa lenient", false, 5, 40, 5, 40, CorrectionNone},
		{"east africa strict", true, 5, 40, 5, -40, CorrectionLongitudeFlipped},
		{"swap wins over flip", true, 2.3522, 48.8566, 48.8566, 2.3522, CorrectionSwapped},
		{"box edge is inside", false, 41, -5, 41, -5, CorrectionAlreadyValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.strict {
				opts = append(opts, Strict())
			}
			r := NewCorrector(opts...).Correct(tt.lat, tt.lng)
			assert.Equal(t, tt.correction, r.Correction)
			assert.Equal(t, tt.wantLat, r.Latitude)
			assert.Equal(t, tt.wantLng, r.Longitude)
		})
	}
}

func TestCorrector_Idempotent(t *testing.T) {
	correctors := map[string]*Corrector{
		"lenient": NewCorrector(),
		"strict":  NewCorrector(Strict()),
		"self-overlapping bad region": NewCorrector(WithBadRegion(BoundingBox{MinLat: -5, MaxLat: 15, MinLng: -20, MaxLng: 20})),
	}

	for name, c := range correctors {
		t.Run(name, func(t *testing.T) {
			for lat := -90.0; lat <= 90; lat += 2.5 {
				for lng := -180.0; lng <= 180; lng += 2.5 {
					once := c.Correct(lat, lng)
					twice := c.Correct(once.Latitude, once.Longitude)
					require.Equal(t, once.Latitude, twice.Latitude, "lat for (%v, %v)", lat, lng)
					require.Equal(t, once.Longitude, twice.Longitude, "lng for (%v, %v)", lat, lng)
					require.False(t, twice.Changed(), "second pass changed (%v, %v)", lat, lng)
				}
			}
		})
	}
}

func TestCorrector_StrictFlipLeavesBadRegion(t *testing.T) {
	straddling := BoundingBox{MinLat: -5, MaxLat: 15, MinLng: -20, MaxLng: 30}

	tests := []struct {
		name       string
		lat, lng   float64
		wantLng    float64
		correction Correction
	}{
		{"flip lands outside home box", 5, 25, -25, CorrectionLongitudeFlipped},
		{"flip would stay in bad region", 5, 10, 10, CorrectionNone},
		{"flipped point is left alone", 5, -25, -25, CorrectionNone},
	}

	c := NewCorrector(WithBadRegion(straddling))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Correct(tt.lat, tt.lng)
			assert.Equal(t, tt.correction, r.Correction)
			assert.Equal(t, tt.wantLng, r.Longitude)
			assert.False(t, c.Home().Contains(r.Latitude, r.Longitude))
			assert.False(t, c.Correct(r.Latitude, r.Longitude).Changed())
		})
	}
}

func TestCorrector_CorrectLocationKeepsAddress(t *testing.T) {
	g, r := NewCorrector().CorrectLocation(model.GeoLocation{Latitude: 2.35, Longitude: 48.85, Address: "Paris"})

	assert.Equal(t, CorrectionSwapped, r.Correction)
	assert.Equal(t, model.GeoLocation{Latitude: 48.85, Longitude: 2.35, Address: "Paris"}, g)
}

func TestParseBoundingBox(t *testing.T) {
	b, err := ParseBoundingBox("41, 51, -5, 10")
	require.NoError(t, err)
	assert.Equal(t, MetropolitanFrance, b)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "51,41,-5,10"} {
		_, err := ParseBoundingBox(bad)
		assert.Error(t, err, bad)
	}
}

func TestWithHomeRegion(t *testing.T) {
	reunion := BoundingBox{MinLat: -21.5, MaxLat: -20.8, MinLng: 55.2, MaxLng: 55.9}
	c := NewCorrector(WithHomeRegion(reunion))

	r := c.Correct(55.5, -21.1)
	assert.Equal(t, CorrectionSwapped, r.Correction)
	assert.Equal(t, c.Home(), reunion)
}

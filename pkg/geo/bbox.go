package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// BoundingBox is an inclusive latitude/longitude rectangle
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

var (
	// MetropolitanFrance is the default home region
	MetropolitanFrance = BoundingBox{MinLat: 41, MaxLat: 51, MinLng: -5, MaxLng: 10}
	// EastAfrica is where mis-signed legacy points were observed
	EastAfrica = BoundingBox{MinLat: -5, MaxLat: 15, MinLng: 30, MaxLng: 55}
)

// Contains reports whether the point lies inside the box
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("lat %g..%g, lng %g..%g", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
}

// ParseBoundingBox reads "minLat,maxLat,minLng,maxLng"
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box %q: want minLat,maxLat,minLng,maxLng", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bounding box %q: %w", s, err)
		}
		v[i] = f
	}

	b := BoundingBox{MinLat: v[0], MaxLat: v[1], MinLng: v[2], MaxLng: v[3]}
	if b.MinLat > b.MaxLat || b.MinLng > b.MaxLng {
		return BoundingBox{}, fmt.Errorf("bounding box %q: minimum above maximum", s)
	}
	return b, nil
}

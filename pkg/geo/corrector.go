// Package geo detects and fixes coordinate pairs stored with swapped axes or
// a mis-signed longitude.
package geo

import (
	"fmt"
	"math"

	"github.com/David-Botos/content-migrate/pkg/model"
)

// Correction describes what the corrector did to a point
type Correction int

const (
	// CorrectionNone means the point matched no known bug pattern and was left alone
	CorrectionNone Correction = iota
	// CorrectionAlreadyValid means the point already lies in the home region
	CorrectionAlreadyValid
	// CorrectionSwapped means latitude and longitude were exchanged
	CorrectionSwapped
	// CorrectionLongitudeFlipped means the longitude sign was inverted
	CorrectionLongitudeFlipped
	// CorrectionUnknownLocation means the point is the zero "unknown" location
	CorrectionUnknownLocation
)

func (c Correction) String() string {
	switch c {
	case CorrectionNone:
		return "unrecoverable"
	case CorrectionAlreadyValid:
		return "valid"
	case CorrectionSwapped:
		return "swapped"
	case CorrectionLongitudeFlipped:
		return "longitude_flipped"
	case CorrectionUnknownLocation:
		return "unknown_location"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Result is a corrected point
type Result struct {
	Latitude   float64
	Longitude  float64
	Correction Correction
}

// Changed reports whether the result differs from its input
func (r Result) Changed() bool {
	return r.Correction == CorrectionSwapped || r.Correction == CorrectionLongitudeFlipped
}

// Corrector checks points against a home region and, in strict mode, a
// known bad region. It holds no mutable state.
type Corrector struct {
	home      BoundingBox
	badRegion BoundingBox
	strict    bool
}

// Option configures a Corrector
type Option func(*Corrector)

// WithHomeRegion replaces the default home region
func WithHomeRegion(b BoundingBox) Option {
	return func(c *Corrector) { c.home = b }
}

// WithBadRegion sets the known bad region and enables strict mode
func WithBadRegion(b BoundingBox) Option {
	return func(c *Corrector) {
		c.badRegion = b
		c.strict = true
	}
}

// Strict enables the longitude sign check against the default bad region
func Strict() Option {
	return func(c *Corrector) { c.strict = true }
}

// NewCorrector builds a corrector for metropolitan France unless configured otherwise
func NewCorrector(opts ...Option) *Corrector {
	c := &Corrector{
		home:      MetropolitanFrance,
		badRegion: EastAfrica,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Home returns the home region
func (c *Corrector) Home() BoundingBox { return c.home }

// Correct returns the corrected pair. Valid and corrected points are fixed
// points: correcting a result again returns it unchanged.
func (c *Corrector) Correct(lat, lng float64) Result {
	unchanged := Result{Latitude: lat, Longitude: lng, Correction: CorrectionNone}

	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return unchanged
	}
	if lat == 0 && lng == 0 {
		unchanged.Correction = CorrectionUnknownLocation
		return unchanged
	}

	if c.home.Contains(lat, lng) {
		unchanged.Correction = CorrectionAlreadyValid
		return unchanged
	}

	if c.home.Contains(lng, lat) {
		return Result{Latitude: lng, Longitude: lat, Correction: CorrectionSwapped}
	}

	// a flip that lands back in the bad region would undo itself on the next pass
	if c.strict && c.badRegion.Contains(lat, lng) && !c.badRegion.Contains(lat, -lng) {
		return Result{Latitude: lat, Longitude: -lng, Correction: CorrectionLongitudeFlipped}
	}

	return unchanged
}

// CorrectLocation applies Correct to a GeoLocation, keeping its address
func (c *Corrector) CorrectLocation(g model.GeoLocation) (model.GeoLocation, Result) {
	r := c.Correct(g.Latitude, g.Longitude)
	g.Latitude, g.Longitude = r.Latitude, r.Longitude
	return g, r
}

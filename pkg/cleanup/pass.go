// Package cleanup runs correction passes over records that were already
// migrated: coordinate fixes and address splitting.
package cleanup

import (
	"github.com/David-Botos/content-migrate/pkg/address"
	"github.com/David-Botos/content-migrate/pkg/cleaner"
	"github.com/David-Botos/content-migrate/pkg/geo"
	"github.com/David-Botos/content-migrate/pkg/model"
)

// Finding is the result of checking one record
type Finding struct {
	Status    string // pass-specific classification, e.g. "swapped" or "already_split"
	Fixable   bool
	Before    string
	After     string
	Operation string // cleaning operation name recorded when fixed
	Reason    string
	Fixed     model.EntityRecord // record with the fix applied, valid when Fixable
}

// Pass checks records of the entity types it applies to
type Pass interface {
	Name() string
	Column() string
	Applies(entity model.EntityType) bool
	Check(r model.EntityRecord) Finding
}

// GeoPass detects swapped or mis-signed coordinates
type GeoPass struct {
	corrector *geo.Corrector
}

// NewGeoPass creates a geo pass. A nil corrector uses the lenient default.
func NewGeoPass(c *geo.Corrector) *GeoPass {
	if c == nil {
		c = geo.NewCorrector()
	}
	return &GeoPass{corrector: c}
}

// Name identifies the pass in reports and on the command line
func (p *GeoPass) Name() string { return "geo" }

// Column is the record field the pass rewrites
func (p *GeoPass) Column() string { return "location" }

// Applies reports whether the entity type carries a location
func (p *GeoPass) Applies(entity model.EntityType) bool {
	return entity.HasLocation()
}

// Check runs the corrector on the record's coordinates. Records without
// coordinates report "no_location"; a changed point makes the finding fixable.
func (p *GeoPass) Check(r model.EntityRecord) Finding {
	if r.Location == nil || !r.Location.HasCoordinates() {
		return Finding{Status: "no_location"}
	}

	before := *r.Location
	after, res := p.corrector.CorrectLocation(before)
	f := Finding{
		Status: res.Correction.String(),
		Before: cleaner.FormatPoint(before),
		After:  cleaner.FormatPoint(after),
	}
	if !res.Changed() {
		return f
	}

	f.Fixable = true
	f.Operation = cleaner.OpGeo + "_" + res.Correction.String()
	f.Reason = "outside_home_region"
	f.Fixed = r
	f.Fixed.Location = &after
	return f
}

// AddressPass splits addresses that were stored as a single street line
type AddressPass struct {
	parser *address.Parser
}

// NewAddressPass creates an address pass
func NewAddressPass(p *address.Parser) *AddressPass {
	if p == nil {
		p = address.NewParser(nil)
	}
	return &AddressPass{parser: p}
}

// Name identifies the pass in reports and on the command line
func (p *AddressPass) Name() string { return "address" }

// Column is the record field the pass rewrites
func (p *AddressPass) Column() string { return "address" }

// Applies reports whether the entity type carries an address
func (p *AddressPass) Applies(entity model.EntityType) bool {
	return entity.HasAddress()
}

// Check parses single-line addresses into street, postal code and city.
// Addresses that are already split or empty are reported but never fixable.
func (p *AddressPass) Check(r model.EntityRecord) Finding {
	var current model.ParsedAddress
	if r.Address != nil {
		current = *r.Address
	}
	if current.IsSplit() {
		return Finding{Status: "already_split", Before: current.String()}
	}

	raw := current.Street
	if raw == "" && r.Location != nil {
		raw = r.Location.Address
	}
	if raw == "" {
		return Finding{Status: "no_address"}
	}

	parsed := p.parser.Parse(raw)
	f := Finding{Before: raw, After: parsed.Value.String()}
	if !parsed.Value.IsSplit() {
		f.Status = "unsplittable"
		return f
	}

	f.Status = "split_" + parsed.Outcome.String()
	f.Fixable = true
	f.Operation = cleaner.OpAddress + "_split"
	f.Reason = parsed.Reason
	if f.Reason == "" {
		f.Reason = "unsplit_address"
	}
	split := parsed.Value
	f.Fixed = r
	f.Fixed.Address = &split
	return f
}

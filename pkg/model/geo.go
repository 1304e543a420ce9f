package model

import (
	"fmt"
	"strings"
)

// GeoLocation is a point with an optional human-readable address.
// The zero value is the valid "unknown location".
type GeoLocation struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// HasCoordinates reports whether the location carries a non-zero point
func (g GeoLocation) HasCoordinates() bool {
	return g.Latitude != 0 || g.Longitude != 0
}

func (g GeoLocation) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", g.Latitude, g.Longitude)
}

// ParsedAddress is a French postal address split into its parts
type ParsedAddress struct {
	Street     string
	City       string
	PostalCode string
}

// IsEmpty reports whether no part of the address is known
func (a ParsedAddress) IsEmpty() bool {
	return a.Street == "" && a.City == "" && a.PostalCode == ""
}

// IsSplit reports whether the address carries a postal code or city
func (a ParsedAddress) IsSplit() bool {
	return a.City != "" || a.PostalCode != ""
}

func (a ParsedAddress) String() string {
	tail := strings.TrimSpace(a.PostalCode + " " + a.City)
	switch {
	case a.Street == "":
		return tail
	case tail == "":
		return a.Street
	default:
		return a.Street + ", " + tail
	}
}

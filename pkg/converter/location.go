package converter

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
)

// ParseLocation recovers a GeoLocation from either
//
//	{"coordinates": [lng, lat], "address": "..."}
//	{"lat": 48.85, "lng": 2.35, "address": "..."}
//
// Anything else yields the zero location.
func (c *TypeConverter) ParseLocation(blob string) model.Parsed[model.GeoLocation] {
	if dump.IsNull(blob) {
		return model.Clean(model.GeoLocation{})
	}

	s := normalizeBlob(blob)
	if dump.IsNull(s) || c.isEmptySet(s) {
		return model.Clean(model.GeoLocation{})
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		c.logger.Warn("Unparseable location blob, using unknown location",
			zap.String("blob", truncate(blob, 120)),
			zap.Error(err))
		return model.Defaulted(model.GeoLocation{}, "invalid_location_object")
	}

	address, _ := obj["address"].(string)

	if coords, ok := obj["coordinates"].([]any); ok {
		if len(coords) >= 2 {
			lng, lngOK := toFloat(coords[0])
			lat, latOK := toFloat(coords[1])
			if latOK && lngOK {
				return model.Clean(model.GeoLocation{Latitude: lat, Longitude: lng, Address: address})
			}
		}
		c.logger.Warn("Malformed coordinates pair, using unknown location",
			zap.String("blob", truncate(blob, 120)))
		return model.Defaulted(model.GeoLocation{}, "invalid_coordinates")
	}

	rawLat, hasLat := obj["lat"]
	rawLng, hasLng := obj["lng"]
	if hasLat && hasLng {
		lat, latOK := toFloat(rawLat)
		lng, lngOK := toFloat(rawLng)
		if latOK && lngOK {
			return model.Clean(model.GeoLocation{Latitude: lat, Longitude: lng, Address: address})
		}
	}

	c.logger.Warn("Location blob has no usable coordinates, using unknown location",
		zap.String("blob", truncate(blob, 120)))
	return model.Defaulted(model.GeoLocation{}, "missing_coordinates")
}

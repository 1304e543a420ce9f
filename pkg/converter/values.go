// pkg/converter/values.go
package converter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
)

// timestampLayouts lists the formats seen in legacy dumps, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseBool converts a flag field. ok is false for null sentinels and for
// values that are not recognizable booleans.
func (c *TypeConverter) ParseBool(s string) (value bool, ok bool) {
	if dump.IsNull(s) {
		return false, false
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "on", "oui":
		return true, true
	case "false", "f", "no", "n", "0", "off", "non":
		return false, true
	default:
		c.logger.Warn("Cannot convert value to boolean", zap.String("value", s))
		return false, false
	}
}

// ParseTimestamp converts a date field. Null input is a clean zero time;
// unrecognized input is defaulted to the zero time.
func (c *TypeConverter) ParseTimestamp(s string) model.Parsed[time.Time] {
	if dump.IsNull(s) {
		return model.Clean(time.Time{})
	}
	v := strings.TrimSpace(s)

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, v, c.location); err == nil {
			return model.Clean(t)
		}
	}

	// Unix epoch in seconds or milliseconds
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if n > 1e11 {
			return model.Recovered(time.UnixMilli(n).In(c.location), "epoch_millis")
		}
		return model.Recovered(time.Unix(n, 0).In(c.location), "epoch_seconds")
	}

	c.logger.Warn("Unrecognized timestamp, leaving unset", zap.String("value", s))
	return model.Defaulted(time.Time{}, "unrecognized_timestamp")
}

// ParseFloat converts a numeric field, rejecting NaN and infinities
func (c *TypeConverter) ParseFloat(s string) (float64, bool) {
	if dump.IsNull(s) {
		return 0, false
	}
	return toFloat(strings.TrimSpace(s))
}

// toFloat accepts JSON numbers and numeric strings
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

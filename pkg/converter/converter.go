// pkg/converter/converter.go

// Package converter turns cleaned dump fields into typed values. Every parser
// here is total: malformed input yields a documented default and an Outcome
// describing how the value was obtained.
package converter

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// TypeConverter handles conversion of cleaned field values and nested blobs
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config   TypeConverterConfig
	location *time.Location
}

// TypeConverterConfig provides configuration options for value conversion
type TypeConverterConfig struct {
	// Timezone applied to timestamps that carry no offset
	DefaultTimezone string
	// Literal blobs meaning "no tags"
	EmptySetSentinels []string
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		DefaultTimezone:   "Europe/Paris",
		EmptySetSentinels: []string{"{}", "[]", "{\"\"}", "[\"\"]"},
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(config.DefaultTimezone)
	if err != nil || config.DefaultTimezone == "" {
		if config.DefaultTimezone != "" {
			logger.Warn("Unknown default timezone, using UTC",
				zap.String("timezone", config.DefaultTimezone),
				zap.Error(err))
		}
		loc = time.UTC
	}

	return &TypeConverter{
		logger:   logger,
		config:   config,
		location: loc,
	}
}

// normalizeBlob unescapes quotes and strips one layer of outer quoting
func normalizeBlob(blob string) string {
	s := strings.TrimSpace(strings.ReplaceAll(blob, `\"`, `"`))
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func (c *TypeConverter) isEmptySet(s string) bool {
	compact := strings.Join(strings.Fields(s), "")
	for _, sentinel := range c.config.EmptySetSentinels {
		if compact == sentinel {
			return true
		}
	}
	return false
}

// truncate shortens blobs before they are logged
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

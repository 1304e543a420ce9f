// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"strings"
	"time"

	"github.com/David-Botos/content-migrate/pkg/model"
)

// Operation names prefixes. The outcome is appended: "tags_recovered".
const (
	OpTags      = "tags"
	OpLocation  = "location"
	OpTimestamp = "timestamp"
	OpCategory  = "category"
	OpAddress   = "address"
	OpGeo       = "geo"
	OpAuthor    = "author"
)

// Track queues an operation for a parse that was not clean and returns the
// parsed value. render formats the stored value for the diagnostic.
func Track[T any](r *Recorder, cctx model.CleaningContext, prefix, original string, p model.Parsed[T], render func(T) string) T {
	if r == nil || p.IsClean() {
		return p.Value
	}
	r.Add(NewOperation(cctx, original, render(p.Value), prefix+"_"+p.Outcome.String(), p.Reason))
	return p.Value
}

// NewOperation builds a cleaning operation from its context
func NewOperation(cctx model.CleaningContext, original, newValue, operation, reason string) model.CleaningOperation {
	return model.CleaningOperation{
		RunID:         cctx.RunID,
		EntityType:    cctx.EntityType,
		ColumnName:    cctx.ColumnName,
		OriginalValue: original,
		NewValue:      newValue,
		RowIdentifier: cctx.RowIdentifier,
		Operation:     operation,
		Reason:        reason,
	}
}

// AuthorOperation records an author substituted for a missing one
func AuthorOperation(cctx model.CleaningContext, original, substitute, reason string) model.CleaningOperation {
	return NewOperation(cctx, original, substitute, OpAuthor+"_"+model.OutcomeDefaulted.String(), reason)
}

// FormatTags renders a tag set for diagnostics
func FormatTags(tags model.TagSet) string {
	return "[" + strings.Join(tags, ", ") + "]"
}

// FormatPoint renders coordinates for diagnostics
func FormatPoint(g model.GeoLocation) string {
	return fmt.Sprintf("%.6f,%.6f", g.Latitude, g.Longitude)
}

// FormatTime renders a timestamp for diagnostics
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatAddress renders a parsed address for diagnostics
func FormatAddress(a model.ParsedAddress) string {
	return a.String()
}

// FormatString is the identity renderer
func FormatString(s string) string {
	return s
}

// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single value that did not parse cleanly and
// was recovered or replaced by a default during migration or a cleanup pass.
type CleaningOperation struct {
	ID            string     // Unique operation identifier
	RunID         string     // Migration run or cleanup pass that produced it
	EntityType    EntityType // Entity whose field was cleaned
	ColumnName    string     // Column that was cleaned
	OriginalValue string     // Raw value as found in the dump or store
	NewValue      string     // Value stored after cleaning
	RowIdentifier string     // ID of the source row
	Operation     string     // Type of cleaning performed (e.g., "tag_manual_split")
	Reason        string     // Reason for cleaning (e.g., "invalid_array_literal")
	CleanedAt     time.Time
}

// CleaningContext contains information needed for recording a cleaned value
type CleaningContext struct {
	RunID         string
	EntityType    EntityType
	ColumnName    string
	RowIdentifier string
}

// pkg/model/metadata.go
package model

import (
	"fmt"
	"strings"
)

// TableMetadata describes the fixed column order of one entity's dump file
type TableMetadata struct {
	Entity  EntityType // Entity the rows belong to
	Table   string     // Legacy table name, informational
	Columns []Column   // Column definitions, in tuple order
}

// Column represents one positional field of a dump tuple
type Column struct {
	Name     string // Column name
	Required bool   // Whether an empty value makes the row unusable
}

// BoundRow maps column names to cleaned field values for a single row
type BoundRow map[string]string

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in tuple order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

// Bind pairs cleaned fields with the layout's columns. It fails when the row
// has fewer fields than the layout declares; surplus fields are reported
// through the returned count so the caller can warn about them.
func (tm *TableMetadata) Bind(fields []string) (BoundRow, int, error) {
	if len(fields) < len(tm.Columns) {
		return nil, 0, fmt.Errorf("row has %d fields, %s layout expects %d",
			len(fields), tm.Entity, len(tm.Columns))
	}

	row := make(BoundRow, len(tm.Columns))
	for i, col := range tm.Columns {
		row[col.Name] = fields[i]
	}

	for _, col := range tm.Columns {
		if col.Required && strings.TrimSpace(row[col.Name]) == "" {
			return nil, 0, fmt.Errorf("required column %q is empty", col.Name)
		}
	}

	return row, len(fields) - len(tm.Columns), nil
}

// Layout returns the dump column order for an entity type. The returned value
// is a fresh copy and may be modified by the caller.
func Layout(t EntityType) (*TableMetadata, error) {
	var cols []Column
	var table string

	switch t {
	case EntityTip:
		table = "tips"
		cols = columns("id!", "title", "content", "author", "publishDate", "tags", "imageUrl", "other", "published")
	case EntityArticle:
		table = "articles"
		cols = columns("id!", "title", "content", "author", "publishDate", "tags", "imageUrl", "sourceUrl", "published")
	case EntityInitiative:
		table = "initiatives"
		cols = columns("id!", "title", "description", "author", "createdAt", "tags", "location", "imageUrl", "website", "published")
	case EntityActor:
		table = "actors"
		cols = columns("id!", "name", "description", "author", "createdAt", "tags", "location", "address", "email", "phone", "website")
	case EntityForumPost:
		table = "forum_posts"
		cols = columns("id!", "title", "content", "author", "createdAt", "tags")
	default:
		return nil, fmt.Errorf("no dump layout for entity type %q", t)
	}

	return &TableMetadata{Entity: t, Table: table, Columns: cols}, nil
}

// columns builds a column list; a trailing "!" marks the column required.
func columns(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, name := range names {
		required := strings.HasSuffix(name, "!")
		cols[i] = Column{Name: strings.TrimSuffix(name, "!"), Required: required}
	}
	return cols
}

func normalizeColumnName(name string) string {
	return strings.ToLower(name)
}

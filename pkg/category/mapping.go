// Package category maps tag lists to a per-entity category vocabulary.
package category

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/David-Botos/content-migrate/pkg/model"
)

// DefaultTag is the conventional key whose category is used when no tag matches
const DefaultTag = "Autre"

// Entry maps one legacy tag to a target category
type Entry struct {
	Tag      string `yaml:"tag"`
	Category string `yaml:"category"`
}

// Table is an immutable tag to category lookup for one entity type
type Table struct {
	entity          model.EntityType
	entries         []Entry
	index           map[string]string
	defaultTag      string
	defaultCategory string
}

// NewTable builds a table. The default category is the one mapped from
// defaultTag, which must be among the entries. Later duplicates of a tag
// are ignored.
func NewTable(entity model.EntityType, defaultTag string, entries []Entry) (*Table, error) {
	t := &Table{
		entity:     entity,
		entries:    make([]Entry, 0, len(entries)),
		index:      make(map[string]string, len(entries)),
		defaultTag: defaultTag,
	}

	for _, e := range entries {
		key := foldKey(e.Tag)
		if key == "" || strings.TrimSpace(e.Category) == "" {
			return nil, fmt.Errorf("%s table: empty tag or category in entry %+v", entity, e)
		}
		if _, dup := t.index[key]; dup {
			continue
		}
		t.index[key] = e.Category
		t.entries = append(t.entries, e)
	}

	def, ok := t.index[foldKey(defaultTag)]
	if !ok {
		return nil, fmt.Errorf("%s table: default tag %q has no entry", entity, defaultTag)
	}
	t.defaultCategory = def

	return t, nil
}

// Entity returns the entity type the table serves
func (t *Table) Entity() model.EntityType { return t.entity }

// Default returns the category used when no tag matches
func (t *Table) Default() string { return t.defaultCategory }

// Entries returns a copy of the table's entries in declaration order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup returns the category for a single tag
func (t *Table) Lookup(tag string) (string, bool) {
	cat, ok := t.index[foldKey(tag)]
	return cat, ok
}

// Map returns the category of the first tag with an entry, in tag order.
// When nothing matches the table default is returned as a defaulted outcome.
func (t *Table) Map(tags model.TagSet) model.Parsed[string] {
	if len(tags) == 0 {
		return model.Defaulted(t.defaultCategory, "no_tags")
	}
	for _, tag := range tags {
		if cat, ok := t.Lookup(tag); ok {
			return model.Clean(cat)
		}
	}
	return model.Defaulted(t.defaultCategory, "no_matching_tag")
}

// Mapper holds one table per entity type. It is read-only after construction.
type Mapper struct {
	tables map[model.EntityType]*Table
}

// NewMapper builds a mapper from tables; a later table for the same entity wins
func NewMapper(tables ...*Table) *Mapper {
	m := &Mapper{tables: make(map[model.EntityType]*Table, len(tables))}
	for _, t := range tables {
		if t != nil {
			m.tables[t.entity] = t
		}
	}
	return m
}

// Table returns the table for an entity type
func (m *Mapper) Table(entity model.EntityType) (*Table, bool) {
	t, ok := m.tables[entity]
	return t, ok
}

// Map maps tags for the given entity type
func (m *Mapper) Map(entity model.EntityType, tags model.TagSet) (model.Parsed[string], error) {
	t, ok := m.tables[entity]
	if !ok {
		return model.Parsed[string]{}, fmt.Errorf("no category table for entity type %q", entity)
	}
	return t.Map(tags), nil
}

// foldKey normalizes a tag for comparison: NFC, case folded, single spaces
func foldKey(tag string) string {
	s := norm.NFC.String(tag)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

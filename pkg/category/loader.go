package category

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/David-Botos/content-migrate/pkg/model"
)

// MappingFile is the YAML form of a set of category tables:
//
//	tables:
//	  initiative:
//	    default_tag: Autre
//	    entries:
//	      - {tag: Rencontre, category: EVENT}
//	      - {tag: Autre, category: OTHER}
type MappingFile struct {
	Tables map[string]TableSpec `yaml:"tables"`
}

// TableSpec describes one entity's table
type TableSpec struct {
	DefaultTag string  `yaml:"default_tag"`
	Entries    []Entry `yaml:"entries"`
}

// LoadFile reads a mapping file. Entity types it does not name keep the
// built-in tables.
func LoadFile(path string) (*Mapper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open category mapping file: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Load parses a mapping file from r
func Load(r io.Reader) (*Mapper, error) {
	var file MappingFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse category mapping: %w", err)
	}

	tables := DefaultTables()
	for name, spec := range file.Tables {
		entity, err := model.ParseEntityType(name)
		if err != nil {
			return nil, err
		}

		defaultTag := spec.DefaultTag
		if defaultTag == "" {
			defaultTag = DefaultTag
		}

		t, err := NewTable(entity, defaultTag, spec.Entries)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return NewMapper(tables...), nil
}

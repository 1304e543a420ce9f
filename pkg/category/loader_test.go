package category

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/content-migrate/pkg/model"
)

const sampleMapping = `
tables:
  initiatives:
    default_tag: Divers
    entries:
      - {tag: Rencontre, category: MEETUP}
      - {tag: Divers, category: MISC}
`

func TestLoad_OverridesNamedTables(t *testing.T) {
	m, err := Load(strings.NewReader(sampleMapping))
	require.NoError(t, err)

	got, err := m.Map(model.EntityInitiative, model.TagSet{"Rencontre"})
	require.NoError(t, err)
	assert.Equal(t, "MEETUP", got.Value)

	got, err = m.Map(model.EntityInitiative, nil)
	require.NoError(t, err)
	assert.Equal(t, "MISC", got.Value)

	// untouched tables keep built-in values
	got, err = m.Map(model.EntityTip, model.TagSet{"Eau"})
	require.NoError(t, err)
	assert.Equal(t, "WATER", got.Value)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown entity":  "tables:\n  podcasts:\n    entries: [{tag: Autre, category: X}]\n",
		"missing default": "tables:\n  tip:\n    entries: [{tag: Eau, category: WATER}]\n",
		"unknown field":   "tablez: {}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	m, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	_, ok := m.Table(model.EntityForumPost)
	assert.True(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMapping), 0o600))

	m, err := LoadFile(path)
	require.NoError(t, err)
	table, ok := m.Table(model.EntityInitiative)
	require.True(t, ok)
	assert.Equal(t, "MISC", table.Default())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

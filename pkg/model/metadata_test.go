package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_EveryEntity(t *testing.T) {
	for _, entity := range AllEntityTypes() {
		layout, err := Layout(entity)
		require.NoError(t, err, entity)
		assert.Equal(t, entity, layout.Entity)
		assert.Equal(t, "id", layout.ColumnNames()[0])
		assert.True(t, layout.Columns[0].Required)
	}

	_, err := Layout(EntityType("podcast"))
	assert.Error(t, err)
}

func TestLayout_ReturnsCopy(t *testing.T) {
	a, err := Layout(EntityTip)
	require.NoError(t, err)
	a.Columns[0].Name = "changed"

	b, err := Layout(EntityTip)
	require.NoError(t, err)
	assert.Equal(t, "id", b.Columns[0].Name)
}

func TestBind(t *testing.T) {
	layout, err := Layout(EntityForumPost)
	require.NoError(t, err)

	row, surplus, err := layout.Bind([]string{"f1", "Titre", "Texte", "u1", "2021-01-01", "[]"})
	require.NoError(t, err)
	assert.Zero(t, surplus)
	assert.Equal(t, "f1", row["id"])
	assert.Equal(t, "[]", row["tags"])

	_, surplus, err = layout.Bind([]string{"f1", "Titre", "Texte", "u1", "2021-01-01", "[]", "extra", "more"})
	require.NoError(t, err)
	assert.Equal(t, 2, surplus)
}

func TestBind_Errors(t *testing.T) {
	layout, err := Layout(EntityForumPost)
	require.NoError(t, err)

	_, _, err = layout.Bind([]string{"f1", "Titre"})
	assert.ErrorContains(t, err, "row has 2 fields")

	_, _, err = layout.Bind([]string{"  ", "Titre", "Texte", "u1", "2021-01-01", "[]"})
	assert.ErrorContains(t, err, `required column "id" is empty`)
}

func TestGetColumnByName(t *testing.T) {
	layout, err := Layout(EntityActor)
	require.NoError(t, err)

	col := layout.GetColumnByName("CreatedAt")
	require.NotNil(t, col)
	assert.Equal(t, "createdAt", col.Name)
	assert.Nil(t, layout.GetColumnByName("missing"))
}

func TestParseEntityType(t *testing.T) {
	got, err := ParseEntityType("actor")
	require.NoError(t, err)
	assert.Equal(t, EntityActor, got)

	_, err = ParseEntityType("podcast")
	assert.Error(t, err)
}

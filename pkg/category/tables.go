package category

import (
	"fmt"

	"github.com/David-Botos/content-migrate/pkg/model"
)

func defaultEntries() map[model.EntityType][]Entry {
	return map[model.EntityType][]Entry{
		model.EntityTip: {
			{"Énergie", "ENERGY"},
			{"Déchets", "WASTE"},
			{"Mobilité", "MOBILITY"},
			{"Alimentation", "FOOD"},
			{"Eau", "WATER"},
			{"Numérique", "DIGITAL"},
			{"Green It", "DIGITAL"},
			{DefaultTag, "OTHER"},
		},
		model.EntityArticle: {
			{"Actualité", "NEWS"},
			{"Dossier", "FEATURE"},
			{"Interview", "INTERVIEW"},
			{"Tribune", "OPINION"},
			{DefaultTag, "OTHER"},
		},
		model.EntityInitiative: {
			{"Rencontre", "EVENT"},
			{"Green It", "EVENT"},
			{"Atelier", "WORKSHOP"},
			{"Projet", "PROJECT"},
			{"Pétition", "PETITION"},
			{DefaultTag, "OTHER"},
		},
		model.EntityActor: {
			{"Association", "ASSOCIATION"},
			{"Entreprise", "COMPANY"},
			{"Collectivité", "PUBLIC_BODY"},
			{DefaultTag, "OTHER"},
		},
		model.EntityForumPost: {
			{"Question", "QUESTION"},
			{"Annonce", "ANNOUNCEMENT"},
			{"Discussion", "DISCUSSION"},
			{DefaultTag, "DISCUSSION"},
		},
	}
}

// DefaultTables returns freshly built tables for every entity type
func DefaultTables() []*Table {
	entries := defaultEntries()
	tables := make([]*Table, 0, len(entries))
	for _, entity := range model.AllEntityTypes() {
		t, err := NewTable(entity, DefaultTag, entries[entity])
		if err != nil {
			// built-in tables are static; failing here is a programming error
			panic(fmt.Sprintf("category: invalid built-in table: %v", err))
		}
		tables = append(tables, t)
	}
	return tables
}

// DefaultMapper returns a mapper over the built-in tables
func DefaultMapper() *Mapper {
	return NewMapper(DefaultTables()...)
}

package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/model"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser(zap.NewNop())

	tests := []struct {
		name    string
		in      string
		want    model.ParsedAddress
		outcome model.Outcome
	}{
		{
			name:    "comma then code and city",
			in:      "211 Avenue Jean Jaurès, 75019 Paris",
			want:    model.ParsedAddress{Street: "211 Avenue Jean Jaurès", PostalCode: "75019", City: "Paris"},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "empty",
			in:      "",
			want:    model.ParsedAddress{},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "space only code before city",
			in:      "Boulevard Gambetta 69400 Villefranche-sur-Saône",
			want:    model.ParsedAddress{Street: "Boulevard Gambetta", PostalCode: "69400", City: "Villefranche-sur-Saône"},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "null sentinel",
			in:      "NULL",
			want:    model.ParsedAddress{},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "comma then city and code",
			in:      "3 rue de la Paix, Lyon 69002",
			want:    model.ParsedAddress{Street: "3 rue de la Paix", PostalCode: "69002", City: "Lyon"},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "space only city before code",
			in:      "8 place du Marché Rennes 35000",
			want:    model.ParsedAddress{Street: "8 place du Marché", PostalCode: "35000", City: "Rennes"},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "country suffix and split code",
			in:      "10  rue Nationale,   59 000 Lille, France métropolitaine",
			want:    model.ParsedAddress{Street: "10 rue Nationale", PostalCode: "59000", City: "Lille"},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "uppercase country",
			in:      "1 quai du Port, 13002 Marseille FRANCE",
			want:    model.ParsedAddress{Street: "1 quai du Port", PostalCode: "13002", City: "Marseille"},
			outcome: model.OutcomeParsed,
		},
		{
			name:    "code first then street and city",
			in:      "75001, Rue de Rivoli, Paris",
			want:    model.ParsedAddress{Street: "Rue de Rivoli", PostalCode: "75001", City: "Paris"},
			outcome: model.OutcomeRecovered,
		},
		{
			name:    "code at the end without city",
			in:      "Mairie,75001",
			want:    model.ParsedAddress{Street: "Mairie", PostalCode: "75001"},
			outcome: model.OutcomeRecovered,
		},
		{
			name:    "no postal code",
			in:      "Place de la Mairie",
			want:    model.ParsedAddress{Street: "Place de la Mairie"},
			outcome: model.OutcomeDefaulted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.in)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.outcome, got.Outcome)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "12 rue X, 75000 Paris", Normalize(" 12  rue X,\t75 000 Paris , France "))
	assert.Equal(t, "Nice", Normalize("Nice - France"))
	assert.Equal(t, "", Normalize("France"))
	assert.Equal(t, "12 rue X, 75001 Paris, Île-de-France", Normalize("12 rue X, 75001 Paris, Île-de-France"))
	assert.Equal(t, "Place de France", Normalize("Place de France"))
}

func TestParser_CustomRules(t *testing.T) {
	p := NewParser(nil, DefaultRules()[2])

	got := p.Parse("211 Avenue Jean Jaurès, 75019 Paris")
	assert.Equal(t, "211 Avenue Jean Jaurès", got.Value.Street)
	assert.Equal(t, "Paris", got.Value.City)
}

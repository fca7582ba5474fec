package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

func TestExtractSurname(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uppercase surname wins over position", "Jean DUPONT", "DUPONT"},
		{"uppercase surname first", "DUPONT Jean", "DUPONT"},
		{"no uppercase falls back to last token", "John Smith", "Smith"},
		{"single token", "Smith", "Smith"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSurname(tt.in))
		})
	}
}

func TestScoreExactMatch(t *testing.T) {
	query := &models.Query{
		Surname:   "Smith",
		GivenName: "John",
		BirthYear: 1880,
		Location:  "London",
	}
	record := &models.CandidateRecord{
		Name:       "John Smith",
		BirthYear:  models.IntPtr(1880),
		BirthPlace: "London, England",
		DeathYear:  models.IntPtr(1950),
		DeathPlace: "York",
		URL:        "https://example.org/r/1",
	}

	// 50 base + 25 surname + 15 given + 20 year + 10 location caps at 100
	// before the richness bonus even applies.
	assert.Equal(t, 100, Score(record, query))
}

func TestScoreComponents(t *testing.T) {
	tests := []struct {
		name   string
		query  models.Query
		record models.CandidateRecord
		want   int
	}{
		{
			name:   "base only, nothing matches",
			query:  models.Query{Surname: "Smith"},
			record: models.CandidateRecord{Name: "Aloysius Featherstonehaugh"},
			want:   50,
		},
		{
			name:   "surname substring",
			query:  models.Query{Surname: "Smith"},
			record: models.CandidateRecord{Name: "Jane Smithson"},
			want:   75,
		},
		{
			name:   "given name initial",
			query:  models.Query{Surname: "Dupont", GivenName: "Jean"},
			record: models.CandidateRecord{Name: "J. Dupont"},
			want:   85,
		},
		{
			name:  "birth year within two",
			query: models.Query{Surname: "Smith", BirthYear: 1880},
			record: models.CandidateRecord{
				Name:      "Anne Smith",
				BirthYear: models.IntPtr(1882),
			},
			want: 90,
		},
		{
			name:  "birth year far off is penalized",
			query: models.Query{Surname: "Smith", BirthYear: 1880},
			record: models.CandidateRecord{
				Name:      "Anne Smith",
				BirthYear: models.IntPtr(1930),
			},
			want: 65,
		},
		{
			name:  "parents in raw data adds richness",
			query: models.Query{Surname: "Smith"},
			record: models.CandidateRecord{
				Name:    "Anne Smith",
				RawData: map[string]any{"father": "Tom Smith"},
			},
			want: 79,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(&tt.record, &tt.query))
		})
	}
}

func TestScoreClamped(t *testing.T) {
	query := &models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880, Location: "London"}
	lowRecord := &models.CandidateRecord{
		Name:      "Zzyzx Qwerty",
		BirthYear: models.IntPtr(1700),
	}

	low := Score(lowRecord, query)
	assert.GreaterOrEqual(t, low, 0)
	assert.LessOrEqual(t, low, 100)
}

func TestRichnessBonusCapped(t *testing.T) {
	record := &models.CandidateRecord{
		Name:       "Anne Smith",
		DeathYear:  models.IntPtr(1950),
		DeathPlace: "York",
		URL:        "https://example.org",
		RawData:    map[string]any{"father": "Tom", "mother": "Mary"},
	}
	assert.Equal(t, 10, richnessBonus(record))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("Dupont", "dupont"))
	assert.Equal(t, 0.0, similarity("", "dupont"))
	assert.InDelta(t, 0.833, similarity("dupont", "dupond"), 0.001)
}

func TestGuessGender(t *testing.T) {
	assert.Equal(t, "male", GuessGender("Jean Dupont"))
	assert.Equal(t, "female", GuessGender("Marie Curie"))
	assert.Equal(t, "", GuessGender("Zyx Unknown"))
	assert.Equal(t, "", GuessGender(""))
}

func TestAssignParents(t *testing.T) {
	father, mother := AssignParents("Jean Dupont", "Marie Dupont")
	assert.Equal(t, "Jean Dupont", father)
	assert.Equal(t, "Marie Dupont", mother)

	// Reversed order still lands on the right slots.
	father, mother = AssignParents("Marie Dupont", "Jean Dupont")
	assert.Equal(t, "Jean Dupont", father)
	assert.Equal(t, "Marie Dupont", mother)
}

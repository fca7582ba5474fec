package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvedBirthYear(t *testing.T) {
	p := Person{}
	_, ok := p.ResolvedBirthYear()
	assert.False(t, ok)

	p.EstimatedBirthYear = IntPtr(1845)
	year, ok := p.ResolvedBirthYear()
	assert.True(t, ok)
	assert.Equal(t, 1845, year)

	// Recorded year wins over the estimate.
	p.BirthYear = IntPtr(1848)
	year, _ = p.ResolvedBirthYear()
	assert.Equal(t, 1848, year)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Marie Dubois", (&Person{FullName: "Marie Dubois", GivenName: "M", Surname: "D"}).DisplayName())
	assert.Equal(t, "Marie Dubois", (&Person{GivenName: "Marie", Surname: "Dubois"}).DisplayName())
	assert.Equal(t, "Dubois", (&Person{Surname: "Dubois"}).DisplayName())
}

func TestYearRange(t *testing.T) {
	start, end := (&Query{BirthYear: 1880}).YearRange()
	assert.Equal(t, 1880, start)
	assert.Equal(t, 1890, end)

	start, end = (&Query{BirthYear: 1880, DeathYear: 1883}).YearRange()
	assert.Equal(t, 1880, start)
	assert.Equal(t, 1883, end)
}

func TestHasLocationData(t *testing.T) {
	assert.False(t, (&Query{Surname: "Smith"}).HasLocationData())
	assert.True(t, (&Query{Country: "France"}).HasLocationData())
	assert.True(t, (&Query{Location: "Lyon"}).HasLocationData())
}

func TestSentinelRecord(t *testing.T) {
	rec := NewSentinelRecord("geneanet", "https://example.org/s", "")
	assert.True(t, rec.IsSentinel())
	assert.Equal(t, SentinelParseFailed, rec.Name)
	assert.Equal(t, SentinelScore, rec.MatchScore)

	rec = NewSentinelRecord("geneanet", "https://example.org/s", "selector drift")
	assert.Equal(t, SentinelParseError, rec.Name)
	assert.True(t, rec.IsSentinel())

	real := CandidateRecord{Name: "John Smith"}
	assert.False(t, real.IsSentinel())
}

func TestPayloadContainsAny(t *testing.T) {
	p := HTMLPayload("https://example.org", "<p>Daily LIMIT reached</p>")
	assert.True(t, p.ContainsAny([]string{"daily limit"}))
	assert.False(t, p.ContainsAny([]string{"robot check"}))
}

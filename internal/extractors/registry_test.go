package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/gazetteer"
	"github.com/pmilano1/genealogy-extractors/internal/models"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(common.GetLogger())
	require.NoError(t, err)
	return r
}

func TestRegistryCatalog(t *testing.T) {
	r := newRegistry(t)

	keys := r.Keys()
	assert.Len(t, keys, 17)
	assert.Equal(t, "findagrave", keys[0])

	enabled := r.EnabledKeys()
	assert.Less(t, len(enabled), len(keys))
	for _, key := range enabled {
		src := r.Get(key)
		require.NotNil(t, src)
		assert.False(t, src.Descriptor.Disabled)
		assert.NotNil(t, src.Extractor, "enabled source %s needs an extractor", key)
	}

	// Disabled sources must say why.
	for _, key := range keys {
		desc := r.Get(key).Descriptor
		if desc.Disabled {
			assert.NotEmpty(t, desc.DisabledReason, key)
		}
	}

	assert.Nil(t, r.Get("nonexistent"))
}

func TestBuildURLBasicTemplate(t *testing.T) {
	r := newRegistry(t)
	query := &models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880}

	url := r.BuildURL(&r.Get("findagrave").Descriptor, query, nil)
	assert.Equal(t,
		"https://www.findagrave.com/memorial/search?firstname=John&lastname=Smith&birthyear=1880&birthyearfilter=5",
		url)
}

func TestBuildURLEscapesValues(t *testing.T) {
	r := newRegistry(t)
	query := &models.Query{Surname: "O'Brien", GivenName: "Mary Ann", BirthYear: 1870}

	url := r.BuildURL(&r.Get("findagrave").Descriptor, query, nil)
	assert.Contains(t, url, "lastname=O%27Brien")
	assert.Contains(t, url, "firstname=Mary+Ann")
}

func TestBuildURLYearRange(t *testing.T) {
	r := newRegistry(t)

	// End year defaults to start+10 when no death year is known.
	url := r.BuildURL(&r.Get("geneanet").Descriptor, &models.Query{Surname: "Dubois", BirthYear: 1880}, nil)
	assert.Contains(t, url, "from=1880")
	assert.Contains(t, url, "to=1890")

	url = r.BuildURL(&r.Get("geneanet").Descriptor, &models.Query{Surname: "Dubois", BirthYear: 1880, DeathYear: 1882}, nil)
	assert.Contains(t, url, "to=1882")
}

func TestBuildURLLocationVariant(t *testing.T) {
	r := newRegistry(t)
	desc := &r.Get("geneanet").Descriptor

	// Location variant only when geography is present.
	plain := r.BuildURL(desc, &models.Query{Surname: "Dubois", BirthYear: 1880}, nil)
	assert.NotContains(t, plain, "place__0__")

	located := r.BuildURL(desc, &models.Query{Surname: "Dubois", BirthYear: 1880, Location: "Lyon"}, nil)
	assert.Contains(t, located, "place__0__=Lyon")
}

func TestBuildURLLocationIgnoredWhenFilterBroken(t *testing.T) {
	r := newRegistry(t)
	desc := &r.Get("findagrave").Descriptor

	url := r.BuildURL(desc, &models.Query{Surname: "Smith", BirthYear: 1880, Location: "London"}, nil)
	assert.NotContains(t, url, "London")
}

func TestBuildURLFilaeUsesResolver(t *testing.T) {
	r := newRegistry(t)
	resolver, err := gazetteer.NewResolver()
	require.NoError(t, err)

	desc := &r.Get("filae").Descriptor
	query := &models.Query{Surname: "Dubois", GivenName: "Marie", BirthYear: 1875, Location: "Lyon"}

	url := r.BuildURL(desc, query, resolver)
	assert.Contains(t, url, "ln=Dubois")
	assert.Contains(t, url, "gid=")

	// Without a resolver the plain template still works.
	url = r.BuildURL(desc, query, nil)
	assert.Contains(t, url, "ln=Dubois")
	assert.NotContains(t, url, "gid=")
}

func TestBuildURLCountryPlaceholders(t *testing.T) {
	r := newRegistry(t)
	desc := &r.Get("ancestry").Descriptor
	query := &models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880, Country: "France"}

	url := r.BuildURL(desc, query, nil)
	assert.Contains(t, url, "event=_france")
}

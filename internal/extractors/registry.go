package extractors

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/gazetteer"
	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// Source pairs a descriptor with its extractor.
type Source struct {
	Descriptor models.SourceDescriptor
	Extractor  Extractor
}

// Registry holds every known source in a stable order.
type Registry struct {
	order   []string
	sources map[string]*Source
	logger  arbor.ILogger
}

// NewRegistry builds and validates the full source catalog.
func NewRegistry(logger arbor.ILogger) (*Registry, error) {
	r := &Registry{
		sources: make(map[string]*Source),
		logger:  logger,
	}

	r.add(models.SourceDescriptor{
		Key:         "findagrave",
		Name:        "Find A Grave",
		Access:      models.AccessURLTemplate,
		URLTemplate: "https://www.findagrave.com/memorial/search?firstname={given_name}&lastname={surname}&birthyear={birth_year}&birthyearfilter=5",
		TestFixture: "testdata/findagrave_johnson_mary.html",
		TestParams:  models.Query{Surname: "Johnson", GivenName: "Mary", BirthYear: 1870},
	}, &FindAGraveExtractor{})

	r.add(models.SourceDescriptor{
		Key:                     "geneanet",
		Name:                    "Geneanet",
		Access:                  models.AccessURLTemplate,
		URLTemplate:             "https://en.geneanet.org/fonds/individus/?nom={surname}&prenom={given_name}&type_periode=birth_between&from={birth_year}&to={birth_year_end}&go=1&size=20",
		URLTemplateWithLocation: "https://en.geneanet.org/fonds/individus/?nom={surname}&prenom={given_name}&type_periode=birth_between&from={birth_year}&to={birth_year_end}&go=1&size=20&place__0__={location}",
		LocationFilterWorks:     true,
		TestFixture:             "testdata/geneanet_dubois_marie.html",
		TestParams:              models.Query{Surname: "Dubois", GivenName: "Marie", BirthYear: 1880},
	}, &GeneanetExtractor{})

	r.add(models.SourceDescriptor{
		Key:         "antenati",
		Name:        "Antenati",
		Access:      models.AccessURLTemplate,
		URLTemplate: "https://antenati.cultura.gov.it/search-nominative/?cognome={surname}&nome={given_name}",
		TestFixture: "testdata/antenati_milanese_nominative.html",
		TestParams:  models.Query{Surname: "Milanese", GivenName: "Giovanni", BirthYear: 1885},
	}, &AntenatiExtractor{})

	r.add(models.SourceDescriptor{
		Key:                     "familysearch",
		Name:                    "FamilySearch",
		Access:                  models.AccessURLTemplate,
		URLTemplate:             "https://www.familysearch.org/en/search/record/results?q.givenName={given_name}&q.surname={surname}&q.birthLikeDate={birth_year}",
		URLTemplateWithLocation: "https://www.familysearch.org/en/search/record/results?q.givenName={given_name}&q.surname={surname}&q.birthLikeDate={birth_year}&q.birthLikePlace={location}",
		WaitForSelector:         `tr[data-testid*="/ark:/"]`,
		LocationFilterWorks:     true,
		TestFixture:             "testdata/familysearch_anderson_margaret.html",
		TestParams:              models.Query{Surname: "Anderson", GivenName: "Margaret", BirthYear: 1880},
	}, &FamilySearchExtractor{})

	r.add(models.SourceDescriptor{
		Key:            "wikitree",
		Name:           "WikiTree",
		Access:         models.AccessJSONAPI,
		TestFixture:    "testdata/wikitree_smith_john_api.json",
		TestParams:     models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880},
		Disabled:       true,
		DisabledReason: "community tree duplicates the roster rather than adding records",
	}, &WikiTreeExtractor{})

	r.add(models.SourceDescriptor{
		Key:                     "ancestry",
		Name:                    "Ancestry",
		Access:                  models.AccessURLTemplate,
		URLTemplate:             "https://www.ancestry.com/search/?name={given_name}_{surname}&birth={birth_year}&birth_x=5&searchMode=advanced",
		URLTemplateWithLocation: "https://www.ancestry.com/search/?name={given_name}_{surname}&birth={birth_year}&birth_x=5&event=_{country_lower}&searchMode=advanced",
		LocationFilterWorks:     true,
		TestFixture:             "testdata/ancestry_smith_john.html",
		TestParams:              models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880},
	}, &AncestryExtractor{})

	r.add(models.SourceDescriptor{
		Key:                     "myheritage",
		Name:                    "MyHeritage",
		Access:                  models.AccessURLTemplate,
		URLTemplate:             "https://www.myheritage.com/research?action=query&formId=master&formMode=1&qname=Name+fn.{given_name}+ln.{surname}&qevents-event1=Event+et.birth+ey.{birth_year}+epmo.similar&useTranslation=1",
		URLTemplateWithLocation: "https://www.myheritage.com/research?action=query&formId=master&formMode=1&qname=Name+fn.{given_name}+ln.{surname}&qevents-event1=Event+et.any+ep.{country}+epmo.similar&useTranslation=1",
		WaitForSelector:         ".search_results_list",
		LocationFilterWorks:     true,
		TestFixture:             "testdata/myheritage_smith_john.html",
		TestParams:              models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880},
	}, &MyHeritageExtractor{})

	r.add(models.SourceDescriptor{
		Key:                 "filae",
		Name:                "Filae",
		Access:              models.AccessLocationResolver,
		URLTemplate:         "https://www.filae.com/search?ln={surname}&fn={given_name}&sy={birth_year}&ey={birth_year_end}",
		LocationFilterWorks: true,
		TestFixture:         "testdata/filae_sample.html",
		TestParams:          models.Query{Surname: "Dubois", GivenName: "Marie", BirthYear: 1875},
	}, &FilaeExtractor{})

	r.add(models.SourceDescriptor{
		Key:                     "geni",
		Name:                    "Geni",
		Access:                  models.AccessURLTemplate,
		URLTemplate:             "https://www.geni.com/search?search_type=people&names={given_name}+{surname}",
		URLTemplateWithLocation: "https://www.geni.com/search?search_type=people&names={given_name}+{surname}&country={country}",
		LocationFilterWorks:     true,
		TestFixture:             "testdata/geni_sample.html",
		TestParams:              models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880},
	}, &GeniExtractor{})

	r.add(models.SourceDescriptor{
		Key:         "freebmd",
		Name:        "FreeBMD",
		Access:      models.AccessFormSubmit,
		TestFixture: "testdata/freebmd_smith_john.html",
		TestParams:  models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880},
	}, &FreeBMDExtractor{})

	r.add(models.SourceDescriptor{
		Key:         "matchid",
		Name:        "MatchID",
		Access:      models.AccessJSONAPI,
		TestFixture: "testdata/matchid_sample.json",
		TestParams:  models.Query{Surname: "Dupont", GivenName: "Marie", BirthYear: 1920},
	}, &MatchIDExtractor{})

	r.add(models.SourceDescriptor{
		Key:            "billiongraves",
		Name:           "BillionGraves",
		Access:         models.AccessURLTemplate,
		URLTemplate:    "https://billiongraves.com/site/search/results?given_names={given_name}&family_names={surname}&year={birth_year}&year_range=5",
		TestFixture:    "testdata/billiongraves_sample.html",
		TestParams:     models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880},
		Disabled:       true,
		DisabledReason: "coverage overlaps Find A Grave with far fewer historical graves",
	}, &BillionGravesExtractor{})

	r.add(models.SourceDescriptor{
		Key:         "digitalarkivet",
		Name:        "Digitalarkivet",
		Access:      models.AccessURLTemplate,
		URLTemplate: "https://www.digitalarkivet.no/en/search/persons?fornavn={given_name}&etternavn={surname}&fodtfra={birth_year}&fodttil={birth_year_end}",
		TestFixture: "testdata/digitalarkivet_sample.html",
		TestParams:  models.Query{Surname: "Hansen", GivenName: "Ole", BirthYear: 1850},
	}, &DigitalarkivetExtractor{})

	r.add(models.SourceDescriptor{
		Key:            "irishgenealogy",
		Name:           "IrishGenealogy.ie",
		Access:         models.AccessURLTemplate,
		URLTemplate:    "https://www.irishgenealogy.ie/en/civil-records/search-civil-records?surname={surname}&firstname={given_name}&yearfrom={birth_year}&yearto={birth_year_end}",
		TestFixture:    "testdata/irishgenealogy_sample.html",
		TestParams:     models.Query{Surname: "O'Brien", GivenName: "Patrick", BirthYear: 1870},
		Disabled:       true,
		DisabledReason: "site throttles aggressively; enable per run when researching Irish lines",
	}, &IrishGenealogyExtractor{})

	r.add(models.SourceDescriptor{
		Key:            "scotlandspeople",
		Name:           "ScotlandsPeople",
		Access:         models.AccessURLTemplate,
		URLTemplate:    "https://www.scotlandspeople.gov.uk/record-results?surname={surname}&forename={given_name}&from_year={birth_year}&to_year={birth_year_end}",
		TestFixture:    "testdata/scotlandspeople_sample.html",
		TestParams:     models.Query{Surname: "MacDonald", GivenName: "James", BirthYear: 1860},
		Disabled:       true,
		DisabledReason: "index beyond the first page requires paid credits",
	}, &ScotlandsPeopleExtractor{})

	r.add(models.SourceDescriptor{
		Key:         "anom",
		Name:        "ANOM",
		Access:      models.AccessURLTemplate,
		URLTemplate: "https://recherche-anom.culture.gouv.fr/archive/resultats/basebagne/n:174?RECH_nom={surname}&RECH_prenom={given_name}&type=basebagne",
		TestFixture: "testdata/anom_sample.html",
		TestParams:  models.Query{Surname: "Martin", GivenName: "Jean", BirthYear: 1850},
	}, &ANOMExtractor{})

	// Matricula's search surface is place-based parish browsing with no
	// person-name search, so there is nothing to extract from.
	r.add(models.SourceDescriptor{
		Key:            "matricula",
		Name:           "Matricula",
		Access:         models.AccessURLTemplate,
		URLTemplate:    "https://data.matricula-online.eu/en/suchen/",
		Disabled:       true,
		DisabledReason: "parish registers are browsable by place only, not searchable by name",
	}, nil)

	validate := validator.New()
	for _, key := range r.order {
		if err := validate.Struct(r.sources[key].Descriptor); err != nil {
			return nil, fmt.Errorf("invalid descriptor for %s: %w", key, err)
		}
	}
	return r, nil
}

func (r *Registry) add(desc models.SourceDescriptor, ext Extractor) {
	r.order = append(r.order, desc.Key)
	r.sources[desc.Key] = &Source{Descriptor: desc, Extractor: ext}
}

// Get returns the source for key, or nil.
func (r *Registry) Get(key string) *Source {
	return r.sources[key]
}

// Keys returns all source keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// EnabledKeys returns the keys searched by default.
func (r *Registry) EnabledKeys() []string {
	var keys []string
	for _, key := range r.order {
		if !r.sources[key].Descriptor.Disabled {
			keys = append(keys, key)
		}
	}
	return keys
}

// BuildURL interpolates the query into the source's URL template. The
// location variant is used only when the query has geography and the
// source's server-side filter is known to work. Filae goes through the
// gazetteer so its URL carries GeoNames parameters.
func (r *Registry) BuildURL(desc *models.SourceDescriptor, query *models.Query, resolver *gazetteer.Resolver) string {
	start, end := query.YearRange()

	if desc.Access == models.AccessLocationResolver && resolver != nil && query.HasLocationData() {
		loc := query.Region
		if loc == "" {
			loc = query.Location
		}
		return resolver.BuildFilaeURL(query.Surname, query.GivenName, start, end, loc)
	}

	template := desc.URLTemplate
	if query.HasLocationData() && desc.LocationFilterWorks && desc.URLTemplateWithLocation != "" {
		template = desc.URLTemplateWithLocation
	}

	replacer := strings.NewReplacer(
		"{surname}", url.QueryEscape(query.Surname),
		"{given_name}", url.QueryEscape(query.GivenName),
		"{birth_year}", strconv.Itoa(start),
		"{birth_year_end}", strconv.Itoa(end),
		"{location}", url.QueryEscape(query.Location),
		"{country}", url.QueryEscape(query.Country),
		"{country_lower}", url.QueryEscape(strings.ToLower(query.Country)),
		"{region}", url.QueryEscape(query.Region),
	)
	return replacer.Replace(template)
}

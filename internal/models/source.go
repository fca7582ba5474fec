package models

// AccessModel describes how a source's search surface is reached.
type AccessModel string

const (
	// AccessURLTemplate formats a search URL and fetches rendered HTML.
	AccessURLTemplate AccessModel = "url-template"
	// AccessJSONAPI calls an HTTP JSON endpoint directly, no browser.
	AccessJSONAPI AccessModel = "json-api"
	// AccessFormSubmit fills and submits a search form in a fresh tab.
	AccessFormSubmit AccessModel = "form-submit"
	// AccessLocationResolver builds the URL through the gazetteer before
	// proceeding as url-template.
	AccessLocationResolver AccessModel = "location-resolver"
)

// SourceDescriptor is the static configuration for one remote genealogy
// source. URL templates use {surname}, {given_name}, {birth_year},
// {birth_year_end}, {location}, {country}, {country_lower} and {region}
// placeholders.
type SourceDescriptor struct {
	Key                     string      `json:"key" validate:"required"`
	Name                    string      `json:"name" validate:"required"`
	Access                  AccessModel `json:"access_model" validate:"required,oneof=url-template json-api form-submit location-resolver"`
	URLTemplate             string      `json:"url_template,omitempty"`
	URLTemplateWithLocation string      `json:"url_template_with_location,omitempty"`
	WaitForSelector         string      `json:"wait_for_selector,omitempty"`
	// LocationFilterWorks is true only when the location variant of the URL
	// has been verified to filter server-side.
	LocationFilterWorks bool   `json:"location_filter_works"`
	TestFixture         string `json:"test_fixture,omitempty"`
	TestParams          Query  `json:"test_params,omitempty"`
	Disabled            bool   `json:"disabled,omitempty"`
	DisabledReason      string `json:"disabled_reason,omitempty"`
}

// SearchLogEntry records one attempted (person, source) search.
type SearchLogEntry struct {
	PersonID     string `json:"person_id"`
	SourceKey    string `json:"source_key"`
	SearchedAt   string `json:"searched_at"`
	ResultCount  int    `json:"result_count"`
	HadError     bool   `json:"had_error"`
	ErrorMessage string `json:"error_message,omitempty"`
}

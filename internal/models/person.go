package models

// Person is one roster entry fetched from the research service. Year fields
// are pointers because many historical entries have no recorded dates.
type Person struct {
	ID                 string  `json:"id"`
	GivenName          string  `json:"given_name"`
	Surname            string  `json:"surname"`
	FullName           string  `json:"full_name,omitempty"`
	BirthYear          *int    `json:"birth_year,omitempty"`
	EstimatedBirthYear *int    `json:"estimated_birth_year,omitempty"`
	DeathYear          *int    `json:"death_year,omitempty"`
	BirthPlace         string  `json:"birth_place,omitempty"`
	DeathPlace         string  `json:"death_place,omitempty"`
	Country            string  `json:"country,omitempty"`
	Region             string  `json:"region,omitempty"`
	Gender             string  `json:"gender,omitempty"`
	FatherName         string  `json:"father_name,omitempty"`
	MotherName         string  `json:"mother_name,omitempty"`
	SpouseName         string  `json:"spouse_name,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	Completeness       float64 `json:"completeness,omitempty"`
}

// ResolvedBirthYear returns the recorded birth year when present, otherwise
// the estimated one. The bool reports whether either exists.
func (p *Person) ResolvedBirthYear() (int, bool) {
	if p.BirthYear != nil {
		return *p.BirthYear, true
	}
	if p.EstimatedBirthYear != nil {
		return *p.EstimatedBirthYear, true
	}
	return 0, false
}

// DisplayName returns the best human-readable name for logs and review.
func (p *Person) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.GivenName != "" {
		return p.GivenName + " " + p.Surname
	}
	return p.Surname
}

// Query is the search request derived from a Person. It is what extractors
// interpolate into URL templates and what the scorer compares candidates
// against.
type Query struct {
	Surname    string `json:"surname"`
	GivenName  string `json:"given_name,omitempty"`
	BirthYear  int    `json:"birth_year,omitempty"`
	DeathYear  int    `json:"death_year,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`
	DeathPlace string `json:"death_place,omitempty"`
	Country    string `json:"country,omitempty"`
	Region     string `json:"region,omitempty"`
	Location   string `json:"location,omitempty"`
}

// YearRange returns the search window. The end defaults to start+10 when no
// death year is known, covering records indexed a few years late.
func (q *Query) YearRange() (int, int) {
	start := q.BirthYear
	end := q.DeathYear
	if end == 0 {
		end = start + 10
	}
	return start, end
}

// HasLocationData reports whether any geographic hint exists for this query.
func (q *Query) HasLocationData() bool {
	return q.BirthPlace != "" || q.DeathPlace != "" || q.Location != "" ||
		q.Region != "" || q.Country != ""
}

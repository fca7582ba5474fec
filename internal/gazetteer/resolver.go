// Package gazetteer resolves French place names to GeoNames records so
// location-filtered search URLs can carry coordinates and admin ids.
package gazetteer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed data/french_locations.json
var locationData []byte

// Location is one French place with the GeoNames fields search URLs need.
// Type is "region", "department" or "city".
type Location struct {
	GID        int     `json:"gid"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	FC         string  `json:"fc"`
	Type       string  `json:"type"`
	RegionID   *int    `json:"ri"`
	DeptID     *int    `json:"di"`
	Region     string  `json:"region"`
	Department string  `json:"department"`
	Population int     `json:"population"`
}

// regionAliases maps pre-2016 region names to their merged successors.
var regionAliases = map[string]string{
	"alsace":               "Grand Est",
	"lorraine":             "Grand Est",
	"champagne-ardenne":    "Grand Est",
	"champagne":            "Grand Est",
	"picardie":             "Hauts-de-France",
	"picardy":              "Hauts-de-France",
	"nord-pas-de-calais":   "Hauts-de-France",
	"aquitaine":            "Nouvelle-Aquitaine",
	"limousin":             "Nouvelle-Aquitaine",
	"poitou-charentes":     "Nouvelle-Aquitaine",
	"languedoc-roussillon": "Occitanie",
	"midi-pyrénées":        "Occitanie",
	"midi-pyrenees":        "Occitanie",
	"auvergne":             "Auvergne-Rhône-Alpes",
	"rhône-alpes":          "Auvergne-Rhône-Alpes",
	"rhone-alpes":          "Auvergne-Rhône-Alpes",
	"bourgogne":            "Bourgogne-Franche-Comté",
	"burgundy":             "Bourgogne-Franche-Comté",
	"franche-comté":        "Bourgogne-Franche-Comté",
	"franche-comte":        "Bourgogne-Franche-Comté",
	"basse-normandie":      "Normandie",
	"haute-normandie":      "Normandie",
	"centre":               "Centre-Val de Loire",
}

// Resolver answers place-name lookups against the embedded gazetteer.
type Resolver struct {
	locations []Location
}

// NewResolver decodes the embedded data set.
func NewResolver() (*Resolver, error) {
	var locations []Location
	if err := json.Unmarshal(locationData, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode location data: %w", err)
	}
	return &Resolver{locations: locations}, nil
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// articles commonly prefix French place names and are ignored for matching.
var articles = []string{"le ", "la ", "les ", "l'", "de ", "du ", "des ", "d'"}

// normalize lowers, strips accents and leading articles, and flattens
// hyphens so "Orléans" and "orleans" compare equal.
func normalize(text string) string {
	stripped, _, err := transform.String(accentStripper, text)
	if err != nil {
		stripped = text
	}
	s := strings.TrimSpace(strings.ToLower(stripped))
	for _, article := range articles {
		if strings.HasPrefix(s, article) {
			s = s[len(article):]
			break
		}
	}
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Find resolves a place name. typeFilter narrows to "region", "department"
// or "city"; empty matches anything. Matching tiers, in order: historical
// region alias, exact name, normalized name, normalized prefix, normalized
// substring. Returns nil when nothing matches.
func (r *Resolver) Find(query, typeFilter string) *Location {
	queryLower := strings.TrimSpace(strings.ToLower(query))
	queryNorm := normalize(query)
	if queryLower == "" {
		return nil
	}

	if aliased, ok := regionAliases[queryLower]; ok {
		for i := range r.locations {
			if r.locations[i].Name == aliased {
				return &r.locations[i]
			}
		}
	}

	match := func(accept func(*Location) bool) *Location {
		for i := range r.locations {
			loc := &r.locations[i]
			if typeFilter != "" && loc.Type != typeFilter {
				continue
			}
			if accept(loc) {
				return loc
			}
		}
		return nil
	}

	if loc := match(func(l *Location) bool { return strings.ToLower(l.Name) == queryLower }); loc != nil {
		return loc
	}
	if loc := match(func(l *Location) bool { return normalize(l.Name) == queryNorm }); loc != nil {
		return loc
	}
	if loc := match(func(l *Location) bool { return strings.HasPrefix(normalize(l.Name), queryNorm) }); loc != nil {
		return loc
	}
	return match(func(l *Location) bool { return strings.Contains(normalize(l.Name), queryNorm) })
}

// FindRegion resolves only regions.
func (r *Resolver) FindRegion(name string) *Location { return r.Find(name, "region") }

// FindDepartment resolves only departments.
func (r *Resolver) FindDepartment(name string) *Location { return r.Find(name, "department") }

// FindCity resolves only cities.
func (r *Resolver) FindCity(name string) *Location { return r.Find(name, "city") }

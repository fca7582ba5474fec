package gazetteer

import (
	"fmt"
	"strings"
)

// BuildFilaeURL formats a Filae search URL, attaching GeoNames parameters
// when the location resolves. Cities search within a 20km radius (pf=2);
// departments and regions search their whole extent (pf=0).
func (r *Resolver) BuildFilaeURL(surname, givenName string, birthYear, birthYearEnd int, location string) string {
	params := []string{"ln=" + surname}

	if givenName != "" {
		params = append(params, "fn="+givenName)
	}
	if birthYear > 0 {
		params = append(params, fmt.Sprintf("sy=%d", birthYear))
	}
	if birthYearEnd > 0 {
		params = append(params, fmt.Sprintf("ey=%d", birthYearEnd))
	}

	if location != "" {
		if loc := r.Find(location, ""); loc != nil {
			params = append(params,
				fmt.Sprintf("gid=%d", loc.GID),
				fmt.Sprintf("lat=%g", loc.Lat),
				fmt.Sprintf("lon=%g", loc.Lon),
				"fc="+loc.FC,
			)
			if loc.RegionID != nil {
				params = append(params, fmt.Sprintf("ri=%d", *loc.RegionID))
			}
			if loc.DeptID != nil {
				params = append(params, fmt.Sprintf("di=%d", *loc.DeptID))
			}
			if loc.Type == "city" {
				params = append(params, "pf=2")
			} else {
				params = append(params, "pf=0")
			}
		}
	}

	return "https://www.filae.com/search?" + strings.Join(params, "&")
}

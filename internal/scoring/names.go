package scoring

import "strings"

// Curated historical given names used to split an undifferentiated parents
// string into father and mother. Deliberately small: an unknown name stays
// unassigned rather than guessed.
var maleNames = map[string]struct{}{
	"jean": {}, "pierre": {}, "jacques": {}, "louis": {}, "françois": {},
	"francois": {}, "joseph": {}, "antoine": {}, "charles": {}, "michel": {},
	"nicolas": {}, "guillaume": {}, "claude": {}, "étienne": {}, "etienne": {},
	"andré": {}, "andre": {}, "henri": {}, "paul": {}, "rené": {}, "rene": {},
	"john": {}, "william": {}, "james": {}, "thomas": {}, "george": {},
	"henry": {}, "robert": {}, "edward": {}, "richard": {}, "samuel": {},
	"giovanni": {}, "giuseppe": {}, "antonio": {}, "francesco": {},
	"domenico": {}, "pietro": {}, "luigi": {}, "carlo": {},
	"hans": {}, "johann": {}, "friedrich": {}, "wilhelm": {}, "heinrich": {},
	"patrick": {}, "michael": {}, "daniel": {}, "david": {},
}

var femaleNames = map[string]struct{}{
	"marie": {}, "jeanne": {}, "anne": {}, "marguerite": {}, "catherine": {},
	"françoise": {}, "francoise": {}, "madeleine": {}, "louise": {},
	"élisabeth": {}, "elisabeth": {}, "geneviève": {}, "genevieve": {},
	"thérèse": {}, "therese": {}, "claudine": {}, "antoinette": {},
	"mary": {}, "elizabeth": {}, "margaret": {}, "sarah": {}, "ann": {},
	"jane": {}, "eleanor": {}, "alice": {}, "emma": {}, "hannah": {},
	"maria": {}, "giuseppina": {}, "teresa": {}, "rosa": {}, "angela": {},
	"anna": {}, "giovanna": {}, "lucia": {}, "caterina": {},
	"margarethe": {}, "katharina": {}, "helena": {}, "bridget": {},
}

// GuessGender classifies a full name by its first given name. Returns
// "male", "female" or "" when unknown.
func GuessGender(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	if _, ok := maleNames[first]; ok {
		return "male"
	}
	if _, ok := femaleNames[first]; ok {
		return "female"
	}
	return ""
}

// AssignParents splits two parent names into (father, mother) using the
// gender heuristic. When genders cannot distinguish them, the first name is
// treated as the father, matching how sources order parent lines.
func AssignParents(first, second string) (father, mother string) {
	g1, g2 := GuessGender(first), GuessGender(second)
	switch {
	case g1 == "female" || g2 == "male":
		return second, first
	default:
		return first, second
	}
}

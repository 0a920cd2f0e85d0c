package deadline

import (
	"sort"
	"strings"
)

// JurisdictionCode is the two-letter identifier of a US deadline jurisdiction
// (50 states plus DC).  It is the sole key into the rule registry and must
// belong to the enumerated valid set at every call site; resolution rejects
// anything else before any rule lookup or store I/O happens.
type JurisdictionCode string

// stateNames enumerates every supported jurisdiction and its display name.
// This set is the validation authority; the rule registry guarantees a rule
// for each member and nothing outside it.
var stateNames = map[JurisdictionCode]string{
	"AL": "Alabama",
	"AK": "Alaska",
	"AZ": "Arizona",
	"AR": "Arkansas",
	"CA": "California",
	"CO": "Colorado",
	"CT": "Connecticut",
	"DE": "Delaware",
	"DC": "District of Columbia",
	"FL": "Florida",
	"GA": "Georgia",
	"HI": "Hawaii",
	"ID": "Idaho",
	"IL": "Illinois",
	"IN": "Indiana",
	"IA": "Iowa",
	"KS": "Kansas",
	"KY": "Kentucky",
	"LA": "Louisiana",
	"ME": "Maine",
	"MD": "Maryland",
	"MA": "Massachusetts",
	"MI": "Michigan",
	"MN": "Minnesota",
	"MS": "Mississippi",
	"MO": "Missouri",
	"MT": "Montana",
	"NE": "Nebraska",
	"NV": "Nevada",
	"NH": "New Hampshire",
	"NJ": "New Jersey",
	"NM": "New Mexico",
	"NY": "New York",
	"NC": "North Carolina",
	"ND": "North Dakota",
	"OH": "Ohio",
	"OK": "Oklahoma",
	"OR": "Oregon",
	"PA": "Pennsylvania",
	"RI": "Rhode Island",
	"SC": "South Carolina",
	"SD": "South Dakota",
	"TN": "Tennessee",
	"TX": "Texas",
	"UT": "Utah",
	"VT": "Vermont",
	"VA": "Virginia",
	"WA": "Washington",
	"WV": "West Virginia",
	"WI": "Wisconsin",
	"WY": "Wyoming",
}

// JurisdictionCount is the number of supported jurisdictions.
const JurisdictionCount = 51

// NormalizeJurisdiction trims surrounding whitespace and upper-cases a raw
// code.  Normalization never validates; pair it with IsValid.
func NormalizeJurisdiction(raw string) JurisdictionCode {
	return JurisdictionCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsValid reports whether the code belongs to the enumerated jurisdiction set.
func (c JurisdictionCode) IsValid() bool {
	_, ok := stateNames[c]
	return ok
}

// StateName returns the display name of the jurisdiction, or "" for codes
// outside the valid set.
func (c JurisdictionCode) StateName() string {
	return stateNames[c]
}

// String implements fmt.Stringer.
func (c JurisdictionCode) String() string {
	return string(c)
}

// AllJurisdictions returns every supported code in lexical order.
func AllJurisdictions() []JurisdictionCode {
	codes := make([]JurisdictionCode, 0, len(stateNames))
	for c := range stateNames {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

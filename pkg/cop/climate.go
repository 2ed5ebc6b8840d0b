package cop

import "strings"

// Zone is a French thermal climate zone.
type Zone string

const (
	ZoneH1      Zone = "H1"
	ZoneH2      Zone = "H2"
	ZoneH3      Zone = "H3"
	ZoneUnknown Zone = ""
)

var zoneFactors = map[Zone]float64{
	ZoneH1: 0.85,
	ZoneH2: 1.00,
	ZoneH3: 1.10,
}

// Factor returns the COP multiplier of the zone; unknown zones are neutral.
func (z Zone) Factor() float64 {
	if factor, ok := zoneFactors[z]; ok {
		return factor
	}
	return 1.0
}

var h1Departments = set(
	"01", "02", "03", "05", "08", "10", "14", "15", "19", "21", "23", "25",
	"27", "28", "38", "39", "42", "43", "45", "51", "52", "54", "55", "57",
	"58", "59", "60", "61", "62", "63", "67", "68", "69", "70", "71", "73",
	"74", "75", "76", "77", "78", "80", "87", "88", "89", "90", "91", "92",
	"93", "94", "95",
)

var h3Departments = set("06", "11", "13", "2A", "2B", "30", "34", "66", "83")

// Metropolitan departments not listed above are H2.
var h2Departments = set(
	"04", "07", "09", "12", "16", "17", "18", "22", "24", "26", "29", "31",
	"32", "33", "35", "36", "37", "40", "41", "44", "46", "47", "48", "49",
	"50", "53", "56", "64", "65", "72", "79", "81", "82", "84", "85", "86",
)

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// Department extracts the department code from a five-digit postal code.
// Corsican 200xx/201xx codes map to 2A and 202xx-206xx to 2B.
func Department(postalCode string) (string, bool) {
	code := strings.TrimSpace(postalCode)
	if len(code) != 5 {
		return "", false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if strings.HasPrefix(code, "20") {
		if code[2] <= '1' {
			return "2A", true
		}
		return "2B", true
	}
	return code[:2], true
}

// ZoneForPostalCode returns the climate zone of a postal code, or
// ZoneUnknown when the code is empty, malformed or outside metropolitan France.
func ZoneForPostalCode(postalCode string) Zone {
	dept, ok := Department(postalCode)
	if !ok {
		return ZoneUnknown
	}
	switch {
	case contains(h1Departments, dept):
		return ZoneH1
	case contains(h3Departments, dept):
		return ZoneH3
	case contains(h2Departments, dept):
		return ZoneH2
	default:
		return ZoneUnknown
	}
}

func contains(m map[string]struct{}, key string) bool {
	_, ok := m[key]
	return ok
}

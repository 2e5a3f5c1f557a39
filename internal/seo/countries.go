package seo

// DefaultCountry is used when an inline enrichment keyword omits its country.
const DefaultCountry = "UK"

// locationCodes maps supported country codes to the provider's numeric
// location identifiers.
var locationCodes = map[string]int{
	"UK":  2826,
	"US":  2840,
	"UAE": 2784,
	"AU":  2036,
	"CA":  2124,
	"SG":  2702,
	"HK":  2344,
}

// LocationCode returns the provider location identifier for a country code.
// Unknown codes fall back to the UK identifier rather than failing.
func LocationCode(country string) int {
	if code, ok := locationCodes[country]; ok {
		return code
	}
	return locationCodes[DefaultCountry]
}

// KnownCountry reports whether the country code is in the supported set.
func KnownCountry(country string) bool {
	_, ok := locationCodes[country]
	return ok
}

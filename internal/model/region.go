package model

import "sort"

// Region holds the dialing rules for one supported country. Digit
// counts are bounds on the national number, dial code excluded; for
// most regions MinDigits == MaxDigits.
type Region struct {
	Code        string
	DialCode    string
	DisplayName string
	MinDigits   int
	MaxDigits   int
}

// Regions is the fixed table of supported countries. Loaded once,
// never mutated.
var Regions = map[string]Region{
	"IN": {Code: "IN", DialCode: "+91", DisplayName: "India", MinDigits: 10, MaxDigits: 10},
	"NG": {Code: "NG", DialCode: "+234", DisplayName: "Nigeria", MinDigits: 10, MaxDigits: 10},
	"ID": {Code: "ID", DialCode: "+62", DisplayName: "Indonesia", MinDigits: 9, MaxDigits: 12},
	"RU": {Code: "RU", DialCode: "+7", DisplayName: "Russia", MinDigits: 10, MaxDigits: 10},
	"GB": {Code: "GB", DialCode: "+44", DisplayName: "UK", MinDigits: 10, MaxDigits: 10},
	"US": {Code: "US", DialCode: "+1", DisplayName: "US", MinDigits: 10, MaxDigits: 10},
	"CA": {Code: "CA", DialCode: "+1", DisplayName: "Canada", MinDigits: 10, MaxDigits: 10},
}

// DefaultRegion is the pre-selected country on the phone entry screen.
const DefaultRegion = "IN"

// RegionCodes returns the supported region codes in stable order for
// display.
func RegionCodes() []string {
	codes := make([]string, 0, len(Regions))
	for code := range Regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FullNumber joins a region's dial code with the national digits.
func FullNumber(r Region, digits string) string {
	return r.DialCode + digits
}

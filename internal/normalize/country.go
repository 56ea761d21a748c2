// Package normalize canonicalizes raw extracted text into comparable phone
// and website values.
package normalize

import "github.com/rotisserie/eris"

// CountryProfile parameterizes phone normalization for one target country.
type CountryProfile struct {
	Name          string `yaml:"name"`
	DialCode      string `yaml:"dial_code"`      // without "+" or "00", e.g. "41"
	TrunkPrefix   string `yaml:"trunk_prefix"`   // domestic prefix, usually "0"
	SubscriberLen int    `yaml:"subscriber_len"` // canonical local digit count
	Groups        []int  `yaml:"groups"`         // digit grouping after the dial code
}

// Switzerland is the default profile: +41, 9 local digits, 2-3-2-2 grouping.
var Switzerland = CountryProfile{
	Name:          "switzerland",
	DialCode:      "41",
	TrunkPrefix:   "0",
	SubscriberLen: 9,
	Groups:        []int{2, 3, 2, 2},
}

var profiles = map[string]CountryProfile{
	"switzerland": Switzerland,
	"germany": {
		Name:          "germany",
		DialCode:      "49",
		TrunkPrefix:   "0",
		SubscriberLen: 10,
		Groups:        []int{3, 3, 4},
	},
	"austria": {
		Name:          "austria",
		DialCode:      "43",
		TrunkPrefix:   "0",
		SubscriberLen: 10,
		Groups:        []int{3, 3, 4},
	},
}

// ProfileByName looks up a built-in country profile.
func ProfileByName(name string) (CountryProfile, error) {
	p, ok := profiles[name]
	if !ok {
		return CountryProfile{}, eris.Errorf("normalize: unknown country profile %q", name)
	}
	return p, nil
}

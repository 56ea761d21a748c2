// Package tabular loads the input dataset and maps its columns onto record
// roles. The core never inspects raw column names: the mapping is explicit
// configuration, validated once before any backend call.
package tabular

import (
	"github.com/rotisserie/eris"
)

// Mapping assigns dataset columns to record roles. Name lists one or more
// columns whose values form the ordered name/organization tokens.
type Mapping struct {
	ID      string   `yaml:"id" mapstructure:"id"`           // optional, row index used when empty
	Name    []string `yaml:"name" mapstructure:"name"`       // required, ordered
	Address string   `yaml:"address" mapstructure:"address"` // optional
	Website string   `yaml:"website" mapstructure:"website"` // required target
	Phone   string   `yaml:"phone" mapstructure:"phone"`     // required target
}

// Validate checks the mapping is internally complete. Column existence is
// checked against the header at load time; a failure of either check is
// fatal before any backend call.
func (m Mapping) Validate() error {
	if len(m.Name) == 0 {
		return eris.New("tabular: mapping needs at least one name column")
	}
	for _, c := range m.Name {
		if c == "" {
			return eris.New("tabular: empty name column in mapping")
		}
	}
	if m.Website == "" {
		return eris.New("tabular: mapping needs a website column")
	}
	if m.Phone == "" {
		return eris.New("tabular: mapping needs a phone column")
	}
	return nil
}

package models

import "strings"

// Team represents an NBA team in the catalog
type Team struct {
	Name       string `json:"name" yaml:"name"`
	LogoKey    string `json:"logo_key" yaml:"logo_key"`
	Conference string `json:"conference" yaml:"conference"`
	Division   string `json:"division" yaml:"division"`
}

// ShortName returns the nickname, e.g. "Lakers" for "Los Angeles Lakers"
func (t Team) ShortName() string {
	fields := strings.Fields(t.Name)
	if len(fields) == 0 {
		return t.Name
	}
	return fields[len(fields)-1]
}

// LogoPath returns the static asset path for the team logo
func (t Team) LogoPath() string {
	if t.LogoKey == "" {
		return "/logos/default.png"
	}
	return "/logos/" + t.LogoKey + ".png"
}

// String returns the canonical team name
func (t Team) String() string {
	return t.Name
}

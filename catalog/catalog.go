// Package catalog holds the fixed, ordered list of teams predictions can be made on.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"nba-predictions-go/models"
)

//go:embed teams.yaml
var defaultTeamsYAML []byte

// FilterOption is one entry of the team filter dropdown
type FilterOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FilterOptions lists the supported filters in display order
var FilterOptions = []FilterOption{
	{ID: "all", Label: "All Teams"},
	{ID: "east", Label: "Eastern Conference"},
	{ID: "west", Label: "Western Conference"},
}

type file struct {
	Teams []models.Team `yaml:"teams"`
}

// Catalog is a read-only ordered team list
type Catalog struct {
	teams []models.Team
	index map[string]int
}

// Default returns the embedded NBA catalog
func Default() *Catalog {
	c, err := Parse(defaultTeamsYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded teams.yaml is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns the embedded catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read team catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and checks that it is non-empty with unique names
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode team catalog: %w", err)
	}
	return New(f.Teams)
}

// New builds a catalog from an ordered team slice
func New(teams []models.Team) (*Catalog, error) {
	if len(teams) == 0 {
		return nil, errors.New("team catalog is empty")
	}
	c := &Catalog{
		teams: make([]models.Team, len(teams)),
		index: make(map[string]int, len(teams)),
	}
	for i, t := range teams {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("team %d has no name", i)
		}
		if _, dup := c.index[t.Name]; dup {
			return nil, fmt.Errorf("duplicate team %q", t.Name)
		}
		c.teams[i] = t
		c.index[t.Name] = i
	}
	return c, nil
}

// Teams returns a copy of the catalog in canonical order
func (c *Catalog) Teams() []models.Team {
	out := make([]models.Team, len(c.teams))
	copy(out, c.teams)
	return out
}

// Names returns the team names in canonical order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.teams))
	for i, t := range c.teams {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of teams
func (c *Catalog) Len() int {
	return len(c.teams)
}

// Contains reports whether name is a catalog team
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Lookup returns the team with the given name
func (c *Catalog) Lookup(name string) (models.Team, bool) {
	i, ok := c.index[name]
	if !ok {
		return models.Team{}, false
	}
	return c.teams[i], true
}

// Opponents returns every team except subject, in catalog order
func (c *Catalog) Opponents(subject string) []models.Team {
	out := make([]models.Team, 0, len(c.teams))
	for _, t := range c.teams {
		if t.Name != subject {
			out = append(out, t)
		}
	}
	return out
}

// Filter applies the search box and the conference filter.
// Unknown filter ids behave like "all".
func (c *Catalog) Filter(query, filter string) []models.Team {
	query = strings.ToLower(strings.TrimSpace(query))
	filter = strings.ToLower(strings.TrimSpace(filter))

	out := make([]models.Team, 0, len(c.teams))
	for _, t := range c.teams {
		if query != "" && !strings.Contains(strings.ToLower(t.Name), query) {
			continue
		}
		if (filter == "east" || filter == "west") && t.Conference != filter {
			continue
		}
		out = append(out, t)
	}
	return out
}

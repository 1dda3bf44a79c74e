package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba-predictions-go/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, 30, c.Len())
	assert.True(t, c.Contains("Los Angeles Lakers"))
	assert.False(t, c.Contains("Seattle SuperSonics"))
	assert.Equal(t, "Atlanta Hawks", c.Names()[0])

	lakers, ok := c.Lookup("Los Angeles Lakers")
	require.True(t, ok)
	assert.Equal(t, "west", lakers.Conference)
}

func TestOpponentsExcludeSubject(t *testing.T) {
	c := Default()
	for _, subject := range c.Names() {
		opponents := c.Opponents(subject)
		assert.Len(t, opponents, c.Len()-1)
		for _, o := range opponents {
			assert.NotEqual(t, subject, o.Name)
		}
	}
}

func TestFilter(t *testing.T) {
	c := Default()

	east := c.Filter("", "east")
	assert.Len(t, east, 15)
	for _, team := range east {
		assert.Equal(t, "east", team.Conference)
	}

	la := c.Filter("los angeles", "all")
	require.Len(t, la, 2)
	assert.Equal(t, "Los Angeles Clippers", la[0].Name)

	assert.Empty(t, c.Filter("lakers", "east"))
	assert.Len(t, c.Filter("", "bogus"), 30)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := Parse([]byte("teams: []"))
	assert.Error(t, err)

	_, err = Parse([]byte("teams:\n  - {name: A}\n  - {name: A}\n"))
	assert.Error(t, err)

	_, err = New([]models.Team{{Name: "  "}})
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teams:\n  - {name: Alpha, conference: east}\n  - {name: Beta, conference: west}\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, c.Names())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package roster

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/rosterquiz/internal/domain/model"
	"go.yaml.in/yaml/v3"
)

//go:embed teams.yaml
var defaultTeams []byte

type catalogFile struct {
	Teams []struct {
		Name    string `yaml:"name"`
		Players []struct {
			Name     string `yaml:"name"`
			Portrait string `yaml:"portrait"`
		} `yaml:"players"`
	} `yaml:"teams"`
}

// Load parses a YAML catalog of the form
//
//	teams:
//	  - name: Boston Celtics
//	    players:
//	      - {name: Jayson Tatum, portrait: players/jayson-tatum.png}
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil)
		}
		return nil, fmt.Errorf("%w: decode catalog: %w", model.ErrConfiguration, err)
	}

	teams := make([]model.Team, 0, len(f.Teams))
	for _, t := range f.Teams {
		team := model.Team{Name: t.Name, Roster: make([]model.Player, 0, len(t.Players))}
		for _, p := range t.Players {
			team.Roster = append(team.Roster, model.Player{Name: p.Name, Portrait: p.Portrait})
		}
		teams = append(teams, team)
	}
	return New(teams)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultTeams))
}

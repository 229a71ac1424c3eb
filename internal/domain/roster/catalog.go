// Package roster holds the read-only team catalog the game is played against.
package roster

import (
	"fmt"
	"strings"

	"github.com/okian/rosterquiz/internal/domain/dedupe"
	"github.com/okian/rosterquiz/internal/domain/model"
)

// Catalog maps team names to ordered rosters. It is immutable after New and
// safe for concurrent readers.
type Catalog struct {
	teams []model.Team
	index map[string]int // normalized team name -> position in teams
	names []string
	total int
}

// New validates teams and builds a Catalog preserving their order.
// Team names must be non-empty and unique, every team needs at least one
// player, and player names must be non-empty and unique within their team. Player.Team is set from the owning team.
func New(teams []model.Team) (*Catalog, error) {
	c := &Catalog{
		teams: make([]model.Team, 0, len(teams)),
		index: make(map[string]int, len(teams)),
		names: make([]string, 0, len(teams)),
	}

	seenTeams := dedupe.New(dedupe.WithCapacity(len(teams)))
	for _, t := range teams {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: team with empty name", model.ErrConfiguration)
		}
		if seenTeams.SeenAndRecord(name) {
			return nil, fmt.Errorf("%w: duplicate team %q", model.ErrConfiguration, name)
		}

		if len(t.Roster) == 0 {
			return nil, fmt.Errorf("%w: team %q has no players", model.ErrConfiguration, name)
		}

		seenPlayers := dedupe.New(dedupe.WithCapacity(len(t.Roster)))
		players := make([]model.Player, 0, len(t.Roster))
		for _, p := range t.Roster {
			pname := strings.TrimSpace(p.Name)
			if pname == "" {
				return nil, fmt.Errorf("%w: team %q has a player with an empty name", model.ErrConfiguration, name)
			}
			if seenPlayers.SeenAndRecord(pname) {
				return nil, fmt.Errorf("%w: duplicate player %q on team %q", model.ErrConfiguration, pname, name)
			}
			players = append(players, model.Player{Name: pname, Portrait: p.Portrait, Team: name})
		}

		c.index[dedupe.Normalize(name)] = len(c.teams)
		c.teams = append(c.teams, model.Team{Name: name, Roster: players})
		c.names = append(c.names, name)
		c.total += len(players)
	}

	return c, nil
}

// Len returns the number of teams.
func (c *Catalog) Len() int { return len(c.teams) }

// PlayerCount returns the number of players across all teams.
func (c *Catalog) PlayerCount() int { return c.total }

// TeamNames returns team names in catalog order. The result is a copy.
func (c *Catalog) TeamNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Has reports whether name is a catalog team (case-insensitive).
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[dedupe.Normalize(name)]
	return ok
}

// HasExact reports whether name is a catalog team spelled exactly as the
// catalog spells it.
func (c *Catalog) HasExact(name string) bool {
	i, ok := c.index[dedupe.Normalize(name)]
	return ok && c.teams[i].Name == name
}

// CanonicalName returns the catalog spelling of a team name.
func (c *Catalog) CanonicalName(name string) (string, error) {
	i, ok := c.index[dedupe.Normalize(name)]
	if !ok {
		return "", fmt.Errorf("%w: team %q", model.ErrNotFound, name)
	}
	return c.teams[i].Name, nil
}

// Roster returns the ordered players of a team. The result is a copy.
func (c *Catalog) Roster(name string) ([]model.Player, error) {
	i, ok := c.index[dedupe.Normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: team %q", model.ErrNotFound, name)
	}
	out := make([]model.Player, len(c.teams[i].Roster))
	copy(out, c.teams[i].Roster)
	return out, nil
}

// AllPlayers concatenates every roster in catalog order.
func (c *Catalog) AllPlayers() []model.Player {
	out := make([]model.Player, 0, c.total)
	for _, t := range c.teams {
		out = append(out, t.Roster...)
	}
	return out
}

// PlayerNames returns every player name in catalog order.
func (c *Catalog) PlayerNames() []string {
	out := make([]string, 0, c.total)
	for _, t := range c.teams {
		for _, p := range t.Roster {
			out = append(out, p.Name)
		}
	}
	return out
}

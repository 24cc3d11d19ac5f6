// Package catalog is the read-only record store for teams and tournaments.
//
// The catalog is built once at startup (Default() loads the curated league
// data) and never mutated afterwards. Every read returns copies, so a caller
// that sorts or edits the slice it got back cannot corrupt what the next
// request sees.
//
// NOT FOUND IS NOT AN ERROR:
// Team and Tournament return (value, ok) instead of (value, error). A bad id in
// a URL is an everyday event, and the pages just branch on ok to render their
// "not found" view.
package catalog

import (
	"sort"

	"github.com/sakif/robotics-league/internal/model"
)

// Store is what handlers and services need from the catalog.
type Store interface {
	AllTeams() []model.Team
	Team(id int) (model.Team, bool)
	AllTournaments() []model.Tournament
	Tournament(id int) (model.Tournament, bool)
}

// compile-time check that *Catalog implements Store
var _ Store = (*Catalog)(nil)

// Catalog holds teams and tournaments in insertion order.
type Catalog struct {
	teams       []model.Team
	tournaments []model.Tournament
}

// New builds a catalog from the given records. The inputs are copied.
func New(teams []model.Team, tournaments []model.Tournament) *Catalog {
	c := &Catalog{
		teams:       make([]model.Team, len(teams)),
		tournaments: make([]model.Tournament, len(tournaments)),
	}
	for i, t := range teams {
		c.teams[i] = t.Clone()
	}
	for i, t := range tournaments {
		c.tournaments[i] = t.Clone()
	}
	return c
}

// Default returns the catalog backed by the league's seed data.
func Default() *Catalog {
	return New(seedTeams(), seedTournaments())
}

// AllTeams returns every team in insertion order (not ranking order).
func (c *Catalog) AllTeams() []model.Team {
	out := make([]model.Team, len(c.teams))
	for i, t := range c.teams {
		out[i] = t.Clone()
	}
	return out
}

// Team looks a team up by id with a linear scan.
func (c *Catalog) Team(id int) (model.Team, bool) {
	for _, t := range c.teams {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Team{}, false
}

// AllTournaments returns every tournament in insertion order.
func (c *Catalog) AllTournaments() []model.Tournament {
	out := make([]model.Tournament, len(c.tournaments))
	for i, t := range c.tournaments {
		out[i] = t.Clone()
	}
	return out
}

// Tournament looks a tournament up by id with a linear scan.
func (c *Catalog) Tournament(id int) (model.Tournament, bool) {
	for _, t := range c.tournaments {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Tournament{}, false
}

// TournamentsByStatus filters tournaments, keeping insertion order.
func (c *Catalog) TournamentsByStatus(status model.TournamentStatus) []model.Tournament {
	out := []model.Tournament{}
	for _, t := range c.tournaments {
		if t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Rankings returns the teams ordered by their ranking field (1 first).
// Ties keep insertion order.
func (c *Catalog) Rankings() []model.Team {
	teams := c.AllTeams()
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Ranking < teams[j].Ranking
	})
	return teams
}

package model

import "slices"

// Member is one person on a team roster.
type Member struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Achievement is an award or placement listed on a team page.
type Achievement struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// TeamStats is the season record used by the rankings page.
type TeamStats struct {
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Draws         int `json:"draws"`
	RankingPoints int `json:"rankingPoints"`
}

// Team is read-only reference data. Ranking 1 is the best team.
//
// Wins and Losses duplicate Stats.Wins/Stats.Losses; the site reads both
// shapes so both are kept.
type Team struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Location     string        `json:"location"`
	Founded      int           `json:"founded"`
	Logo         string        `json:"logo"`
	Members      []Member      `json:"members"`
	Achievements []Achievement `json:"achievements"`
	Stats        TeamStats     `json:"stats"`
	Wins         int           `json:"wins"`
	Losses       int           `json:"losses"`
	Ranking      int           `json:"ranking"`
}

// Clone returns a deep copy of the team.
func (t Team) Clone() Team {
	t.Members = slices.Clone(t.Members)
	t.Achievements = slices.Clone(t.Achievements)
	return t
}

package catalog

import (
	"fmt"
	"sort"

	"github.com/sakif/robotics-league/internal/model"
)

// IssueKind classifies a ranking inconsistency.
type IssueKind string

const (
	// IssueDuplicateRank: two teams share the same ranking.
	IssueDuplicateRank IssueKind = "duplicate_rank"
	// IssueMissingRank: a rank between 1 and N is not held by any team.
	IssueMissingRank IssueKind = "missing_rank"
	// IssueRankOutOfRange: a ranking below 1 or above N.
	IssueRankOutOfRange IssueKind = "rank_out_of_range"
	// IssuePointsOrder: a better-ranked team has fewer ranking points.
	IssuePointsOrder IssueKind = "points_order"
	// IssueTiedPoints: two differently ranked teams have equal points, so the
	// points alone cannot justify their order.
	IssueTiedPoints IssueKind = "tied_points"
)

// RankingIssue describes one inconsistency in authored ranking data.
type RankingIssue struct {
	Kind    IssueKind `json:"kind"`
	TeamIDs []int     `json:"teamIds,omitempty"`
	Rank    int       `json:"rank,omitempty"`
	Message string    `json:"message"`
}

// CheckRankings verifies that rankings form a dense 1..N order and that this
// order matches ranking points descending. It only reports; the data is
// never corrected here.
func CheckRankings(teams []model.Team) []RankingIssue {
	var issues []RankingIssue
	n := len(teams)

	byRank := make(map[int][]int, n)
	for _, t := range teams {
		if t.Ranking < 1 || t.Ranking > n {
			issues = append(issues, RankingIssue{
				Kind:    IssueRankOutOfRange,
				TeamIDs: []int{t.ID},
				Rank:    t.Ranking,
				Message: fmt.Sprintf("team %d (%s) has ranking %d, expected 1..%d", t.ID, t.Name, t.Ranking, n),
			})
			continue
		}
		byRank[t.Ranking] = append(byRank[t.Ranking], t.ID)
	}

	for rank := 1; rank <= n; rank++ {
		ids := byRank[rank]
		switch {
		case len(ids) == 0:
			issues = append(issues, RankingIssue{
				Kind:    IssueMissingRank,
				Rank:    rank,
				Message: fmt.Sprintf("no team holds ranking %d", rank),
			})
		case len(ids) > 1:
			issues = append(issues, RankingIssue{
				Kind:    IssueDuplicateRank,
				TeamIDs: ids,
				Rank:    rank,
				Message: fmt.Sprintf("ranking %d is shared by teams %v", rank, ids),
			})
		}
	}

	ordered := make([]model.Team, n)
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Ranking < ordered[j].Ranking
	})

	for i := 0; i+1 < len(ordered); i++ {
		a, b := ordered[i], ordered[i+1]
		if a.Ranking == b.Ranking {
			continue // already reported as a duplicate
		}
		pa, pb := a.Stats.RankingPoints, b.Stats.RankingPoints
		switch {
		case pa < pb:
			issues = append(issues, RankingIssue{
				Kind:    IssuePointsOrder,
				TeamIDs: []int{a.ID, b.ID},
				Rank:    a.Ranking,
				Message: fmt.Sprintf("team %d ranked #%d has %d points, fewer than team %d ranked #%d with %d",
					a.ID, a.Ranking, pa, b.ID, b.Ranking, pb),
			})
		case pa == pb:
			issues = append(issues, RankingIssue{
				Kind:    IssueTiedPoints,
				TeamIDs: []int{a.ID, b.ID},
				Rank:    a.Ranking,
				Message: fmt.Sprintf("teams %d (#%d) and %d (#%d) both have %d points",
					a.ID, a.Ranking, b.ID, b.Ranking, pa),
			})
		}
	}

	return issues
}

package service

import (
	"sort"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

// Structure is the read model of a generated tournament: stages in order,
// their groups, and matches bucketed by round.
type Structure struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Stages     []StageView         `json:"stages"`
	// Started is true once any match is scheduled, in progress or done.
	Started bool `json:"started"`
}

type StageView struct {
	bracket.Stage
	Groups []GroupView `json:"groups,omitempty"`
	Rounds []RoundView `json:"rounds,omitempty"`
}

type GroupView struct {
	bracket.Group
	Rounds []RoundView `json:"rounds"`
}

type RoundView struct {
	Round   int             `json:"round"`
	Matches []bracket.Match `json:"matches"`
}

func PrepareStructure(t *bracket.Tournament, stages []bracket.Stage, groups []bracket.Group, matches []bracket.Match) *Structure {
	stageMatches := make(map[uuid.UUID][]bracket.Match)
	groupMatches := make(map[uuid.UUID][]bracket.Match)
	started := false

	for _, m := range matches {
		if m.HasStarted() {
			started = true
		}
		if m.GroupID != nil {
			groupMatches[*m.GroupID] = append(groupMatches[*m.GroupID], m)
			continue
		}
		stageMatches[m.StageID] = append(stageMatches[m.StageID], m)
	}

	stageGroups := make(map[uuid.UUID][]GroupView)
	for _, g := range groups {
		stageGroups[g.StageID] = append(stageGroups[g.StageID], GroupView{Group: g, Rounds: bucketRounds(groupMatches[g.ID])})
	}

	sort.Slice(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})

	views := make([]StageView, 0, len(stages))
	for _, st := range stages {
		gv := stageGroups[st.ID]
		sort.Slice(gv, func(i, j int) bool {
			return gv[i].Order < gv[j].Order
		})
		views = append(views, StageView{Stage: st, Groups: gv, Rounds: bucketRounds(stageMatches[st.ID])})
	}

	return &Structure{Tournament: t, Stages: views, Started: started}
}

func bucketRounds(matches []bracket.Match) []RoundView {
	byRound := make(map[int][]bracket.Match)
	var roundNums []int
	for _, m := range matches {
		if _, exists := byRound[m.Round]; !exists {
			roundNums = append(roundNums, m.Round)
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	sort.Ints(roundNums)
	sortRounds(byRound, roundNums)

	rounds := make([]RoundView, 0, len(roundNums))
	for _, r := range roundNums {
		rounds = append(rounds, RoundView{Round: r, Matches: byRound[r]})
	}
	return rounds
}

func sortRounds(rounds map[int][]bracket.Match, roundNums []int) {
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].MatchOrder < rounds[r][j].MatchOrder
		})
	}
}

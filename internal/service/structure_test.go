package service

import (
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareStructure(t *testing.T) {
	groupStage := bracket.Stage{ID: uuid.New(), Name: "Fase de Grupos", StageType: bracket.StageGroups, Order: 1}
	playoff := bracket.Stage{ID: uuid.New(), Name: "Playoff", StageType: bracket.StagePlayoff, Order: 2}
	group := bracket.Group{ID: uuid.New(), StageID: groupStage.ID, Name: "Grupo Único", Order: 1}

	match := func(stage uuid.UUID, groupID *uuid.UUID, round, order int, status bracket.MatchStatus) bracket.Match {
		return bracket.Match{ID: uuid.New(), StageID: stage, GroupID: groupID, Round: round, MatchOrder: order, Status: status}
	}

	matches := []bracket.Match{
		match(playoff.ID, nil, 2, 1, bracket.MatchPending),
		match(playoff.ID, nil, 1, 2, bracket.MatchPending),
		match(groupStage.ID, &group.ID, 2, 1, bracket.MatchPending),
		match(playoff.ID, nil, 1, 1, bracket.MatchPending),
		match(groupStage.ID, &group.ID, 1, 1, bracket.MatchDone),
	}

	// stages arrive out of order
	s := PrepareStructure(&bracket.Tournament{}, []bracket.Stage{playoff, groupStage}, []bracket.Group{group}, matches)

	require.Len(t, s.Stages, 2)
	assert.True(t, s.Started)

	groups := s.Stages[0]
	assert.Equal(t, groupStage.ID, groups.ID)
	assert.Empty(t, groups.Rounds)
	require.Len(t, groups.Groups, 1)
	require.Len(t, groups.Groups[0].Rounds, 2)
	assert.Equal(t, 1, groups.Groups[0].Rounds[0].Round)
	assert.Equal(t, matches[4].ID, groups.Groups[0].Rounds[0].Matches[0].ID)

	rounds := s.Stages[1].Rounds
	require.Len(t, rounds, 2)
	require.Len(t, rounds[0].Matches, 2)
	assert.Equal(t, matches[3].ID, rounds[0].Matches[0].ID)
	assert.Equal(t, matches[1].ID, rounds[0].Matches[1].ID)
	assert.Equal(t, matches[0].ID, rounds[1].Matches[0].ID)
}

func TestPrepareStructureEmpty(t *testing.T) {
	s := PrepareStructure(&bracket.Tournament{}, nil, nil, nil)
	assert.Empty(t, s.Stages)
	assert.False(t, s.Started)
}

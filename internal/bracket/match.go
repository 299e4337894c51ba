package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "PENDING"
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchDone       MatchStatus = "DONE"
)

// StartedStatuses are the statuses that mark a tournament as underway.
var StartedStatuses = []MatchStatus{MatchScheduled, MatchInProgress, MatchDone}

// SlotOutcome says which side of a source match feeds a pending slot.
type SlotOutcome string

const (
	OutcomeWinner SlotOutcome = "WINNER"
	OutcomeLoser  SlotOutcome = "LOSER"
)

type Match struct {
	ID      uuid.UUID  `db:"id" json:"id"`
	StageID uuid.UUID  `db:"stage_id" json:"stageId"`
	GroupID *uuid.UUID `db:"group_id" json:"groupId,omitempty"`

	// Position inside the stage, used to rebuild the bracket
	Round      int     `db:"round" json:"round"`
	MatchOrder int     `db:"match_order" json:"matchOrder"`
	RoundLabel *string `db:"round_label" json:"roundLabel,omitempty"`

	Pairing1ID *int64 `db:"pairing1_id" json:"pairing1Id"`
	Pairing2ID *int64 `db:"pairing2_id" json:"pairing2Id"`

	// Pending-resolution slots: the pairing ids above are placeholders until
	// the source match is reported.
	Pairing1SourceMatchID *uuid.UUID   `db:"pairing1_source_match_id" json:"pairing1SourceMatchId,omitempty"`
	Pairing1SourceOutcome *SlotOutcome `db:"pairing1_source_outcome" json:"pairing1SourceOutcome,omitempty"`
	Pairing2SourceMatchID *uuid.UUID   `db:"pairing2_source_match_id" json:"pairing2SourceMatchId,omitempty"`
	Pairing2SourceOutcome *SlotOutcome `db:"pairing2_source_outcome" json:"pairing2SourceOutcome,omitempty"`

	Status MatchStatus `db:"status" json:"status"`

	NextMatchID *uuid.UUID `db:"next_match_id" json:"nextMatchId,omitempty"`
	NextSlot    *int       `db:"next_slot" json:"nextSlot,omitempty"`

	LoserNextMatchID *uuid.UUID `db:"loser_next_match_id" json:"loserNextMatchId,omitempty"`
	LoserNextSlot    *int       `db:"loser_next_slot" json:"loserNextSlot,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// IsBye reports whether exactly one side of the match holds an entrant.
func (m *Match) IsBye() bool {
	return (m.Pairing1ID == nil) != (m.Pairing2ID == nil) && m.Pairing1SourceMatchID == nil && m.Pairing2SourceMatchID == nil
}

func (m *Match) HasStarted() bool {
	for _, s := range StartedStatuses {
		if m.Status == s {
			return true
		}
	}
	return false
}

// MatchLink is a forward pointer written after both ends of it exist.
type MatchLink struct {
	MatchID     uuid.UUID `db:"id"`
	NextMatchID uuid.UUID `db:"next_match_id"`
	NextSlot    int       `db:"next_slot"`
}

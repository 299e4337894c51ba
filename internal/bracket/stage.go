package bracket

import (
	"time"

	"github.com/google/uuid"
)

type StageType string

const (
	StageGroups      StageType = "GROUPS"
	StagePlayoff     StageType = "PLAYOFF"
	StageConsolation StageType = "CONSOLATION"
)

// Stage is one ordered phase of a tournament. Order is 1-based and only
// sequences stages; it says nothing about when they are played.
type Stage struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId"`
	Name         string    `db:"name" json:"name"`
	StageType    StageType `db:"stage_type" json:"stageType"`
	Order        int       `db:"stage_order" json:"order"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type Group struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StageID   uuid.UUID `db:"stage_id" json:"stageId"`
	Name      string    `db:"name" json:"name"`
	Order     int       `db:"group_order" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

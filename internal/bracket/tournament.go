package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Format string

const (
	FormatManual                    Format = "MANUAL"
	FormatChampionshipRoundRobin    Format = "CHAMPIONSHIP_ROUND_ROBIN"
	FormatNonstopRoundRobin         Format = "NONSTOP_ROUND_ROBIN"
	FormatGroupsPlusPlayoff         Format = "GROUPS_PLUS_PLAYOFF"
	FormatDrawAB                    Format = "DRAW_A_B"
	FormatGroupsPlusFinalsAllPlaces Format = "GROUPS_PLUS_FINALS_ALL_PLACES"
)

var Formats = []Format{
	FormatManual,
	FormatChampionshipRoundRobin,
	FormatNonstopRoundRobin,
	FormatGroupsPlusPlayoff,
	FormatDrawAB,
	FormatGroupsPlusFinalsAllPlaces,
}

func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

type Tournament struct {
	ID     uuid.UUID        `db:"id" json:"id"`
	Name   string           `db:"name" json:"name"`
	Format Format           `db:"format" json:"format"`
	Config TournamentConfig `db:"config" json:"config"`

	InscriptionDeadlineAt *time.Time `db:"inscription_deadline_at" json:"inscriptionDeadlineAt,omitempty"`

	// Metadata of the last generation
	GenerationSeed    *string    `db:"generation_seed" json:"generationSeed,omitempty"`
	GeneratedAt       *time.Time `db:"generated_at" json:"generatedAt,omitempty"`
	GeneratedByUserID *uuid.UUID `db:"generated_by_user_id" json:"generatedByUserId,omitempty"`
	GenerationVersion int64      `db:"generation_version" json:"generationVersion"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DeadlineOpen reports whether inscriptions are still accepted at now.
func (t *Tournament) DeadlineOpen(now time.Time) bool {
	return t.InscriptionDeadlineAt != nil && now.Before(*t.InscriptionDeadlineAt)
}

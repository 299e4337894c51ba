package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
)

// EntrantSource selects where a generation takes its entrants from.
type EntrantSource string

const (
	SourceConfirmed EntrantSource = "confirmed"
	SourceManual    EntrantSource = "manual"
)

// DefaultConfirmedStatuses are the registration states that count as a
// confirmed entrant.
var DefaultConfirmedStatuses = []string{"CONFIRMED_BOTH_PAID", "CONFIRMED_CAPTAIN_FULL"}

type EntrantResolver struct {
	store    *store.TournamentStore
	statuses []string
}

func NewEntrantResolver(store *store.TournamentStore, confirmedStatuses []string) *EntrantResolver {
	if len(confirmedStatuses) == 0 {
		confirmedStatuses = DefaultConfirmedStatuses
	}
	return &EntrantResolver{store: store, statuses: confirmedStatuses}
}

type ResolvedEntrants struct {
	Entrants      []bracket.Entrant
	PreserveOrder bool
	TargetSize    int
}

// Resolve returns the entrants for t. Confirmed mode reads registrations
// ordered by id and lets the draw shuffle them. Manual mode takes the
// organiser's list from the tournament config verbatim, placing seeded
// entrants by seed. A bracketSize above zero overrides the config's size.
func (r *EntrantResolver) Resolve(ctx context.Context, t *bracket.Tournament, source EntrantSource, bracketSize int) (*ResolvedEntrants, error) {
	switch source {
	case SourceManual:
		if err := t.Config.Validate(); err != nil {
			return nil, err
		}
		entrants := t.Config.Entrants()
		if len(entrants) == 0 {
			return nil, bracket.NewError(bracket.CodeNoParticipants, "tournament %s has no manual participants", t.ID)
		}
		if bracketSize == 0 {
			bracketSize = utils.OrZero(t.Config.BracketSize)
		}
		return &ResolvedEntrants{Entrants: entrants, PreserveOrder: true, TargetSize: bracketSize}, nil

	case SourceConfirmed, "":
		ids, err := r.store.ListConfirmedEntrantIDs(ctx, t.ID, r.statuses)
		if err != nil {
			return nil, fmt.Errorf("failed to list confirmed entrants: %w", err)
		}
		return &ResolvedEntrants{Entrants: bracket.EntrantsFromIDs(ids), TargetSize: bracketSize}, nil

	default:
		return nil, bracket.NewError(bracket.CodeInvalidConfig, "unknown entrant source %q", source)
	}
}

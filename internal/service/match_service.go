package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/google/uuid"
)

type MatchService struct {
	store *store.TournamentStore
}

func NewMatchService(store *store.TournamentStore) *MatchService {
	return &MatchService{store: store}
}

type MatchData struct {
	Match *bracket.Match `json:"match"`
	// Next and LoserNext are the matches this one feeds, when linked.
	Next      *bracket.Match `json:"next,omitempty"`
	LoserNext *bracket.Match `json:"loserNext,omitempty"`
}

// ErrMatchNotFound is returned when the match id is unknown.
var ErrMatchNotFound = errors.New("match not found")

func (s *MatchService) GetMatchData(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	data := &MatchData{Match: match}
	if match.NextMatchID != nil {
		if data.Next, err = s.store.GetMatch(ctx, *match.NextMatchID); err != nil {
			return nil, fmt.Errorf("failed to get next match: %w", err)
		}
	}
	if match.LoserNextMatchID != nil {
		if data.LoserNext, err = s.store.GetMatch(ctx, *match.LoserNextMatchID); err != nil {
			return nil, fmt.Errorf("failed to get loser match: %w", err)
		}
	}
	return data, nil
}

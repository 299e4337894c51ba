package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/draw"
	"github.com/AdamBeresnev/bracket-engine/internal/metrics"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "bracket-engine"

// GenerationService replaces a tournament's stages, groups and matches with a
// freshly drawn structure in a single transaction.
type GenerationService struct {
	db     *sqlx.DB
	store  *store.TournamentStore
	logger *zap.Logger
	locks  *tournamentLocks
	now    func() time.Time
}

func NewGenerationService(db *sqlx.DB, store *store.TournamentStore, logger *zap.Logger) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		db:     db,
		store:  store,
		logger: logger,
		locks:  newTournamentLocks(),
		now:    time.Now,
	}
}

type GenerateParams struct {
	TournamentID          uuid.UUID
	Format                bracket.Format
	Entrants              []bracket.Entrant
	Seed                  string
	InscriptionDeadlineAt *time.Time
	ForceGenerate         bool
	ActorUserID           *uuid.UUID
	TargetSize            int
	PreserveOrder         bool
}

type GenerateResult struct {
	StagesCreated  int    `json:"stagesCreated" yaml:"stagesCreated"`
	MatchesCreated int    `json:"matchesCreated" yaml:"matchesCreated"`
	SeedUsed       string `json:"seedUsed" yaml:"seedUsed"`
}

// Generate draws and persists the structure described by p. Guards run inside
// the transaction, so a match that starts concurrently is still seen.
func (s *GenerationService) Generate(ctx context.Context, p GenerateParams) (result *GenerateResult, err error) {
	seed := p.Seed
	if seed == "" {
		seed = draw.FallbackSeed(s.now())
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "bracket.generate",
		trace.WithAttributes(
			attribute.String("tournament.id", p.TournamentID.String()),
			attribute.String("bracket.format", string(p.Format)),
			attribute.String("bracket.seed", seed),
		),
	)
	defer span.End()

	start := s.now()
	defer func() {
		metrics.GenerationDuration.WithLabelValues(string(p.Format)).Observe(s.now().Sub(start).Seconds())
		metrics.GenerationsTotal.WithLabelValues(string(p.Format), outcomeOf(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.logResult(p, seed, result, err)
	}()

	// The plan is pure, so it is built before any lock or transaction.
	var plan *draw.Plan
	if len(p.Entrants) > 0 {
		plan, err = draw.BuildPlan(draw.PlanInput{
			Format:        p.Format,
			Entrants:      p.Entrants,
			Seed:          seed,
			TargetSize:    p.TargetSize,
			PreserveOrder: p.PreserveOrder,
		})
		if err != nil {
			return nil, err
		}
	}

	release, err := s.locks.acquire(ctx, p.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for tournament lock: %w", err)
	}
	defer release()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.store.BumpGenerationVersionTx(ctx, tx, p.TournamentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bracket.NewError(bracket.CodeTournamentNotFound, "tournament %s does not exist", p.TournamentID)
		}
		return nil, fmt.Errorf("failed to bump generation version: %w", err)
	}

	previous, err := s.store.GetTournamentTx(ctx, tx, p.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	now := s.now()
	if !p.ForceGenerate && p.InscriptionDeadlineAt != nil && now.Before(*p.InscriptionDeadlineAt) {
		return nil, bracket.NewError(bracket.CodeInscriptionNotClosed, "inscriptions close at %s", p.InscriptionDeadlineAt.UTC().Format(time.RFC3339))
	}

	if !p.ForceGenerate {
		started, err := s.store.CountStartedMatchesTx(ctx, tx, p.TournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to count started matches: %w", err)
		}
		if started > 0 {
			return nil, bracket.NewError(bracket.CodeTournamentAlreadyStarted, "%d matches already scheduled or played", started)
		}
	}

	if err := s.store.DeleteStructureTx(ctx, tx, p.TournamentID); err != nil {
		return nil, fmt.Errorf("failed to delete previous structure: %w", err)
	}

	// No entrants leaves the tournament empty and its metadata untouched.
	if plan == nil {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &GenerateResult{SeedUsed: seed}, nil
	}

	matchesCreated, err := s.persistPlan(ctx, tx, p.TournamentID, plan)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateGenerationMetadataTx(ctx, tx, p.TournamentID, seed, now, p.ActorUserID); err != nil {
		return nil, fmt.Errorf("failed to update generation metadata: %w", err)
	}

	entry := &bracket.AuditLogEntry{
		ID:            uuid.New(),
		TournamentID:  p.TournamentID,
		UserID:        p.ActorUserID,
		Action:        bracket.ActionGenerateBracket,
		PayloadBefore: previousPayload(previous),
		PayloadAfter: &bracket.AuditPayload{
			Format:   p.Format,
			Seed:     seed,
			Pairings: bracket.EntrantIDs(plan.Entrants),
		},
	}
	if err := s.store.CreateAuditLogTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to write audit log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.MatchesCreatedTotal.WithLabelValues(string(p.Format)).Add(float64(matchesCreated))

	return &GenerateResult{
		StagesCreated:  len(plan.Stages),
		MatchesCreated: matchesCreated,
		SeedUsed:       seed,
	}, nil
}

// persistPlan writes stages in order. Each stage's matches are inserted round
// by round before any pointer to them is written, and loser references only
// ever point back at stages that already exist.
func (s *GenerationService) persistPlan(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, plan *draw.Plan) (int, error) {
	// stage index -> round index -> match ids, for resolving MatchRefs
	ids := make([][][]uuid.UUID, len(plan.Stages))
	created := 0

	for si, ps := range plan.Stages {
		stage := &bracket.Stage{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         ps.Name,
			StageType:    ps.Type,
			Order:        ps.Order,
		}
		if err := s.store.CreateStageTx(ctx, tx, stage); err != nil {
			return 0, fmt.Errorf("failed to create stage %q: %w", ps.Name, err)
		}

		var rows []bracket.Match
		var loserLinks []bracket.MatchLink

		for _, pg := range ps.Groups {
			group := &bracket.Group{ID: uuid.New(), StageID: stage.ID, Name: pg.Name, Order: pg.Order}
			if err := s.store.CreateGroupTx(ctx, tx, group); err != nil {
				return 0, fmt.Errorf("failed to create group %q: %w", pg.Name, err)
			}
			for _, round := range pg.Rounds {
				for _, pm := range round {
					rows = append(rows, newMatch(stage.ID, &group.ID, pm))
				}
			}
		}

		ids[si] = make([][]uuid.UUID, len(ps.Rounds))
		for r, round := range ps.Rounds {
			for _, pm := range round {
				m := newMatch(stage.ID, nil, pm)
				if pm.SourceA != nil {
					src := ids[pm.SourceA.Stage][pm.SourceA.Round][pm.SourceA.Index]
					m.Pairing1SourceMatchID, m.Pairing1SourceOutcome = &src, utils.Ptr(pm.SourceA.Outcome)
					loserLinks = append(loserLinks, bracket.MatchLink{MatchID: src, NextMatchID: m.ID, NextSlot: 1})
				}
				if pm.SourceB != nil {
					src := ids[pm.SourceB.Stage][pm.SourceB.Round][pm.SourceB.Index]
					m.Pairing2SourceMatchID, m.Pairing2SourceOutcome = &src, utils.Ptr(pm.SourceB.Outcome)
					loserLinks = append(loserLinks, bracket.MatchLink{MatchID: src, NextMatchID: m.ID, NextSlot: 2})
				}
				ids[si][r] = append(ids[si][r], m.ID)
				rows = append(rows, m)
			}
		}

		if err := s.store.CreateMatchesTx(ctx, tx, rows); err != nil {
			return 0, fmt.Errorf("failed to create matches for stage %q: %w", ps.Name, err)
		}
		created += len(rows)

		if ps.Linked {
			if err := s.store.LinkWinnersTx(ctx, tx, winnerLinks(ids[si])); err != nil {
				return 0, fmt.Errorf("failed to link matches for stage %q: %w", ps.Name, err)
			}
		}
		if err := s.store.LinkLosersTx(ctx, tx, loserLinks); err != nil {
			return 0, fmt.Errorf("failed to link losers into stage %q: %w", ps.Name, err)
		}
	}

	return created, nil
}

func newMatch(stageID uuid.UUID, groupID *uuid.UUID, pm draw.PlannedMatch) bracket.Match {
	m := bracket.Match{
		ID:         uuid.New(),
		StageID:    stageID,
		GroupID:    groupID,
		Round:      pm.Round,
		MatchOrder: pm.Order,
		Pairing1ID: pm.A,
		Pairing2ID: pm.B,
		Status:     bracket.MatchPending,
	}
	if pm.Label != "" {
		m.RoundLabel = utils.Ptr(pm.Label)
	}
	return m
}

// winnerLinks points match i of each round at match i/2 of the next one,
// slot 1 for even i and slot 2 for odd i.
func winnerLinks(rounds [][]uuid.UUID) []bracket.MatchLink {
	var links []bracket.MatchLink
	for r := 0; r+1 < len(rounds); r++ {
		next := rounds[r+1]
		for i, id := range rounds[r] {
			if i/2 >= len(next) {
				break
			}
			slot := 1
			if i%2 == 1 {
				slot = 2
			}
			links = append(links, bracket.MatchLink{MatchID: id, NextMatchID: next[i/2], NextSlot: slot})
		}
	}
	return links
}

func previousPayload(t *bracket.Tournament) *bracket.AuditPayload {
	if t == nil || t.GenerationSeed == nil {
		return nil
	}
	return &bracket.AuditPayload{Format: t.Format, Seed: *t.GenerationSeed}
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	if code, ok := bracket.CodeOf(err); ok {
		return string(code)
	}
	return "error"
}

func (s *GenerationService) logResult(p GenerateParams, seed string, result *GenerateResult, err error) {
	fields := []zap.Field{
		zap.Stringer("tournament_id", p.TournamentID),
		zap.String("format", string(p.Format)),
		zap.String("seed", seed),
		zap.Int("entrants", len(p.Entrants)),
	}

	if err == nil {
		s.logger.Info("bracket generated", append(fields,
			zap.Int("stages_created", result.StagesCreated),
			zap.Int("matches_created", result.MatchesCreated),
		)...)
		return
	}

	if code, ok := bracket.CodeOf(err); ok {
		s.logger.Warn("bracket generation refused", append(fields, zap.String("code", string(code)), zap.Error(err))...)
		return
	}
	s.logger.Error("bracket generation failed", append(fields, zap.Error(err))...)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TournamentService is the entry point used by the HTTP handlers and the CLI.
// It loads the tournament, resolves its entrants and hands over to the
// GenerationService.
type TournamentService struct {
	db         *sqlx.DB
	store      *store.TournamentStore
	resolver   *EntrantResolver
	generation *GenerationService
	logger     *zap.Logger
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, resolver *EntrantResolver, generation *GenerationService, logger *zap.Logger) *TournamentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TournamentService{db: db, store: store, resolver: resolver, generation: generation, logger: logger}
}

type GenerateRequest struct {
	// Format overrides the tournament's stored format for this generation.
	Format        bracket.Format `json:"format,omitempty" validate:"omitempty,max=64"`
	Seed          string         `json:"seed,omitempty" validate:"max=256"`
	ForceGenerate bool           `json:"forceGenerate,omitempty"`
	BracketSize   int            `json:"bracketSize,omitempty" validate:"max=1024"`
	Source        EntrantSource  `json:"source,omitempty" validate:"omitempty,oneof=confirmed manual"`
}

func (s *TournamentService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID, actor uuid.UUID, req GenerateRequest) (*GenerateResult, error) {
	if err := bracket.ValidateStruct(req); err != nil {
		return nil, bracket.NewError(bracket.CodeInvalidConfig, "%v", err)
	}

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	format := tournament.Format
	if req.Format != "" {
		format = req.Format
	}
	if !format.Valid() {
		return nil, bracket.NewError(bracket.CodeUnknownFormat, "format %q is not supported", format)
	}

	resolved, err := s.resolver.Resolve(ctx, tournament, req.Source, req.BracketSize)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("entrants resolved",
		zap.Stringer("tournament_id", tournamentID),
		zap.String("source", string(req.Source)),
		zap.Int("entrants", len(resolved.Entrants)),
		zap.Bool("preserve_order", resolved.PreserveOrder),
	)

	return s.generation.Generate(ctx, GenerateParams{
		TournamentID:          tournamentID,
		Format:                format,
		Entrants:              resolved.Entrants,
		Seed:                  req.Seed,
		InscriptionDeadlineAt: tournament.InscriptionDeadlineAt,
		ForceGenerate:         req.ForceGenerate,
		ActorUserID:           utils.NilIfZero(actor),
		TargetSize:            resolved.TargetSize,
		PreserveOrder:         resolved.PreserveOrder,
	})
}

type CreateTournamentInput struct {
	Name                  string                   `json:"name" validate:"required,max=200"`
	Format                bracket.Format           `json:"format" validate:"required"`
	Config                bracket.TournamentConfig `json:"config"`
	InscriptionDeadlineAt *time.Time               `json:"inscriptionDeadlineAt,omitempty"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (uuid.UUID, error) {
	if err := bracket.ValidateStruct(input); err != nil {
		return uuid.Nil, bracket.NewError(bracket.CodeInvalidConfig, "%v", err)
	}
	if !input.Format.Valid() {
		return uuid.Nil, bracket.NewError(bracket.CodeUnknownFormat, "format %q is not supported", input.Format)
	}
	if err := input.Config.Validate(); err != nil {
		return uuid.Nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	tournament := bracket.Tournament{
		ID:                    uuid.New(),
		Name:                  input.Name,
		Format:                input.Format,
		Config:                input.Config,
		InscriptionDeadlineAt: input.InscriptionDeadlineAt,
	}
	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	return tournament.ID, tx.Commit()
}

func (s *TournamentService) GetStructure(ctx context.Context, tournamentID uuid.UUID) (*Structure, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	stages, err := s.store.GetStages(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.GetGroups(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	return PrepareStructure(tournament, stages, groups, matches), nil
}

func (s *TournamentService) GetAuditLog(ctx context.Context, tournamentID uuid.UUID) ([]bracket.AuditLogEntry, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.store.GetAuditLog(ctx, tournamentID)
}

func (s *TournamentService) getTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bracket.NewError(bracket.CodeTournamentNotFound, "tournament %s does not exist", id)
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	return tournament, nil
}

package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// matchInsertBatch keeps multi-row inserts under sqlite's bound parameter limit.
const matchInsertBatch = 50

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, format, config, inscription_deadline_at)
        VALUES (:id, :name, :format, :config, :inscription_deadline_at)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := tx.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

// BumpGenerationVersionTx increments the tournament's generation counter and
// returns the new value. A missing tournament surfaces as sql.ErrNoRows.
func (s *TournamentStore) BumpGenerationVersionTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (int64, error) {
	var version int64
	err := tx.GetContext(ctx, &version, `UPDATE tournaments
		SET generation_version = generation_version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING generation_version`, id)
	return version, err
}

func (s *TournamentStore) CountStartedMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	stages := stageIDsOf(tournamentID)

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From("tournament_matches").Where(
		sb.In("stage_id", stages),
		sb.In("status", statusArgs(bracket.StartedStatuses)...),
	)
	query, args := sb.Build()

	var count int
	err := tx.GetContext(ctx, &count, query, args...)
	return count, err
}

// DeleteStructureTx removes matches, then groups, then stages.
func (s *TournamentStore) DeleteStructureTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) error {
	for _, table := range []string{"tournament_matches", "tournament_groups"} {
		del := sqlbuilder.SQLite.NewDeleteBuilder()
		del.DeleteFrom(table).Where(del.In("stage_id", stageIDsOf(tournamentID)))
		query, args := del.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	_, err := tx.ExecContext(ctx, "DELETE FROM tournament_stages WHERE tournament_id = ?", tournamentID)
	return err
}

func (s *TournamentStore) CreateStageTx(ctx context.Context, tx *sqlx.Tx, stage *bracket.Stage) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_stages (id, tournament_id, name, stage_type, stage_order)
		VALUES (:id, :tournament_id, :name, :stage_type, :stage_order)`, stage)
	return err
}

func (s *TournamentStore) CreateGroupTx(ctx context.Context, tx *sqlx.Tx, group *bracket.Group) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_groups (id, stage_id, name, group_order)
		VALUES (:id, :stage_id, :name, :group_order)`, group)
	return err
}

// CreateMatchesTx inserts rows in slice order, so callers control that a
// round is written before anything that points at it.
func (s *TournamentStore) CreateMatchesTx(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for start := 0; start < len(matches); start += matchInsertBatch {
		end := min(start+matchInsertBatch, len(matches))
		_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_matches (
				id, stage_id, group_id, round, match_order, round_label,
				pairing1_id, pairing2_id,
				pairing1_source_match_id, pairing1_source_outcome,
				pairing2_source_match_id, pairing2_source_outcome,
				status)
			VALUES (
				:id, :stage_id, :group_id, :round, :match_order, :round_label,
				:pairing1_id, :pairing2_id,
				:pairing1_source_match_id, :pairing1_source_outcome,
				:pairing2_source_match_id, :pairing2_source_outcome,
				:status)`, matches[start:end])
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) LinkWinnersTx(ctx context.Context, tx *sqlx.Tx, links []bracket.MatchLink) error {
	return s.execLinks(ctx, tx, `UPDATE tournament_matches SET next_match_id = :next_match_id, next_slot = :next_slot WHERE id = :id`, links)
}

func (s *TournamentStore) LinkLosersTx(ctx context.Context, tx *sqlx.Tx, links []bracket.MatchLink) error {
	return s.execLinks(ctx, tx, `UPDATE tournament_matches SET loser_next_match_id = :next_match_id, loser_next_slot = :next_slot WHERE id = :id`, links)
}

func (s *TournamentStore) execLinks(ctx context.Context, tx *sqlx.Tx, query string, links []bracket.MatchLink) error {
	if len(links) == 0 {
		return nil
	}

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, link := range links {
		if _, err := stmt.ExecContext(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) UpdateGenerationMetadataTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, seed string, at time.Time, userID *uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `UPDATE tournaments
		SET generation_seed = ?, generated_at = ?, generated_by_user_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, seed, at.UTC(), userID, tournamentID)
	return err
}

func (s *TournamentStore) CreateAuditLogTx(ctx context.Context, tx *sqlx.Tx, entry *bracket.AuditLogEntry) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_audit_logs (id, tournament_id, user_id, action, payload_before, payload_after)
		VALUES (:id, :tournament_id, :user_id, :action, :payload_before, :payload_after)`, entry)
	return err
}

// ListConfirmedEntrantIDs returns the tournament's registrations whose
// lifecycle status is one of statuses, ordered by id.
func (s *TournamentStore) ListConfirmedEntrantIDs(ctx context.Context, tournamentID uuid.UUID, statuses []string) ([]int64, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, status)
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id").From("pairings").Where(
		sb.Equal("tournament_id", tournamentID),
		sb.In("lifecycle_status", args...),
	).OrderBy("id").Asc()
	query, queryArgs := sb.Build()

	var ids []int64
	err := s.db.SelectContext(ctx, &ids, query, queryArgs...)
	return ids, err
}

func (s *TournamentStore) GetStages(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Stage, error) {
	var stages []bracket.Stage
	err := s.db.SelectContext(ctx, &stages, "SELECT * FROM tournament_stages WHERE tournament_id = ? ORDER BY stage_order ASC", tournamentID)
	return stages, err
}

func (s *TournamentStore) GetGroups(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Group, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("*").From("tournament_groups").
		Where(sb.In("stage_id", stageIDsOf(tournamentID))).
		OrderBy("group_order").Asc()
	query, args := sb.Build()

	var groups []bracket.Group
	err := s.db.SelectContext(ctx, &groups, query, args...)
	return groups, err
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, `SELECT m.* FROM tournament_matches m
		JOIN tournament_stages s ON s.id = m.stage_id
		WHERE s.tournament_id = ?
		ORDER BY s.stage_order ASC, m.round ASC, m.match_order ASC`, tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM tournament_matches WHERE id = ?", id)
	return &match, err
}

// GetAuditLog lists the tournament's audit entries, newest first.
func (s *TournamentStore) GetAuditLog(ctx context.Context, tournamentID uuid.UUID) ([]bracket.AuditLogEntry, error) {
	var entries []bracket.AuditLogEntry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM tournament_audit_logs WHERE tournament_id = ? ORDER BY created_at DESC, rowid DESC", tournamentID)
	return entries, err
}

func stageIDsOf(tournamentID uuid.UUID) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id").From("tournament_stages").Where(sb.Equal("tournament_id", tournamentID))
	return sb
}

func statusArgs(statuses []bracket.MatchStatus) []any {
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, string(status))
	}
	return args
}

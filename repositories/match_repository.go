package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/narunbabu/chess-sub009/models"
)

var (
	ErrMatchNotFound            = errors.New("match not found")
	ErrMatchChampionshipInvalid = errors.New("match championship conflict or invalid")
	ErrMatchParticipantInvalid  = errors.New("match participant conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByChampionship(ctx context.Context, championshipID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	UpdateScheduledAt(ctx context.Context, exec SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error
	UpdateGameID(ctx context.Context, exec SQLExecutor, id int, gameID int, status models.MatchStatus) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, result *models.MatchResult, status models.MatchStatus) error
	ExpireOverdue(ctx context.Context, exec SQLExecutor, now time.Time) ([]int, error)
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, championship_id, round, board, white_id, black_id, status, scheduled_at, deadline, game_id, result, created_at`

func scanMatch(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Match, error) {
	match := &models.Match{}
	var resultRaw []byte
	err := scanner.Scan(
		&match.ID,
		&match.ChampionshipID,
		&match.Round,
		&match.Board,
		&match.WhiteID,
		&match.BlackID,
		&match.Status,
		&match.ScheduledAt,
		&match.Deadline,
		&match.GameID,
		&resultRaw,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(resultRaw) > 0 {
		var result models.MatchResult
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, fmt.Errorf("failed to decode match result payload: %w", err)
		}
		match.Result = &result
	}
	return match, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO championship_matches
			(championship_id, round, board, white_id, black_id, status, scheduled_at, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.ChampionshipID,
		match.Round,
		match.Board,
		match.WhiteID,
		match.BlackID,
		match.Status,
		match.ScheduledAt,
		match.Deadline,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM championship_matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByChampionship(ctx context.Context, championshipID int, roundFilter *int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM championship_matches WHERE championship_id = $1`)

	args := []interface{}{championshipID}
	placeholderIndex := 2

	if roundFilter != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *roundFilter)
		placeholderIndex++
	}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, board ASC, id ASC")

	return r.queryMatches(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM championship_matches
		WHERE white_id = $1 OR black_id = $1
		ORDER BY deadline ASC, id ASC`
	return r.queryMatches(ctx, query, userID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE championship_matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScheduledAt(ctx context.Context, exec SQLExecutor, id int, scheduledAt time.Time, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE championship_matches SET scheduled_at = $1, status = $2 WHERE id = $3`,
		scheduledAt, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateGameID(ctx context.Context, exec SQLExecutor, id int, gameID int, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE championship_matches SET game_id = $1, status = $2 WHERE id = $3`,
		gameID, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, matchResult *models.MatchResult, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	payload, err := json.Marshal(matchResult)
	if err != nil {
		return fmt.Errorf("failed to encode match result payload: %w", err)
	}
	result, err := executor.ExecContext(ctx,
		`UPDATE championship_matches SET result = $1, status = $2 WHERE id = $3`,
		payload, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// ExpireOverdue flips every pending or scheduled match whose deadline has
// passed to expired in one statement and reports the affected ids.
func (r *postgresMatchRepository) ExpireOverdue(ctx context.Context, exec SQLExecutor, now time.Time) ([]int, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE championship_matches
		SET status = $1
		WHERE status IN ($2, $3) AND deadline < $4
		RETURNING id`

	rows, err := executor.QueryContext(ctx, query,
		models.MatchStatusExpired, models.MatchStatusPending, models.MatchStatusScheduled, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire overdue matches: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan expired match id: %w", scanErr)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM championship_matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "championship_matches_championship_id_fkey":
			return ErrMatchChampionshipInvalid
		case "championship_matches_white_id_fkey", "championship_matches_black_id_fkey":
			return ErrMatchParticipantInvalid
		}
	}
	return err
}

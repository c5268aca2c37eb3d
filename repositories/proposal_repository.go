package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/narunbabu/chess-sub009/models"
)

var (
	ErrProposalNotFound      = errors.New("schedule proposal not found")
	ErrProposalMatchInvalid  = errors.New("schedule proposal match conflict or invalid")
	ErrProposalAlreadyActive = errors.New("an active schedule proposal already exists for this match")
)

type ProposalRepository interface {
	Create(ctx context.Context, exec SQLExecutor, proposal *models.ScheduleProposal) error
	GetByID(ctx context.Context, id string) (*models.ScheduleProposal, error)
	GetActiveByMatch(ctx context.Context, matchID int) (*models.ScheduleProposal, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.ProposalStatus, responseMessage *string) error
	SetAlternative(ctx context.Context, exec SQLExecutor, id string, alternativeTime time.Time, responseMessage *string) error
	ExpireActiveByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresProposalRepository struct {
	db *sql.DB
}

func NewPostgresProposalRepository(db *sql.DB) ProposalRepository {
	return &postgresProposalRepository{db: db}
}

func (r *postgresProposalRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const proposalColumns = `id, match_id, proposer_id, proposed_time, status, alternative_time, message, response_message, created_at, updated_at`

func scanProposal(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ScheduleProposal, error) {
	p := &models.ScheduleProposal{}
	err := scanner.Scan(
		&p.ID,
		&p.MatchID,
		&p.ProposerID,
		&p.ProposedTime,
		&p.Status,
		&p.AlternativeTime,
		&p.Message,
		&p.ResponseMessage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresProposalRepository) Create(ctx context.Context, exec SQLExecutor, proposal *models.ScheduleProposal) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO schedule_proposals
			(id, match_id, proposer_id, proposed_time, status, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		proposal.ID,
		proposal.MatchID,
		proposal.ProposerID,
		proposal.ProposedTime,
		proposal.Status,
		proposal.Message,
	).Scan(&proposal.CreatedAt, &proposal.UpdatedAt)

	return r.handleProposalError(err)
}

func (r *postgresProposalRepository) GetByID(ctx context.Context, id string) (*models.ScheduleProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM schedule_proposals WHERE id = $1`

	proposal, err := scanProposal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to scan proposal %s: %w", id, err)
	}
	return proposal, nil
}

// GetActiveByMatch returns the single non-terminal proposal of a match, if
// any. The partial unique index on (match_id) WHERE status IN ('proposed',
// 'alternative_proposed') guarantees there is at most one.
func (r *postgresProposalRepository) GetActiveByMatch(ctx context.Context, matchID int) (*models.ScheduleProposal, error) {
	query := `SELECT ` + proposalColumns + `
		FROM schedule_proposals
		WHERE match_id = $1 AND status IN ($2, $3)`

	proposal, err := scanProposal(r.db.QueryRowContext(ctx, query, matchID,
		models.ProposalStatusProposed, models.ProposalStatusAlternativeProposed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to scan active proposal for match %d: %w", matchID, err)
	}
	return proposal, nil
}

func (r *postgresProposalRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.ProposalStatus, responseMessage *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE schedule_proposals
		SET status = $1, response_message = COALESCE($2, response_message), updated_at = NOW()
		WHERE id = $3`,
		status, responseMessage, id)
	if err != nil {
		return r.handleProposalError(err)
	}
	return checkAffectedRows(result, ErrProposalNotFound)
}

func (r *postgresProposalRepository) SetAlternative(ctx context.Context, exec SQLExecutor, id string, alternativeTime time.Time, responseMessage *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE schedule_proposals
		SET status = $1, alternative_time = $2, response_message = COALESCE($3, response_message), updated_at = NOW()
		WHERE id = $4`,
		models.ProposalStatusAlternativeProposed, alternativeTime, responseMessage, id)
	if err != nil {
		return r.handleProposalError(err)
	}
	return checkAffectedRows(result, ErrProposalNotFound)
}

// ExpireActiveByMatch retires whatever working proposal the match still
// has. A no-op when there is none, so callers can supersede blindly.
func (r *postgresProposalRepository) ExpireActiveByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `
		UPDATE schedule_proposals
		SET status = $1, updated_at = NOW()
		WHERE match_id = $2 AND status IN ($3, $4)`,
		models.ProposalStatusExpired, matchID,
		models.ProposalStatusProposed, models.ProposalStatusAlternativeProposed)
	if err != nil {
		return fmt.Errorf("failed to expire active proposals for match %d: %w", matchID, err)
	}
	return nil
}

func (r *postgresProposalRepository) handleProposalError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "schedule_proposals_match_id_fkey":
			return ErrProposalMatchInvalid
		case "schedule_proposals_one_active_per_match":
			return ErrProposalAlreadyActive
		}
	}
	return err
}

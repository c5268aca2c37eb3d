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
	ErrLiveStartNotFound       = errors.New("live start request not found")
	ErrLiveStartMatchInvalid   = errors.New("live start request match conflict or invalid")
	ErrLiveStartAlreadyPending = errors.New("a pending live start request already exists for this match")
)

type LiveStartRepository interface {
	Create(ctx context.Context, exec SQLExecutor, request *models.LiveStartRequest) error
	GetByID(ctx context.Context, id string) (*models.LiveStartRequest, error)
	GetPendingByMatch(ctx context.Context, matchID int) (*models.LiveStartRequest, error)
	ListPendingForRecipient(ctx context.Context, recipientID int) ([]*models.LiveStartRequest, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.LiveStartStatus) error
	CancelPendingByRequester(ctx context.Context, exec SQLExecutor, matchID, requesterID int) error
	ExpireOverdue(ctx context.Context, exec SQLExecutor, now time.Time) ([]*models.LiveStartRequest, error)
}

type postgresLiveStartRepository struct {
	db *sql.DB
}

func NewPostgresLiveStartRepository(db *sql.DB) LiveStartRepository {
	return &postgresLiveStartRepository{db: db}
}

func (r *postgresLiveStartRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const liveStartColumns = `id, match_id, requester_id, recipient_id, status, created_at, expires_at`

func scanLiveStart(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.LiveStartRequest, error) {
	req := &models.LiveStartRequest{}
	err := scanner.Scan(
		&req.ID,
		&req.MatchID,
		&req.RequesterID,
		&req.RecipientID,
		&req.Status,
		&req.CreatedAt,
		&req.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *postgresLiveStartRepository) Create(ctx context.Context, exec SQLExecutor, request *models.LiveStartRequest) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO live_start_requests
			(id, match_id, requester_id, recipient_id, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := executor.ExecContext(ctx, query,
		request.ID,
		request.MatchID,
		request.RequesterID,
		request.RecipientID,
		request.Status,
		request.CreatedAt,
		request.ExpiresAt,
	)
	return r.handleLiveStartError(err)
}

func (r *postgresLiveStartRepository) GetByID(ctx context.Context, id string) (*models.LiveStartRequest, error) {
	query := `SELECT ` + liveStartColumns + ` FROM live_start_requests WHERE id = $1`

	request, err := scanLiveStart(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLiveStartNotFound
		}
		return nil, fmt.Errorf("failed to scan live start request %s: %w", id, err)
	}
	return request, nil
}

// GetPendingByMatch returns the match's single pending request, if any.
// The partial unique index on (match_id) WHERE status = 'pending'
// guarantees at most one exists.
func (r *postgresLiveStartRepository) GetPendingByMatch(ctx context.Context, matchID int) (*models.LiveStartRequest, error) {
	query := `SELECT ` + liveStartColumns + `
		FROM live_start_requests
		WHERE match_id = $1 AND status = $2`

	request, err := scanLiveStart(r.db.QueryRowContext(ctx, query, matchID, models.LiveStartStatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLiveStartNotFound
		}
		return nil, fmt.Errorf("failed to scan pending live start request for match %d: %w", matchID, err)
	}
	return request, nil
}

func (r *postgresLiveStartRepository) ListPendingForRecipient(ctx context.Context, recipientID int) ([]*models.LiveStartRequest, error) {
	query := `SELECT ` + liveStartColumns + `
		FROM live_start_requests
		WHERE recipient_id = $1 AND status = $2
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, recipientID, models.LiveStartStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending live start requests for user %d: %w", recipientID, err)
	}
	defer rows.Close()

	requests := make([]*models.LiveStartRequest, 0)
	for rows.Next() {
		request, scanErr := scanLiveStart(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan live start request row: %w", scanErr)
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// UpdateStatus moves a request from one status to another. The from guard
// makes concurrent resolutions race-safe: the loser sees ErrLiveStartNotFound
// and treats the request as already resolved.
func (r *postgresLiveStartRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.LiveStartStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE live_start_requests SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return r.handleLiveStartError(err)
	}
	return checkAffectedRows(result, ErrLiveStartNotFound)
}

// CancelPendingByRequester retires the requester's own pending request on
// the match so a fresh one can supersede it. A no-op when none exists.
func (r *postgresLiveStartRepository) CancelPendingByRequester(ctx context.Context, exec SQLExecutor, matchID, requesterID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `
		UPDATE live_start_requests
		SET status = $1
		WHERE match_id = $2 AND requester_id = $3 AND status = $4`,
		models.LiveStartStatusCancelled, matchID, requesterID, models.LiveStartStatusPending)
	if err != nil {
		return fmt.Errorf("failed to cancel pending live start request for match %d: %w", matchID, err)
	}
	return nil
}

// ExpireOverdue retires every pending request whose expires_at instant has
// passed, in one pass, and returns the affected rows so the caller can
// notify both sides.
func (r *postgresLiveStartRepository) ExpireOverdue(ctx context.Context, exec SQLExecutor, now time.Time) ([]*models.LiveStartRequest, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE live_start_requests
		SET status = $1
		WHERE status = $2 AND expires_at < $3
		RETURNING ` + liveStartColumns

	rows, err := executor.QueryContext(ctx, query,
		models.LiveStartStatusExpired, models.LiveStartStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire overdue live start requests: %w", err)
	}
	defer rows.Close()

	expired := make([]*models.LiveStartRequest, 0)
	for rows.Next() {
		request, scanErr := scanLiveStart(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan expired live start request: %w", scanErr)
		}
		expired = append(expired, request)
	}
	return expired, rows.Err()
}

func (r *postgresLiveStartRepository) handleLiveStartError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "live_start_requests_match_id_fkey":
			return ErrLiveStartMatchInvalid
		case "live_start_requests_one_pending_per_match":
			return ErrLiveStartAlreadyPending
		}
	}
	return err
}

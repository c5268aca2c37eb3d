package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/narunbabu/chess-sub009/models"
)

var ErrParticipantNotFound = errors.New("championship participant not found")

type ParticipantRepository interface {
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Participant, error)
	GetByUser(ctx context.Context, championshipID, userID int) (*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, championship_id, user_id, seed_rating, registered_at`

func (r *postgresParticipantRepository) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM championship_participants
		WHERE championship_id = $1
		ORDER BY seed_rating DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for championship %d: %w", championshipID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if scanErr := rows.Scan(&p.ID, &p.ChampionshipID, &p.UserID, &p.SeedRating, &p.RegisteredAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) GetByUser(ctx context.Context, championshipID, userID int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + `
		FROM championship_participants
		WHERE championship_id = $1 AND user_id = $2`

	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, championshipID, userID).
		Scan(&p.ID, &p.ChampionshipID, &p.UserID, &p.SeedRating, &p.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant for championship %d user %d: %w", championshipID, userID, err)
	}
	return p, nil
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/narunbabu/chess-sub009/models"
	"github.com/narunbabu/chess-sub009/repositories"
	"github.com/narunbabu/chess-sub009/standings"
	"github.com/narunbabu/chess-sub009/storage"
	"golang.org/x/sync/errgroup"
)

var ErrStandingsComputeFailed = errors.New("failed to compute standings")

type StandingsService interface {
	ComputeForChampionship(ctx context.Context, championshipID int) ([]models.Standing, error)
	ExportSnapshot(ctx context.Context, championshipID int) (string, error)
}

type standingsService struct {
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	engine          *standings.Engine
	uploader        storage.FileUploader
	logger          *slog.Logger
	now             func() time.Time
}

func NewStandingsService(
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	engine *standings.Engine,
	uploader storage.FileUploader,
	logger *slog.Logger,
	now func() time.Time,
) StandingsService {
	if now == nil {
		now = time.Now
	}
	return &standingsService{
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		engine:          engine,
		uploader:        uploader,
		logger:          logger,
		now:             now,
	}
}

// ComputeForChampionship loads the roster and the finished matches in
// parallel and hands them to the pure engine. The output is derived on
// every call; nothing is written back.
func (s *standingsService) ComputeForChampionship(ctx context.Context, championshipID int) ([]models.Standing, error) {
	var (
		participants []*models.Participant
		matches      []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByChampionship(gCtx, championshipID)
		if err != nil {
			return fmt.Errorf("participants for championship %d: %w", championshipID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByChampionship(gCtx, championshipID, nil, nil)
		if err != nil {
			return fmt.Errorf("matches for championship %d: %w", championshipID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStandingsComputeFailed, err)
	}

	entries := make([]models.StandingEntry, 0, len(participants))
	for _, p := range participants {
		entries = append(entries, models.StandingEntry{UserID: p.UserID, SeedRating: p.SeedRating})
	}

	results := make([]standings.Result, 0, len(matches))
	for _, m := range matches {
		if m.Result == nil {
			continue
		}
		results = append(results, standings.Result{
			WhiteID:  m.WhiteID,
			BlackID:  m.BlackID,
			Outcome:  m.Result.Outcome,
			WinnerID: m.Result.WinnerID,
		})
	}

	return s.engine.Compute(entries, results, nil), nil
}

// ExportSnapshot uploads the current table as a JSON object and returns
// its public URL. Read-side convenience for organizers; the live table is
// always recomputed from results.
func (s *standingsService) ExportSnapshot(ctx context.Context, championshipID int) (string, error) {
	if s.uploader == nil {
		return "", errors.New("standings export is not configured")
	}
	table, err := s.ComputeForChampionship(ctx, championshipID)
	if err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(map[string]interface{}{
		"championship_id": championshipID,
		"generated_at":    s.now().UTC(),
		"standings":       table,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode standings snapshot: %w", err)
	}

	key := fmt.Sprintf("standings/championship_%d_%d.json", championshipID, s.now().Unix())
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to upload standings snapshot: %w", err)
	}
	s.logger.Info("standings snapshot exported",
		slog.Int("championship_id", championshipID), slog.String("key", result.Key))
	return result.Location, nil
}

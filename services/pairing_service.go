package services

import (
	"context"
	"fmt"

	"github.com/narunbabu/chess-sub009/models"
	"github.com/narunbabu/chess-sub009/pairing"
	"github.com/narunbabu/chess-sub009/repositories"
)

// PairingService renders a non-authoritative pairing preview for the next
// round. The real pairing for a round is computed by the pairing backend;
// this one exists so organizers can see a plausible board layout before
// asking for it.
type PairingService interface {
	PreviewRound(ctx context.Context, championshipID int) ([]models.PairingSlot, error)
}

type pairingService struct {
	participantRepo repositories.ParticipantRepository
	allocator       pairing.Allocator
}

func NewPairingService(participantRepo repositories.ParticipantRepository, allocator pairing.Allocator) PairingService {
	return &pairingService{
		participantRepo: participantRepo,
		allocator:       allocator,
	}
}

func (s *pairingService) PreviewRound(ctx context.Context, championshipID int) ([]models.PairingSlot, error) {
	participants, err := s.participantRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants for pairing preview: %w", err)
	}
	userIDs := make([]int, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	return s.allocator.Allocate(userIDs)
}

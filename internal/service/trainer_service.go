package service

import (
	"context"

	"gymdesk/internal/domain"
	"gymdesk/internal/models"

	"github.com/rs/zerolog"
)

type TrainerService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewTrainerService(repo domain.Repository, logger *zerolog.Logger) *TrainerService {
	return &TrainerService{repo: repo, logger: logger}
}

func (s *TrainerService) GetActiveTrainers(ctx context.Context) ([]models.Trainer, error) {
	return s.repo.GetActiveTrainers(ctx)
}

func (s *TrainerService) GetTrainerByID(ctx context.Context, id string) (*models.Trainer, error) {
	return s.repo.GetTrainerByID(ctx, id)
}

func (s *TrainerService) DeactivateTrainer(ctx context.Context, id string) error {
	if err := s.repo.DeactivateTrainer(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("trainer_id", id).Msg("trainer deactivated")
	return nil
}

package client

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"locamat/internal/domain"
	"locamat/internal/repository"
)

type Service struct {
	clients repository.ClientRepository
}

func NewService(clients repository.ClientRepository) *Service {
	return &Service{clients: clients}
}

func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	return s.clients.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Service) Create(ctx context.Context, c *domain.Client) error {
	if err := s.clients.Create(ctx, c); err != nil {
		if isUniqueConstraintError(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}

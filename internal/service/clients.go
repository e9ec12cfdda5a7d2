package service

import (
	"context"
	"fmt"

	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
)

// ClientService is the back-office view of client accounts.
type ClientService struct {
	clients *repository.ClientRepository
}

func NewClientService(clients *repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

func (s *ClientService) List(ctx context.Context, f models.ClientFilter) (*models.Page[models.Client], error) {
	list, total, err := s.clients.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return pageOf(list, total, f.Page, f.PageSize), nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, apperrors.NotFound("client")
	}
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, id int64, req *models.UpdateProfileRequest) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(client, req); err != nil {
		return nil, err
	}
	if err := s.clients.UpdateProfile(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

// Deactivate disables the account. Reservations and orders are kept.
func (s *ClientService) Deactivate(ctx context.Context, id int64) error {
	ok, err := s.clients.SetActive(ctx, id, false)
	if err != nil {
		return fmt.Errorf("failed to deactivate client: %w", err)
	}
	if !ok {
		return apperrors.NotFound("client")
	}
	return nil
}

package catalog

import (
	"context"
	"fmt"
)

type Service interface {
	DefaultCategories(ctx context.Context) ([]DefaultCategory, error)
	Colors(ctx context.Context) ([]Color, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) DefaultCategories(ctx context.Context) ([]DefaultCategory, error) {
	categories, err := s.repo.ListDefaultCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list default categories: %w", err)
	}
	return categories, nil
}

func (s *ServiceImpl) Colors(ctx context.Context) ([]Color, error) {
	colors, err := s.repo.ListColors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	return colors, nil
}

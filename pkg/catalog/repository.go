package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListDefaultCategories(ctx context.Context) ([]DefaultCategory, error)
	ListColors(ctx context.Context) ([]Color, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListDefaultCategories(ctx context.Context) ([]DefaultCategory, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM default_category ORDER BY id`)
	if err != nil {
		err := fmt.Errorf("could not query default categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	categories := make([]DefaultCategory, 0, 10)
	for rows.Next() {
		var category DefaultCategory
		if err := rows.Scan(&category.Id, &category.Name); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return categories, nil
}

func (r *RepositoryImpl) ListColors(ctx context.Context) ([]Color, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, value FROM color ORDER BY id`)
	if err != nil {
		err := fmt.Errorf("could not query colors: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	colors := make([]Color, 0, 10)
	for rows.Next() {
		var color Color
		if err := rows.Scan(&color.Id, &color.Name, &color.Value); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		colors = append(colors, color)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return colors, nil
}

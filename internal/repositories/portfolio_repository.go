package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/models"
	"go.uber.org/zap"
)

// portfolioRepository implements PortfolioRepository
type portfolioRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPortfolioRepository creates a new portfolio item repository
func NewPortfolioRepository(db *sql.DB, logger *zap.Logger) *portfolioRepository {
	return &portfolioRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves all portfolio items, newest first
func (r *portfolioRepository) List(ctx context.Context) ([]models.PortfolioItem, error) {
	query := `
		SELECT id, title, description, images, created_by, created_at, updated_at
		FROM portfolio_items
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list portfolio items", zap.Error(err))
		return nil, fmt.Errorf("failed to list portfolio items: %w", err)
	}
	defer rows.Close()

	items := make([]models.PortfolioItem, 0)
	for rows.Next() {
		var item models.PortfolioItem
		var images []byte
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &images, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
			r.logger.Error("failed to scan portfolio item", zap.Error(err))
			return nil, fmt.Errorf("failed to scan portfolio item: %w", err)
		}
		if item.Images, err = decodeImages(images); err != nil {
			r.logger.Error("failed to decode portfolio images", zap.Error(err), zap.Int("id", item.ID))
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating portfolio items", zap.Error(err))
		return nil, fmt.Errorf("error iterating portfolio items: %w", err)
	}

	return items, nil
}

// GetByID retrieves a portfolio item by ID
func (r *portfolioRepository) GetByID(ctx context.Context, id int) (*models.PortfolioItem, error) {
	query := `
		SELECT id, title, description, images, created_by, created_at, updated_at
		FROM portfolio_items
		WHERE id = ?
	`

	item := &models.PortfolioItem{}
	var images []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&images,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get portfolio item", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get portfolio item: %w", err)
	}

	if item.Images, err = decodeImages(images); err != nil {
		r.logger.Error("failed to decode portfolio images", zap.Error(err), zap.Int("id", id))
		return nil, err
	}

	return item, nil
}

// Create inserts a new portfolio item and fills its ID
func (r *portfolioRepository) Create(ctx context.Context, item *models.PortfolioItem) error {
	images, err := encodeImages(item.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO portfolio_items (title, description, images, created_by)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, item.Title, item.Description, images, item.CreatedBy)
	if err != nil {
		r.logger.Error("failed to create portfolio item", zap.Error(err))
		return fmt.Errorf("failed to create portfolio item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = int(id)
	return nil
}

// Update overwrites the title, description and images of a portfolio item
func (r *portfolioRepository) Update(ctx context.Context, item *models.PortfolioItem) error {
	images, err := encodeImages(item.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE portfolio_items
		SET title = ?, description = ?, images = ?
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, item.Title, item.Description, images, item.ID); err != nil {
		r.logger.Error("failed to update portfolio item", zap.Error(err), zap.Int("id", item.ID))
		return fmt.Errorf("failed to update portfolio item: %w", err)
	}

	return nil
}

// Delete removes a portfolio item by ID
func (r *portfolioRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM portfolio_items WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to delete portfolio item", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete portfolio item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected", zap.Error(err))
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}
	return string(data), nil
}

func decodeImages(data []byte) ([]string, error) {
	images := make([]string, 0)
	if len(data) == 0 {
		return images, nil
	}
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	return images, nil
}

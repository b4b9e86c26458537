package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var portfolioRowColumns = []string{"id", "title", "description", "images", "created_by", "created_at", "updated_at"}

// setupPortfolioTestRepository creates a portfolio repository with a mock database
func setupPortfolioTestRepository(t *testing.T) (*portfolioRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPortfolioRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestPortfolioRepository_List(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedItems []models.PortfolioItem
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(portfolioRowColumns).
					AddRow(2, "Bridge", "Steel bridge", []byte(`["https://img/1.png","https://img/2.png"]`), 1, now, now).
					AddRow(1, "House", "Wooden house", []byte(`[]`), 1, now.Add(-time.Hour), now)
				mock.ExpectQuery(`SELECT id, title, description, images, created_by, created_at, updated_at FROM portfolio_items ORDER BY created_at DESC, id DESC`).
					WillReturnRows(rows)
			},
			expectedItems: []models.PortfolioItem{
				{ID: 2, Title: "Bridge", Description: "Steel bridge", Images: []string{"https://img/1.png", "https://img/2.png"}, CreatedBy: 1, CreatedAt: now, UpdatedAt: now},
				{ID: 1, Title: "House", Description: "Wooden house", Images: []string{}, CreatedBy: 1, CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
			},
		},
		{
			name: "empty",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM portfolio_items`).
					WillReturnRows(sqlmock.NewRows(portfolioRowColumns))
			},
			expectedItems: []models.PortfolioItem{},
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM portfolio_items`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "corrupt images column",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(portfolioRowColumns).
					AddRow(1, "House", "Wooden house", []byte(`not json`), 1, now, now)
				mock.ExpectQuery(`SELECT .* FROM portfolio_items`).
					WillReturnRows(rows)
			},
			expectedError: true,
		},
		{
			name: "rows error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(portfolioRowColumns).
					AddRow(1, "House", "Wooden house", []byte(`[]`), 1, now, now).
					RowError(0, errors.New("row error"))
				mock.ExpectQuery(`SELECT .* FROM portfolio_items`).
					WillReturnRows(rows)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPortfolioTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			items, err := repo.List(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, items)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedItems, items)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPortfolioRepository_GetByID(t *testing.T) {
	now := time.Now().UTC()

	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPortfolioTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(portfolioRowColumns).
			AddRow(3, "Tower", "Glass tower", []byte(`["https://img/t.png"]`), 2, now, now)
		mock.ExpectQuery(`SELECT .* FROM portfolio_items WHERE id = \?`).WithArgs(3).WillReturnRows(rows)

		item, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Tower", item.Title)
		assert.Equal(t, []string{"https://img/t.png"}, item.Images)
		assert.Equal(t, 2, item.CreatedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupPortfolioTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .* FROM portfolio_items WHERE id = \?`).WithArgs(9).WillReturnError(sql.ErrNoRows)

		item, err := repo.GetByID(context.Background(), 9)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Nil(t, item)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupPortfolioTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .* FROM portfolio_items WHERE id = \?`).WithArgs(9).WillReturnError(errors.New("database error"))

		item, err := repo.GetByID(context.Background(), 9)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
		assert.Nil(t, item)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPortfolioRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		item          *models.PortfolioItem
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "success",
			item: &models.PortfolioItem{Title: "Bridge", Description: "Steel bridge", Images: []string{"https://img/1.png"}, CreatedBy: 1},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO portfolio_items`).
					WithArgs("Bridge", "Steel bridge", `["https://img/1.png"]`, 1).
					WillReturnResult(sqlmock.NewResult(5, 1))
			},
			expectedID: 5,
		},
		{
			name: "nil images stored as empty array",
			item: &models.PortfolioItem{Title: "Bridge", Description: "Steel bridge", CreatedBy: 1},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO portfolio_items`).
					WithArgs("Bridge", "Steel bridge", `[]`, 1).
					WillReturnResult(sqlmock.NewResult(6, 1))
			},
			expectedID: 6,
		},
		{
			name: "database error",
			item: &models.PortfolioItem{Title: "Bridge", Description: "Steel bridge", CreatedBy: 1},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO portfolio_items`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPortfolioTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.item)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.item.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPortfolioRepository_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPortfolioTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE portfolio_items SET title = \?, description = \?, images = \? WHERE id = \?`).
			WithArgs("New", "Desc", `["a","b"]`, 4).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), &models.PortfolioItem{ID: 4, Title: "New", Description: "Desc", Images: []string{"a", "b"}})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupPortfolioTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE portfolio_items`).WillReturnError(errors.New("database error"))

		err := repo.Update(context.Background(), &models.PortfolioItem{ID: 4, Title: "New", Description: "Desc"})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPortfolioRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		id            int
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			id:   1,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM portfolio_items WHERE id = \?`).WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			id:   2,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM portfolio_items WHERE id = \?`).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name: "rows affected error",
			id:   3,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM portfolio_items WHERE id = \?`).WithArgs(3).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected error")))
			},
			expectedError: errors.New("rows affected error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPortfolioTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Delete(context.Background(), tt.id)

			switch {
			case tt.expectedError == nil:
				assert.NoError(t, err)
			case errors.Is(tt.expectedError, apperrors.ErrNotFound):
				assert.ErrorIs(t, err, apperrors.ErrNotFound)
			default:
				assert.Error(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

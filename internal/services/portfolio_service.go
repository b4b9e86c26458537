package services

import (
	"context"
	"strings"

	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/models"
	"github.com/portfoliohub/backend/internal/notifications"
	"go.uber.org/zap"
)

// PortfolioRepository is the interface that wraps methods for PortfolioItem table data access
type PortfolioRepository interface {
	// Method List retrieves all portfolio items, newest first.
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	List(ctx context.Context) ([]models.PortfolioItem, error)
	// Method GetByID retrieves a portfolio item by ID.
	//
	// "id" parameter is used to retrieve a portfolio item by ID.
	//
	// If item with such ID does not exist, apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.PortfolioItem, error)
	// Method Create inserts a new portfolio item and fills its ID.
	//
	// "item" parameter is used to create a new portfolio item.
	//
	// If some error occurs during data insert, the error will be returned.
	Create(ctx context.Context, item *models.PortfolioItem) error
	// Method Update overwrites title, description and images of an existing item.
	//
	// "item" parameter carries the ID and the new values.
	//
	// If some error occurs during data update, the error will be returned.
	Update(ctx context.Context, item *models.PortfolioItem) error
	// Method Delete removes a portfolio item by ID.
	//
	// "id" parameter is used to delete a portfolio item by ID.
	//
	// If item with such ID does not exist, apperrors.ErrNotFound will be returned.
	Delete(ctx context.Context, id int) error
}

// Actor is the authenticated user performing a portfolio change
type Actor struct {
	UserID int
	Email  string
}

// portfolioService implements PortfolioService
type portfolioService struct {
	repo     PortfolioRepository
	notifier notifications.Notifier
	logger   *zap.Logger
}

// NewPortfolioService creates a new portfolio service. notifier may be nil.
func NewPortfolioService(repo PortfolioRepository, notifier notifications.Notifier, logger *zap.Logger) *portfolioService {
	return &portfolioService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns every portfolio item
func (s *portfolioService) List(ctx context.Context) ([]models.PortfolioItem, error) {
	return s.repo.List(ctx)
}

// Get returns a single portfolio item
func (s *portfolioService) Get(ctx context.Context, id int) (*models.PortfolioItem, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("invalid portfolio item id")
	}
	return s.repo.GetByID(ctx, id)
}

// Create stores a new portfolio item owned by the actor
func (s *portfolioService) Create(ctx context.Context, actor Actor, req *models.PortfolioItemRequest) (*models.PortfolioItem, error) {
	item, err := normalizePortfolioItem(req)
	if err != nil {
		return nil, err
	}
	item.CreatedBy = actor.UserID

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, actor, notifications.PortfolioCreated, created.Title)
	return created, nil
}

// Update replaces the contents of an existing portfolio item
func (s *portfolioService) Update(ctx context.Context, actor Actor, id int, req *models.PortfolioItemRequest) (*models.PortfolioItem, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("invalid portfolio item id")
	}
	item, err := normalizePortfolioItem(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	item.ID = id
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, actor, notifications.PortfolioEdited, updated.Title)
	return updated, nil
}

// Delete removes a portfolio item
func (s *portfolioService) Delete(ctx context.Context, actor Actor, id int) error {
	if id <= 0 {
		return apperrors.NewValidationError("invalid portfolio item id")
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, actor, notifications.PortfolioDeleted, item.Title)
	return nil
}

// notify sends a best-effort change notification to the acting user
func (s *portfolioService) notify(ctx context.Context, actor Actor, action notifications.PortfolioAction, title string) {
	if s.notifier == nil || actor.Email == "" {
		return
	}

	msg := notifications.PortfolioMessage(action, title)
	if err := s.notifier.Send(ctx, actor.Email, msg.Subject, msg.Body); err != nil {
		s.logger.Warn("failed to send portfolio notification",
			zap.String("action", string(action)),
			zap.Int("user_id", actor.UserID),
			zap.Error(err),
		)
	}
}

func normalizePortfolioItem(req *models.PortfolioItemRequest) (*models.PortfolioItem, error) {
	item := &models.PortfolioItem{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Images:      make([]string, 0, len(req.Images)),
	}

	if item.Title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if item.Description == "" {
		return nil, apperrors.NewValidationError("description is required")
	}

	for _, image := range req.Images {
		image = strings.TrimSpace(image)
		if image == "" {
			return nil, apperrors.NewValidationError("image URLs must not be empty")
		}
		item.Images = append(item.Images, image)
	}

	return item, nil
}

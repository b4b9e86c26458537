package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/portfoliohub/backend/internal/apperrors"
	"github.com/portfoliohub/backend/internal/auth/middleware"
	"github.com/portfoliohub/backend/internal/models"
	"github.com/portfoliohub/backend/internal/services"
	"go.uber.org/zap"
)

// PortfolioService is the interface that wraps methods for portfolio business logic.
type PortfolioService interface {
	// Method List retrieves all portfolio items, newest first.
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	List(ctx context.Context) ([]models.PortfolioItem, error)
	// Method Get retrieves a single portfolio item.
	//
	// "id" parameter is used to identify the item.
	//
	// If the item does not exist, apperrors.ErrNotFound will be returned together with "nil" value.
	Get(ctx context.Context, id int) (*models.PortfolioItem, error)
	// Method Create validates and stores a new portfolio item and notifies the actor.
	//
	// "actor" parameter is the authenticated user, "req" carries the item fields.
	//
	// If validation fails or some error occurs during data insert, the error will be returned together with "nil" value.
	Create(ctx context.Context, actor services.Actor, req *models.PortfolioItemRequest) (*models.PortfolioItem, error)
	// Method Update replaces the contents of an existing item and notifies the actor.
	//
	// "actor" parameter is the authenticated user, "id" identifies the item, "req" carries the new fields.
	//
	// If the item does not exist, apperrors.ErrNotFound will be returned together with "nil" value.
	Update(ctx context.Context, actor services.Actor, id int, req *models.PortfolioItemRequest) (*models.PortfolioItem, error)
	// Method Delete removes an item and notifies the actor.
	//
	// "actor" parameter is the authenticated user, "id" identifies the item.
	//
	// If the item does not exist, apperrors.ErrNotFound will be returned.
	Delete(ctx context.Context, actor services.Actor, id int) error
}

// PortfolioHandler handles HTTP requests for portfolio items
type PortfolioHandler struct {
	BaseHandler
	service PortfolioService
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(svc PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all portfolio handler routes.
// Reads are public; creating and deleting needs an admin, editing an editor or admin.
func (h *PortfolioHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	adminOnly := middleware.RoleMiddleware(h.Logger, models.RoleAdmin)
	editors := middleware.RoleMiddleware(h.Logger, models.RoleEditor, models.RoleAdmin)

	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(adminOnly).Post("/", h.Create)
			r.With(editors).Put("/{id}", h.Update)
			r.With(adminOnly).Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /portfolio
// @Summary List portfolio items
// @Description Get all portfolio items, newest first
// @Tags portfolio
// @Produce json
// @Success 200 {array} models.PortfolioItem
// @Failure 500 {object} map[string]string
// @Router /portfolio [get]
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.HandleError(w, r, "list portfolio items", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, items)
}

// Get handles GET /portfolio/{id}
// @Summary Get portfolio item
// @Tags portfolio
// @Produce json
// @Param id path int true "Portfolio item ID"
// @Success 200 {object} models.PortfolioItem
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /portfolio/{id} [get]
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, "get portfolio item", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, item)
}

// Create handles POST /portfolio
// @Summary Create portfolio item
// @Tags portfolio
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.PortfolioItemRequest true "Portfolio item"
// @Success 201 {object} models.PortfolioItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /portfolio [post]
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req models.PortfolioItemRequest
	if !h.DecodeJSON(w, r, &req, false) {
		return
	}

	item, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.HandleError(w, r, "create portfolio item", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, item)
}

// Update handles PUT /portfolio/{id}
// @Summary Update portfolio item
// @Tags portfolio
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Portfolio item ID"
// @Param request body models.PortfolioItemRequest true "Portfolio item"
// @Success 200 {object} models.PortfolioItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /portfolio/{id} [put]
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req models.PortfolioItemRequest
	if !h.DecodeJSON(w, r, &req, false) {
		return
	}

	item, err := h.service.Update(r.Context(), actor, id, &req)
	if err != nil {
		h.HandleError(w, r, "update portfolio item", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /portfolio/{id}
// @Summary Delete portfolio item
// @Tags portfolio
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Portfolio item ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /portfolio/{id} [delete]
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.HandleError(w, r, "delete portfolio item", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Portfolio item deleted"})
}

func (h *PortfolioHandler) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid id parameter")
		return 0, false
	}
	return id, true
}

func (h *PortfolioHandler) actor(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		h.HandleError(w, r, "resolve actor", apperrors.ErrMissingToken)
		return services.Actor{}, false
	}
	return services.Actor{UserID: authCtx.UserID, Email: authCtx.Email}, true
}

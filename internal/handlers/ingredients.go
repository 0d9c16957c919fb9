package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/auth"
	"example.com/resto-backoffice/backend/internal/cache"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/notifications"
	"example.com/resto-backoffice/backend/internal/repository"
	"example.com/resto-backoffice/backend/internal/stock"
)

type IngredientHandler struct {
	Ingredients *repository.IngredientRepository
	Notifier    *notifications.Hub
	Cache       *cache.ReportCache
}

// NewIngredientHandler создает обработчик склада ингредиентов.
func NewIngredientHandler(ingredients *repository.IngredientRepository, notifier *notifications.Hub, reportCache *cache.ReportCache) *IngredientHandler {
	return &IngredientHandler{Ingredients: ingredients, Notifier: notifier, Cache: reportCache}
}

type IngredientRequest struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Category         string   `json:"category" validate:"required,max=100"`
	Unit             string   `json:"unit" validate:"required,max=50"`
	CurrentStock     float64  `json:"current_stock" validate:"gte=0"`
	MinimumStock     float64  `json:"minimum_stock" validate:"gte=0"`
	MaximumStock     float64  `json:"maximum_stock" validate:"gte=0"`
	CostPerUnitCents int64    `json:"cost_per_unit_cents" validate:"gte=0"`
	Supplier         string   `json:"supplier" validate:"omitempty,max=200"`
	LeadTimeDays     int      `json:"lead_time_days" validate:"gte=0"`
	DailyUsage       float64  `json:"daily_usage" validate:"gte=0"`
	IsPerishable     bool     `json:"is_perishable"`
	ExpiryDate       *string  `json:"expiry_date"`
	StorageLocation  string   `json:"storage_location" validate:"omitempty,max=200"`
	Allergens        []string `json:"allergens" validate:"omitempty,dive,max=100"`
}

type AdjustStockRequest struct {
	AdjustmentType string  `json:"adjustment_type" validate:"required"`
	Quantity       float64 `json:"quantity" validate:"required"`
	Reference      string  `json:"reference" validate:"omitempty,max=200"`
	Note           string  `json:"note" validate:"omitempty,max=500"`
}

type AdjustStockResponse struct {
	Adjustment models.StockAdjustment `json:"adjustment"`
	Ingredient models.Ingredient      `json:"ingredient"`
}

// Create добавляет ингредиент.
func (h *IngredientHandler) Create(c echo.Context) error {
	ingredient, err := bindIngredient(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Ingredients.Create(c.Request().Context(), ingredient)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "ingredient already exists")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("alerts")
	return c.JSON(http.StatusCreated, created)
}

// List возвращает ингредиенты с поиском по имени и фильтром по категории.
func (h *IngredientHandler) List(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))
	category := strings.TrimSpace(c.QueryParam("category"))

	ingredients, err := h.Ingredients.List(c.Request().Context(), search, category)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ingredients)
}

// Get возвращает ингредиент по идентификатору.
func (h *IngredientHandler) Get(c echo.Context) error {
	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid ingredient id")
	}

	ingredient, err := h.Ingredients.GetByID(c.Request().Context(), ingredientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "ingredient not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ingredient)
}

// Update изменяет справочные поля ингредиента.
func (h *IngredientHandler) Update(c echo.Context) error {
	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid ingredient id")
	}

	ingredient, err := bindIngredient(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ingredient.ID = ingredientID

	updated, err := h.Ingredients.Update(c.Request().Context(), ingredient)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "ingredient not found")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("alerts")
	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет ингредиент с журналом корректировок.
func (h *IngredientHandler) Delete(c echo.Context) error {
	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid ingredient id")
	}

	if err := h.Ingredients.Delete(c.Request().Context(), ingredientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "ingredient not found")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("alerts")
	return c.NoContent(http.StatusNoContent)
}

// Adjust применяет корректировку остатка. Закупка увеличивает остаток,
// списание и перемещение уменьшают, коррекция задает дельту со знаком.
func (h *IngredientHandler) Adjust(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid ingredient id")
	}

	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	adjType := models.AdjustmentType(strings.ToLower(strings.TrimSpace(req.AdjustmentType)))
	if !models.ValidAdjustmentType(adjType) {
		return badRequest(c, "invalid adjustment type")
	}

	quantity, err := normalizeQuantity(adjType, req.Quantity)
	if err != nil {
		return badRequest(c, err.Error())
	}

	adjustment, ingredient, err := h.Ingredients.Adjust(c.Request().Context(), ingredientID, adjType,
		quantity, strings.TrimSpace(req.Reference), strings.TrimSpace(req.Note), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "ingredient not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "stock cannot go below zero")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("alerts")

	if urgency, low := stock.LowStockUrgency(ingredient.CurrentStock, ingredient.MinimumStock); low {
		publishStockAlert(h.Notifier, ingredient, urgency)
	}

	return c.JSON(http.StatusCreated, AdjustStockResponse{Adjustment: adjustment, Ingredient: ingredient})
}

// Adjustments возвращает журнал корректировок ингредиента.
func (h *IngredientHandler) Adjustments(c echo.Context) error {
	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid ingredient id")
	}

	if _, err := h.Ingredients.GetByID(c.Request().Context(), ingredientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "ingredient not found")
		}
		return serverError(c)
	}

	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid limit")
		}
		limit = parsed
	}

	adjustments, err := h.Ingredients.Adjustments(c.Request().Context(), ingredientID, limit)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, adjustments)
}

// normalizeQuantity приводит величину корректировки к подписанной дельте.
func normalizeQuantity(adjType models.AdjustmentType, quantity float64) (float64, error) {
	if quantity == 0 {
		return 0, errors.New("quantity must not be zero")
	}

	switch adjType {
	case models.AdjustmentPurchase:
		if quantity < 0 {
			return 0, errors.New("purchase quantity must be positive")
		}
		return quantity, nil
	case models.AdjustmentWaste, models.AdjustmentTransfer:
		if quantity < 0 {
			return 0, errors.New("quantity must be positive")
		}
		return -quantity, nil
	case models.AdjustmentCorrection:
		return quantity, nil
	}

	return 0, errors.New("invalid adjustment type")
}

func bindIngredient(c echo.Context) (models.Ingredient, error) {
	var result models.Ingredient

	var req IngredientRequest
	if err := c.Bind(&req); err != nil {
		return result, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return result, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return result, errors.New("name is required")
	}

	if req.MaximumStock > 0 && req.MinimumStock > req.MaximumStock {
		return result, errors.New("minimum stock must not exceed maximum stock")
	}

	var expiryDate *time.Time
	if req.ExpiryDate != nil && strings.TrimSpace(*req.ExpiryDate) != "" {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(*req.ExpiryDate))
		if err != nil {
			return result, errors.New("invalid expiry date")
		}
		expiryDate = &parsed
	}

	if req.IsPerishable && expiryDate == nil {
		return result, errors.New("perishable ingredient requires expiry date")
	}

	return models.Ingredient{
		Name:             name,
		Category:         strings.TrimSpace(req.Category),
		Unit:             strings.TrimSpace(req.Unit),
		CurrentStock:     req.CurrentStock,
		MinimumStock:     req.MinimumStock,
		MaximumStock:     req.MaximumStock,
		CostPerUnitCents: req.CostPerUnitCents,
		Supplier:         strings.TrimSpace(req.Supplier),
		LeadTimeDays:     req.LeadTimeDays,
		DailyUsage:       req.DailyUsage,
		IsPerishable:     req.IsPerishable,
		ExpiryDate:       expiryDate,
		StorageLocation:  strings.TrimSpace(req.StorageLocation),
		Allergens:        trimStrings(req.Allergens),
	}, nil
}

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/cache"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/policy"
	"example.com/resto-backoffice/backend/internal/repository"
)

type ExpenseTypeHandler struct {
	Types    *repository.ExpenseTypeRepository
	Expenses *repository.ExpenseRepository
	Cache    *cache.ReportCache
}

// NewExpenseTypeHandler создает обработчик типов расходов.
func NewExpenseTypeHandler(types *repository.ExpenseTypeRepository, expenses *repository.ExpenseRepository, reportCache *cache.ReportCache) *ExpenseTypeHandler {
	return &ExpenseTypeHandler{Types: types, Expenses: expenses, Cache: reportCache}
}

type ExpenseTypeRequest struct {
	Name                   string   `json:"name" validate:"required,max=200"`
	Category               string   `json:"category" validate:"required"`
	Color                  string   `json:"color" validate:"required"`
	BudgetLimitCents       int64    `json:"budget_limit_cents" validate:"gte=0"`
	BudgetPeriod           string   `json:"budget_period" validate:"required"`
	IsActive               *bool    `json:"is_active"`
	TaxDeductible          bool     `json:"tax_deductible"`
	RequiresApproval       bool     `json:"requires_approval"`
	ApprovalThresholdCents int64    `json:"approval_threshold_cents" validate:"gte=0"`
	AutoRecurring          bool     `json:"auto_recurring"`
	NotificationThreshold  int      `json:"notification_threshold" validate:"gte=0,lte=100"`
	AllowOverBudget        bool     `json:"allow_over_budget"`
	DefaultVendors         []string `json:"default_vendors" validate:"omitempty,dive,max=200"`
	Priority               string   `json:"priority" validate:"required,oneof=low medium high critical"`
	RestrictedUsers        []string `json:"restricted_users"`
	Tags                   []string `json:"tags" validate:"omitempty,dive,max=100"`
}

type ExpenseTypeResponse struct {
	models.ExpenseType
	SpentCents  int64    `json:"spent_cents"`
	Utilization *float64 `json:"utilization,omitempty"`
	OverBudget  bool     `json:"over_budget"`
}

// Create добавляет тип расходов.
func (h *ExpenseTypeHandler) Create(c echo.Context) error {
	expenseType, err := h.bindType(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Types.Create(c.Request().Context(), expenseType)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "expense type already exists")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	return c.JSON(http.StatusCreated, h.toResponse(c, created))
}

// List возвращает типы расходов с текущим использованием бюджета.
func (h *ExpenseTypeHandler) List(c echo.Context) error {
	onlyActive := strings.EqualFold(strings.TrimSpace(c.QueryParam("active")), "true")

	types, err := h.Types.List(c.Request().Context(), onlyActive)
	if err != nil {
		return serverError(c)
	}

	responses := make([]ExpenseTypeResponse, 0, len(types))
	for _, t := range types {
		responses = append(responses, h.toResponse(c, t))
	}

	return c.JSON(http.StatusOK, responses)
}

// Get возвращает тип расходов по идентификатору.
func (h *ExpenseTypeHandler) Get(c echo.Context) error {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense type id")
	}

	expenseType, err := h.Types.GetByID(c.Request().Context(), typeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, h.toResponse(c, expenseType))
}

// Update изменяет тип расходов. Активность не меняется: для этого есть
// отдельная операция SetActive.
func (h *ExpenseTypeHandler) Update(c echo.Context) error {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense type id")
	}

	expenseType, err := h.bindType(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	expenseType.ID = typeID

	updated, err := h.Types.Update(c.Request().Context(), expenseType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "expense type already exists")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	return c.JSON(http.StatusOK, h.toResponse(c, updated))
}

// SetActive включает или выключает тип расходов.
func (h *ExpenseTypeHandler) SetActive(c echo.Context) error {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense type id")
	}

	var req struct {
		IsActive *bool `json:"is_active" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	updated, err := h.Types.SetActive(c.Request().Context(), typeID, *req.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	return c.JSON(http.StatusOK, h.toResponse(c, updated))
}

// Delete удаляет тип расходов без привязанных расходов.
func (h *ExpenseTypeHandler) Delete(c echo.Context) error {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense type id")
	}

	if err := h.Types.Delete(c.Request().Context(), typeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "expense type has expenses")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	return c.NoContent(http.StatusNoContent)
}

func (h *ExpenseTypeHandler) bindType(c echo.Context) (models.ExpenseType, error) {
	var result models.ExpenseType

	var req ExpenseTypeRequest
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

	category := models.ExpenseCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if !models.ValidCategory(category) {
		return result, errors.New("invalid category")
	}

	period := models.BudgetPeriod(strings.ToLower(strings.TrimSpace(req.BudgetPeriod)))
	if !models.ValidBudgetPeriod(period) {
		return result, errors.New("invalid budget period")
	}

	color, err := validateHexColor(req.Color)
	if err != nil {
		return result, err
	}

	if req.RequiresApproval && req.ApprovalThresholdCents <= 0 {
		return result, errors.New("approval threshold must be positive")
	}

	restricted, err := parseUUIDs(req.RestrictedUsers)
	if err != nil {
		return result, errors.New("invalid restricted user ids")
	}

	// Новый тип активен, если в запросе явно не указано обратное.
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return models.ExpenseType{
		Name:                   name,
		Category:               category,
		Color:                  color,
		BudgetLimitCents:       req.BudgetLimitCents,
		BudgetPeriod:           period,
		IsActive:               isActive,
		TaxDeductible:          req.TaxDeductible,
		RequiresApproval:       req.RequiresApproval,
		ApprovalThresholdCents: req.ApprovalThresholdCents,
		AutoRecurring:          req.AutoRecurring,
		NotificationThreshold:  req.NotificationThreshold,
		AllowOverBudget:        req.AllowOverBudget,
		DefaultVendors:         trimStrings(req.DefaultVendors),
		Priority:               models.Priority(req.Priority),
		RestrictedUsers:        restricted,
		Tags:                   trimStrings(req.Tags),
	}, nil
}

func (h *ExpenseTypeHandler) toResponse(c echo.Context, t models.ExpenseType) ExpenseTypeResponse {
	response := ExpenseTypeResponse{ExpenseType: t}

	start, end := policy.PeriodWindow(t.BudgetPeriod, time.Now())
	spent, err := h.Expenses.SpentInWindow(c.Request().Context(), t.ID, start, end)
	if err != nil {
		return response
	}

	response.SpentCents = spent
	if utilization, ok := policy.Utilization(spent, t.BudgetLimitCents); ok {
		response.Utilization = &utilization
		response.OverBudget = policy.OverBudget(spent, t.BudgetLimitCents)
	}

	return response
}

func validateHexColor(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errors.New("color is required")
	}
	if !isHexColor(trimmed) {
		return "", errors.New("color must be a hex color")
	}
	return strings.ToUpper(trimmed), nil
}

func isHexColor(value string) bool {
	if len(value) != 7 || value[0] != '#' {
		return false
	}

	for _, r := range value[1:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return false
		}
	}

	return true
}

func trimStrings(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	seen := make(map[uuid.UUID]struct{}, len(values))

	for _, value := range values {
		parsed, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}

		if _, exists := seen[parsed]; exists {
			return nil, errors.New("duplicate id")
		}

		seen[parsed] = struct{}{}
		ids = append(ids, parsed)
	}

	return ids, nil
}

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/auth"
	"example.com/resto-backoffice/backend/internal/cache"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/notifications"
	"example.com/resto-backoffice/backend/internal/policy"
	"example.com/resto-backoffice/backend/internal/repository"
)

type ExpenseHandler struct {
	Expenses *repository.ExpenseRepository
	Types    *repository.ExpenseTypeRepository
	Notifier *notifications.Hub
	Cache    *cache.ReportCache
}

// NewExpenseHandler создает обработчик расходов.
func NewExpenseHandler(expenses *repository.ExpenseRepository, types *repository.ExpenseTypeRepository, notifier *notifications.Hub, reportCache *cache.ReportCache) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, Types: types, Notifier: notifier, Cache: reportCache}
}

type CreateExpenseRequest struct {
	ExpenseTypeID string   `json:"expense_type_id" validate:"required,uuid"`
	AmountCents   int64    `json:"amount_cents" validate:"gt=0"`
	ExpenseDate   string   `json:"expense_date" validate:"required"`
	Vendor        string   `json:"vendor" validate:"required,max=200"`
	ReceiptNumber *string  `json:"receipt_number" validate:"omitempty,max=100"`
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=cash card transfer check"`
	Tags          []string `json:"tags" validate:"omitempty,dive,max=100"`
}

type UpdateExpenseRequest struct {
	AmountCents   int64    `json:"amount_cents" validate:"gt=0"`
	ExpenseDate   string   `json:"expense_date" validate:"required"`
	Vendor        string   `json:"vendor" validate:"required,max=200"`
	ReceiptNumber *string  `json:"receipt_number" validate:"omitempty,max=100"`
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=cash card transfer check"`
	Tags          []string `json:"tags" validate:"omitempty,dive,max=100"`
}

type RejectExpenseRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ExpenseResponse struct {
	models.Expense
	TypeName string `json:"type_name,omitempty"`
}

const dateLayout = "2006-01-02"

// Create регистрирует расход. Статус определяется порогом согласования типа,
// согласованные сразу расходы проверяются на лимит бюджета периода.
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	typeID, err := uuid.Parse(req.ExpenseTypeID)
	if err != nil {
		return badRequest(c, "invalid expense type id")
	}

	expenseDate, err := time.Parse(dateLayout, strings.TrimSpace(req.ExpenseDate))
	if err != nil {
		return badRequest(c, "invalid expense date")
	}

	expenseType, err := h.Types.GetByID(c.Request().Context(), typeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		return serverError(c)
	}

	for _, restricted := range expenseType.RestrictedUsers {
		if restricted == userID {
			return forbidden(c)
		}
	}

	expense := models.Expense{
		ExpenseTypeID: typeID,
		AmountCents:   req.AmountCents,
		ExpenseDate:   expenseDate,
		Vendor:        strings.TrimSpace(req.Vendor),
		ReceiptNumber: req.ReceiptNumber,
		PaymentMethod: req.PaymentMethod,
		Tags:          trimStrings(req.Tags),
		CreatedBy:     userID,
	}

	result, err := h.Expenses.Create(c.Request().Context(), expense, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "expense type not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "expense type is inactive")
		case errors.Is(err, repository.ErrBudgetExceeded):
			return badRequest(c, "budget exceeded")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	h.notifyBudget(userID, result)

	return c.JSON(http.StatusCreated, ExpenseResponse{Expense: result.Expense, TypeName: result.Type.Name})
}

// List возвращает расходы по фильтрам запроса.
func (h *ExpenseHandler) List(c echo.Context) error {
	filter, err := parseExpenseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expenses, err := h.Expenses.List(c.Request().Context(), filter)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, expenses)
}

// Get возвращает расход по идентификатору.
func (h *ExpenseHandler) Get(c echo.Context) error {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	expense, err := h.Expenses.GetByID(c.Request().Context(), expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, expense)
}

// Update изменяет еще не рассмотренный расход.
func (h *ExpenseHandler) Update(c echo.Context) error {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	var req UpdateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	expenseDate, err := time.Parse(dateLayout, strings.TrimSpace(req.ExpenseDate))
	if err != nil {
		return badRequest(c, "invalid expense date")
	}

	expense, err := h.Expenses.Update(c.Request().Context(), expenseID, req.AmountCents, expenseDate,
		strings.TrimSpace(req.Vendor), req.ReceiptNumber, req.PaymentMethod, trimStrings(req.Tags))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "expense already decided")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, expense)
}

// Delete удаляет расход.
func (h *ExpenseHandler) Delete(c echo.Context) error {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	if err := h.Expenses.Delete(c.Request().Context(), expenseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	return c.NoContent(http.StatusNoContent)
}

// Approve согласует ожидающий расход. Решение окончательное.
func (h *ExpenseHandler) Approve(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	result, err := h.Expenses.Approve(c.Request().Context(), expenseID, userID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "expense not found")
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "expense already decided")
		case errors.Is(err, repository.ErrBudgetExceeded):
			return badRequest(c, "budget exceeded")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	h.notifyBudget(userID, result)
	h.notifyDecision(result)

	return c.JSON(http.StatusOK, ExpenseResponse{Expense: result.Expense, TypeName: result.Type.Name})
}

// Reject отклоняет ожидающий расход с указанием причины.
func (h *ExpenseHandler) Reject(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	var req RejectExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return badRequest(c, "reason is required")
	}

	result, err := h.Expenses.Reject(c.Request().Context(), expenseID, userID, reason, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "expense not found")
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "expense already decided")
		}
		return serverError(c)
	}

	h.Cache.Invalidate("reports")
	h.notifyDecision(result)

	return c.JSON(http.StatusOK, ExpenseResponse{Expense: result.Expense, TypeName: result.Type.Name})
}

func (h *ExpenseHandler) notifyBudget(userID uuid.UUID, result repository.CreateResult) {
	if h.Notifier == nil || result.NewSpentCents == result.PrevSpentCents {
		return
	}

	publishBudgetUpdate(h.Notifier, userID, result.Type, result.NewSpentCents)

	if policy.CrossesNotificationThreshold(&result.Type, result.PrevSpentCents, result.NewSpentCents) {
		publishBudgetThreshold(h.Notifier, result.Type, result.NewSpentCents)
	}
}

func (h *ExpenseHandler) notifyDecision(result repository.CreateResult) {
	if h.Notifier == nil {
		return
	}

	publishExpenseDecided(h.Notifier, result.Expense)
}

func parseExpenseFilter(c echo.Context) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter

	if raw := strings.TrimSpace(c.QueryParam("type_id")); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid type_id")
		}
		filter.TypeID = &typeID
	}

	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("status"))); raw != "" {
		status := models.ApprovalStatus(raw)
		switch status {
		case models.StatusPending, models.StatusApproved, models.StatusRejected:
			filter.Status = &status
		default:
			return filter, errors.New("invalid status")
		}
	}

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, errors.New("invalid from date")
		}
		filter.From = &from
	}

	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, errors.New("invalid to date")
		}
		// The to bound is inclusive for whole days.
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, errors.New("to must be after from")
	}

	return filter, nil
}

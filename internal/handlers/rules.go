package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/repository"
)

type RuleHandler struct {
	Rules *repository.RuleRepository
	Types *repository.ExpenseTypeRepository
}

// NewRuleHandler создает обработчик правил типов расходов. Правила хранятся
// как настройки и не исполняются движком; condition и action выбираются из
// закрытых каталогов шаблонов.
func NewRuleHandler(rules *repository.RuleRepository, types *repository.ExpenseTypeRepository) *RuleHandler {
	return &RuleHandler{Rules: rules, Types: types}
}

var ruleConditions = map[string]struct{}{
	"amount_over_threshold":  {},
	"vendor_not_in_defaults": {},
	"weekend_submission":     {},
	"missing_receipt":        {},
	"duplicate_receipt":      {},
}

var ruleActions = map[string]struct{}{
	"require_approval": {},
	"notify_manager":   {},
	"flag_for_review":  {},
	"auto_reject":      {},
}

type RuleRequest struct {
	Condition string `json:"condition" validate:"required"`
	Action    string `json:"action" validate:"required"`
	Priority  int    `json:"priority" validate:"gte=1,lte=100"`
	IsActive  *bool  `json:"is_active"`
}

type RuleCatalogResponse struct {
	Conditions []string `json:"conditions"`
	Actions    []string `json:"actions"`
}

// Catalog возвращает допустимые шаблоны условий и действий.
func (h *RuleHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, RuleCatalogResponse{
		Conditions: sortedKeys(ruleConditions),
		Actions:    sortedKeys(ruleActions),
	})
}

// Create добавляет правило к типу расходов.
func (h *RuleHandler) Create(c echo.Context) error {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense type id")
	}

	rule, err := bindRule(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rule.TypeID = typeID

	if _, err := h.Types.GetByID(c.Request().Context(), typeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		return serverError(c)
	}

	created, err := h.Rules.Create(c.Request().Context(), rule)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, created)
}

// List возвращает правила типа в порядке применения (priority = 1 первым).
func (h *RuleHandler) List(c echo.Context) error {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense type id")
	}

	if _, err := h.Types.GetByID(c.Request().Context(), typeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense type not found")
		}
		return serverError(c)
	}

	rules, err := h.Rules.ListByType(c.Request().Context(), typeID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, rules)
}

// Update изменяет правило.
func (h *RuleHandler) Update(c echo.Context) error {
	ruleID, err := uuid.Parse(c.Param("ruleId"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	rule, err := bindRule(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.Rules.Update(c.Request().Context(), ruleID, rule.Condition, rule.Action, rule.Priority, rule.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "rule not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет правило.
func (h *RuleHandler) Delete(c echo.Context) error {
	ruleID, err := uuid.Parse(c.Param("ruleId"))
	if err != nil {
		return badRequest(c, "invalid rule id")
	}

	if err := h.Rules.Delete(c.Request().Context(), ruleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "rule not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindRule(c echo.Context) (models.ExpenseTypeRule, error) {
	var result models.ExpenseTypeRule

	var req RuleRequest
	if err := c.Bind(&req); err != nil {
		return result, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return result, errors.New("validation failed")
	}

	condition := strings.ToLower(strings.TrimSpace(req.Condition))
	if _, ok := ruleConditions[condition]; !ok {
		return result, errors.New("unknown condition")
	}

	action := strings.ToLower(strings.TrimSpace(req.Action))
	if _, ok := ruleActions[action]; !ok {
		return result, errors.New("unknown action")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return models.ExpenseTypeRule{
		Condition: condition,
		Action:    action,
		Priority:  req.Priority,
		IsActive:  isActive,
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/cache"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/policy"
	"example.com/resto-backoffice/backend/internal/repository"
)

type ReportHandler struct {
	Reports *repository.ReportRepository
	Cache   *cache.ReportCache
}

// NewReportHandler создает обработчик отчетов.
func NewReportHandler(reports *repository.ReportRepository, reportCache *cache.ReportCache) *ReportHandler {
	return &ReportHandler{Reports: reports, Cache: reportCache}
}

type TypeSpendResponse struct {
	TypeID           uuid.UUID              `json:"type_id"`
	Name             string                 `json:"name"`
	Category         models.ExpenseCategory `json:"category"`
	BudgetLimitCents int64                  `json:"budget_limit_cents"`
	BudgetPeriod     models.BudgetPeriod    `json:"budget_period"`
	ApprovedCents    int64                  `json:"approved_cents"`
	Utilization      *float64               `json:"utilization,omitempty"`
	OverBudget       bool                   `json:"over_budget"`
}

// Overview возвращает сводку расходов за период.
func (h *ReportHandler) Overview(c echo.Context) error {
	from, to, err := reportPeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cacheKey := "overview:" + from.Format(dateLayout) + ":" + to.Format(dateLayout)
	if cached, ok := h.Cache.Get("reports", cacheKey); ok {
		if stats, ok := cached.(repository.ExpenseOverview); ok {
			return c.JSON(http.StatusOK, stats)
		}
	}

	stats, err := h.Reports.Overview(c.Request().Context(), from, to)
	if err != nil {
		return serverError(c)
	}

	h.Cache.Set("reports", cacheKey, stats)
	return c.JSON(http.StatusOK, stats)
}

// SpendingByCategory возвращает согласованные траты по категориям.
func (h *ReportHandler) SpendingByCategory(c echo.Context) error {
	from, to, err := reportPeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cacheKey := "by-category:" + from.Format(dateLayout) + ":" + to.Format(dateLayout)
	if cached, ok := h.Cache.Get("reports", cacheKey); ok {
		if spending, ok := cached.([]repository.CategorySpend); ok {
			return c.JSON(http.StatusOK, spending)
		}
	}

	spending, err := h.Reports.SpendingByCategory(c.Request().Context(), from, to)
	if err != nil {
		return serverError(c)
	}

	h.Cache.Set("reports", cacheKey, spending)
	return c.JSON(http.StatusOK, spending)
}

// SpendingByType возвращает траты по типам с использованием бюджета.
func (h *ReportHandler) SpendingByType(c echo.Context) error {
	from, to, err := reportPeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cacheKey := "by-type:" + from.Format(dateLayout) + ":" + to.Format(dateLayout)
	if cached, ok := h.Cache.Get("reports", cacheKey); ok {
		if responses, ok := cached.([]TypeSpendResponse); ok {
			return c.JSON(http.StatusOK, responses)
		}
	}

	spending, err := h.Reports.SpendingByType(c.Request().Context(), from, to)
	if err != nil {
		return serverError(c)
	}

	responses := make([]TypeSpendResponse, 0, len(spending))
	for _, row := range spending {
		response := TypeSpendResponse{
			TypeID:           row.TypeID,
			Name:             row.Name,
			Category:         row.Category,
			BudgetLimitCents: row.BudgetLimitCents,
			BudgetPeriod:     row.BudgetPeriod,
			ApprovedCents:    row.ApprovedCents,
		}
		if utilization, ok := policy.Utilization(row.ApprovedCents, row.BudgetLimitCents); ok {
			response.Utilization = &utilization
			response.OverBudget = policy.OverBudget(row.ApprovedCents, row.BudgetLimitCents)
		}
		responses = append(responses, response)
	}

	h.Cache.Set("reports", cacheKey, responses)
	return c.JSON(http.StatusOK, responses)
}

// MonthlyComparison возвращает траты по месяцам.
func (h *ReportHandler) MonthlyComparison(c echo.Context) error {
	months := 6
	if raw := strings.TrimSpace(c.QueryParam("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 36 {
			return badRequest(c, "invalid months")
		}
		months = parsed
	}

	cacheKey := "monthly:" + strconv.Itoa(months)
	if cached, ok := h.Cache.Get("reports", cacheKey); ok {
		if items, ok := cached.([]repository.MonthlyComparison); ok {
			return c.JSON(http.StatusOK, items)
		}
	}

	items, err := h.Reports.MonthlyComparison(c.Request().Context(), months)
	if err != nil {
		return serverError(c)
	}

	h.Cache.Set("reports", cacheKey, items)
	return c.JSON(http.StatusOK, items)
}

// Valuation возвращает оценку склада по закупочной цене.
func (h *ReportHandler) Valuation(c echo.Context) error {
	if cached, ok := h.Cache.Get("reports", "valuation"); ok {
		if valuation, ok := cached.(repository.InventoryValuation); ok {
			return c.JSON(http.StatusOK, valuation)
		}
	}

	valuation, err := h.Reports.Valuation(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	h.Cache.Set("reports", "valuation", valuation)
	return c.JSON(http.StatusOK, valuation)
}

// reportPeriod разбирает границы отчета из запроса. По умолчанию текущий
// месяц; верхняя граница включает весь день.
func reportPeriod(c echo.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from format")
		}
		from = parsed
	}

	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to format")
		}
		to = parsed.AddDate(0, 0, 1)
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must be after from")
	}

	return from, to, nil
}

package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/cache"
	"example.com/resto-backoffice/backend/internal/config"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/repository"
	"example.com/resto-backoffice/backend/internal/stock"
)

type AlertHandler struct {
	Ingredients *repository.IngredientRepository
	Cache       *cache.ReportCache
	Config      config.StockConfig
}

// NewAlertHandler создает обработчик складских оповещений и прогнозов.
func NewAlertHandler(ingredients *repository.IngredientRepository, reportCache *cache.ReportCache, cfg config.StockConfig) *AlertHandler {
	return &AlertHandler{Ingredients: ingredients, Cache: reportCache, Config: cfg}
}

type LowStockAlert struct {
	IngredientID    uuid.UUID      `json:"ingredient_id"`
	Name            string         `json:"name"`
	Unit            string         `json:"unit"`
	CurrentStock    float64        `json:"current_stock"`
	MinimumStock    float64        `json:"minimum_stock"`
	Urgency         models.Urgency `json:"urgency"`
	ReorderQuantity float64        `json:"reorder_quantity"`
	Supplier        string         `json:"supplier,omitempty"`
	LeadTimeDays    int            `json:"lead_time_days"`
}

type ExpiryAlert struct {
	IngredientID uuid.UUID           `json:"ingredient_id"`
	Name         string              `json:"name"`
	ExpiryDate   time.Time           `json:"expiry_date"`
	Status       models.ExpiryStatus `json:"status"`
	DaysLeft     int                 `json:"days_left"`
}

type StockAlertsResponse struct {
	LowStock []LowStockAlert `json:"low_stock"`
	Expiring []ExpiryAlert   `json:"expiring"`
}

type PredictionResponse struct {
	IngredientID      uuid.UUID          `json:"ingredient_id"`
	Name              string             `json:"name"`
	Unit              string             `json:"unit"`
	CurrentStock      float64            `json:"current_stock"`
	DailyUsage        float64            `json:"daily_usage"`
	DaysUntilStockout float64            `json:"days_until_stockout"`
	StockoutDate      time.Time          `json:"stockout_date"`
	Urgency           models.Urgency     `json:"urgency"`
	DepletionCurve    []stock.CurvePoint `json:"depletion_curve"`
}

// Alerts возвращает ингредиенты с низким остатком и истекающим сроком.
func (h *AlertHandler) Alerts(c echo.Context) error {
	if cached, ok := h.Cache.Get("alerts", "stock"); ok {
		if response, ok := cached.(StockAlertsResponse); ok {
			return c.JSON(http.StatusOK, response)
		}
	}

	ingredients, err := h.Ingredients.ListAll(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	response := buildStockAlerts(ingredients, time.Now(), h.Config.ExpiryWarningDays)
	h.Cache.Set("alerts", "stock", response)

	return c.JSON(http.StatusOK, response)
}

// Predictions возвращает прогноз исчерпания остатков по ежедневному расходу.
func (h *AlertHandler) Predictions(c echo.Context) error {
	if cached, ok := h.Cache.Get("alerts", "predictions"); ok {
		if response, ok := cached.([]PredictionResponse); ok {
			return c.JSON(http.StatusOK, response)
		}
	}

	ingredients, err := h.Ingredients.ListAll(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	response := buildPredictions(ingredients, time.Now(), h.Config)
	h.Cache.Set("alerts", "predictions", response)

	return c.JSON(http.StatusOK, response)
}

func buildStockAlerts(ingredients []models.Ingredient, now time.Time, warningDays int) StockAlertsResponse {
	response := StockAlertsResponse{
		LowStock: make([]LowStockAlert, 0),
		Expiring: make([]ExpiryAlert, 0),
	}

	for _, ing := range ingredients {
		if urgency, low := stock.LowStockUrgency(ing.CurrentStock, ing.MinimumStock); low {
			response.LowStock = append(response.LowStock, LowStockAlert{
				IngredientID:    ing.ID,
				Name:            ing.Name,
				Unit:            ing.Unit,
				CurrentStock:    ing.CurrentStock,
				MinimumStock:    ing.MinimumStock,
				Urgency:         urgency,
				ReorderQuantity: stock.ReorderQuantity(ing.MinimumStock, ing.DailyUsage, ing.LeadTimeDays, ing.CurrentStock),
				Supplier:        ing.Supplier,
				LeadTimeDays:    ing.LeadTimeDays,
			})
		}

		if !ing.IsPerishable || ing.ExpiryDate == nil {
			continue
		}

		status := stock.ClassifyExpiry(ing.ExpiryDate, now, warningDays)
		if status == models.ExpiryNone {
			continue
		}

		response.Expiring = append(response.Expiring, ExpiryAlert{
			IngredientID: ing.ID,
			Name:         ing.Name,
			ExpiryDate:   *ing.ExpiryDate,
			Status:       status,
			DaysLeft:     stock.DaysUntilExpiry(*ing.ExpiryDate, now),
		})
	}

	return response
}

func buildPredictions(ingredients []models.Ingredient, now time.Time, cfg config.StockConfig) []PredictionResponse {
	predictions := make([]PredictionResponse, 0, len(ingredients))

	for _, ing := range ingredients {
		prediction, ok := stock.Project(ing.CurrentStock, ing.DailyUsage, ing.LeadTimeDays, now, cfg.PredictionHighMultiplier)
		if !ok {
			continue
		}

		predictions = append(predictions, PredictionResponse{
			IngredientID:      ing.ID,
			Name:              ing.Name,
			Unit:              ing.Unit,
			CurrentStock:      ing.CurrentStock,
			DailyUsage:        ing.DailyUsage,
			DaysUntilStockout: prediction.DaysUntilStockout,
			StockoutDate:      prediction.StockoutDate,
			Urgency:           prediction.Urgency,
			DepletionCurve:    stock.DepletionCurve(ing.CurrentStock, ing.DailyUsage, cfg.ProjectionDays),
		})
	}

	return predictions
}

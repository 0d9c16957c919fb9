package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/repository"
)

type GatewayHandler struct {
	Gateways *repository.GatewayRepository
}

// NewGatewayHandler создает обработчик настроек платежных шлюзов.
func NewGatewayHandler(gateways *repository.GatewayRepository) *GatewayHandler {
	return &GatewayHandler{Gateways: gateways}
}

type GatewayRequest struct {
	Provider            string `json:"provider" validate:"required,oneof=stripe square paypal"`
	APIKey              string `json:"api_key" validate:"required,max=200"`
	Secret              string `json:"secret" validate:"omitempty,max=200"`
	WebhookURL          string `json:"webhook_url" validate:"omitempty,url,max=500"`
	Environment         string `json:"environment" validate:"required,oneof=sandbox live"`
	MinTransactionCents int64  `json:"min_transaction_cents" validate:"gte=0"`
	MaxTransactionCents int64  `json:"max_transaction_cents" validate:"gte=0"`
	IsActive            *bool  `json:"is_active"`
}

// Create сохраняет конфигурацию шлюза.
func (h *GatewayHandler) Create(c echo.Context) error {
	gateway, err := bindGateway(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if gateway.Secret == "" {
		return badRequest(c, "secret is required")
	}

	created, err := h.Gateways.Create(c.Request().Context(), gateway)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "gateway already configured for this environment")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, created)
}

// List возвращает все конфигурации шлюзов. Секреты не сериализуются.
func (h *GatewayHandler) List(c echo.Context) error {
	gateways, err := h.Gateways.List(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, gateways)
}

// Get возвращает конфигурацию шлюза по идентификатору.
func (h *GatewayHandler) Get(c echo.Context) error {
	gatewayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid gateway id")
	}

	gateway, err := h.Gateways.GetByID(c.Request().Context(), gatewayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "gateway not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, gateway)
}

// Update изменяет конфигурацию шлюза. Пустой secret сохраняет прежний.
func (h *GatewayHandler) Update(c echo.Context) error {
	gatewayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid gateway id")
	}

	gateway, err := bindGateway(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	gateway.ID = gatewayID

	updated, err := h.Gateways.Update(c.Request().Context(), gateway)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "gateway not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет конфигурацию шлюза.
func (h *GatewayHandler) Delete(c echo.Context) error {
	gatewayID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid gateway id")
	}

	if err := h.Gateways.Delete(c.Request().Context(), gatewayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "gateway not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindGateway(c echo.Context) (models.PaymentGatewayConfig, error) {
	var result models.PaymentGatewayConfig

	var req GatewayRequest
	if err := c.Bind(&req); err != nil {
		return result, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return result, errors.New("validation failed")
	}

	if req.MaxTransactionCents > 0 && req.MinTransactionCents > req.MaxTransactionCents {
		return result, errors.New("min transaction must not exceed max transaction")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return models.PaymentGatewayConfig{
		Provider:            models.GatewayProvider(req.Provider),
		APIKey:              strings.TrimSpace(req.APIKey),
		Secret:              strings.TrimSpace(req.Secret),
		WebhookURL:          strings.TrimSpace(req.WebhookURL),
		Environment:         models.GatewayEnvironment(req.Environment),
		MinTransactionCents: req.MinTransactionCents,
		MaxTransactionCents: req.MaxTransactionCents,
		IsActive:            isActive,
	}, nil
}

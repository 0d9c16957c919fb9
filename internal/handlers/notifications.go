package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/auth"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/notifications"
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий для пользователя.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Timestamp: time.Now(), Data: map[string]string{"user_id": userID.String()}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishBudgetUpdate(hub *notifications.Hub, userID uuid.UUID, expenseType models.ExpenseType, spentCents int64) {
	if hub == nil {
		return
	}

	hub.Publish(userID, notifications.Event{
		Type:      notifications.EventBudgetUpdated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"expense_type_id":    expenseType.ID.String(),
			"spent_cents":        spentCents,
			"budget_limit_cents": expenseType.BudgetLimitCents,
		},
	})
}

func publishBudgetThreshold(hub *notifications.Hub, expenseType models.ExpenseType, spentCents int64) {
	if hub == nil {
		return
	}

	hub.Broadcast(notifications.Event{
		Type:      notifications.EventBudgetThreshold,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"expense_type_id":    expenseType.ID.String(),
			"name":               expenseType.Name,
			"threshold_percent":  expenseType.NotificationThreshold,
			"spent_cents":        spentCents,
			"budget_limit_cents": expenseType.BudgetLimitCents,
		},
	})
}

func publishExpenseDecided(hub *notifications.Hub, expense models.Expense) {
	if hub == nil {
		return
	}

	hub.Publish(expense.CreatedBy, notifications.Event{
		Type:      notifications.EventExpenseDecided,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"expense_id":   expense.ID.String(),
			"status":       string(expense.ApprovalStatus),
			"amount_cents": expense.AmountCents,
		},
	})
}

func publishStockAlert(hub *notifications.Hub, ingredient models.Ingredient, urgency models.Urgency) {
	if hub == nil {
		return
	}

	hub.Broadcast(notifications.Event{
		Type:      notifications.EventStockAlert,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"ingredient_id": ingredient.ID.String(),
			"name":          ingredient.Name,
			"current_stock": ingredient.CurrentStock,
			"minimum_stock": ingredient.MinimumStock,
			"urgency":       string(urgency),
		},
	})
}

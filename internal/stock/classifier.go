package stock

import (
	"math"
	"time"

	"example.com/resto-backoffice/backend/internal/models"
)

// safetyStockMultiplier — фиксированный множитель страхового запаса в
// формуле рекомендуемого дозаказа.
const safetyStockMultiplier = 1.5

// DefaultExpiryWarningDays — окно предупреждения о сроке годности по умолчанию.
const DefaultExpiryWarningDays = 7

// LowStockUrgency возвращает срочность пополнения для ингредиента с низким
// остатком. ok=false, если ингредиент вовсе не считается кандидатом: остаток
// выше минимума либо минимум не задан (minimum <= 0 трактуется как "запас
// всегда достаточен", а не деление на ноль).
func LowStockUrgency(currentStock, minimumStock float64) (models.Urgency, bool) {
	if minimumStock <= 0 || currentStock > minimumStock {
		return "", false
	}

	ratio := currentStock / minimumStock
	switch {
	case ratio <= 0.2:
		return models.UrgencyCritical, true
	case ratio <= 0.5:
		return models.UrgencyHigh, true
	default:
		return models.UrgencyMedium, true
	}
}

// ClassifyExpiry классифицирует срок годности относительно now.
// warningDays <= 0 заменяется окном по умолчанию.
func ClassifyExpiry(expiry *time.Time, now time.Time, warningDays int) models.ExpiryStatus {
	if expiry == nil {
		return models.ExpiryNone
	}

	if warningDays <= 0 {
		warningDays = DefaultExpiryWarningDays
	}

	days := DaysUntilExpiry(*expiry, now)
	switch {
	case days < 0:
		return models.ExpiryExpired
	case days == 0:
		return models.ExpiryToday
	case days <= 2:
		return models.ExpiryCritical
	case days <= warningDays:
		return models.ExpiryWarning
	default:
		return models.ExpiryNone
	}
}

// DaysUntilExpiry возвращает число дней до истечения срока, округленное вверх.
func DaysUntilExpiry(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// ReorderQuantity возвращает рекомендуемый объем дозаказа: восполнение до
// минимума плюс страховой запас на время поставки, но не меньше минимума.
func ReorderQuantity(minimumStock, dailyUsage float64, leadTimeDays int, currentStock float64) float64 {
	quantity := minimumStock + dailyUsage*float64(leadTimeDays)*safetyStockMultiplier - currentStock
	if quantity < minimumStock {
		return minimumStock
	}

	return quantity
}

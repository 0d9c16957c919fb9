package stock

import (
	"math"
	"time"

	"example.com/resto-backoffice/backend/internal/models"
)

// DefaultProjectionDays — горизонт кривой расхода по умолчанию.
const DefaultProjectionDays = 14

// DefaultHighMultiplier — множитель времени поставки для границы high/medium.
const DefaultHighMultiplier = 2.0

// Prediction — прогноз исчерпания запаса ингредиента.
type Prediction struct {
	DaysUntilStockout float64        `json:"days_until_stockout"`
	StockoutDate      time.Time      `json:"stockout_date"`
	Urgency           models.Urgency `json:"urgency"`
}

// CurvePoint — точка линейной кривой расхода.
type CurvePoint struct {
	Day   int     `json:"day"`
	Stock float64 `json:"stock"`
}

// Project строит прогноз исчерпания запаса. ok=false при dailyUsage <= 0 —
// прогноз не определен, а не бесконечен. Дата исчерпания — день, на который
// приходится дробный остаток: 2.5 дня от сегодня дают послезавтра.
func Project(currentStock, dailyUsage float64, leadTimeDays int, now time.Time, highMultiplier float64) (Prediction, bool) {
	if dailyUsage <= 0 {
		return Prediction{}, false
	}

	if highMultiplier <= 0 {
		highMultiplier = DefaultHighMultiplier
	}

	days := currentStock / dailyUsage
	if days < 0 {
		days = 0
	}

	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	stockoutDate := today.AddDate(0, 0, int(math.Floor(days)))

	lead := float64(leadTimeDays)
	urgency := models.UrgencyMedium
	switch {
	case days <= lead:
		urgency = models.UrgencyCritical
	case days <= lead*highMultiplier:
		urgency = models.UrgencyHigh
	}

	return Prediction{
		DaysUntilStockout: days,
		StockoutDate:      stockoutDate,
		Urgency:           urgency,
	}, true
}

// DepletionCurve строит линейную кривую остатка на days дней вперед с
// отсечкой в нуле. Это не прогнозная модель — только линейное списание.
func DepletionCurve(currentStock, dailyUsage float64, days int) []CurvePoint {
	if days <= 0 {
		days = DefaultProjectionDays
	}

	points := make([]CurvePoint, 0, days+1)
	for day := 0; day <= days; day++ {
		remaining := currentStock - dailyUsage*float64(day)
		if remaining < 0 {
			remaining = 0
		}
		points = append(points, CurvePoint{Day: day, Stock: remaining})
	}

	return points
}

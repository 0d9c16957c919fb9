package policy

import (
	"time"

	"example.com/resto-backoffice/backend/internal/models"
)

// RequiresApproval отвечает, требует ли сумма явного согласования по политике
// типа расходов. Отсутствующая политика означает отсутствие согласования.
func RequiresApproval(t *models.ExpenseType, amountCents int64) bool {
	if t == nil {
		return false
	}

	return t.RequiresApproval && amountCents >= t.ApprovalThresholdCents
}

// InitialStatus возвращает статус нового расхода по политике типа.
func InitialStatus(t *models.ExpenseType, amountCents int64) models.ApprovalStatus {
	if RequiresApproval(t, amountCents) {
		return models.StatusPending
	}

	return models.StatusApproved
}

// PeriodWindow возвращает календарные границы бюджетного периода,
// содержащего момент at: [start, end). Недели начинаются с понедельника,
// кварталы и годы привязаны к календарю.
func PeriodWindow(period models.BudgetPeriod, at time.Time) (time.Time, time.Time) {
	year, month, day := at.Date()
	loc := at.Location()

	switch period {
	case models.PeriodDaily:
		start := time.Date(year, month, day, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 0, 1)
	case models.PeriodWeekly:
		weekday := int(at.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday belongs to the week that started the previous Monday
		}
		start := time.Date(year, month, day, 0, 0, 0, 0, loc).AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)
	case models.PeriodMonthly:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	case models.PeriodQuarterly:
		quarterStart := time.Month(((int(month)-1)/3)*3 + 1)
		start := time.Date(year, quarterStart, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 3, 0)
	case models.PeriodYearly:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0)
	default:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
}

// Utilization возвращает использование бюджета в процентах. ok=false при
// нулевом или отрицательном лимите — доля не определена.
func Utilization(spentCents, limitCents int64) (float64, bool) {
	if limitCents <= 0 {
		return 0, false
	}

	return float64(spentCents) / float64(limitCents) * 100, true
}

// OverBudget сообщает, превышен ли лимит периода.
func OverBudget(spentCents, limitCents int64) bool {
	utilization, ok := Utilization(spentCents, limitCents)
	return ok && utilization > 100
}

// CrossesNotificationThreshold сообщает, пересекло ли использование бюджета
// порог уведомления при переходе от prevSpent к newSpent.
func CrossesNotificationThreshold(t *models.ExpenseType, prevSpentCents, newSpentCents int64) bool {
	if t == nil || t.NotificationThreshold <= 0 || t.BudgetLimitCents <= 0 {
		return false
	}

	threshold := float64(t.NotificationThreshold)
	prev, _ := Utilization(prevSpentCents, t.BudgetLimitCents)
	next, _ := Utilization(newSpentCents, t.BudgetLimitCents)

	return prev < threshold && next >= threshold
}

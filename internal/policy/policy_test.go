package policy

import (
	"testing"
	"time"

	"example.com/resto-backoffice/backend/internal/models"
)

// TestRequiresApprovalDisabled проверяет политику без согласования.
func TestRequiresApprovalDisabled(t *testing.T) {
	expenseType := &models.ExpenseType{RequiresApproval: false, ApprovalThresholdCents: 0}

	for _, amount := range []int64{0, 1, 5000, 1_000_000} {
		if RequiresApproval(expenseType, amount) {
			t.Fatalf("expected no approval for amount %d", amount)
		}
	}
}

// TestRequiresApprovalThreshold проверяет порог согласования.
func TestRequiresApprovalThreshold(t *testing.T) {
	expenseType := &models.ExpenseType{RequiresApproval: true, ApprovalThresholdCents: 10_000}

	if RequiresApproval(expenseType, 9_999) {
		t.Fatal("expected no approval below threshold")
	}
	if !RequiresApproval(expenseType, 10_000) {
		t.Fatal("expected approval at threshold")
	}
	if !RequiresApproval(expenseType, 10_001) {
		t.Fatal("expected approval above threshold")
	}
}

// TestRequiresApprovalMissingPolicy проверяет отсутствие политики.
func TestRequiresApprovalMissingPolicy(t *testing.T) {
	if RequiresApproval(nil, 100) {
		t.Fatal("expected no approval without a policy")
	}
}

// TestInitialStatus проверяет статус нового расхода.
func TestInitialStatus(t *testing.T) {
	expenseType := &models.ExpenseType{RequiresApproval: true, ApprovalThresholdCents: 500}

	if got := InitialStatus(expenseType, 499); got != models.StatusApproved {
		t.Fatalf("expected approved below threshold, got %s", got)
	}
	if got := InitialStatus(expenseType, 500); got != models.StatusPending {
		t.Fatalf("expected pending at threshold, got %s", got)
	}
}

// TestPeriodWindowMonthly проверяет календарные границы месяца.
func TestPeriodWindowMonthly(t *testing.T) {
	at := time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC)
	start, end := PeriodWindow(models.PeriodMonthly, at)

	if !start.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", end)
	}
}

// TestPeriodWindowWeekly проверяет неделю с понедельника.
func TestPeriodWindowWeekly(t *testing.T) {
	// Sunday 2024-03-17 belongs to the week of Monday 2024-03-11.
	at := time.Date(2024, time.March, 17, 8, 0, 0, 0, time.UTC)
	start, end := PeriodWindow(models.PeriodWeekly, at)

	if !start.Equal(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", end)
	}
}

// TestPeriodWindowQuarterly проверяет границы квартала.
func TestPeriodWindowQuarterly(t *testing.T) {
	at := time.Date(2024, time.November, 2, 0, 0, 0, 0, time.UTC)
	start, end := PeriodWindow(models.PeriodQuarterly, at)

	if !start.Equal(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", end)
	}
}

// TestPeriodWindowDailyAndYearly проверяет день и год.
func TestPeriodWindowDailyAndYearly(t *testing.T) {
	at := time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC)

	start, end := PeriodWindow(models.PeriodDaily, at)
	if !start.Equal(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected daily window: %s .. %s", start, end)
	}

	start, end = PeriodWindow(models.PeriodYearly, at)
	if !start.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected yearly window: %s .. %s", start, end)
	}
}

// TestUtilization проверяет расчет использования бюджета.
func TestUtilization(t *testing.T) {
	got, ok := Utilization(5_000, 10_000)
	if !ok || got != 50 {
		t.Fatalf("expected 50%%, got %v ok=%v", got, ok)
	}

	if _, ok := Utilization(5_000, 0); ok {
		t.Fatal("expected ok=false for zero limit")
	}

	if OverBudget(10_000, 10_000) {
		t.Fatal("expected exactly 100%% to not be over budget")
	}
	if !OverBudget(10_001, 10_000) {
		t.Fatal("expected over budget past 100%%")
	}
}

// TestCrossesNotificationThreshold проверяет пересечение порога уведомления.
func TestCrossesNotificationThreshold(t *testing.T) {
	expenseType := &models.ExpenseType{BudgetLimitCents: 100_000, NotificationThreshold: 80}

	if !CrossesNotificationThreshold(expenseType, 79_000, 81_000) {
		t.Fatal("expected crossing from 79%% to 81%%")
	}
	if CrossesNotificationThreshold(expenseType, 81_000, 90_000) {
		t.Fatal("expected no crossing when already past threshold")
	}
	if CrossesNotificationThreshold(expenseType, 10_000, 20_000) {
		t.Fatal("expected no crossing below threshold")
	}
	if CrossesNotificationThreshold(nil, 0, 100_000) {
		t.Fatal("expected no crossing without a policy")
	}
}

package stock

import (
	"testing"
	"time"

	"example.com/resto-backoffice/backend/internal/models"
)

// TestProjectFractionalDays проверяет дробный прогноз и дату исчерпания.
func TestProjectFractionalDays(t *testing.T) {
	now := time.Date(2024, time.June, 10, 15, 30, 0, 0, time.UTC)

	prediction, ok := Project(5, 2, 7, now, DefaultHighMultiplier)
	if !ok {
		t.Fatal("expected a prediction")
	}

	if prediction.DaysUntilStockout != 2.5 {
		t.Fatalf("expected 2.5 days, got %v", prediction.DaysUntilStockout)
	}

	want := time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC)
	if !prediction.StockoutDate.Equal(want) {
		t.Fatalf("expected stockout on %s, got %s", want, prediction.StockoutDate)
	}
}

// TestProjectZeroUsage проверяет отсутствие прогноза при нулевом расходе.
func TestProjectZeroUsage(t *testing.T) {
	if _, ok := Project(100, 0, 7, time.Now(), DefaultHighMultiplier); ok {
		t.Fatal("expected no prediction for zero daily usage")
	}
	if _, ok := Project(100, -1, 7, time.Now(), DefaultHighMultiplier); ok {
		t.Fatal("expected no prediction for negative daily usage")
	}
}

// TestProjectImmediateStockout проверяет нулевой остаток.
func TestProjectImmediateStockout(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	prediction, ok := Project(0, 4, 3, now, DefaultHighMultiplier)
	if !ok {
		t.Fatal("expected a prediction")
	}

	if prediction.DaysUntilStockout != 0 {
		t.Fatalf("expected 0 days, got %v", prediction.DaysUntilStockout)
	}
	if !prediction.StockoutDate.Equal(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected stockout today, got %s", prediction.StockoutDate)
	}
	if prediction.Urgency != models.UrgencyCritical {
		t.Fatalf("expected critical urgency, got %s", prediction.Urgency)
	}
}

// TestProjectUrgencyBuckets проверяет границы срочности прогноза.
func TestProjectUrgencyBuckets(t *testing.T) {
	now := time.Now()

	// 5 days of stock, lead time 7: stockout inside lead time.
	prediction, _ := Project(10, 2, 7, now, 2)
	if prediction.Urgency != models.UrgencyCritical {
		t.Fatalf("expected critical within lead time, got %s", prediction.Urgency)
	}

	// 10 days of stock, lead time 7, multiplier 2: within 14 days.
	prediction, _ = Project(20, 2, 7, now, 2)
	if prediction.Urgency != models.UrgencyHigh {
		t.Fatalf("expected high within doubled lead time, got %s", prediction.Urgency)
	}

	// 30 days of stock, lead time 7.
	prediction, _ = Project(60, 2, 7, now, 2)
	if prediction.Urgency != models.UrgencyMedium {
		t.Fatalf("expected medium beyond doubled lead time, got %s", prediction.Urgency)
	}
}

// TestDepletionCurve проверяет линейную кривую с отсечкой в нуле.
func TestDepletionCurve(t *testing.T) {
	points := DepletionCurve(10, 3, 5)

	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}

	if points[0].Stock != 10 {
		t.Fatalf("expected day 0 stock 10, got %v", points[0].Stock)
	}
	if points[3].Stock != 1 {
		t.Fatalf("expected day 3 stock 1, got %v", points[3].Stock)
	}
	if points[4].Stock != 0 || points[5].Stock != 0 {
		t.Fatalf("expected clamp at zero, got %v and %v", points[4].Stock, points[5].Stock)
	}
}

// TestDepletionCurveDefaultHorizon проверяет горизонт по умолчанию.
func TestDepletionCurveDefaultHorizon(t *testing.T) {
	points := DepletionCurve(100, 1, 0)
	if len(points) != DefaultProjectionDays+1 {
		t.Fatalf("expected %d points, got %d", DefaultProjectionDays+1, len(points))
	}
}

package stock

import (
	"testing"
	"time"

	"example.com/resto-backoffice/backend/internal/models"
)

// TestLowStockUrgencyBuckets проверяет пороги срочности по отношению к минимуму.
func TestLowStockUrgencyBuckets(t *testing.T) {
	urgency, ok := LowStockUrgency(4, 20)
	if !ok || urgency != models.UrgencyCritical {
		t.Fatalf("expected critical at ratio 0.2, got %s ok=%v", urgency, ok)
	}

	urgency, ok = LowStockUrgency(10, 20)
	if !ok || urgency != models.UrgencyHigh {
		t.Fatalf("expected high at ratio 0.5, got %s ok=%v", urgency, ok)
	}

	urgency, ok = LowStockUrgency(15, 20)
	if !ok || urgency != models.UrgencyMedium {
		t.Fatalf("expected medium at ratio 0.75, got %s ok=%v", urgency, ok)
	}
}

// TestLowStockUrgencyNotCandidate проверяет, что здоровый остаток не считается низким.
func TestLowStockUrgencyNotCandidate(t *testing.T) {
	if _, ok := LowStockUrgency(21, 20); ok {
		t.Fatal("expected stock above minimum to not be low")
	}
}

// TestLowStockUrgencyZeroMinimum проверяет, что нулевой минимум никогда не дает алерта.
func TestLowStockUrgencyZeroMinimum(t *testing.T) {
	if _, ok := LowStockUrgency(0, 0); ok {
		t.Fatal("expected minimum_stock=0 to never be low stock")
	}
	if _, ok := LowStockUrgency(5, -1); ok {
		t.Fatal("expected negative minimum to never be low stock")
	}
}

// TestClassifyExpiry проверяет таблицу статусов срока годности.
func TestClassifyExpiry(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		offsetDays int
		want       models.ExpiryStatus
	}{
		{-1, models.ExpiryExpired},
		{0, models.ExpiryToday},
		{1, models.ExpiryCritical},
		{2, models.ExpiryCritical},
		{5, models.ExpiryWarning},
		{7, models.ExpiryWarning},
		{8, models.ExpiryNone},
	}

	for _, tc := range cases {
		expiry := now.AddDate(0, 0, tc.offsetDays)
		got := ClassifyExpiry(&expiry, now, DefaultExpiryWarningDays)
		if got != tc.want {
			t.Fatalf("offset %d days: expected %s, got %s", tc.offsetDays, tc.want, got)
		}
	}
}

// TestClassifyExpiryNoDate проверяет ингредиент без срока годности.
func TestClassifyExpiryNoDate(t *testing.T) {
	if got := ClassifyExpiry(nil, time.Now(), 7); got != models.ExpiryNone {
		t.Fatalf("expected none without expiry date, got %s", got)
	}
}

// TestReorderQuantity проверяет формулу страхового запаса.
func TestReorderQuantity(t *testing.T) {
	// 20 + 2*5*1.5 - 5 = 30
	if got := ReorderQuantity(20, 2, 5, 5); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
}

// TestReorderQuantityFloor проверяет нижнюю границу в размере минимума.
func TestReorderQuantityFloor(t *testing.T) {
	// 20 + 0 - 100 < 20, so the floor applies.
	if got := ReorderQuantity(20, 0, 5, 100); got != 20 {
		t.Fatalf("expected floor at minimum stock, got %v", got)
	}

	for _, current := range []float64{0, 10, 50, 200} {
		if got := ReorderQuantity(20, 3, 7, current); got < 20 {
			t.Fatalf("expected reorder >= minimum for current=%v, got %v", current, got)
		}
	}
}

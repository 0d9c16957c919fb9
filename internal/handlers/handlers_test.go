package handlers

import (
	"testing"
	"time"

	"example.com/resto-backoffice/backend/internal/models"
)

// TestValidateHexColor проверяет валидацию hex-цвета.
func TestValidateHexColor(t *testing.T) {
	if _, err := validateHexColor("#AABBCC"); err != nil {
		t.Fatalf("expected valid color, got %v", err)
	}

	if color, _ := validateHexColor(" #aabbcc "); color != "#AABBCC" {
		t.Fatalf("expected normalized color, got %s", color)
	}

	if _, err := validateHexColor("AABBCC"); err == nil {
		t.Fatal("expected error for missing #")
	}

	if _, err := validateHexColor("#XYZ123"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

// TestNormalizeQuantity проверяет приведение корректировки к дельте со знаком.
func TestNormalizeQuantity(t *testing.T) {
	if got, err := normalizeQuantity(models.AdjustmentPurchase, 5); err != nil || got != 5 {
		t.Fatalf("purchase: got %v, %v", got, err)
	}

	if got, err := normalizeQuantity(models.AdjustmentWaste, 3); err != nil || got != -3 {
		t.Fatalf("waste: got %v, %v", got, err)
	}

	if got, err := normalizeQuantity(models.AdjustmentTransfer, 2); err != nil || got != -2 {
		t.Fatalf("transfer: got %v, %v", got, err)
	}

	if got, err := normalizeQuantity(models.AdjustmentCorrection, -1.5); err != nil || got != -1.5 {
		t.Fatalf("correction: got %v, %v", got, err)
	}

	if _, err := normalizeQuantity(models.AdjustmentPurchase, -5); err == nil {
		t.Fatal("expected error for negative purchase")
	}

	if _, err := normalizeQuantity(models.AdjustmentWaste, 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

// TestParseUUIDs проверяет разбор списка идентификаторов.
func TestParseUUIDs(t *testing.T) {
	ids, err := parseUUIDs([]string{"3f1f9c3e-9f6c-4d89-a6e7-75cc6da31c2a"})
	if err != nil || len(ids) != 1 {
		t.Fatalf("expected one id, got %v, %v", ids, err)
	}

	if _, err := parseUUIDs([]string{"not-a-uuid"}); err == nil {
		t.Fatal("expected error for invalid uuid")
	}

	duplicate := "3f1f9c3e-9f6c-4d89-a6e7-75cc6da31c2a"
	if _, err := parseUUIDs([]string{duplicate, duplicate}); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

// TestTrimStrings проверяет очистку строковых списков.
func TestTrimStrings(t *testing.T) {
	got := trimStrings([]string{" a ", "", "b", "  "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected result: %v", got)
	}
}

// TestBuildStockAlerts проверяет сборку складских оповещений.
func TestBuildStockAlerts(t *testing.T) {
	ingredients := []models.Ingredient{
		{Name: "flour", CurrentStock: 1, MinimumStock: 10, DailyUsage: 2, LeadTimeDays: 3},
		{Name: "salt", CurrentStock: 50, MinimumStock: 10},
	}

	response := buildStockAlerts(ingredients, time.Now(), 7)
	if len(response.LowStock) != 1 {
		t.Fatalf("expected one low stock alert, got %d", len(response.LowStock))
	}

	alert := response.LowStock[0]
	if alert.Name != "flour" {
		t.Fatalf("unexpected ingredient: %s", alert.Name)
	}
	if alert.Urgency != models.UrgencyCritical {
		t.Fatalf("expected critical urgency, got %s", alert.Urgency)
	}
	// 10 + 2*3*1.5 - 1 = 18
	if alert.ReorderQuantity != 18 {
		t.Fatalf("expected reorder quantity 18, got %v", alert.ReorderQuantity)
	}
}

package config

import (
	"reflect"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка email из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@example.com, ,MANAGER@Example.com ")

	got := parseCSVEnv("ADMIN_EMAILS")
	want := []string{"admin@example.com", "manager@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestParseFloatEnv проверяет разбор множителя прогноза.
func TestParseFloatEnv(t *testing.T) {
	t.Setenv("STOCK_PREDICTION_HIGH_MULTIPLIER", "2.5")

	got, err := parseFloatEnv("STOCK_PREDICTION_HIGH_MULTIPLIER", 2.0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
}

// TestParseFloatEnvInvalid проверяет ошибку при нечисловом значении.
func TestParseFloatEnvInvalid(t *testing.T) {
	t.Setenv("STOCK_PREDICTION_HIGH_MULTIPLIER", "lots")

	if _, err := parseFloatEnv("STOCK_PREDICTION_HIGH_MULTIPLIER", 2.0); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

// TestParseBoolEnvFallback проверяет значение по умолчанию.
func TestParseBoolEnvFallback(t *testing.T) {
	if !parseBoolEnv("MISSING_CACHE_FLAG", true) {
		t.Fatal("expected fallback true")
	}

	t.Setenv("CACHE_ENABLED", "false")
	if parseBoolEnv("CACHE_ENABLED", true) {
		t.Fatal("expected false from env")
	}
}

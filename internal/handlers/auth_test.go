package handlers

import (
	"testing"

	"example.com/resto-backoffice/backend/internal/models"
)

// TestDefaultStaffAccess проверяет, что карточка нового сотрудника заводится
// без прав: каждый модуль присутствует в наборе и выключен.
func TestDefaultStaffAccess(t *testing.T) {
	access := defaultStaffAccess()

	if len(access) != len(models.AllModules()) {
		t.Fatalf("expected %d modules, got %d", len(models.AllModules()), len(access))
	}

	for _, m := range models.AllModules() {
		granted, ok := access[m]
		if !ok {
			t.Fatalf("module %s missing from default access", m)
		}
		if granted {
			t.Fatalf("module %s granted by default", m)
		}
	}
}

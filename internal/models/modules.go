package models

// Module — закрытый перечень модулей приложения для прав доступа персонала.
type Module string

const (
	ModuleExpenses  Module = "expenses"
	ModuleInventory Module = "inventory"
	ModuleReports   Module = "reports"
	ModuleSettings  Module = "settings"
	ModuleStaff     Module = "staff"
)

// AllModules возвращает полный список модулей в стабильном порядке.
func AllModules() []Module {
	return []Module{ModuleExpenses, ModuleInventory, ModuleReports, ModuleSettings, ModuleStaff}
}

// ValidModule проверяет идентификатор модуля по закрытому списку.
func ValidModule(m Module) bool {
	switch m {
	case ModuleExpenses, ModuleInventory, ModuleReports, ModuleSettings, ModuleStaff:
		return true
	}
	return false
}

// ModuleAccess — набор разрешений персонала по модулям. Ключи вне закрытого
// списка отбрасываются при нормализации.
type ModuleAccess map[Module]bool

// NormalizeModuleAccess возвращает набор с записью для каждого известного
// модуля и сообщает, были ли во входе неизвестные ключи.
func NormalizeModuleAccess(raw map[string]bool) (ModuleAccess, []string) {
	access := make(ModuleAccess, len(AllModules()))
	for _, m := range AllModules() {
		access[m] = false
	}

	var unknown []string
	for key, allowed := range raw {
		m := Module(key)
		if !ValidModule(m) {
			unknown = append(unknown, key)
			continue
		}
		access[m] = allowed
	}

	return access, unknown
}

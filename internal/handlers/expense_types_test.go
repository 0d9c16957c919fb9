package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func jsonContext(t *testing.T, body string) echo.Context {
	t.Helper()

	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return e.NewContext(req, httptest.NewRecorder())
}

const typePayload = `{
	"name": "Закупка овощей",
	"category": "ingredients",
	"color": "#33AA55",
	"budget_limit_cents": 500000,
	"budget_period": "monthly",
	"priority": "medium"
}`

// TestBindTypeActiveByDefault проверяет, что новый тип без явного is_active
// создается активным и сразу принимает расходы.
func TestBindTypeActiveByDefault(t *testing.T) {
	h := &ExpenseTypeHandler{}

	result, err := h.bindType(jsonContext(t, typePayload))
	if err != nil {
		t.Fatalf("bindType: %v", err)
	}
	if !result.IsActive {
		t.Fatal("expected new type to be active")
	}
}

// TestBindTypeExplicitInactive проверяет, что явный is_active из запроса
// не перекрывается значением по умолчанию.
func TestBindTypeExplicitInactive(t *testing.T) {
	h := &ExpenseTypeHandler{}

	payload := strings.Replace(typePayload, `"priority": "medium"`, `"priority": "medium", "is_active": false`, 1)

	result, err := h.bindType(jsonContext(t, payload))
	if err != nil {
		t.Fatalf("bindType: %v", err)
	}
	if result.IsActive {
		t.Fatal("expected type to be inactive")
	}
}

// TestBindRulePriority проверяет границы приоритета: 1 — самый высокий,
// ноль недопустим.
func TestBindRulePriority(t *testing.T) {
	rule, err := bindRule(jsonContext(t, `{"condition":"amount_over_threshold","action":"require_approval","priority":1}`))
	if err != nil {
		t.Fatalf("bindRule: %v", err)
	}
	if rule.Priority != 1 {
		t.Fatalf("expected priority 1, got %d", rule.Priority)
	}

	if _, err := bindRule(jsonContext(t, `{"condition":"amount_over_threshold","action":"require_approval","priority":0}`)); err == nil {
		t.Fatal("expected error for zero priority")
	}
}

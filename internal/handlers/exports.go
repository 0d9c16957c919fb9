package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/models"
)

const timeLayout = time.RFC3339

// ExportCSV выгружает расходы по текущим фильтрам в CSV-файл.
func (h *ExpenseHandler) ExportCSV(c echo.Context) error {
	filter, err := parseExpenseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter.Limit = 500

	expenses, err := h.Expenses.List(c.Request().Context(), filter)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writeExpensesCSV(writer, expenses); err != nil {
		return serverError(c)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "expenses-" + time.Now().Format(dateLayout) + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportCSV выгружает справочник ингредиентов с остатками в CSV-файл.
func (h *IngredientHandler) ExportCSV(c echo.Context) error {
	ingredients, err := h.Ingredients.ListAll(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writeIngredientsCSV(writer, ingredients); err != nil {
		return serverError(c)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "ingredients-" + time.Now().Format(dateLayout) + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeExpensesCSV(writer *csv.Writer, expenses []models.Expense) error {
	header := []string{
		"id",
		"expense_type_id",
		"amount_cents",
		"expense_date",
		"vendor",
		"receipt_number",
		"approval_status",
		"payment_method",
		"created_at",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, expense := range expenses {
		receipt := ""
		if expense.ReceiptNumber != nil {
			receipt = *expense.ReceiptNumber
		}

		record := []string{
			expense.ID.String(),
			expense.ExpenseTypeID.String(),
			formatInt64(expense.AmountCents),
			expense.ExpenseDate.Format(dateLayout),
			expense.Vendor,
			receipt,
			string(expense.ApprovalStatus),
			expense.PaymentMethod,
			expense.CreatedAt.Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeIngredientsCSV(writer *csv.Writer, ingredients []models.Ingredient) error {
	header := []string{
		"id",
		"name",
		"category",
		"unit",
		"current_stock",
		"minimum_stock",
		"maximum_stock",
		"cost_per_unit_cents",
		"supplier",
		"lead_time_days",
		"daily_usage",
		"is_perishable",
		"expiry_date",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, ing := range ingredients {
		expiry := ""
		if ing.ExpiryDate != nil {
			expiry = ing.ExpiryDate.Format(dateLayout)
		}

		record := []string{
			ing.ID.String(),
			ing.Name,
			ing.Category,
			ing.Unit,
			formatFloat(ing.CurrentStock),
			formatFloat(ing.MinimumStock),
			formatFloat(ing.MaximumStock),
			formatInt64(ing.CostPerUnitCents),
			ing.Supplier,
			formatInt(ing.LeadTimeDays),
			formatFloat(ing.DailyUsage),
			formatBool(ing.IsPerishable),
			expiry,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/resto-backoffice/backend/internal/models"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

type ExpenseOverview struct {
	TotalExpenses int
	PendingCount  int
	ApprovedCount int
	RejectedCount int
	ApprovedCents int64
	PendingCents  int64
}

type CategorySpend struct {
	Category      models.ExpenseCategory
	ExpenseCount  int
	ApprovedCents int64
}

type TypeSpend struct {
	TypeID           uuid.UUID
	Name             string
	Category         models.ExpenseCategory
	BudgetLimitCents int64
	BudgetPeriod     models.BudgetPeriod
	ApprovedCents    int64
}

type MonthlyComparison struct {
	Month         time.Time
	ApprovedCents int64
	ExpenseCount  int
}

type InventoryValuation struct {
	IngredientCount int
	TotalValueCents int64
	PerishableCount int
}

// NewReportRepository создает репозиторий отчетов.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Overview возвращает сводку расходов за интервал.
func (r *ReportRepository) Overview(ctx context.Context, from, to time.Time) (ExpenseOverview, error) {
	var stats ExpenseOverview

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) AS total,
		        COUNT(*) FILTER (WHERE approval_status = 'pending') AS pending,
		        COUNT(*) FILTER (WHERE approval_status = 'approved') AS approved,
		        COUNT(*) FILTER (WHERE approval_status = 'rejected') AS rejected,
		        COALESCE(SUM(amount_cents) FILTER (WHERE approval_status = 'approved'), 0) AS approved_cents,
		        COALESCE(SUM(amount_cents) FILTER (WHERE approval_status = 'pending'), 0) AS pending_cents
		 FROM expenses
		 WHERE expense_date >= $1 AND expense_date < $2`,
		from, to,
	).Scan(&stats.TotalExpenses, &stats.PendingCount, &stats.ApprovedCount,
		&stats.RejectedCount, &stats.ApprovedCents, &stats.PendingCents)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// SpendingByCategory возвращает согласованные траты по категориям за интервал.
func (r *ReportRepository) SpendingByCategory(ctx context.Context, from, to time.Time) ([]CategorySpend, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.category,
		        COUNT(e.id) AS expense_count,
		        COALESCE(SUM(e.amount_cents), 0) AS approved_cents
		 FROM expenses e
		 JOIN expense_types t ON t.id = e.expense_type_id
		 WHERE e.approval_status = 'approved'
		   AND e.expense_date >= $1 AND e.expense_date < $2
		 GROUP BY t.category
		 ORDER BY approved_cents DESC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spending := make([]CategorySpend, 0)
	for rows.Next() {
		var row CategorySpend
		err := rows.Scan(&row.Category, &row.ExpenseCount, &row.ApprovedCents)
		if err != nil {
			return nil, err
		}
		spending = append(spending, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return spending, nil
}

// SpendingByType возвращает согласованные траты по каждому активному типу за
// интервал вместе с лимитом и периодом бюджета для расчета использования.
func (r *ReportRepository) SpendingByType(ctx context.Context, from, to time.Time) ([]TypeSpend, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.name, t.category, t.budget_limit_cents, t.budget_period,
		        COALESCE(SUM(e.amount_cents) FILTER (WHERE e.approval_status = 'approved'
		            AND e.expense_date >= $1 AND e.expense_date < $2), 0) AS approved_cents
		 FROM expense_types t
		 LEFT JOIN expenses e ON e.expense_type_id = t.id
		 WHERE t.is_active
		 GROUP BY t.id, t.name, t.category, t.budget_limit_cents, t.budget_period, t.priority
		 ORDER BY CASE t.priority
		     WHEN 'critical' THEN 4
		     WHEN 'high' THEN 3
		     WHEN 'medium' THEN 2
		     ELSE 1 END DESC,
		     t.name ASC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spending := make([]TypeSpend, 0)
	for rows.Next() {
		var row TypeSpend
		err := rows.Scan(&row.TypeID, &row.Name, &row.Category,
			&row.BudgetLimitCents, &row.BudgetPeriod, &row.ApprovedCents)
		if err != nil {
			return nil, err
		}
		spending = append(spending, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return spending, nil
}

// MonthlyComparison возвращает согласованные траты по месяцам.
func (r *ReportRepository) MonthlyComparison(ctx context.Context, months int) ([]MonthlyComparison, error) {
	if months <= 0 {
		return nil, ErrInvalid
	}

	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('month', expense_date)::date AS month,
		        COALESCE(SUM(amount_cents), 0) AS approved_cents,
		        COUNT(*) AS expense_count
		 FROM expenses
		 WHERE approval_status = 'approved'
		 GROUP BY month
		 ORDER BY month DESC
		 LIMIT $1`,
		months,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]MonthlyComparison, 0)
	for rows.Next() {
		var row MonthlyComparison
		var month time.Time
		err := rows.Scan(&month, &row.ApprovedCents, &row.ExpenseCount)
		if err != nil {
			return nil, err
		}
		row.Month = month
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Valuation возвращает оценку склада: сумма остатков по закупочной цене.
func (r *ReportRepository) Valuation(ctx context.Context) (InventoryValuation, error) {
	var v InventoryValuation

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(ROUND(current_stock * cost_per_unit_cents)), 0),
		        COUNT(*) FILTER (WHERE is_perishable)
		 FROM ingredients`,
	).Scan(&v.IngredientCount, &v.TotalValueCents, &v.PerishableCount)
	if err != nil {
		return v, err
	}

	return v, nil
}

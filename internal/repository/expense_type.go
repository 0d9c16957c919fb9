package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/resto-backoffice/backend/internal/models"
)

type ExpenseTypeRepository struct {
	db *pgxpool.Pool
}

// NewExpenseTypeRepository создает репозиторий типов расходов.
func NewExpenseTypeRepository(db *pgxpool.Pool) *ExpenseTypeRepository {
	return &ExpenseTypeRepository{db: db}
}

const expenseTypeColumns = `id, name, category, color, budget_limit_cents, budget_period,
	 is_active, tax_deductible, requires_approval, approval_threshold_cents,
	 auto_recurring, notification_threshold, allow_over_budget, default_vendors,
	 priority, restricted_users, tags, created_at, updated_at`

// priority хранится текстом, поэтому сортировка идет по рангу важности,
// а не по алфавиту.
const priorityRank = `CASE priority
	 WHEN 'critical' THEN 4
	 WHEN 'high' THEN 3
	 WHEN 'medium' THEN 2
	 ELSE 1 END`

// Create создает тип расходов.
func (r *ExpenseTypeRepository) Create(ctx context.Context, t models.ExpenseType) (models.ExpenseType, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO expense_types (id, name, category, color, budget_limit_cents, budget_period,
		     is_active, tax_deductible, requires_approval, approval_threshold_cents,
		     auto_recurring, notification_threshold, allow_over_budget, default_vendors,
		     priority, restricted_users, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING `+expenseTypeColumns,
		uuid.New(), t.Name, t.Category, t.Color, t.BudgetLimitCents, t.BudgetPeriod,
		t.IsActive, t.TaxDeductible, t.RequiresApproval, t.ApprovalThresholdCents,
		t.AutoRecurring, t.NotificationThreshold, t.AllowOverBudget, t.DefaultVendors,
		t.Priority, t.RestrictedUsers, t.Tags,
	)

	created, err := scanExpenseType(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return created, ErrConflict
		}
		return created, err
	}

	return created, nil
}

// GetByID возвращает тип расходов по идентификатору.
func (r *ExpenseTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (models.ExpenseType, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+expenseTypeColumns+`
		 FROM expense_types
		 WHERE id = $1`,
		id,
	)

	t, err := scanExpenseType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return t, ErrNotFound
		}
		return t, err
	}

	return t, nil
}

// List возвращает типы расходов, опционально только активные.
func (r *ExpenseTypeRepository) List(ctx context.Context, onlyActive bool) ([]models.ExpenseType, error) {
	query := `SELECT ` + expenseTypeColumns + `
		 FROM expense_types`
	if onlyActive {
		query += `
		 WHERE is_active`
	}
	query += `
		 ORDER BY ` + priorityRank + ` DESC, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]models.ExpenseType, 0)
	for rows.Next() {
		t, err := scanExpenseType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}

// Update обновляет тип расходов. Активность не трогается: жизненный цикл
// включения и выключения идет только через SetActive.
func (r *ExpenseTypeRepository) Update(ctx context.Context, t models.ExpenseType) (models.ExpenseType, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE expense_types
		 SET name = $2,
		     category = $3,
		     color = $4,
		     budget_limit_cents = $5,
		     budget_period = $6,
		     tax_deductible = $7,
		     requires_approval = $8,
		     approval_threshold_cents = $9,
		     auto_recurring = $10,
		     notification_threshold = $11,
		     allow_over_budget = $12,
		     default_vendors = $13,
		     priority = $14,
		     restricted_users = $15,
		     tags = $16,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+expenseTypeColumns,
		t.ID, t.Name, t.Category, t.Color, t.BudgetLimitCents, t.BudgetPeriod,
		t.TaxDeductible, t.RequiresApproval, t.ApprovalThresholdCents,
		t.AutoRecurring, t.NotificationThreshold, t.AllowOverBudget, t.DefaultVendors,
		t.Priority, t.RestrictedUsers, t.Tags,
	)

	updated, err := scanExpenseType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// SetActive включает или выключает тип расходов.
func (r *ExpenseTypeRepository) SetActive(ctx context.Context, id uuid.UUID, isActive bool) (models.ExpenseType, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE expense_types
		 SET is_active = $2,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+expenseTypeColumns,
		id, isActive,
	)

	t, err := scanExpenseType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return t, ErrNotFound
		}
		return t, err
	}

	return t, nil
}

// Delete удаляет тип расходов вместе с правилами. Расходы не каскадируются:
// тип с расходами удалить нельзя.
func (r *ExpenseTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var hasExpenses bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM expenses WHERE expense_type_id = $1
		 )`,
		id,
	).Scan(&hasExpenses)
	if err != nil {
		return err
	}

	if hasExpenses {
		return ErrConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM expense_type_rules WHERE type_id = $1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM expense_types WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func scanExpenseType(row pgx.Row) (models.ExpenseType, error) {
	var t models.ExpenseType

	err := row.Scan(
		&t.ID, &t.Name, &t.Category, &t.Color, &t.BudgetLimitCents, &t.BudgetPeriod,
		&t.IsActive, &t.TaxDeductible, &t.RequiresApproval, &t.ApprovalThresholdCents,
		&t.AutoRecurring, &t.NotificationThreshold, &t.AllowOverBudget, &t.DefaultVendors,
		&t.Priority, &t.RestrictedUsers, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}

	return t, nil
}

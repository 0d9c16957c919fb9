package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/policy"
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

// NewExpenseRepository создает репозиторий расходов.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, expense_type_id, amount_cents, expense_date, vendor,
	 receipt_number, approval_status, approved_by, approved_at, rejection_reason,
	 payment_method, tags, created_by, created_at, updated_at`

// ExpenseFilter — фильтры списка расходов.
type ExpenseFilter struct {
	TypeID *uuid.UUID
	Status *models.ApprovalStatus
	From   *time.Time
	To     *time.Time
	Limit  int
}

// CreateResult — результат создания расхода вместе с данными для уведомлений
// об использовании бюджета.
type CreateResult struct {
	Expense        models.Expense
	Type           models.ExpenseType
	PrevSpentCents int64
	NewSpentCents  int64
}

// Create создает расход, применяя политику типа в одной транзакции: статус
// по порогу согласования и запрет выхода за бюджет периода при
// allow_over_budget = false. Строка типа блокируется на время проверки.
func (r *ExpenseRepository) Create(ctx context.Context, e models.Expense, now time.Time) (CreateResult, error) {
	var result CreateResult

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	expenseType, err := lockExpenseType(ctx, tx, e.ExpenseTypeID)
	if err != nil {
		return result, err
	}

	if !expenseType.IsActive {
		return result, ErrInvalid
	}

	windowStart, windowEnd := policy.PeriodWindow(expenseType.BudgetPeriod, now)
	spent, err := sumApprovedInWindow(ctx, tx, expenseType.ID, windowStart, windowEnd)
	if err != nil {
		return result, err
	}

	status := policy.InitialStatus(&expenseType, e.AmountCents)

	newSpent := spent
	if status == models.StatusApproved {
		newSpent = spent + e.AmountCents
		if !expenseType.AllowOverBudget && expenseType.BudgetLimitCents > 0 && newSpent > expenseType.BudgetLimitCents {
			return result, ErrBudgetExceeded
		}
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO expenses (id, expense_type_id, amount_cents, expense_date, vendor,
		     receipt_number, approval_status, payment_method, tags, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+expenseColumns,
		uuid.New(), e.ExpenseTypeID, e.AmountCents, e.ExpenseDate, e.Vendor,
		e.ReceiptNumber, status, e.PaymentMethod, e.Tags, e.CreatedBy,
	)

	created, err := scanExpense(row)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, err
	}

	return CreateResult{
		Expense:        created,
		Type:           expenseType,
		PrevSpentCents: spent,
		NewSpentCents:  newSpent,
	}, nil
}

// Approve переводит ожидающий расход в approved. Повторное решение по уже
// рассмотренному расходу — ошибка ErrConflict; переход строго односторонний.
func (r *ExpenseRepository) Approve(ctx context.Context, expenseID, approverID uuid.UUID, now time.Time) (CreateResult, error) {
	return r.decide(ctx, expenseID, approverID, models.StatusApproved, nil, now)
}

// Reject переводит ожидающий расход в rejected с указанием причины.
func (r *ExpenseRepository) Reject(ctx context.Context, expenseID, approverID uuid.UUID, reason string, now time.Time) (CreateResult, error) {
	return r.decide(ctx, expenseID, approverID, models.StatusRejected, &reason, now)
}

func (r *ExpenseRepository) decide(ctx context.Context, expenseID, approverID uuid.UUID, status models.ApprovalStatus, reason *string, now time.Time) (CreateResult, error) {
	var result CreateResult

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var currentStatus models.ApprovalStatus
	var typeID uuid.UUID
	var amountCents int64

	err = tx.QueryRow(ctx,
		`SELECT approval_status, expense_type_id, amount_cents
		 FROM expenses
		 WHERE id = $1
		 FOR UPDATE`,
		expenseID,
	).Scan(&currentStatus, &typeID, &amountCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, ErrNotFound
		}
		return result, err
	}

	if currentStatus != models.StatusPending {
		return result, ErrConflict
	}

	expenseType, err := lockExpenseType(ctx, tx, typeID)
	if err != nil {
		return result, err
	}

	windowStart, windowEnd := policy.PeriodWindow(expenseType.BudgetPeriod, now)
	spent, err := sumApprovedInWindow(ctx, tx, expenseType.ID, windowStart, windowEnd)
	if err != nil {
		return result, err
	}

	newSpent := spent
	if status == models.StatusApproved {
		newSpent = spent + amountCents
		if !expenseType.AllowOverBudget && expenseType.BudgetLimitCents > 0 && newSpent > expenseType.BudgetLimitCents {
			return result, ErrBudgetExceeded
		}
	}

	row := tx.QueryRow(ctx,
		`UPDATE expenses
		 SET approval_status = $2,
		     approved_by = $3,
		     approved_at = NOW(),
		     rejection_reason = $4,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+expenseColumns,
		expenseID, status, approverID, reason,
	)

	decided, err := scanExpense(row)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, err
	}

	return CreateResult{
		Expense:        decided,
		Type:           expenseType,
		PrevSpentCents: spent,
		NewSpentCents:  newSpent,
	}, nil
}

// GetByID возвращает расход по идентификатору.
func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Expense, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE id = $1`,
		id,
	)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, ErrNotFound
		}
		return e, err
	}

	return e, nil
}

// List возвращает расходы по фильтру, новые первыми.
func (r *ExpenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		 FROM expenses
		 WHERE ($1::uuid IS NULL OR expense_type_id = $1)
		   AND ($2::text IS NULL OR approval_status = $2)
		   AND ($3::timestamptz IS NULL OR expense_date >= $3)
		   AND ($4::timestamptz IS NULL OR expense_date < $4)
		 ORDER BY expense_date DESC, created_at DESC
		 LIMIT $5`

	rows, err := r.db.Query(ctx, query, filter.TypeID, filter.Status, filter.From, filter.To, clampLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// Update изменяет еще не рассмотренный расход.
func (r *ExpenseRepository) Update(ctx context.Context, id uuid.UUID, amountCents int64, expenseDate time.Time, vendor string, receiptNumber *string, paymentMethod string, tags []string) (models.Expense, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE expenses
		 SET amount_cents = $2,
		     expense_date = $3,
		     vendor = $4,
		     receipt_number = $5,
		     payment_method = $6,
		     tags = $7,
		     updated_at = NOW()
		 WHERE id = $1 AND approval_status = 'pending'
		 RETURNING `+expenseColumns,
		id, amountCents, expenseDate, vendor, receiptNumber, paymentMethod, tags,
	)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or already decided.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return e, ErrConflict
			}
			return e, ErrNotFound
		}
		return e, err
	}

	return e, nil
}

// Delete удаляет расход.
func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SpentInWindow возвращает согласованные траты типа за окно периода.
func (r *ExpenseRepository) SpentInWindow(ctx context.Context, typeID uuid.UUID, start, end time.Time) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM expenses
		 WHERE expense_type_id = $1
		   AND approval_status = 'approved'
		   AND expense_date >= $2
		   AND expense_date < $3`,
		typeID, start, end,
	).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func lockExpenseType(ctx context.Context, tx pgx.Tx, typeID uuid.UUID) (models.ExpenseType, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+expenseTypeColumns+`
		 FROM expense_types
		 WHERE id = $1
		 FOR UPDATE`,
		typeID,
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

func sumApprovedInWindow(ctx context.Context, tx pgx.Tx, typeID uuid.UUID, start, end time.Time) (int64, error) {
	var total int64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM expenses
		 WHERE expense_type_id = $1
		   AND approval_status = 'approved'
		   AND expense_date >= $2
		   AND expense_date < $3`,
		typeID, start, end,
	).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func scanExpense(row pgx.Row) (models.Expense, error) {
	var e models.Expense

	err := row.Scan(
		&e.ID, &e.ExpenseTypeID, &e.AmountCents, &e.ExpenseDate, &e.Vendor,
		&e.ReceiptNumber, &e.ApprovalStatus, &e.ApprovedBy, &e.ApprovedAt, &e.RejectionReason,
		&e.PaymentMethod, &e.Tags, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}

	return e, nil
}

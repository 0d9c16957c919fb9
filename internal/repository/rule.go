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

type RuleRepository struct {
	db *pgxpool.Pool
}

// NewRuleRepository создает репозиторий правил типов расходов.
func NewRuleRepository(db *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `id, type_id, condition, action, priority, is_active, created_at, updated_at`

// Create добавляет правило к типу расходов.
func (r *RuleRepository) Create(ctx context.Context, rule models.ExpenseTypeRule) (models.ExpenseTypeRule, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO expense_type_rules (id, type_id, condition, action, priority, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+ruleColumns,
		uuid.New(), rule.TypeID, rule.Condition, rule.Action, rule.Priority, rule.IsActive,
	)

	created, err := scanRule(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return created, ErrNotFound
		}
		return created, err
	}

	return created, nil
}

// ListByType возвращает правила типа в порядке применения: priority = 1 —
// самое приоритетное.
func (r *RuleRepository) ListByType(ctx context.Context, typeID uuid.UUID) ([]models.ExpenseTypeRule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ruleColumns+`
		 FROM expense_type_rules
		 WHERE type_id = $1
		 ORDER BY priority ASC, created_at ASC`,
		typeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]models.ExpenseTypeRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}

// Update изменяет правило.
func (r *RuleRepository) Update(ctx context.Context, id uuid.UUID, condition, action string, priority int, isActive bool) (models.ExpenseTypeRule, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE expense_type_rules
		 SET condition = $2, action = $3, priority = $4, is_active = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+ruleColumns,
		id, condition, action, priority, isActive,
	)

	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rule, ErrNotFound
		}
		return rule, err
	}

	return rule, nil
}

// Delete удаляет правило.
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM expense_type_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanRule(row pgx.Row) (models.ExpenseTypeRule, error) {
	var rule models.ExpenseTypeRule

	err := row.Scan(
		&rule.ID, &rule.TypeID, &rule.Condition, &rule.Action,
		&rule.Priority, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return rule, err
	}

	return rule, nil
}

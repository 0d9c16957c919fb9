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

type IngredientRepository struct {
	db *pgxpool.Pool
}

// NewIngredientRepository создает репозиторий ингредиентов.
func NewIngredientRepository(db *pgxpool.Pool) *IngredientRepository {
	return &IngredientRepository{db: db}
}

const ingredientColumns = `id, name, category, unit, current_stock, minimum_stock,
	 maximum_stock, cost_per_unit_cents, supplier, lead_time_days, daily_usage,
	 is_perishable, expiry_date, storage_location, allergens, created_at, updated_at`

// Create добавляет ингредиент.
func (r *IngredientRepository) Create(ctx context.Context, ing models.Ingredient) (models.Ingredient, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO ingredients (id, name, category, unit, current_stock, minimum_stock,
		     maximum_stock, cost_per_unit_cents, supplier, lead_time_days, daily_usage,
		     is_perishable, expiry_date, storage_location, allergens)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING `+ingredientColumns,
		uuid.New(), ing.Name, ing.Category, ing.Unit, ing.CurrentStock, ing.MinimumStock,
		ing.MaximumStock, ing.CostPerUnitCents, ing.Supplier, ing.LeadTimeDays, ing.DailyUsage,
		ing.IsPerishable, ing.ExpiryDate, ing.StorageLocation, ing.Allergens,
	)

	created, err := scanIngredient(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return created, ErrConflict
		}
		return created, err
	}

	return created, nil
}

// GetByID возвращает ингредиент по идентификатору.
func (r *IngredientRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Ingredient, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+ingredientColumns+`
		 FROM ingredients
		 WHERE id = $1`,
		id,
	)

	ing, err := scanIngredient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ing, ErrNotFound
		}
		return ing, err
	}

	return ing, nil
}

// List возвращает ингредиенты с необязательным поиском по имени или
// поставщику и фильтром по категории.
func (r *IngredientRepository) List(ctx context.Context, search, category string) ([]models.Ingredient, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ingredientColumns+`
		 FROM ingredients
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR supplier ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR category = $2)
		 ORDER BY name ASC`,
		search, category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIngredients(rows)
}

// ListAll возвращает все ингредиенты для расчета оповещений и прогнозов.
func (r *IngredientRepository) ListAll(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+ingredientColumns+`
		 FROM ingredients
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIngredients(rows)
}

// Update изменяет справочные поля ингредиента. Текущий остаток меняется
// только через Adjust.
func (r *IngredientRepository) Update(ctx context.Context, ing models.Ingredient) (models.Ingredient, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE ingredients
		 SET name = $2,
		     category = $3,
		     unit = $4,
		     minimum_stock = $5,
		     maximum_stock = $6,
		     cost_per_unit_cents = $7,
		     supplier = $8,
		     lead_time_days = $9,
		     daily_usage = $10,
		     is_perishable = $11,
		     expiry_date = $12,
		     storage_location = $13,
		     allergens = $14,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+ingredientColumns,
		ing.ID, ing.Name, ing.Category, ing.Unit, ing.MinimumStock,
		ing.MaximumStock, ing.CostPerUnitCents, ing.Supplier, ing.LeadTimeDays, ing.DailyUsage,
		ing.IsPerishable, ing.ExpiryDate, ing.StorageLocation, ing.Allergens,
	)

	updated, err := scanIngredient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// Delete удаляет ингредиент вместе с журналом корректировок.
func (r *IngredientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM stock_adjustments WHERE ingredient_id = $1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// Adjust применяет подписанную дельту к остатку и пишет запись журнала в той
// же транзакции. Остаток ниже нуля не допускается.
func (r *IngredientRepository) Adjust(ctx context.Context, ingredientID uuid.UUID, adjType models.AdjustmentType, quantity float64, reference, note string, createdBy uuid.UUID) (models.StockAdjustment, models.Ingredient, error) {
	var adj models.StockAdjustment
	var ing models.Ingredient

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return adj, ing, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx,
		`SELECT `+ingredientColumns+`
		 FROM ingredients
		 WHERE id = $1
		 FOR UPDATE`,
		ingredientID,
	)

	ing, err = scanIngredient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return adj, ing, ErrNotFound
		}
		return adj, ing, err
	}

	previous := ing.CurrentStock
	newStock := previous + quantity
	if newStock < 0 {
		return adj, ing, ErrInvalid
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO stock_adjustments (id, ingredient_id, adjustment_type, quantity,
		     previous_stock, new_stock, reference, note, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, ingredient_id, adjustment_type, quantity, previous_stock,
		     new_stock, reference, note, created_by, created_at`,
		uuid.New(), ingredientID, adjType, quantity,
		previous, newStock, reference, note, createdBy,
	).Scan(
		&adj.ID, &adj.IngredientID, &adj.AdjustmentType, &adj.Quantity, &adj.PreviousStock,
		&adj.NewStock, &adj.Reference, &adj.Note, &adj.CreatedBy, &adj.CreatedAt,
	)
	if err != nil {
		return adj, ing, err
	}

	row = tx.QueryRow(ctx,
		`UPDATE ingredients
		 SET current_stock = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+ingredientColumns,
		ingredientID, newStock,
	)

	ing, err = scanIngredient(row)
	if err != nil {
		return adj, ing, err
	}

	if err := tx.Commit(ctx); err != nil {
		return adj, ing, err
	}

	return adj, ing, nil
}

// Adjustments возвращает журнал корректировок ингредиента, новые первыми.
func (r *IngredientRepository) Adjustments(ctx context.Context, ingredientID uuid.UUID, limit int) ([]models.StockAdjustment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, ingredient_id, adjustment_type, quantity, previous_stock,
		     new_stock, reference, note, created_by, created_at
		 FROM stock_adjustments
		 WHERE ingredient_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ingredientID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	adjustments := make([]models.StockAdjustment, 0)
	for rows.Next() {
		var adj models.StockAdjustment
		err := rows.Scan(
			&adj.ID, &adj.IngredientID, &adj.AdjustmentType, &adj.Quantity, &adj.PreviousStock,
			&adj.NewStock, &adj.Reference, &adj.Note, &adj.CreatedBy, &adj.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return adjustments, nil
}

func collectIngredients(rows pgx.Rows) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0)
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ingredients, nil
}

func scanIngredient(row pgx.Row) (models.Ingredient, error) {
	var ing models.Ingredient

	err := row.Scan(
		&ing.ID, &ing.Name, &ing.Category, &ing.Unit, &ing.CurrentStock, &ing.MinimumStock,
		&ing.MaximumStock, &ing.CostPerUnitCents, &ing.Supplier, &ing.LeadTimeDays, &ing.DailyUsage,
		&ing.IsPerishable, &ing.ExpiryDate, &ing.StorageLocation, &ing.Allergens, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return ing, err
	}

	return ing, nil
}

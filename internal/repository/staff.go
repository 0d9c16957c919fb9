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

type StaffRepository struct {
	db *pgxpool.Pool
}

// NewStaffRepository создает репозиторий персонала и прав доступа по модулям.
func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: db}
}

// StaffEntry — сотрудник вместе с данными учетной записи и правами.
type StaffEntry struct {
	models.StaffMember
	Email  string              `json:"email"`
	Name   *string             `json:"name,omitempty"`
	Access models.ModuleAccess `json:"module_access"`
}

// Create добавляет сотрудника с полным набором прав по модулям.
func (r *StaffRepository) Create(ctx context.Context, userID uuid.UUID, role string, access models.ModuleAccess) (StaffEntry, error) {
	var entry StaffEntry

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return entry, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO staff_members (id, user_id, role, is_active)
		 VALUES ($1, $2, $3, TRUE)
		 RETURNING id, user_id, role, is_active, created_at, updated_at`,
		uuid.New(), userID, role,
	).Scan(&entry.ID, &entry.UserID, &entry.Role, &entry.IsActive, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return entry, ErrConflict
			case "23503":
				return entry, ErrNotFound
			}
		}
		return entry, err
	}

	if err := replaceAccess(ctx, tx, entry.ID, access); err != nil {
		return entry, err
	}

	err = tx.QueryRow(ctx,
		`SELECT email, name FROM users WHERE id = $1`,
		userID,
	).Scan(&entry.Email, &entry.Name)
	if err != nil {
		return entry, err
	}

	if err := tx.Commit(ctx); err != nil {
		return entry, err
	}

	entry.Access = access
	return entry, nil
}

// List возвращает всех сотрудников с правами.
func (r *StaffRepository) List(ctx context.Context) ([]StaffEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.user_id, s.role, s.is_active, s.created_at, s.updated_at, u.email, u.name
		 FROM staff_members s
		 JOIN users u ON u.id = s.user_id
		 ORDER BY u.email ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]StaffEntry, 0)
	for rows.Next() {
		var entry StaffEntry
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Role, &entry.IsActive,
			&entry.CreatedAt, &entry.UpdatedAt, &entry.Email, &entry.Name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		access, err := r.accessFor(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Access = access
	}

	return entries, nil
}

// GetByUserID возвращает запись сотрудника по идентификатору пользователя.
func (r *StaffRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (StaffEntry, error) {
	var entry StaffEntry

	err := r.db.QueryRow(ctx,
		`SELECT s.id, s.user_id, s.role, s.is_active, s.created_at, s.updated_at, u.email, u.name
		 FROM staff_members s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.user_id = $1`,
		userID,
	).Scan(&entry.ID, &entry.UserID, &entry.Role, &entry.IsActive,
		&entry.CreatedAt, &entry.UpdatedAt, &entry.Email, &entry.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry, ErrNotFound
		}
		return entry, err
	}

	access, err := r.accessFor(ctx, entry.ID)
	if err != nil {
		return entry, err
	}
	entry.Access = access

	return entry, nil
}

// Update меняет роль, активность и права сотрудника одной транзакцией.
func (r *StaffRepository) Update(ctx context.Context, staffID uuid.UUID, role string, isActive bool, access models.ModuleAccess) (StaffEntry, error) {
	var entry StaffEntry

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return entry, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`UPDATE staff_members
		 SET role = $2, is_active = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, user_id, role, is_active, created_at, updated_at`,
		staffID, role, isActive,
	).Scan(&entry.ID, &entry.UserID, &entry.Role, &entry.IsActive, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry, ErrNotFound
		}
		return entry, err
	}

	if err := replaceAccess(ctx, tx, staffID, access); err != nil {
		return entry, err
	}

	err = tx.QueryRow(ctx,
		`SELECT email, name FROM users WHERE id = $1`,
		entry.UserID,
	).Scan(&entry.Email, &entry.Name)
	if err != nil {
		return entry, err
	}

	if err := tx.Commit(ctx); err != nil {
		return entry, err
	}

	entry.Access = access
	return entry, nil
}

// Delete удаляет сотрудника вместе с правами.
func (r *StaffRepository) Delete(ctx context.Context, staffID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM staff_module_access WHERE staff_id = $1`, staffID); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM staff_members WHERE id = $1`, staffID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// HasAccess проверяет, разрешен ли пользователю модуль. Неактивный сотрудник
// теряет все права.
func (r *StaffRepository) HasAccess(ctx context.Context, userID uuid.UUID, module models.Module) (bool, error) {
	var allowed bool

	err := r.db.QueryRow(ctx,
		`SELECT a.allowed
		 FROM staff_module_access a
		 JOIN staff_members s ON s.id = a.staff_id
		 WHERE s.user_id = $1 AND s.is_active AND a.module = $2`,
		userID, module,
	).Scan(&allowed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return allowed, nil
}

func (r *StaffRepository) accessFor(ctx context.Context, staffID uuid.UUID) (models.ModuleAccess, error) {
	rows, err := r.db.Query(ctx,
		`SELECT module, allowed FROM staff_module_access WHERE staff_id = $1`,
		staffID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	access := make(models.ModuleAccess, len(models.AllModules()))
	for _, m := range models.AllModules() {
		access[m] = false
	}

	for rows.Next() {
		var module models.Module
		var allowed bool
		if err := rows.Scan(&module, &allowed); err != nil {
			return nil, err
		}
		access[module] = allowed
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return access, nil
}

func replaceAccess(ctx context.Context, tx pgx.Tx, staffID uuid.UUID, access models.ModuleAccess) error {
	if _, err := tx.Exec(ctx, `DELETE FROM staff_module_access WHERE staff_id = $1`, staffID); err != nil {
		return err
	}

	for _, m := range models.AllModules() {
		_, err := tx.Exec(ctx,
			`INSERT INTO staff_module_access (staff_id, module, allowed) VALUES ($1, $2, $3)`,
			staffID, m, access[m],
		)
		if err != nil {
			return err
		}
	}

	return nil
}

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

type GatewayRepository struct {
	db *pgxpool.Pool
}

// NewGatewayRepository создает репозиторий настроек платежных шлюзов.
func NewGatewayRepository(db *pgxpool.Pool) *GatewayRepository {
	return &GatewayRepository{db: db}
}

const gatewayColumns = `id, provider, api_key, secret, webhook_url, environment,
	 min_transaction_cents, max_transaction_cents, is_active, created_at, updated_at`

// Create сохраняет конфигурацию шлюза. На пару provider + environment
// действует уникальное ограничение.
func (r *GatewayRepository) Create(ctx context.Context, g models.PaymentGatewayConfig) (models.PaymentGatewayConfig, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO payment_gateways (id, provider, api_key, secret, webhook_url,
		     environment, min_transaction_cents, max_transaction_cents, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+gatewayColumns,
		uuid.New(), g.Provider, g.APIKey, g.Secret, g.WebhookURL,
		g.Environment, g.MinTransactionCents, g.MaxTransactionCents, g.IsActive,
	)

	created, err := scanGateway(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return created, ErrConflict
		}
		return created, err
	}

	return created, nil
}

// GetByID возвращает конфигурацию шлюза.
func (r *GatewayRepository) GetByID(ctx context.Context, id uuid.UUID) (models.PaymentGatewayConfig, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+gatewayColumns+`
		 FROM payment_gateways
		 WHERE id = $1`,
		id,
	)

	g, err := scanGateway(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return g, ErrNotFound
		}
		return g, err
	}

	return g, nil
}

// List возвращает все конфигурации шлюзов.
func (r *GatewayRepository) List(ctx context.Context) ([]models.PaymentGatewayConfig, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+gatewayColumns+`
		 FROM payment_gateways
		 ORDER BY provider ASC, environment ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gateways := make([]models.PaymentGatewayConfig, 0)
	for rows.Next() {
		g, err := scanGateway(rows)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return gateways, nil
}

// Update изменяет конфигурацию шлюза. Пустой secret оставляет прежний.
func (r *GatewayRepository) Update(ctx context.Context, g models.PaymentGatewayConfig) (models.PaymentGatewayConfig, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE payment_gateways
		 SET api_key = $2,
		     secret = CASE WHEN $3 = '' THEN secret ELSE $3 END,
		     webhook_url = $4,
		     environment = $5,
		     min_transaction_cents = $6,
		     max_transaction_cents = $7,
		     is_active = $8,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+gatewayColumns,
		g.ID, g.APIKey, g.Secret, g.WebhookURL, g.Environment,
		g.MinTransactionCents, g.MaxTransactionCents, g.IsActive,
	)

	updated, err := scanGateway(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return updated, ErrNotFound
		}
		return updated, err
	}

	return updated, nil
}

// Delete удаляет конфигурацию шлюза.
func (r *GatewayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM payment_gateways WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanGateway(row pgx.Row) (models.PaymentGatewayConfig, error) {
	var g models.PaymentGatewayConfig

	err := row.Scan(
		&g.ID, &g.Provider, &g.APIKey, &g.Secret, &g.WebhookURL, &g.Environment,
		&g.MinTransactionCents, &g.MaxTransactionCents, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return g, err
	}

	return g, nil
}

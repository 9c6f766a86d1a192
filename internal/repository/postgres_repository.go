package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// ExportFilter narrows an export query. Filters combine with AND. The
// import-time bound applies only when both From and To are present.
type ExportFilter struct {
	StoreID *int64
	From    *time.Time
	To      *time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// EnsureDefaultUser seeds one login when the users table is empty. All
// other accounts are created out-of-band; there is no signup route.
func (r *Repository) EnsureDefaultUser(ctx context.Context, username, passwordHash string) error {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO users (username, password_hash) VALUES ($1, $2)
	`, username, passwordHash); err != nil {
		return fmt.Errorf("seed default user: %w", err)
	}
	return nil
}

func (r *Repository) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, deduction_rate::double precision
		FROM stores
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := make([]domain.Store, 0)
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(&store.ID, &store.Name, &store.DeductionRate); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, store)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}
	return stores, nil
}

func (r *Repository) GetStore(ctx context.Context, id int64) (*domain.Store, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, deduction_rate::double precision
		FROM stores
		WHERE id = $1
	`, id)

	var store domain.Store
	if err := row.Scan(&store.ID, &store.Name, &store.DeductionRate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get store %d: %w", id, err)
	}
	return &store, nil
}

// GetProductName resolves a barcode to a display name. Absence is not an
// error; the caller stores a NULL name.
func (r *Repository) GetProductName(ctx context.Context, barcode string) (*string, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT name FROM products WHERE barcode = $1 LIMIT 1
	`, barcode)

	var name string
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product name %q: %w", barcode, err)
	}
	return &name, nil
}

// InsertSalesRecords persists a whole import batch inside one
// transaction. Any failure rolls back every row.
func (r *Repository) InsertSalesRecords(ctx context.Context, records []domain.SalesRecord) (int, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("no records to insert")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, record := range records {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sales_records (
				barcode,
				product_name,
				quantity,
				unit_price,
				total_amount,
				deduction_rate,
				deduction_amount,
				settlement_amount,
				year_month,
				import_time,
				operator_id,
				store_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			record.Barcode,
			record.ProductName,
			record.Quantity,
			record.UnitPrice,
			record.TotalAmount,
			record.DeductionRate,
			record.DeductionAmount,
			record.SettlementAmount,
			record.YearMonth,
			record.ImportTime,
			record.OperatorID,
			record.StoreID,
		); err != nil {
			return 0, fmt.Errorf("insert sales record %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import tx: %w", err)
	}
	return len(records), nil
}

func (r *Repository) ExportSalesRows(ctx context.Context, filter ExportFilter) ([]domain.ExportRow, error) {
	base := `
		SELECT
			s.barcode,
			p.name,
			s.quantity,
			s.unit_price::double precision,
			s.total_amount::double precision,
			s.deduction_rate::double precision,
			s.deduction_amount::double precision,
			s.settlement_amount::double precision,
			s.year_month,
			s.import_time,
			st.name,
			u.username
		FROM sales_records s
		LEFT JOIN products p ON s.barcode = p.barcode
		LEFT JOIN stores st ON s.store_id = st.id
		LEFT JOIN users u ON s.operator_id = u.id
		WHERE 1=1
	`
	args := []any{}
	argIndex := 1
	if filter.StoreID != nil {
		base += fmt.Sprintf(" AND s.store_id = $%d", argIndex)
		args = append(args, *filter.StoreID)
		argIndex++
	}
	if filter.From != nil && filter.To != nil {
		base += fmt.Sprintf(" AND s.import_time BETWEEN $%d AND $%d", argIndex, argIndex+1)
		args = append(args, *filter.From, *filter.To)
		argIndex += 2
	}
	base += " ORDER BY s.id ASC"

	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, fmt.Errorf("export sales rows: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ExportRow, 0)
	for rows.Next() {
		var row domain.ExportRow
		if err := rows.Scan(
			&row.Barcode,
			&row.ProductName,
			&row.Quantity,
			&row.UnitPrice,
			&row.TotalAmount,
			&row.DeductionRate,
			&row.DeductionAmount,
			&row.SettlementAmount,
			&row.YearMonth,
			&row.ImportTime,
			&row.StoreName,
			&row.Operator,
		); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}
	return result, nil
}

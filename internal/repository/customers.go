package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/piutang-system/internal/model"
)

// ListCategories возвращает страницу категорий клиентов и их общее количество.
func (r *PostgresRepository) ListCategories(ctx context.Context, search string, limit, offset int) ([]model.CustomerCategory, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE c.keterangan ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customer_categories c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.keterangan, c.created_at,
		        (SELECT COUNT(*) FROM customers cu WHERE cu.kategori_id = c.id)
		 FROM customer_categories c`+where+`
		 ORDER BY c.created_at DESC`+pageClause(limit, offset),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var res []model.CustomerCategory
	for rows.Next() {
		var c model.CustomerCategory
		if err := rows.Scan(&c.ID, &c.Keterangan, &c.CreatedAt, &c.CustomerCount); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return res, total, nil
}

// GetCategory возвращает категорию по идентификатору.
func (r *PostgresRepository) GetCategory(ctx context.Context, id int64) (*model.CustomerCategory, error) {
	var c model.CustomerCategory
	err := r.pool.QueryRow(ctx,
		`SELECT c.id, c.keterangan, c.created_at,
		        (SELECT COUNT(*) FROM customers cu WHERE cu.kategori_id = c.id)
		 FROM customer_categories c WHERE c.id = $1`,
		id,
	).Scan(&c.ID, &c.Keterangan, &c.CreatedAt, &c.CustomerCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// CreateCategory создаёт категорию клиентов.
func (r *PostgresRepository) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.CustomerCategory, error) {
	c := model.CustomerCategory{Keterangan: in.Keterangan}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customer_categories (keterangan) VALUES ($1) RETURNING id, created_at`,
		in.Keterangan,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// UpdateCategory изменяет описание категории.
func (r *PostgresRepository) UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (*model.CustomerCategory, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE customer_categories SET keterangan = $2 WHERE id = $1`, id, in.Keterangan)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory удаляет категорию. Категорию с клиентами удалить нельзя.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customer_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", mapDeleteError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const customerColumns = `cu.id, cu.kode, cu.nama_customer, cu.kategori_id, cu.alamat_no_invoice,
	cu.telepon, cu.email, cu.total_piutang, cu.created_at, cu.updated_at,
	cc.id, cc.keterangan, cc.created_at,
	(SELECT COUNT(*) FROM invoices i WHERE i.customer_id = cu.id)`

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var (
		c   model.Customer
		cat model.CustomerCategory
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.CategoryID, &c.InvoiceAddress,
		&c.Phone, &c.Email, &c.TotalReceivable, &c.CreatedAt, &c.UpdatedAt,
		&cat.ID, &cat.Keterangan, &cat.CreatedAt,
		&c.InvoiceCount,
	)
	if err != nil {
		return nil, err
	}
	c.Category = &cat
	return &c, nil
}

// ListCustomers возвращает страницу клиентов и их общее количество.
func (r *PostgresRepository) ListCustomers(ctx context.Context, f model.CustomerFilter) ([]model.Customer, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf(`(cu.nama_customer ILIKE $%d OR cu.kode ILIKE $%d)`, len(args), len(args)))
	}
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf(`cu.kategori_id = $%d`, len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers cu`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+`
		 FROM customers cu JOIN customer_categories cc ON cc.id = cu.kategori_id`+where+`
		 ORDER BY cu.created_at DESC`+pageClause(f.Limit, f.Offset),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var res []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		res = append(res, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return res, total, nil
}

// GetCustomer возвращает клиента по идентификатору.
func (r *PostgresRepository) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+`
		 FROM customers cu JOIN customer_categories cc ON cc.id = cu.kategori_id
		 WHERE cu.id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// CreateCustomer создаёт клиента с нулевой задолженностью.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (kode, nama_customer, kategori_id, alamat_no_invoice, telepon, email)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		in.Code, in.Name, in.CategoryID, in.InvoiceAddress, in.Phone, in.Email,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", mapConstraintError(err))
	}
	return r.GetCustomer(ctx, id)
}

// UpdateCustomer изменяет данные клиента. Задолженность не изменяется.
func (r *PostgresRepository) UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers
		 SET kode = $2, nama_customer = $3, kategori_id = $4, alamat_no_invoice = $5,
		     telepon = $6, email = $7, updated_at = NOW()
		 WHERE id = $1`,
		id, in.Code, in.Name, in.CategoryID, in.InvoiceAddress, in.Phone, in.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", mapConstraintError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetCustomer(ctx, id)
}

// DeleteCustomer удаляет клиента. Клиента со счетами удалить нельзя.
func (r *PostgresRepository) DeleteCustomer(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", mapDeleteError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func adjustReceivable(ctx context.Context, tx pgx.Tx, customerID, delta int64) error {
	if delta == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx,
		`UPDATE customers SET total_piutang = total_piutang + $2, updated_at = NOW() WHERE id = $1`,
		customerID, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust receivable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("adjust receivable: %w", ErrNotFound)
	}
	return nil
}

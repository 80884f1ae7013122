package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/piutang-system/internal/aging"
	"github.com/mmeshcher/piutang-system/internal/model"
)

const invoiceColumns = `i.id, i.tanggal, i.termin, i.jatuh_tempo, i.no_invoice, i.customer_id,
	i.kategori, i.keterangan_transaksi, i.nilai_invoice, i.status_pembayaran, i.status_invoice,
	i.created_at, i.updated_at, cu.kode, cu.nama_customer, cu.kategori_id`

func scanInvoice(row pgx.Row) (*model.Invoice, error) {
	var (
		inv    model.Invoice
		cust   model.Customer
		status string
	)
	err := row.Scan(
		&inv.ID, &inv.Date, &inv.TermDays, &inv.DueDate, &inv.Number, &inv.CustomerID,
		&inv.Category, &inv.Description, &inv.Value, &status, &inv.InvoiceStatus,
		&inv.CreatedAt, &inv.UpdatedAt, &cust.Code, &cust.Name, &cust.CategoryID,
	)
	if err != nil {
		return nil, err
	}
	inv.PaymentStatus = model.PaymentStatus(status)
	cust.ID = inv.CustomerID
	inv.Customer = &cust
	inv.Payments = []model.Payment{}
	return &inv, nil
}

func invoiceWhere(f model.InvoiceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(i.no_invoice ILIKE $%d OR cu.nama_customer ILIKE $%d OR cu.kode ILIKE $%d)`, n, n, n))
	}
	if f.CustomerID > 0 {
		args = append(args, f.CustomerID)
		conds = append(conds, fmt.Sprintf(`i.customer_id = $%d`, len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf(`i.status_pembayaran = ANY($%d)`, len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListInvoices возвращает страницу счетов вместе с оплатами и общее количество счетов.
func (r *PostgresRepository) ListInvoices(ctx context.Context, f model.InvoiceFilter) ([]model.Invoice, int, error) {
	where, args := invoiceWhere(f)
	order := ` ORDER BY i.created_at DESC`
	if f.OrderByDueDate {
		order = ` ORDER BY i.jatuh_tempo ASC, i.id ASC`
	}

	var (
		invoices []model.Invoice
		total    int
	)
	err := r.withRetry(ctx, func() error {
		invoices, total = nil, 0

		if err := r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM invoices i JOIN customers cu ON cu.id = i.customer_id`+where,
			args...,
		).Scan(&total); err != nil {
			return fmt.Errorf("count invoices: %w", err)
		}

		rows, err := r.pool.Query(ctx,
			`SELECT `+invoiceColumns+`
			 FROM invoices i JOIN customers cu ON cu.id = i.customer_id`+where+order+pageClause(f.Limit, f.Offset),
			args...,
		)
		if err != nil {
			return fmt.Errorf("select invoices: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			inv, err := scanInvoice(rows)
			if err != nil {
				return fmt.Errorf("scan invoice: %w", err)
			}
			invoices = append(invoices, *inv)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		return r.attachPayments(ctx, invoices)
	})
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *PostgresRepository) attachPayments(ctx context.Context, invoices []model.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(invoices))
	index := make(map[int64]int, len(invoices))
	for i, inv := range invoices {
		ids = append(ids, inv.ID)
		index[inv.ID] = i
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, tanggal, invoice_id, keterangan, penerimaan, created_at
		 FROM payments WHERE invoice_id = ANY($1)
		 ORDER BY tanggal, id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.Date, &p.InvoiceID, &p.Description, &p.Amount, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		if i, ok := index[p.InvoiceID]; ok {
			invoices[i].Payments = append(invoices[i].Payments, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	return nil
}

// GetInvoice возвращает счёт вместе с клиентом и оплатами.
func (r *PostgresRepository) GetInvoice(ctx context.Context, id int64) (*model.Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+`
		 FROM invoices i JOIN customers cu ON cu.id = i.customer_id
		 WHERE i.id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	list := []model.Invoice{*inv}
	if err := r.attachPayments(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// CreateInvoice создаёт счёт и увеличивает задолженность клиента на его сумму.
func (r *PostgresRepository) CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error) {
	status := in.PaymentStatus
	if status == "" {
		status = model.PaymentStatusUnpaid
	}

	var id int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO invoices (tanggal, termin, jatuh_tempo, no_invoice, customer_id, kategori,
			                       keterangan_transaksi, nilai_invoice, status_pembayaran, status_invoice)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
			in.Date, in.TermDays, in.DueDate, in.Number, in.CustomerID, in.Category,
			in.Description, in.Value, string(status), in.InvoiceStatus,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", mapConstraintError(err))
		}
		return adjustReceivable(ctx, tx, in.CustomerID, in.Value)
	})
	if err != nil {
		return nil, err
	}
	return r.GetInvoice(ctx, id)
}

// UpdateInvoice изменяет счёт и переносит разницу суммы в задолженность клиентов.
// Если статус оплаты не передан, он пересчитывается по новой сумме и оплатам.
func (r *PostgresRepository) UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error) {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		oldCustomerID, oldValue, paid, err := lockInvoiceLedger(ctx, tx, id)
		if err != nil {
			return err
		}

		status := resolveInvoiceStatus(in.PaymentStatus, in.Value, paid)

		_, err = tx.Exec(ctx,
			`UPDATE invoices
			 SET tanggal = $2, termin = $3, jatuh_tempo = $4, no_invoice = $5, customer_id = $6,
			     kategori = $7, keterangan_transaksi = $8, nilai_invoice = $9,
			     status_pembayaran = $10, status_invoice = $11, updated_at = NOW()
			 WHERE id = $1`,
			id, in.Date, in.TermDays, in.DueDate, in.Number, in.CustomerID,
			in.Category, in.Description, in.Value, string(status), in.InvoiceStatus,
		)
		if err != nil {
			return fmt.Errorf("update invoice: %w", mapConstraintError(err))
		}

		if oldCustomerID == in.CustomerID {
			return adjustReceivable(ctx, tx, in.CustomerID, in.Value-oldValue)
		}
		if err := adjustReceivable(ctx, tx, oldCustomerID, -oldValue); err != nil {
			return err
		}
		return adjustReceivable(ctx, tx, in.CustomerID, in.Value)
	})
	if err != nil {
		return nil, err
	}
	return r.GetInvoice(ctx, id)
}

// resolveInvoiceStatus возвращает явно переданный статус или статус, вычисленный по оплатам.
func resolveInvoiceStatus(explicit model.PaymentStatus, value, paid int64) model.PaymentStatus {
	if explicit != "" {
		return explicit
	}
	return aging.StatusFromLedger(value, paid)
}

// DeleteInvoice удаляет счёт без оплат и уменьшает задолженность клиента.
func (r *PostgresRepository) DeleteInvoice(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var (
			customerID int64
			value      int64
		)
		err := tx.QueryRow(ctx,
			`DELETE FROM invoices WHERE id = $1 RETURNING customer_id, nilai_invoice`,
			id,
		).Scan(&customerID, &value)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("delete invoice: %w", mapDeleteError(err))
		}
		return adjustReceivable(ctx, tx, customerID, -value)
	})
}

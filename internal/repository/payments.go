package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/piutang-system/internal/aging"
	"github.com/mmeshcher/piutang-system/internal/model"
)

const paymentColumns = `p.id, p.tanggal, p.invoice_id, p.keterangan, p.penerimaan, p.created_at,
	i.no_invoice, cu.nama_customer`

const paymentFrom = ` FROM payments p
	JOIN invoices i ON i.id = p.invoice_id
	JOIN customers cu ON cu.id = i.customer_id`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.Date, &p.InvoiceID, &p.Description, &p.Amount, &p.CreatedAt,
		&p.InvoiceNumber, &p.CustomerName)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPayments возвращает страницу оплат и их общее количество.
func (r *PostgresRepository) ListPayments(ctx context.Context, f model.PaymentFilter) ([]model.Payment, int, error) {
	where := ""
	args := []any{}
	if f.InvoiceID > 0 {
		where = ` WHERE p.invoice_id = $1`
		args = append(args, f.InvoiceID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+paymentFrom+where+`
		 ORDER BY p.tanggal DESC, p.id DESC`+pageClause(f.Limit, f.Offset),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	var res []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment: %w", err)
		}
		res = append(res, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return res, total, nil
}

// GetPayment возвращает оплату по идентификатору.
func (r *PostgresRepository) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+paymentFrom+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// lockInvoiceLedger блокирует счёт и возвращает его сумму, клиента и сумму оплат по нему.
func lockInvoiceLedger(ctx context.Context, tx pgx.Tx, invoiceID int64) (customerID, value, paid int64, err error) {
	err = tx.QueryRow(ctx,
		`SELECT customer_id, nilai_invoice FROM invoices WHERE id = $1 FOR UPDATE`,
		invoiceID,
	).Scan(&customerID, &value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, 0, ErrNotFound
		}
		return 0, 0, 0, fmt.Errorf("lock invoice: %w", err)
	}

	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(penerimaan), 0) FROM payments WHERE invoice_id = $1`,
		invoiceID,
	).Scan(&paid)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("sum payments: %w", err)
	}

	return customerID, value, paid, nil
}

func setInvoiceStatus(ctx context.Context, tx pgx.Tx, invoiceID int64, status model.PaymentStatus) error {
	_, err := tx.Exec(ctx,
		`UPDATE invoices SET status_pembayaran = $2, updated_at = NOW() WHERE id = $1`,
		invoiceID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return nil
}

// CreatePayment регистрирует оплату, пересчитывает статус счёта и уменьшает задолженность клиента.
// Оплата сверх остатка по счёту отклоняется с ErrPaymentExceedsBalance.
func (r *PostgresRepository) CreatePayment(ctx context.Context, in model.PaymentInput) (*model.Payment, error) {
	var id int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		customerID, value, paid, err := lockInvoiceLedger(ctx, tx, in.InvoiceID)
		if err != nil {
			return err
		}
		if in.Amount > value-paid {
			return fmt.Errorf("%w: remaining %d", ErrPaymentExceedsBalance, value-paid)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO payments (tanggal, invoice_id, keterangan, penerimaan)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			in.Date, in.InvoiceID, in.Description, in.Amount,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert payment: %w", mapConstraintError(err))
		}

		if err := setInvoiceStatus(ctx, tx, in.InvoiceID, aging.StatusFromLedger(value, paid+in.Amount)); err != nil {
			return err
		}
		return adjustReceivable(ctx, tx, customerID, -in.Amount)
	})
	if err != nil {
		return nil, err
	}
	return r.GetPayment(ctx, id)
}

// DeletePayment удаляет оплату, пересчитывает статус счёта и возвращает сумму в задолженность клиента.
func (r *PostgresRepository) DeletePayment(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var (
			invoiceID int64
			amount    int64
		)
		err := tx.QueryRow(ctx,
			`SELECT invoice_id, penerimaan FROM payments WHERE id = $1`,
			id,
		).Scan(&invoiceID, &amount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("get payment: %w", err)
		}

		customerID, value, paid, err := lockInvoiceLedger(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}

		if err := setInvoiceStatus(ctx, tx, invoiceID, aging.StatusFromLedger(value, paid-amount)); err != nil {
			return err
		}
		return adjustReceivable(ctx, tx, customerID, amount)
	})
}

// InvoiceLedger содержит сумму счёта, сохранённый статус и фактическую сумму оплат.
type InvoiceLedger struct {
	InvoiceID     int64
	Number        string
	Value         int64
	Paid          int64
	PaymentStatus model.PaymentStatus
}

// ListInvoiceLedgers возвращает сумму оплат по каждому счёту для сверки статусов.
func (r *PostgresRepository) ListInvoiceLedgers(ctx context.Context) ([]InvoiceLedger, error) {
	var res []InvoiceLedger
	err := r.withRetry(ctx, func() error {
		res = nil
		rows, err := r.pool.Query(ctx,
			`SELECT i.id, i.no_invoice, i.nilai_invoice, i.status_pembayaran, COALESCE(SUM(p.penerimaan), 0)
			 FROM invoices i LEFT JOIN payments p ON p.invoice_id = i.id
			 GROUP BY i.id
			 ORDER BY i.id`,
		)
		if err != nil {
			return fmt.Errorf("select ledgers: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				l      InvoiceLedger
				status string
			)
			if err := rows.Scan(&l.InvoiceID, &l.Number, &l.Value, &status, &l.Paid); err != nil {
				return fmt.Errorf("scan ledger: %w", err)
			}
			l.PaymentStatus = model.PaymentStatus(status)
			res = append(res, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

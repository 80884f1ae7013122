package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/piutang-system/internal/model"
)

// ListCompanyProfiles возвращает все профили компании.
func (r *PostgresRepository) ListCompanyProfiles(ctx context.Context) ([]model.CompanyProfile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, nama_usaha, alamat_usaha, nomor_telepon, created_at, updated_at
		 FROM company_profiles ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select company profiles: %w", err)
	}
	defer rows.Close()

	var res []model.CompanyProfile
	for rows.Next() {
		var p model.CompanyProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company profile: %w", err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// GetCompanyProfile возвращает профиль компании по идентификатору.
func (r *PostgresRepository) GetCompanyProfile(ctx context.Context, id int64) (*model.CompanyProfile, error) {
	var p model.CompanyProfile
	err := r.pool.QueryRow(ctx,
		`SELECT id, nama_usaha, alamat_usaha, nomor_telepon, created_at, updated_at
		 FROM company_profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Address, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get company profile: %w", err)
	}
	return &p, nil
}

// CreateCompanyProfile создаёт профиль компании.
func (r *PostgresRepository) CreateCompanyProfile(ctx context.Context, in model.CompanyProfileInput) (*model.CompanyProfile, error) {
	p := model.CompanyProfile{Name: in.Name, Address: in.Address, Phone: in.Phone}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO company_profiles (nama_usaha, alamat_usaha, nomor_telepon)
		 VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		in.Name, in.Address, in.Phone,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create company profile: %w", err)
	}
	return &p, nil
}

// UpdateCompanyProfile изменяет профиль компании.
func (r *PostgresRepository) UpdateCompanyProfile(ctx context.Context, id int64, in model.CompanyProfileInput) (*model.CompanyProfile, error) {
	p := model.CompanyProfile{ID: id, Name: in.Name, Address: in.Address, Phone: in.Phone}
	err := r.pool.QueryRow(ctx,
		`UPDATE company_profiles
		 SET nama_usaha = $2, alamat_usaha = $3, nomor_telepon = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		id, in.Name, in.Address, in.Phone,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update company profile: %w", err)
	}
	return &p, nil
}

// DeleteCompanyProfile удаляет профиль компании.
func (r *PostgresRepository) DeleteCompanyProfile(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM company_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mmeshcher/piutang-system/internal/aging"
	"github.com/mmeshcher/piutang-system/internal/model"
	"github.com/mmeshcher/piutang-system/internal/repository"
)

// ListCategories возвращает страницу категорий клиентов.
func (s *Service) ListCategories(ctx context.Context, search string, limit, offset int) ([]model.CustomerCategory, int, error) {
	return s.repo.ListCategories(ctx, search, limit, offset)
}

// GetCategory возвращает категорию клиентов.
func (s *Service) GetCategory(ctx context.Context, id int64) (*model.CustomerCategory, error) {
	return s.repo.GetCategory(ctx, id)
}

// CreateCategory создаёт категорию клиентов.
func (s *Service) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.CustomerCategory, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	return s.repo.CreateCategory(ctx, in)
}

// UpdateCategory изменяет категорию клиентов.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (*model.CustomerCategory, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateCategory(ctx, id, in)
}

// DeleteCategory удаляет категорию клиентов.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

// ListCustomers возвращает страницу клиентов.
func (s *Service) ListCustomers(ctx context.Context, f model.CustomerFilter) ([]model.Customer, int, error) {
	return s.repo.ListCustomers(ctx, f)
}

// GetCustomer возвращает клиента.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// CreateCustomer создаёт клиента.
func (s *Service) CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	return s.repo.CreateCustomer(ctx, in)
}

// UpdateCustomer изменяет данные клиента.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	c, err := s.repo.UpdateCustomer(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return c, nil
}

// DeleteCustomer удаляет клиента.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.repo.DeleteCustomer(ctx, id)
}

// ListInvoices возвращает страницу счетов с расчётными остатками на дату referenceDate.
func (s *Service) ListInvoices(ctx context.Context, f model.InvoiceFilter, referenceDate time.Time) ([]aging.LedgerView, int, error) {
	invoices, total, err := s.repo.ListInvoices(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	views := make([]aging.LedgerView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, aging.View(inv, referenceDate))
	}
	return views, total, nil
}

// GetInvoice возвращает счёт с расчётными остатками на дату referenceDate.
func (s *Service) GetInvoice(ctx context.Context, id int64, referenceDate time.Time) (*aging.LedgerView, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	v := aging.View(*inv, referenceDate)
	return &v, nil
}

// CreateInvoice создаёт счёт.
func (s *Service) CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	inv, err := s.repo.CreateInvoice(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return inv, nil
}

// UpdateInvoice изменяет счёт.
func (s *Service) UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	inv, err := s.repo.UpdateInvoice(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return inv, nil
}

// DeleteInvoice удаляет счёт.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

// ListPayments возвращает страницу оплат.
func (s *Service) ListPayments(ctx context.Context, f model.PaymentFilter) ([]model.Payment, int, error) {
	return s.repo.ListPayments(ctx, f)
}

// GetPayment возвращает оплату.
func (s *Service) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

// CreatePayment регистрирует оплату по счёту.
func (s *Service) CreatePayment(ctx context.Context, in model.PaymentInput) (*model.Payment, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	p, err := s.repo.CreatePayment(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return p, nil
}

// DeletePayment удаляет оплату.
func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

// GetCompanyProfile возвращает профиль компании.
func (s *Service) GetCompanyProfile(ctx context.Context, id int64) (*model.CompanyProfile, error) {
	return s.repo.GetCompanyProfile(ctx, id)
}

// CompanyProfile возвращает профиль компании или nil, если он ещё не создан.
func (s *Service) CompanyProfile(ctx context.Context) (*model.CompanyProfile, error) {
	profiles, err := s.repo.ListCompanyProfiles(ctx)
	if err != nil || len(profiles) == 0 {
		return nil, err
	}
	return &profiles[0], nil
}

// CreateCompanyProfile создаёт профиль компании. Профиль может быть только один.
func (s *Service) CreateCompanyProfile(ctx context.Context, in model.CompanyProfileInput) (*model.CompanyProfile, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	existing, err := s.CompanyProfile(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: company profile already exists", repository.ErrDuplicate)
	}
	return s.repo.CreateCompanyProfile(ctx, in)
}

// UpdateCompanyProfile изменяет профиль компании.
func (s *Service) UpdateCompanyProfile(ctx context.Context, id int64, in model.CompanyProfileInput) (*model.CompanyProfile, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	return s.repo.UpdateCompanyProfile(ctx, id, in)
}

// DeleteCompanyProfile удаляет профиль компании.
func (s *Service) DeleteCompanyProfile(ctx context.Context, id int64) error {
	return s.repo.DeleteCompanyProfile(ctx, id)
}

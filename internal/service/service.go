// Package service реализует бизнес-логику сервиса учёта дебиторской задолженности.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/piutang-system/internal/cache"
	"github.com/mmeshcher/piutang-system/internal/metrics"
	"github.com/mmeshcher/piutang-system/internal/model"
	"github.com/mmeshcher/piutang-system/internal/repository"
	"github.com/mmeshcher/piutang-system/internal/validation"
)

var (
	// ErrInvalidCredentials возвращается при неверном email или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation возвращается, если входные данные не прошли проверку.
	ErrValidation = errors.New("validation failed")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, email, name string, passwordHash []byte) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	ListCategories(ctx context.Context, search string, limit, offset int) ([]model.CustomerCategory, int, error)
	GetCategory(ctx context.Context, id int64) (*model.CustomerCategory, error)
	CreateCategory(ctx context.Context, in model.CategoryInput) (*model.CustomerCategory, error)
	UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (*model.CustomerCategory, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListCustomers(ctx context.Context, f model.CustomerFilter) ([]model.Customer, int, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	CreateCustomer(ctx context.Context, in model.CustomerInput) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error

	ListInvoices(ctx context.Context, f model.InvoiceFilter) ([]model.Invoice, int, error)
	GetInvoice(ctx context.Context, id int64) (*model.Invoice, error)
	CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error

	ListPayments(ctx context.Context, f model.PaymentFilter) ([]model.Payment, int, error)
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	CreatePayment(ctx context.Context, in model.PaymentInput) (*model.Payment, error)
	DeletePayment(ctx context.Context, id int64) error

	ListCompanyProfiles(ctx context.Context) ([]model.CompanyProfile, error)
	GetCompanyProfile(ctx context.Context, id int64) (*model.CompanyProfile, error)
	CreateCompanyProfile(ctx context.Context, in model.CompanyProfileInput) (*model.CompanyProfile, error)
	UpdateCompanyProfile(ctx context.Context, id int64, in model.CompanyProfileInput) (*model.CompanyProfile, error)
	DeleteCompanyProfile(ctx context.Context, id int64) error

	CountEntities(ctx context.Context) (customers, invoices, payments int, err error)
	ListInvoiceLedgers(ctx context.Context) ([]repository.InvoiceLedger, error)
}

// Service содержит бизнес-логику сервиса учёта дебиторской задолженности.
type Service struct {
	repo      Repository
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    *zap.Logger
	validator *validation.Validator
	now       func() time.Time
}

// NewService создаёт сервис. Кэш и метрики могут быть nil.
func NewService(repo Repository, reportCache *cache.Cache, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		cache:     reportCache,
		metrics:   m,
		logger:    logger,
		validator: validation.New(),
		now:       time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

func (s *Service) validate(in any) error {
	if err := s.validator.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// RegisterUser регистрирует нового пользователя.
func (s *Service) RegisterUser(ctx context.Context, in model.RegisterInput) (int64, error) {
	if err := s.validate(in); err != nil {
		return 0, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.CreateUser(ctx, in.Email, in.Name, hashed)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AuthenticateUser проверяет email и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, in model.LoginInput) (int64, error) {
	if err := s.validate(in); err != nil {
		return 0, err
	}

	u, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)); err != nil {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

// invalidateReports сбрасывает кэш отчётов. Ошибка кэша не отменяет
// уже выполненную запись и только логируется.
func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

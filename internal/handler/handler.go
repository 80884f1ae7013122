// Package handler содержит HTTP-обработчики API сервиса учёта дебиторской задолженности.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/piutang-system/internal/aging"
	"github.com/mmeshcher/piutang-system/internal/metrics"
	"github.com/mmeshcher/piutang-system/internal/middleware"
	"github.com/mmeshcher/piutang-system/internal/model"
	"github.com/mmeshcher/piutang-system/internal/repository"
	"github.com/mmeshcher/piutang-system/internal/service"
	"github.com/mmeshcher/piutang-system/internal/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, in model.RegisterInput) (int64, error)
	AuthenticateUser(ctx context.Context, in model.LoginInput) (int64, error)

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

	ListInvoices(ctx context.Context, f model.InvoiceFilter, referenceDate time.Time) ([]aging.LedgerView, int, error)
	GetInvoice(ctx context.Context, id int64, referenceDate time.Time) (*aging.LedgerView, error)
	CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error

	ListPayments(ctx context.Context, f model.PaymentFilter) ([]model.Payment, int, error)
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	CreatePayment(ctx context.Context, in model.PaymentInput) (*model.Payment, error)
	DeletePayment(ctx context.Context, id int64) error

	CompanyProfile(ctx context.Context) (*model.CompanyProfile, error)
	GetCompanyProfile(ctx context.Context, id int64) (*model.CompanyProfile, error)
	CreateCompanyProfile(ctx context.Context, in model.CompanyProfileInput) (*model.CompanyProfile, error)
	UpdateCompanyProfile(ctx context.Context, id int64, in model.CompanyProfileInput) (*model.CompanyProfile, error)
	DeleteCompanyProfile(ctx context.Context, id int64) error

	AgingSummary(ctx context.Context, q service.AgingQuery) (*aging.SummaryReport, error)
	AgingAnalytics(ctx context.Context, q service.AgingQuery) (*aging.AnalyticsReport, error)
	AgingDetailed(ctx context.Context, q service.AgingQuery) (*aging.DetailedReport, error)
	AgingList(ctx context.Context, q service.AgingQuery) ([]aging.AgedInvoice, error)
	Dashboard(ctx context.Context, referenceDate time.Time) (*service.Dashboard, error)
}

// Handler реализует HTTP-обработчики API.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
	reportLimit    int
	now            func() time.Time
}

// NewHandler создаёт обработчик HTTP-запросов. reportLimit задаёт число запросов
// отчётов в минуту с одного клиента, при reportLimit <= 0 ограничение не применяется.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, m *metrics.Metrics, reportLimit int) *Handler {
	h := &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		metrics:        m,
		reportLimit:    reportLimit,
		now:            time.Now,
	}
	auth.OnDenied(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	})
	return h
}

type errorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail переводит ошибку сервиса в HTTP-ответ. Неизвестные ошибки логируются.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Data tidak valid", Details: verr.Fields})
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "Data tidak valid")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Email atau password salah")
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Data tidak ditemukan")
	case errors.Is(err, repository.ErrUserExists):
		writeError(w, http.StatusConflict, "Email sudah terdaftar")
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "Data sudah ada")
	case errors.Is(err, repository.ErrInUse):
		writeError(w, http.StatusConflict, "Data masih digunakan oleh data lain")
	case errors.Is(err, repository.ErrPaymentExceedsBalance):
		writeError(w, http.StatusUnprocessableEntity, "Jumlah pembayaran melebihi sisa tagihan")
	default:
		h.logger.Error(op+" error", zap.Error(err), zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, dest any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParams читает page и limit из запроса. Некорректные значения заменяются значениями по умолчанию.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = defaultPage, defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxLimit)
	}
	return page, limit
}

// optionalID читает необязательный числовой идентификатор. Пустое значение и "all" дают 0.
func optionalID(raw string) (int64, bool) {
	if raw == "" || raw == "all" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseDate принимает дату в формате YYYY-MM-DD (полночь UTC) или RFC3339.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// parseOptionalDate возвращает нулевое время для пустой строки.
func parseOptionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseDate(raw)
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "register user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": userID})
}

// Login выполняет аутентификацию пользователя и устанавливает cookie сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "login user")
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	writeJSON(w, http.StatusOK, map[string]int64{"id": userID})
}

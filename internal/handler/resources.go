package handler

import (
	"net/http"
	"strings"

	"github.com/mmeshcher/piutang-system/internal/model"
)

type categoriesResponse struct {
	Categories []model.CustomerCategory `json:"categories"`
	Pagination model.Pagination         `json:"pagination"`
}

type customersResponse struct {
	Customers  []model.Customer `json:"customers"`
	Pagination model.Pagination `json:"pagination"`
}

type paymentsResponse struct {
	Payments   []model.Payment  `json:"payments"`
	Pagination model.Pagination `json:"pagination"`
}

// ListCategories возвращает страницу категорий клиентов.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	items, total, err := h.service.ListCategories(r.Context(), search, limit, (page-1)*limit)
	if err != nil {
		h.fail(w, r, err, "list categories")
		return
	}

	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: nonNil(items),
		Pagination: model.NewPagination(total, page, limit),
	})
}

// GetCategory возвращает категорию клиентов.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	c, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "get category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCategory создаёт категорию клиентов.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in model.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	c, err := h.service.CreateCategory(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "create category")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory изменяет категорию клиентов.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}
	var in model.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	c, err := h.service.UpdateCategory(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err, "update category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory удаляет категорию клиентов.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.fail(w, r, err, "delete category")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Kategori customer berhasil dihapus"})
}

// ListCustomers возвращает страницу клиентов.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	categoryID, ok := optionalID(q.Get("kategoriId"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Kategori tidak valid")
		return
	}

	items, total, err := h.service.ListCustomers(r.Context(), model.CustomerFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: categoryID,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		h.fail(w, r, err, "list customers")
		return
	}

	writeJSON(w, http.StatusOK, customersResponse{
		Customers:  nonNil(items),
		Pagination: model.NewPagination(total, page, limit),
	})
}

// GetCustomer возвращает клиента.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	c, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "get customer")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCustomer создаёт клиента.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in model.CustomerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	c, err := h.service.CreateCustomer(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "create customer")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCustomer изменяет данные клиента.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}
	var in model.CustomerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	c, err := h.service.UpdateCustomer(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err, "update customer")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCustomer удаляет клиента.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		h.fail(w, r, err, "delete customer")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Customer berhasil dihapus"})
}

type paymentRequest struct {
	Date        string `json:"tanggal"`
	InvoiceID   int64  `json:"invoiceId"`
	Description string `json:"keterangan"`
	Amount      int64  `json:"penerimaan"`
}

// ListPayments возвращает страницу оплат, при необходимости по одному счёту.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	invoiceID, ok := optionalID(r.URL.Query().Get("invoiceId"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invoice tidak valid")
		return
	}

	items, total, err := h.service.ListPayments(r.Context(), model.PaymentFilter{
		InvoiceID: invoiceID,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	})
	if err != nil {
		h.fail(w, r, err, "list payments")
		return
	}

	writeJSON(w, http.StatusOK, paymentsResponse{
		Payments:   nonNil(items),
		Pagination: model.NewPagination(total, page, limit),
	})
}

// GetPayment возвращает оплату.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	p, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "get payment")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePayment регистрирует оплату по счёту.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Format tanggal tidak valid")
		return
	}

	p, err := h.service.CreatePayment(r.Context(), model.PaymentInput{
		Date:        date,
		InvoiceID:   req.InvoiceID,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		h.fail(w, r, err, "create payment")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// DeletePayment удаляет оплату.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	if err := h.service.DeletePayment(r.Context(), id); err != nil {
		h.fail(w, r, err, "delete payment")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Pembayaran berhasil dihapus"})
}

type profileResponse struct {
	Profile *model.CompanyProfile `json:"profile"`
}

// GetCurrentCompanyProfile возвращает профиль компании или null, если он не создан.
func (h *Handler) GetCurrentCompanyProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.CompanyProfile(r.Context())
	if err != nil {
		h.fail(w, r, err, "get company profile")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}

// GetCompanyProfile возвращает профиль компании по идентификатору.
func (h *Handler) GetCompanyProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	p, err := h.service.GetCompanyProfile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "get company profile")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}

// CreateCompanyProfile создаёт профиль компании.
func (h *Handler) CreateCompanyProfile(w http.ResponseWriter, r *http.Request) {
	var in model.CompanyProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	p, err := h.service.CreateCompanyProfile(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "create company profile")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateCompanyProfile изменяет профиль компании.
func (h *Handler) UpdateCompanyProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}
	var in model.CompanyProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}

	p, err := h.service.UpdateCompanyProfile(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err, "update company profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteCompanyProfile удаляет профиль компании.
func (h *Handler) DeleteCompanyProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	if err := h.service.DeleteCompanyProfile(r.Context(), id); err != nil {
		h.fail(w, r, err, "delete company profile")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Profil perusahaan berhasil dihapus"})
}

// nonNil заменяет nil-срез пустым, чтобы в JSON был [] вместо null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

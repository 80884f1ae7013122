package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/piutang-system/internal/aging"
	"github.com/mmeshcher/piutang-system/internal/model"
	"github.com/mmeshcher/piutang-system/internal/service"
)

type invoiceRequest struct {
	Date          string `json:"tanggal"`
	TermDays      int    `json:"termin"`
	DueDate       string `json:"jatuhTempo"`
	Number        string `json:"noInvoice"`
	CustomerID    int64  `json:"customerId"`
	Category      string `json:"kategori"`
	Description   string `json:"keteranganTransaksi"`
	Value         int64  `json:"nilaiInvoice"`
	PaymentStatus string `json:"statusPembayaran"`
	InvoiceStatus string `json:"statusInvoice"`
}

// toInput переводит запрос в модель. Пустые даты остаются нулевыми и отклоняются валидацией.
func (req invoiceRequest) toInput() (model.InvoiceInput, error) {
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return model.InvoiceInput{}, err
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return model.InvoiceInput{}, err
	}
	return model.InvoiceInput{
		Date:          date,
		TermDays:      req.TermDays,
		DueDate:       due,
		Number:        strings.TrimSpace(req.Number),
		CustomerID:    req.CustomerID,
		Category:      req.Category,
		Description:   req.Description,
		Value:         req.Value,
		PaymentStatus: model.PaymentStatus(req.PaymentStatus),
		InvoiceStatus: req.InvoiceStatus,
	}, nil
}

type invoicesResponse struct {
	Invoices   []aging.LedgerView `json:"invoices"`
	Pagination model.Pagination   `json:"pagination"`
}

type invoiceResponse struct {
	Invoice any `json:"invoice"`
}

// ListInvoices возвращает страницу счетов с остатками на текущую дату.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	customerID, ok := optionalID(q.Get("customerId"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Customer tidak valid")
		return
	}

	f := model.InvoiceFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		CustomerID: customerID,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	if raw := q.Get("status"); raw != "" && raw != "all" {
		status, ok := model.ParsePaymentStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Status pembayaran tidak valid")
			return
		}
		f.Statuses = []model.PaymentStatus{status}
	}

	items, total, err := h.service.ListInvoices(r.Context(), f, h.now())
	if err != nil {
		h.fail(w, r, err, "list invoices")
		return
	}

	writeJSON(w, http.StatusOK, invoicesResponse{
		Invoices:   nonNil(items),
		Pagination: model.NewPagination(total, page, limit),
	})
}

// GetInvoice возвращает счёт с оплатами и расчётным остатком.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	inv, err := h.service.GetInvoice(r.Context(), id, h.now())
	if err != nil {
		h.fail(w, r, err, "get invoice")
		return
	}
	writeJSON(w, http.StatusOK, invoiceResponse{Invoice: inv})
}

// CreateInvoice создаёт счёт.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Format tanggal tidak valid")
		return
	}

	inv, err := h.service.CreateInvoice(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "create invoice")
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// UpdateInvoice изменяет счёт.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Format tanggal tidak valid")
		return
	}

	inv, err := h.service.UpdateInvoice(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err, "update invoice")
		return
	}
	writeJSON(w, http.StatusOK, invoiceResponse{Invoice: inv})
}

// DeleteInvoice удаляет счёт без оплат.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "ID tidak valid")
		return
	}

	if err := h.service.DeleteInvoice(r.Context(), id); err != nil {
		h.fail(w, r, err, "delete invoice")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Invoice berhasil dihapus"})
}

type agingListResponse struct {
	ReportDate time.Time           `json:"reportDate"`
	Invoices   []aging.AgedInvoice `json:"invoices"`
	Total      int                 `json:"total"`
}

// agingQuery читает параметры customerId и date. Без date используется текущее время.
func (h *Handler) agingQuery(r *http.Request) (service.AgingQuery, string) {
	customerID, ok := optionalID(r.URL.Query().Get("customerId"))
	if !ok {
		return service.AgingQuery{}, "Customer tidak valid"
	}

	q := service.AgingQuery{CustomerID: customerID, ReferenceDate: h.now()}
	if raw := r.URL.Query().Get("date"); strings.TrimSpace(raw) != "" {
		t, err := parseDate(raw)
		if err != nil {
			return service.AgingQuery{}, "Format tanggal tidak valid"
		}
		q.ReferenceDate, q.Dated = t, true
	}
	return q, ""
}

// Aging возвращает отчёт о задолженности. Форма отчёта задаётся параметром type,
// неизвестное или пустое значение даёт сводку.
func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	q, msg := h.agingQuery(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	ctx := r.Context()

	var (
		report any
		err    error
	)
	switch aging.ReportType(r.URL.Query().Get("type")) {
	case aging.ReportList:
		var list []aging.AgedInvoice
		list, err = h.service.AgingList(ctx, q)
		report = agingListResponse{ReportDate: q.ReferenceDate, Invoices: nonNil(list), Total: len(list)}
	case aging.ReportAnalytics:
		report, err = h.service.AgingAnalytics(ctx, q)
	case aging.ReportDetailed:
		report, err = h.service.AgingDetailed(ctx, q)
	default:
		report, err = h.service.AgingSummary(ctx, q)
	}
	if err != nil {
		h.fail(w, r, err, "aging report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Dashboard возвращает данные главной страницы на текущую дату.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context(), h.now())
	if err != nil {
		h.fail(w, r, err, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

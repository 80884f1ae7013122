// Package model содержит доменные сущности сервиса учёта дебиторской задолженности.
package model

import "time"

// User представляет администратора, имеющего доступ к сервису.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// PaymentStatus описывает статус оплаты счёта.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "BELUM_LUNAS"
	PaymentStatusPartial PaymentStatus = "SEBAGIAN"
	PaymentStatusPaid    PaymentStatus = "LUNAS"
)

// ParsePaymentStatus преобразует строку в статус оплаты. Неизвестные значения отклоняются.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return PaymentStatus(s), true
	default:
		return "", false
	}
}

// IsOutstanding сообщает, считается ли счёт с этим статусом неоплаченным.
func (s PaymentStatus) IsOutstanding() bool {
	return s == PaymentStatusUnpaid || s == PaymentStatusPartial
}

// CustomerCategory описывает категорию клиентов.
type CustomerCategory struct {
	ID            int64     `json:"id"`
	Keterangan    string    `json:"keterangan"`
	CustomerCount int       `json:"customerCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Customer описывает клиента и его текущую задолженность в рупиях.
type Customer struct {
	ID              int64             `json:"id"`
	Code            string            `json:"kode"`
	Name            string            `json:"namaCustomer"`
	CategoryID      int64             `json:"kategoriId"`
	Category        *CustomerCategory `json:"kategori,omitempty"`
	InvoiceAddress  string            `json:"alamatNoInvoice"`
	Phone           string            `json:"telepon"`
	Email           string            `json:"email"`
	TotalReceivable int64             `json:"totalPiutang"`
	InvoiceCount    int               `json:"invoiceCount"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Invoice описывает выставленный клиенту счёт. Суммы хранятся в рупиях без дробной части.
type Invoice struct {
	ID            int64         `json:"id"`
	Date          time.Time     `json:"tanggal"`
	TermDays      int           `json:"termin"`
	DueDate       time.Time     `json:"jatuhTempo"`
	Number        string        `json:"noInvoice"`
	CustomerID    int64         `json:"customerId"`
	Customer      *Customer     `json:"customer,omitempty"`
	Category      string        `json:"kategori"`
	Description   string        `json:"keteranganTransaksi"`
	Value         int64         `json:"nilaiInvoice"`
	PaymentStatus PaymentStatus `json:"statusPembayaran"`
	InvoiceStatus string        `json:"statusInvoice"`
	Payments      []Payment     `json:"payments"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Payment описывает поступление оплаты по счёту.
type Payment struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"tanggal"`
	InvoiceID   int64     `json:"invoiceId"`
	Description string    `json:"keterangan"`
	Amount      int64     `json:"penerimaan"`
	CreatedAt   time.Time `json:"createdAt"`

	InvoiceNumber string `json:"noInvoice,omitempty"`
	CustomerName  string `json:"namaCustomer,omitempty"`
}

// CompanyProfile содержит реквизиты компании-кредитора.
type CompanyProfile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"namaUsaha"`
	Address   string    `json:"alamatUsaha"`
	Phone     string    `json:"nomorTelepon"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomerInput содержит данные для создания или изменения клиента.
type CustomerInput struct {
	Code           string `json:"kode" validate:"required,max=50"`
	Name           string `json:"namaCustomer" validate:"required,max=200"`
	CategoryID     int64  `json:"kategoriId" validate:"required,min=1"`
	InvoiceAddress string `json:"alamatNoInvoice" validate:"max=500"`
	Phone          string `json:"telepon" validate:"max=50"`
	Email          string `json:"email" validate:"omitempty,email"`
}

// CategoryInput содержит данные категории клиентов.
type CategoryInput struct {
	Keterangan string `json:"keterangan" validate:"max=200"`
}

// InvoiceInput содержит данные для создания или изменения счёта.
type InvoiceInput struct {
	Date          time.Time     `json:"tanggal" validate:"required"`
	TermDays      int           `json:"termin" validate:"min=0"`
	DueDate       time.Time     `json:"jatuhTempo" validate:"required"`
	Number        string        `json:"noInvoice" validate:"required,max=64"`
	CustomerID    int64         `json:"customerId" validate:"required,min=1"`
	Category      string        `json:"kategori" validate:"max=100"`
	Description   string        `json:"keteranganTransaksi" validate:"max=500"`
	Value         int64         `json:"nilaiInvoice" validate:"min=0"`
	PaymentStatus PaymentStatus `json:"statusPembayaran" validate:"omitempty,payment_status"`
	InvoiceStatus string        `json:"statusInvoice" validate:"max=50"`
}

// PaymentInput содержит данные поступления оплаты.
type PaymentInput struct {
	Date        time.Time `json:"tanggal" validate:"required"`
	InvoiceID   int64     `json:"invoiceId" validate:"required,min=1"`
	Description string    `json:"keterangan" validate:"max=500"`
	Amount      int64     `json:"penerimaan" validate:"required,min=1"`
}

// CompanyProfileInput содержит реквизиты компании.
type CompanyProfileInput struct {
	Name    string `json:"namaUsaha" validate:"required,max=200"`
	Address string `json:"alamatUsaha" validate:"required,max=500"`
	Phone   string `json:"nomorTelepon" validate:"required,max=50"`
}

// RegisterInput содержит данные для регистрации пользователя.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=6"`

	// ConfirmPassword проверяется, только если передан.
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
}

// LoginInput содержит учётные данные для входа.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// InvoiceFilter задаёт условия выборки счетов.
// При OrderByDueDate счета сортируются по сроку оплаты, иначе по дате создания.
type InvoiceFilter struct {
	Search         string
	CustomerID     int64
	Statuses       []PaymentStatus
	OrderByDueDate bool
	Limit          int
	Offset         int
}

// CustomerFilter задаёт условия выборки клиентов.
type CustomerFilter struct {
	Search     string
	CategoryID int64
	Limit      int
	Offset     int
}

// PaymentFilter задаёт условия выборки оплат.
type PaymentFilter struct {
	InvoiceID int64
	Limit     int
	Offset    int
}

// Pagination описывает страницу результатов списка.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination вычисляет параметры страницы по общему количеству записей.
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

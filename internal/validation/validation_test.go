package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/piutang-system/internal/model"
)

func validInvoice() model.InvoiceInput {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	return model.InvoiceInput{
		Date:       date,
		TermDays:   30,
		DueDate:    date.AddDate(0, 0, 30),
		Number:     "INV-001",
		CustomerID: 1,
		Value:      1_000_000,
	}
}

func TestStruct_InvoiceInput(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *model.InvoiceInput)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(in *model.InvoiceInput) {},
		},
		{
			name:   "known payment status",
			mutate: func(in *model.InvoiceInput) { in.PaymentStatus = model.PaymentStatusPartial },
		},
		{
			name:      "unknown payment status",
			mutate:    func(in *model.InvoiceInput) { in.PaymentStatus = "DIBAYAR" },
			wantField: "statusPembayaran",
		},
		{
			name:      "missing number",
			mutate:    func(in *model.InvoiceInput) { in.Number = "" },
			wantField: "noInvoice",
		},
		{
			name:      "negative value",
			mutate:    func(in *model.InvoiceInput) { in.Value = -1 },
			wantField: "nilaiInvoice",
		},
		{
			name:      "negative term",
			mutate:    func(in *model.InvoiceInput) { in.TermDays = -5 },
			wantField: "termin",
		},
		{
			name:      "missing due date",
			mutate:    func(in *model.InvoiceInput) { in.DueDate = time.Time{} },
			wantField: "jatuhTempo",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInvoice()
			tt.mutate(&in)

			err := v.Struct(in)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var verr *Error
			require.True(t, errors.As(err, &verr), "expected *Error, got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			assert.NotEmpty(t, verr.Fields[0].Message)
		})
	}
}

func TestStruct_PaymentAmountMustBePositive(t *testing.T) {
	v := New()

	err := v.Struct(model.PaymentInput{
		Date:      time.Now(),
		InvoiceID: 1,
		Amount:    0,
	})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "penerimaan", verr.Fields[0].Field)
}

func TestStruct_CustomerEmailOptional(t *testing.T) {
	v := New()

	in := model.CustomerInput{Code: "C-01", Name: "PT Maju", CategoryID: 1}
	require.NoError(t, v.Struct(in))

	in.Email = "bukan-email"
	err := v.Struct(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestStruct_FieldsSortedByName(t *testing.T) {
	v := New()

	err := v.Struct(model.CompanyProfileInput{})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "alamatUsaha", verr.Fields[0].Field)
	assert.Equal(t, "namaUsaha", verr.Fields[1].Field)
	assert.Equal(t, "nomorTelepon", verr.Fields[2].Field)
	assert.Equal(t, "wajib diisi", verr.Fields[0].Message)
}

func TestStruct_RegisterPasswordLength(t *testing.T) {
	v := New()

	err := v.Struct(model.RegisterInput{Email: "a@b.co", Name: "Admin", Password: "123"})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Fields[0].Field)
	assert.Equal(t, "minimal 6 karakter", verr.Fields[0].Message)
}

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmeshcher/piutang-system/internal/model"
)

func TestResolveInvoiceStatus(t *testing.T) {
	tests := []struct {
		name     string
		explicit model.PaymentStatus
		value    int64
		paid     int64
		want     model.PaymentStatus
	}{
		{
			name:  "value raised above payments reopens settled invoice",
			value: 2000000,
			paid:  1000000,
			want:  model.PaymentStatusPartial,
		},
		{
			name:  "value lowered to payments settles invoice",
			value: 1000000,
			paid:  1000000,
			want:  model.PaymentStatusPaid,
		},
		{
			name:  "value lowered below payments settles invoice",
			value: 500000,
			paid:  1000000,
			want:  model.PaymentStatusPaid,
		},
		{
			name:  "no payments stays unpaid",
			value: 750000,
			want:  model.PaymentStatusUnpaid,
		},
		{
			name:     "explicit status wins",
			explicit: model.PaymentStatusPaid,
			value:    750000,
			want:     model.PaymentStatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveInvoiceStatus(tt.explicit, tt.value, tt.paid))
		})
	}
}

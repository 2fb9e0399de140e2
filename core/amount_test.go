package core

import (
	"testing"
)

func TestAmountDecimal(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{
			name:   "pesos",
			amount: NewAmount("10000", "MXN", 2),
			want:   "100",
		},
		{
			name:   "cents",
			amount: NewAmount("1", "USD", 2),
			want:   "0.01",
		},
		{
			name:   "zero scale",
			amount: NewAmount("42", "JPY", 0),
			want:   "42",
		},
		{
			name:   "high scale",
			amount: NewAmount("123456789", "XRP", 6),
			want:   "123.456789",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.amount.Decimal()
			if err != nil {
				t.Fatalf("Decimal() error = %v", err)
			}

			if got := d.String(); got != tt.want {
				t.Errorf("Decimal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAmountEqual(t *testing.T) {
	a := NewAmount("10000", "MXN", 2)

	if !a.Equal(NewAmount("10000", "MXN", 2)) {
		t.Error("identical amounts should be equal")
	}

	if a.Equal(NewAmount("10001", "MXN", 2)) {
		t.Error("different values should not be equal")
	}

	if a.Equal(NewAmount("10000", "USD", 2)) {
		t.Error("different asset codes should not be equal")
	}

	if a.Equal(NewAmount("10000", "MXN", 3)) {
		t.Error("different scales should not be equal")
	}
}

func TestAmountIsZero(t *testing.T) {
	if !(Amount{}).IsZero() {
		t.Error("empty amount should be zero")
	}

	if !NewAmount("0", "MXN", 2).IsZero() {
		t.Error("zero value should be zero")
	}

	if NewAmount("1", "MXN", 2).IsZero() {
		t.Error("non-zero value should not be zero")
	}
}

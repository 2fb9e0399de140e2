package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an Open Payments amount: an integer count of minor units plus
// the asset code and scale that give the value meaning.
type Amount struct {
	Value      string `json:"value"`
	AssetCode  string `json:"assetCode"`
	AssetScale int32  `json:"assetScale"`
}

func NewAmount(value, assetCode string, assetScale int32) Amount {
	return Amount{Value: value, AssetCode: assetCode, AssetScale: assetScale}
}

func (a Amount) IsZero() bool {
	return a.Value == "" || a.Value == "0"
}

// Equal reports exact equality of value, asset code and asset scale.
func (a Amount) Equal(b Amount) bool {
	return a.Value == b.Value && a.AssetCode == b.AssetCode && a.AssetScale == b.AssetScale
}

// Decimal converts the minor-unit value into major units.
func (a Amount) Decimal() (decimal.Decimal, error) {
	v, err := decimal.NewFromString(a.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount value %q: %w", a.Value, err)
	}

	return v.Shift(-a.AssetScale), nil
}

func (a Amount) String() string {
	d, err := a.Decimal()
	if err != nil {
		return fmt.Sprintf("%s %s", a.Value, a.AssetCode)
	}

	return fmt.Sprintf("%s %s", d.StringFixed(a.AssetScale), a.AssetCode)
}

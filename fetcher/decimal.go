package fetcher

import "github.com/shopspring/decimal"

func floatToDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

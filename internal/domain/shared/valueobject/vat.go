package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Romanian VAT rates. 19/9/5 applied until July 2025; 21/11 apply afterwards.
var allowedVATRates = []int64{0, 5, 9, 11, 19, 21}

var hundred = decimal.NewFromInt(100)

// ValidateVATRate accepts only the rates the Romanian fiscal code defines.
func ValidateVATRate(rate decimal.Decimal) error {
	for _, r := range allowedVATRates {
		if rate.Equal(decimal.NewFromInt(r)) {
			return nil
		}
	}
	return fmt.Errorf("invalid VAT rate %s", rate.String())
}

// IsValidVATRate is the boolean form of ValidateVATRate, used by request validators.
func IsValidVATRate(rate float64) bool {
	return ValidateVATRate(decimal.NewFromFloat(rate)) == nil
}

// VATAmount returns net*rate/100 rounded to two decimals.
func VATAmount(net, rate decimal.Decimal) decimal.Decimal {
	return Round2(net.Mul(rate).Div(hundred))
}

// Percent returns value*pct/100 rounded to two decimals.
func Percent(value, pct decimal.Decimal) decimal.Decimal {
	return Round2(value.Mul(pct).Div(hundred))
}

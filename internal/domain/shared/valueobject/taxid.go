package valueobject

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCUI = errors.New("invalid CUI")
	ErrInvalidCNP = errors.New("invalid CNP")
)

const cuiKey = "753217532"

const cnpKey = "279146358279"

// NormalizeCUI strips whitespace and an optional RO prefix.
func NormalizeCUI(cui string) string {
	cui = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(cui), " ", ""))
	return strings.TrimPrefix(cui, "RO")
}

// ValidateCUI checks a Romanian fiscal code (CUI/CIF) against its control digit.
func ValidateCUI(cui string) error {
	digits := NormalizeCUI(cui)
	if len(digits) < 2 || len(digits) > 10 || !allDigits(digits) {
		return ErrInvalidCUI
	}
	control := int(digits[len(digits)-1] - '0')
	body := digits[:len(digits)-1]
	body = strings.Repeat("0", 9-len(body)) + body

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(body[i]-'0') * int(cuiKey[i]-'0')
	}
	expected := (sum * 10) % 11
	if expected == 10 {
		expected = 0
	}
	if expected != control {
		return ErrInvalidCUI
	}
	return nil
}

// IsValidCUI is the boolean form of ValidateCUI.
func IsValidCUI(cui string) bool {
	return ValidateCUI(cui) == nil
}

// ValidateCNP checks a 13 digit Romanian personal numeric code.
func ValidateCNP(cnp string) error {
	cnp = strings.TrimSpace(cnp)
	if len(cnp) != 13 || !allDigits(cnp) || cnp[0] == '0' {
		return ErrInvalidCNP
	}
	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(cnp[i]-'0') * int(cnpKey[i]-'0')
	}
	expected := sum % 11
	if expected == 10 {
		expected = 1
	}
	if expected != int(cnp[12]-'0') {
		return ErrInvalidCNP
	}
	return nil
}

// allDigits accepts ASCII 0-9 only; the checksums index bytes.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCUI(t *testing.T) {
	valid := []string{"18547290", "RO18547290", "ro 14399840", "13548146"}
	for _, c := range valid {
		assert.NoError(t, ValidateCUI(c), c)
	}

	invalid := []string{"", "1", "18547291", "RO12345678901", "ABC"}
	for _, c := range invalid {
		assert.ErrorIs(t, ValidateCUI(c), ErrInvalidCUI, c)
	}
}

func TestNormalizeCUI(t *testing.T) {
	assert.Equal(t, "18547290", NormalizeCUI(" ro18547290 "))
}

func TestValidateCNP(t *testing.T) {
	assert.NoError(t, ValidateCNP("1800101420010"))
	assert.NoError(t, ValidateCNP("2851230400017"))
	assert.ErrorIs(t, ValidateCNP("1800101420011"), ErrInvalidCNP)
	assert.ErrorIs(t, ValidateCNP("180010142001"), ErrInvalidCNP)
	assert.ErrorIs(t, ValidateCNP("0800101420010"), ErrInvalidCNP)
}

func TestValidateTaxIDs_RejectNonASCIIDigits(t *testing.T) {
	// Arabic-Indic and fullwidth digits are unicode digits but not valid in fiscal codes.
	for _, c := range []string{"١4", "RO١٨٥٤٧٢٩٠", "１８５４７２９０", "1854729٠"} {
		assert.ErrorIs(t, ValidateCUI(c), ErrInvalidCUI, c)
		assert.False(t, IsValidCUI(c), c)
	}
	// Thirteen bytes, so only the digit check can reject it.
	assert.ErrorIs(t, ValidateCNP("18001014200١"), ErrInvalidCNP)
}

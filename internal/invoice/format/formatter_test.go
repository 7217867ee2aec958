package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	out, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issued, 42)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260829-000042", out)

	out, err = FormatInvoiceNumber("{YY}{MM}/{SEQ}", issued, 7)
	require.NoError(t, err)
	assert.Equal(t, "2608/7", out)
}

func TestFormatInvoiceNumberRejectsBadInput(t *testing.T) {
	issued := time.Now()

	_, err := FormatInvoiceNumber("", issued, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("{SEQ}", issued, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("{UNKNOWN}", issued, 1)
	assert.Error(t, err)
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "1234.56 USD", FormatMinor(123456, "USD"))
	assert.Equal(t, "0.05 USD", FormatMinor(5, "USD"))
	assert.Equal(t, "-12.00 EUR", FormatMinor(-1200, "EUR"))
}

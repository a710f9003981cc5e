package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseTemplates(t *testing.T) {
	s := NewEmailService(Config{FrontendURL: "https://app.example.com"}, zap.NewNop())

	html, err := s.parseTemplate("payment-receipt.html", map[string]interface{}{
		"FullName": "Ana", "ProductName": "5 credits", "Credits": 5, "Amount": "7.90",
		"Currency": "brl", "Available": 15, "SessionID": "cs_1", "DashboardLink": "x", "Year": 2026,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Ana")
	assert.Contains(t, html, "cs_1")

	html, err = s.parseTemplate("support-alert.html", map[string]interface{}{
		"Subject": "unrecorded checkout", "Fields": map[string]string{"session_id": "cs_2"}, "Time": "now",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "cs_2")
}

func TestSendWithoutClientIsNoop(t *testing.T) {
	s := NewEmailService(Config{SupportAddress: "ops@example.com"}, zap.NewNop())

	assert.NoError(t, s.SendPasswordResetEmail("a@example.com", "tok"))
	assert.NoError(t, s.SendSupportAlert("test", map[string]string{"k": "v"}))
	assert.NoError(t, s.SendPaymentReceipt(Receipt{Email: "a@example.com", AmountCents: 790}))
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewManager("test-secret", "menutranslator", time.Hour)

	token, err := m.GenerateToken("chef@example.com", 42)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "chef@example.com", claims.Email)
	assert.Equal(t, "menutranslator", claims.Issuer)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	token, err := NewManager("one", "", time.Hour).GenerateToken("a@example.com", 1)
	require.NoError(t, err)

	_, err = NewManager("two", "", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewManager("secret", "", time.Millisecond)
	token, err := m.GenerateToken("a@example.com", 1)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	_, err := NewManager("", "", time.Hour).GenerateToken("a@example.com", 1)
	assert.Error(t, err)
}

package auth

import (
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/posadmin/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasetoToken_RoundTrip(t *testing.T) {
	ts, err := New("", time.Hour)
	require.NoError(t, err)

	token, err := ts.CreateToken("admin", "upstream-jwt")
	require.NoError(t, err)

	payload, err := ts.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", payload.Username)
	assert.Equal(t, "upstream-jwt", payload.APIToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), payload.ExpiresAt, time.Minute)
}

func TestPasetoToken_Invalid(t *testing.T) {
	ts, err := New("", time.Hour)
	require.NoError(t, err)

	_, err = ts.VerifyToken("v4.local.garbage")
	assert.Equal(t, domain.ErrInvalidToken, err)

	other, err := New("", time.Hour)
	require.NoError(t, err)
	token, err := other.CreateToken("admin", "upstream-jwt")
	require.NoError(t, err)

	_, err = ts.VerifyToken(token)
	assert.Equal(t, domain.ErrInvalidToken, err)
}

func TestPasetoToken_Expired(t *testing.T) {
	ts, err := New("", time.Minute)
	require.NoError(t, err)
	pt := ts.(*PasetoToken)

	issued := time.Now().Add(-time.Hour)
	pt.now = func() time.Time { return issued }
	token, err := pt.CreateToken("admin", "upstream-jwt")
	require.NoError(t, err)

	pt.now = time.Now
	_, err = pt.VerifyToken(token)
	assert.Equal(t, domain.ErrExpiredToken, err)
}

func TestPasetoToken_SharedKey(t *testing.T) {
	key := paseto.NewV4SymmetricKey().ExportHex()

	first, err := New(key, time.Hour)
	require.NoError(t, err)
	second, err := New(key, time.Hour)
	require.NoError(t, err)

	token, err := first.CreateToken("admin", "upstream-jwt")
	require.NoError(t, err)
	_, err = second.VerifyToken(token)
	assert.NoError(t, err)

	_, err = New("not-hex", time.Hour)
	assert.Error(t, err)
}

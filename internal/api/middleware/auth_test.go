package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthConfigEnabled(t *testing.T) {
	assert.False(t, AuthConfig{}.Enabled())
	assert.False(t, AuthConfig{APIKeys: []string{""}}.Enabled())
	assert.True(t, AuthConfig{APIKeys: []string{"k"}}.Enabled())
	assert.True(t, AuthConfig{JWTPublicKey: "pem"}.Enabled())
}

func TestAuthenticate(t *testing.T) {
	key, publicPEM := generateKeyPair(t)
	otherKey, _ := generateKeyPair(t)
	cfg := AuthConfig{JWTPublicKey: publicPEM, APIKeys: []string{"", "device-uploader"}}

	valid := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "gateway-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "gateway-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	foreign := signToken(t, otherKey, jwt.RegisteredClaims{Subject: "gateway-7"})

	tests := []struct {
		name        string
		header      string
		wantSuccess bool
		wantType    string
		wantSubject string
	}{
		{name: "missing header", header: ""},
		{name: "malformed header", header: "Bearer"},
		{name: "unsupported scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "valid api key", header: "ApiKey device-uploader", wantSuccess: true, wantType: "apikey"},
		{name: "invalid api key", header: "ApiKey nope"},
		{name: "valid jwt", header: "Bearer " + valid, wantSuccess: true, wantType: "jwt", wantSubject: "gateway-7"},
		{name: "expired jwt", header: "Bearer " + expired},
		{name: "jwt signed by another key", header: "Bearer " + foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Authenticate(tt.header, cfg)
			assert.Equal(t, tt.wantSuccess, result.Success)
			if !tt.wantSuccess {
				assert.Error(t, result.Error)
				return
			}
			assert.Equal(t, tt.wantType, result.AuthType)
			assert.Equal(t, tt.wantSubject, result.AuthSubject)
		})
	}
}

func TestValidateAPIKey_NoKeys(t *testing.T) {
	err := validateAPIKey("anything", []string{""})
	assert.EqualError(t, err, "no API keys configured")
}

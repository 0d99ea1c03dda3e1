// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aula/internal/platform/sec"
)

func newTestTokenService(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	service, err := sec.NewTokenServiceFromPEM(privatePEM, publicPEM, issuer)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip signs and verifies an access token.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t, "aula.test")

	token, err := service.GenerateAccessToken("s-1", "u-1", "mgarcia", "profesor", time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "mgarcia", claims.Username)
	assert.Equal(t, "profesor", claims.Role)
	assert.Equal(t, "s-1", claims.ID)
}

/*
TestTokenService_Rejects covers expired, foreign and garbage tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	service := newTestTokenService(t, "aula.test")

	expired, err := service.GenerateAccessToken("s-1", "u-1", "mgarcia", "profesor", -time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(expired)
	assert.Error(t, err)

	foreign := newTestTokenService(t, "aula.test")
	token, err := foreign.GenerateAccessToken("s-1", "u-1", "mgarcia", "profesor", time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(token)
	assert.Error(t, err)

	unbound, err := service.GenerateAccessToken("", "u-1", "mgarcia", "profesor", time.Minute)
	require.NoError(t, err)
	_, err = service.VerifyToken(unbound)
	assert.Error(t, err)

	_, err = service.VerifyToken("not-a-token")
	assert.Error(t, err)
}

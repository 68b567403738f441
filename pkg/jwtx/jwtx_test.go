package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/hubsignup/pkg/cryptox"
	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://signup.example.test"

func TestEdDSASignAndVerify(t *testing.T) {
	t.Parallel()

	keys, err := jwtx.NewEphemeralSessionKeys(exampleIssuer, []string{"authenticated"})
	require.NoError(t, err)
	require.Equal(t, "EdDSA", keys.Signer.Alg())
	require.True(t, keys.KeySet.IsReady())

	claims := jwtx.NewSessionClaims(
		"user-456",
		"session-1",
		"a@x.com",
		map[string]any{"full_name": "Ada"},
		5*time.Minute,
		exampleIssuer,
		[]string{"authenticated"},
		time.Now().UTC(),
	)
	token, err := keys.Signer.Sign(claims)
	require.NoError(t, err)

	parsed, err := keys.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-456", parsed.Subject)
	require.Equal(t, "session-1", parsed.SessionID)
	require.Equal(t, "a@x.com", parsed.Email)
	require.Equal(t, "authenticated", parsed.Role)
	require.Equal(t, "Ada", parsed.UserMetadata["full_name"])
	require.NotEmpty(t, parsed.ID)

	jwks := keys.KeySet.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, keys.Signer.KID(), jwks.Keys[0].Kid)
}

func TestEdDSAVerifyRejects(t *testing.T) {
	t.Parallel()

	keys, err := jwtx.NewEphemeralSessionKeys(exampleIssuer, nil)
	require.NoError(t, err)
	other, err := jwtx.NewEphemeralSessionKeys(exampleIssuer, nil)
	require.NoError(t, err)

	now := time.Now().UTC()

	t.Run("wrong issuer", func(t *testing.T) {
		c := jwtx.NewSessionClaims("u", "s", "", nil, time.Minute, "https://evil.test", nil, now)
		token, err := keys.Signer.Sign(c)
		require.NoError(t, err)
		_, err = keys.Verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("unknown kid", func(t *testing.T) {
		c := jwtx.NewSessionClaims("u", "s", "", nil, time.Minute, exampleIssuer, nil, now)
		token, err := other.Signer.Sign(c)
		require.NoError(t, err)
		_, err = keys.Verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("expired", func(t *testing.T) {
		c := jwtx.NewSessionClaims("u", "s", "", nil, time.Minute, exampleIssuer, nil, now.Add(-time.Hour))
		token, err := keys.Signer.Sign(c)
		require.NoError(t, err)
		_, err = keys.Verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := keys.Verifier.Verify("not.a.jwt")
		require.Error(t, err)
	})
}

func TestHS256Verify(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret-jwt-token-with-at-least-32-characters")
	v := jwtx.NewCommonHS256(secret, "", []string{"authenticated"})

	c := jwtx.NewSessionClaims("3f1c", "sess", "b@x.com", nil, time.Minute, "gotrue", []string{"authenticated"}, time.Now().UTC())
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "3f1c", got.Subject)
	require.Equal(t, "b@x.com", got.Email)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)
	_, err = v.Verify(forged)
	require.Error(t, err)

	wrongAud := jwtx.NewSessionClaims("3f1c", "sess", "", nil, time.Minute, "gotrue", []string{"service_role"}, time.Now().UTC())
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, wrongAud).SignedString(secret)
	require.NoError(t, err)
	_, err = v.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrAudience)
}

func TestNewSignerEdDSARejectsBadPEM(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewSignerEdDSA("kid", []byte("nope"))
	require.Error(t, err)

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	s, err := jwtx.NewSignerEdDSA("kid", pemKey)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	t.Parallel()

	c := jwtx.NewSessionClaims("u", "s", "", nil, time.Second, exampleIssuer, nil, time.Now().Add(-2*time.Second))
	require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
	require.NoError(t, c.ValidateExpiryWithLeeway(time.Minute))
}

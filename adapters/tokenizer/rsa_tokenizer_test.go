package tokenizer

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmoj/authd/core"
)

func newTestTokenizer(t *testing.T) (*RSATokenizer, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewRSATokenizer(key, &key.PublicKey).(*RSATokenizer), key
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	token, err := tk.Issue("alice", 30*time.Minute)
	require.NoError(t, err)

	claims, err := tk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.GreaterOrEqual(t, len(claims.ID), 20)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestIssueGeneratesDistinctIdentifiers(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	first, err := tk.Issue("alice", time.Minute)
	require.NoError(t, err)
	second, err := tk.Issue("alice", time.Minute)
	require.NoError(t, err)

	firstClaims, err := tk.Verify(first)
	require.NoError(t, err)
	secondClaims, err := tk.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestIssueWithoutPrivateKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tk := NewRSATokenizer(nil, &key.PublicKey)
	_, err = tk.Issue("alice", time.Minute)
	assert.ErrorIs(t, err, ErrSigningKeyUnavailable)
}

func TestVerifyExpiredToken(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	token, err := tk.Issue("alice", -time.Minute)
	require.NoError(t, err)

	_, err = tk.Verify(token)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestVerifyWrongKey(t *testing.T) {
	tk, _ := newTestTokenizer(t)
	other, _ := newTestTokenizer(t)

	token, err := other.Issue("alice", time.Minute)
	require.NoError(t, err)

	_, err = tk.Verify(token)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestVerifyRejectsForeignAlgorithm(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	// An HS256 token with otherwise well-formed claims must not pass,
	// no matter what key material it was signed with.
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ID:        "0123456789abcdefghij",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = tk.Verify(hmacToken)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ID:        "0123456789abcdefghij",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tk.Verify(unsigned)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestVerifyMalformedInput(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	for _, input := range []string{"", "garbage", "a.b.c"} {
		_, err := tk.Verify(input)
		assert.ErrorIs(t, err, core.ErrUnauthorized, "input %q", input)
	}
}

func TestDecodeExpiredToken(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	token, err := tk.Issue("alice", -time.Hour)
	require.NoError(t, err)

	// Decode must still surface claims so the revoke path can extract
	// the jti even after expiry.
	claims, err := tk.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.Expired(time.Now()))
}

func TestDecodeIgnoresSignature(t *testing.T) {
	tk, _ := newTestTokenizer(t)
	other, _ := newTestTokenizer(t)

	token, err := other.Issue("alice", time.Minute)
	require.NoError(t, err)

	claims, err := tk.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestDecodeMalformedInput(t *testing.T) {
	tk, _ := newTestTokenizer(t)

	_, err := tk.Decode("not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenMalformed)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmoj/authd/core"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyCredentialPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	require.NoError(t, err)

	match, err := VerifyCredential(core.MethodPassword, "pw1", string(hash))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyCredential(core.MethodPassword, "pw2", string(hash))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifyCredentialCorruptHash(t *testing.T) {
	match, err := VerifyCredential(core.MethodPassword, "pw1", "not-a-bcrypt-hash")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifyCredentialUnknownMethod(t *testing.T) {
	_, err := VerifyCredential("fingerprint", "x", "y")
	assert.ErrorIs(t, err, core.ErrUnsupportedMethod)
}

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  alice ", " Alice ", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.Nickname)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestNewUserInvalid(t *testing.T) {
	cases := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"with space", "al ice"},
		{"with slash", "al/ice"},
		{"too long", strings.Repeat("a", 65)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.username, "", "")
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestNewAuthenticationDetail(t *testing.T) {
	detail, err := NewAuthenticationDetail("password", "secret")
	require.NoError(t, err)
	assert.Equal(t, MethodPassword, detail.Method)

	_, err = NewAuthenticationDetail("password", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewAuthenticationDetail("retina-scan", "x")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

package service

import (
	"fmt"

	"github.com/tmoj/authd/core"
	"golang.org/x/crypto/bcrypt"
)

// VerifyCredential decides whether a submitted credential matches the
// stored one for a single method. The password method delegates to
// bcrypt's deliberately slow one-way comparison; the plaintext is never
// reconstructed. Any comparison failure, including a corrupt stored
// hash, reads as a plain non-match so the caller's rejection stays
// generic.
func VerifyCredential(method core.AuthenticationMethod, submitted, stored string) (bool, error) {
	switch method {
	case core.MethodPassword:
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted))
		return err == nil, nil
	default:
		return false, fmt.Errorf("method %q: %w", method, core.ErrUnsupportedMethod)
	}
}

package core

import (
	"fmt"
	"strings"
)

// AuthenticationMethod names the mechanism used to prove identity.
type AuthenticationMethod string

const (
	// MethodPassword is the only method currently supported.
	MethodPassword AuthenticationMethod = "password"
)

// ParseAuthenticationMethod maps a wire value onto a known method.
func ParseAuthenticationMethod(s string) (AuthenticationMethod, error) {
	switch AuthenticationMethod(s) {
	case MethodPassword:
		return MethodPassword, nil
	default:
		return "", fmt.Errorf("method %q: %w", s, ErrUnsupportedMethod)
	}
}

// User is the identity record owned by the storage service. Once a
// request passes the authorization gate this is attached to its context
// and treated as read-only.
type User struct {
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
}

// NewUser validates and constructs a User from request-supplied fields.
func NewUser(username, nickname, email string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrInvalidInput)
	}
	if len(username) > 64 {
		return nil, fmt.Errorf("username exceeds 64 characters: %w", ErrInvalidInput)
	}
	if strings.ContainsAny(username, " \t\n/") {
		return nil, fmt.Errorf("username contains forbidden characters: %w", ErrInvalidInput)
	}
	return &User{
		Username: username,
		Nickname: strings.TrimSpace(nickname),
		Email:    strings.TrimSpace(email),
	}, nil
}

// AuthenticationDetail is a credential for one method. Inbound, Value
// holds the plaintext submission; as stored, the opaque hash. It is
// never logged.
type AuthenticationDetail struct {
	Method AuthenticationMethod `json:"method"`
	Value  string               `json:"value"`
}

// NewAuthenticationDetail validates and constructs a credential.
func NewAuthenticationDetail(method, value string) (*AuthenticationDetail, error) {
	m, err := ParseAuthenticationMethod(method)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, fmt.Errorf("credential value is required: %w", ErrInvalidInput)
	}
	return &AuthenticationDetail{Method: m, Value: value}, nil
}

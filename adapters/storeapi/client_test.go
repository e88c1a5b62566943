package storeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmoj/authd/core"
)

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/api/users/alice":
			json.NewEncoder(w).Encode(core.User{Username: "alice", Nickname: "Alice"})
		case "/api/users/nobody":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	user, err := client.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice", user.Nickname)

	user, err = client.GetUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = client.GetUser(context.Background(), "boom")
	assert.ErrorIs(t, err, core.ErrUpstream)
}

func TestCreateUserInvalidInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.CreateUser(context.Background(), &core.User{Username: "alice"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateUserAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	updated, err := client.UpdateUser(context.Background(), &core.User{Username: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestGetDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/alice/password":
			json.NewEncoder(w).Encode(core.AuthenticationDetail{Method: core.MethodPassword, Value: "$2a$10$hash"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	detail, err := client.GetDetail(context.Background(), "alice", core.MethodPassword)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, core.MethodPassword, detail.Method)

	detail, err = client.GetDetail(context.Background(), "bob", core.MethodPassword)
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestRecordIsIdempotent(t *testing.T) {
	posts := 0
	recorded := map[string]core.Revocation{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			id := r.URL.Path[len("/api/blacklisted-jwts/"):]
			if rev, ok := recorded[id]; ok {
				json.NewEncoder(w).Encode(rev)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case http.MethodPost:
			posts++
			var rev core.Revocation
			if err := json.NewDecoder(r.Body).Decode(&rev); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if _, ok := recorded[rev.TokenID]; ok {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			recorded[rev.TokenID] = rev
			json.NewEncoder(w).Encode(rev)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	revocation := &core.Revocation{TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, client.Record(context.Background(), revocation))
	require.NoError(t, client.Record(context.Background(), revocation))
	assert.Equal(t, 1, posts)

	found, err := client.Lookup(context.Background(), "jti-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "jti-1", found.TokenID)

	absent, err := client.Lookup(context.Background(), "jti-2")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestTransportFailureIsUpstream(t *testing.T) {
	// Point at a server that has already gone away.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)

	_, err := client.GetUser(context.Background(), "alice")
	assert.ErrorIs(t, err, core.ErrUpstream)

	_, err = client.Lookup(context.Background(), "jti-1")
	assert.ErrorIs(t, err, core.ErrUpstream)
}

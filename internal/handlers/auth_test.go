package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heavenboards/user-service/internal/handlers/testutil"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	env := testutil.NewEnv(t)

	registered := env.Register("alice", "s3cret!")
	require.NotEmpty(t, registered.UserID)

	username, err := env.JWT.ExtractUsername(registered.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	w := env.Request(http.MethodPost, "/api/v1/auth/authenticate", map[string]string{
		"username": "alice",
		"password": "s3cret!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result testutil.AuthResult
	testutil.DecodeJSON(t, w, &result)
	require.Equal(t, "OK", result.Status)
	require.Equal(t, registered.UserID, result.UserID)
	require.NotEmpty(t, result.Token)
	require.Empty(t, result.Errors)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Register("alice", "s3cret!")

	w := env.Request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"password": "another-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result testutil.AuthResult
	testutil.DecodeJSON(t, w, &result)
	require.Equal(t, "FAILED", result.Status)
	require.Empty(t, result.Token)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "USERNAME_ALREADY_EXIST", result.Errors[0].ErrorCode)
}

func TestAuthenticateFailures(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Register("alice", "s3cret!")

	cases := []struct {
		name     string
		username string
		password string
		code     string
	}{
		{name: "unknown user", username: "bob", password: "s3cret!", code: "USERNAME_NOT_FOUND"},
		{name: "wrong password", username: "alice", password: "wrong-pass", code: "INVALID_USERNAME_PASSWORD"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.Request(http.MethodPost, "/api/v1/auth/authenticate", map[string]string{
				"username": tc.username,
				"password": tc.password,
			}, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var result testutil.AuthResult
			testutil.DecodeJSON(t, w, &result)
			require.Equal(t, "FAILED", result.Status)
			require.Empty(t, result.Token)
			require.Len(t, result.Errors, 1)
			require.Equal(t, tc.code, result.Errors[0].ErrorCode)
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	cases := []struct {
		name string
		body any
	}{
		{name: "missing password", body: map[string]string{"username": "alice"}},
		{name: "short username", body: map[string]string{"username": "al", "password": "s3cret!"}},
		{name: "illegal characters", body: map[string]string{"username": "al ice", "password": "s3cret!"}},
		{name: "short password", body: map[string]string{"username": "alice", "password": "123"}},
		{name: "password over 72 bytes", body: map[string]string{"username": "alice", "password": strings.Repeat("пароль", 7)}},
		{name: "not json", body: "plain"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.Request(http.MethodPost, "/api/v1/auth/register", tc.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			resp := testutil.DecodeResponse(t, w)
			require.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			require.Equal(t, "BAD_REQUEST", resp.Error.Code)
		})
	}
}

func TestAuthenticateRejectsPasswordOverByteLimit(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Register("alice", "s3cret!")

	w := env.Request(http.MethodPost, "/api/v1/auth/authenticate", map[string]string{
		"username": "alice",
		"password": strings.Repeat("пароль", 7),
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("rick", "secret")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.NotEmpty(t, token)

	loginID, loginToken, err := auth.Login("rick", "secret", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, id, loginID)
	assert.NotEmpty(t, loginToken)

	_, _, err = auth.Login("rick", "wrong", "1.2.3.4")
	assert.EqualError(t, err, "invalid username or password")

	_, _, err = auth.Login("nobody", "secret", "1.2.3.4")
	assert.EqualError(t, err, "invalid username or password")
}

func TestRegisterValidation(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	_, _, err := auth.Register("x", "secret")
	assert.Error(t, err, "username too short")

	_, _, err = auth.Register("thisusernameiswaytoolong", "secret")
	assert.Error(t, err, "username too long")

	_, _, err = auth.Register("rick", "abc")
	assert.Error(t, err, "password too short")

	_, _, err = auth.Register("rick", "secret")
	require.NoError(t, err)
	_, _, err = auth.Register("rick", "secret")
	assert.EqualError(t, err, "username already taken")
}

func TestValidateToken(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("rick", "secret")
	require.NoError(t, err)

	pid, username, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, pid)
	assert.Equal(t, "rick", username)

	_, _, err = auth.ValidateToken("not.a.token")
	assert.Error(t, err)

	// tokens signed under another secret are rejected
	other := NewAuth(openTestDB(t))
	_, otherToken, err := other.Register("daryl", "secret")
	require.NoError(t, err)
	_, _, err = auth.ValidateToken(otherToken)
	assert.Error(t, err)
}

func TestJWTSecretPersists(t *testing.T) {
	db := openTestDB(t)

	auth1 := NewAuth(db)
	_, token, err := auth1.Register("rick", "secret")
	require.NoError(t, err)

	// a fresh Auth over the same database validates old tokens
	auth2 := NewAuth(db)
	pid, username, err := auth2.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "rick", username)
	assert.Greater(t, pid, int64(0))
}

func TestLoginRateLimited(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)
	_, _, err := auth.Register("rick", "secret")
	require.NoError(t, err)

	// exhaust the per-IP burst with bad attempts
	for i := 0; i < loginRateBurst; i++ {
		auth.Login("rick", "wrong", "9.9.9.9")
	}
	_, _, err = auth.Login("rick", "secret", "9.9.9.9")
	assert.EqualError(t, err, "too many login attempts, try again later")

	// other IPs are unaffected
	_, _, err = auth.Login("rick", "secret", "8.8.8.8")
	assert.NoError(t, err)
}

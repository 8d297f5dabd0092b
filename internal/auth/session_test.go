package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexquest/apexquest/internal/model"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)
	user := &model.User{ID: "user-1", Role: model.RoleModerator}

	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, model.RoleModerator, claims.Role)
}

func TestSessionRejectsWrongSecret(t *testing.T) {
	token, err := NewSessionManager("secret-a", time.Hour).Issue(&model.User{ID: "u", Role: model.RoleUser})
	require.NoError(t, err)

	_, err = NewSessionManager("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRejectsExpired(t *testing.T) {
	m := NewSessionManager("test-secret", -time.Minute)
	token, err := m.Issue(&model.User{ID: "u", Role: model.RoleUser})
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRejectsGarbage(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)
	_, err := m.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

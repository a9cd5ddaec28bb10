package service

import (
	"context"
	"testing"
	"time"

	"sheetpos/internal/dto"
	"sheetpos/internal/model"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"
	"sheetpos/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (AuthService, session.Store, *auditSpy) {
	t.Helper()
	srv, repo := newSheets(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	require.NoError(t, err)
	seed(srv, schema.Users, row(schema.Users, map[schema.Field]any{
		schema.Username: "amina", schema.PasswordHash: string(hash), schema.Role: "manager", schema.DisplayName: "Amina M.",
	}))

	store := session.NewMemoryStore()
	spy := &auditSpy{}
	svc := NewAuthService(repository.NewUserRepository(repo), store, spy, testSecret, 8*time.Hour)
	return svc, store, spy
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	svc, store, spy := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "amina", Password: "pass1234"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "manager", resp.Session.Role)

	sess, err := store.Load(ctx, resp.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amina M.", sess.DisplayName)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	assert.Equal(t, sess.ID, claims["sid"])
	assert.Equal(t, "manager", claims["role"])

	require.Len(t, spy.records, 1)
	assert.Equal(t, model.ActionLogin, spy.records[0].Action)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, spy := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "amina", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ghost", Password: "pass1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, spy.records)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, _, spy := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "amina", Password: "pass1234"})
	require.NoError(t, err)

	sess, err := svc.Current(ctx, resp.Session.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, sess))

	_, err = svc.Current(ctx, resp.Session.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, model.ActionLogout, spy.records[len(spy.records)-1].Action)
}

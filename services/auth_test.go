package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsphere/apperror"
	"shopsphere/models"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.svc.Auth.Register(ctx, RegisterInput{Name: "Ayse", Email: "Ayse@Example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.Equal(t, "ayse@example.com", u.Email)
	assert.NotEqual(t, "s3cret!", u.Password)

	_, err = f.svc.Auth.Register(ctx, RegisterInput{Name: "Other", Email: "ayse@example.com", Password: "another"})
	requireKind(t, err, apperror.KindConflict)

	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: "ayse@example.com", Password: "wrong"})
	requireKind(t, err, apperror.KindAuth)
	_, err = f.svc.Auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "s3cret!"})
	requireKind(t, err, apperror.KindAuth)

	session, err := f.svc.Auth.Login(ctx, LoginInput{Email: "AYSE@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	id, err := f.svc.Auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "Ayse", id.Name)
	assert.False(t, id.IsAdmin())
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Auth.Register(context.Background(), RegisterInput{Name: "A", Email: "not-an-email", Password: "s3cret!"})
	requireKind(t, err, apperror.KindValidation)
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Auth.CreateUser(ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "changeme"}, models.RoleAdmin)
	require.NoError(t, err)
	session, err := f.svc.Auth.Login(ctx, LoginInput{Email: "root@example.com", Password: "changeme"})
	require.NoError(t, err)
	id, err := f.svc.Auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())

	_, err = f.svc.Auth.CreateUser(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "changeme"}, "owner")
	requireKind(t, err, apperror.KindValidation)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Auth.Register(ctx, RegisterInput{Name: "Ayse", Email: "ayse@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	session, err := f.svc.Auth.Login(ctx, LoginInput{Email: "ayse@example.com", Password: "s3cret!"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Auth.Logout(ctx, session.Token))
	_, err = f.svc.Auth.Authenticate(ctx, session.Token)
	requireKind(t, err, apperror.KindAuth)
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Auth.Register(ctx, RegisterInput{Name: "Ayse", Email: "ayse@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	session, err := f.svc.Auth.Login(ctx, LoginInput{Email: "ayse@example.com", Password: "s3cret!"})
	require.NoError(t, err)

	other := newFixture(t)
	other.svc.Auth.secret = []byte("someone-else")
	_, err = other.svc.Auth.Authenticate(ctx, session.Token)
	requireKind(t, err, apperror.KindAuth)

	_, err = f.svc.Auth.Authenticate(ctx, "")
	requireKind(t, err, apperror.KindAuth)
	_, err = f.svc.Auth.Authenticate(ctx, "garbage.token.value")
	requireKind(t, err, apperror.KindAuth)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jotbox/jotbox/internal/model"
	"github.com/jotbox/jotbox/internal/oauth"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
	"github.com/jotbox/jotbox/internal/pkg/jwt"
	"github.com/jotbox/jotbox/internal/repo"
)

var testSecret = []byte("test-secret")

func newTestAuthService(users repo.UserRepository, codes repo.OtpRepository) *AuthService {
	otp := newTestOtpService(codes, &recordingSender{})
	return NewAuthService(users, otp, testSecret, time.Hour)
}

func signupProfile() *SignupProfile {
	return &SignupProfile{FullName: "Ada Lovelace", DateOfBirth: "1815-12-10"}
}

func TestRequestCodeValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(repo.NewMemoryUserRepo(), repo.NewMemoryOtpRepo())

	_, err := svc.RequestCode(ctx, "not-an-email", nil)
	require.Equal(t, appErr.ErrInvalid, err)

	_, err = svc.RequestCode(ctx, "a@example.com", &SignupProfile{FullName: "A", DateOfBirth: "1999-01-01"})
	require.Equal(t, appErr.ErrInvalid, err)

	_, err = svc.RequestCode(ctx, "a@example.com", signupProfile())
	require.NoError(t, err)
}

func TestSignupCreatesAccountAndToken(t *testing.T) {
	ctx := context.Background()
	users := repo.NewMemoryUserRepo()
	svc := newTestAuthService(users, repo.NewMemoryOtpRepo())

	code, err := svc.RequestCode(ctx, "a@example.com", signupProfile())
	require.NoError(t, err)

	user, token, err := svc.VerifyCode(ctx, "a@example.com", code, signupProfile())
	require.NoError(t, err)
	require.Equal(t, "a@example.com", user.Email)
	require.Equal(t, model.ProviderOTP, user.Provider)

	claims, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, "Ada Lovelace", claims.FullName)
}

func TestSigninUnknownEmailReportsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(repo.NewMemoryUserRepo(), repo.NewMemoryOtpRepo())

	code, err := svc.RequestCode(ctx, "a@example.com", nil)
	require.NoError(t, err)

	_, _, err = svc.VerifyCode(ctx, "a@example.com", code, nil)
	require.Equal(t, appErr.ErrNotFound, err)
}

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := repo.NewMemoryUserRepo()
	svc := newTestAuthService(users, repo.NewMemoryOtpRepo())

	code, err := svc.RequestCode(ctx, "a@example.com", signupProfile())
	require.NoError(t, err)
	first, _, err := svc.VerifyCode(ctx, "a@example.com", code, signupProfile())
	require.NoError(t, err)

	code, err = svc.RequestCode(ctx, "a@example.com", signupProfile())
	require.NoError(t, err)
	second, _, err := svc.VerifyCode(ctx, "a@example.com", code, signupProfile())
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(repo.NewMemoryUserRepo(), repo.NewMemoryOtpRepo())

	code, err := svc.RequestCode(ctx, "a@example.com", signupProfile())
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, _, err = svc.VerifyCode(ctx, "a@example.com", wrong, signupProfile())
	require.Equal(t, appErr.ErrUnauthorized, err)

	// The pending code is still redeemable after a wrong attempt.
	_, _, err = svc.VerifyCode(ctx, "a@example.com", code, signupProfile())
	require.NoError(t, err)
}

func TestCrossProviderLoginKeepsFoundingProvider(t *testing.T) {
	ctx := context.Background()
	users := repo.NewMemoryUserRepo()
	authSvc := newTestAuthService(users, repo.NewMemoryOtpRepo())
	oauthSvc := NewOAuthService(users, testSecret, time.Hour, nil)

	code, err := authSvc.RequestCode(ctx, "a@example.com", signupProfile())
	require.NoError(t, err)
	created, _, err := authSvc.VerifyCode(ctx, "a@example.com", code, signupProfile())
	require.NoError(t, err)

	user, token, err := oauthSvc.LoginOrCreate(ctx, &oauth.Profile{
		Provider:       model.ProviderGoogle,
		ProviderUserID: "google-sub",
		Email:          "a@example.com",
		Name:           "Ada L",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Equal(t, model.ProviderOTP, user.Provider)
	require.Equal(t, model.ProviderGoogle, user.LastProvider)
	require.NotEmpty(t, token)
}

func TestGoogleLoginCreatesAccountLazily(t *testing.T) {
	ctx := context.Background()
	users := repo.NewMemoryUserRepo()
	oauthSvc := NewOAuthService(users, testSecret, time.Hour, nil)

	user, _, err := oauthSvc.LoginOrCreate(ctx, &oauth.Profile{
		Provider:       model.ProviderGoogle,
		ProviderUserID: "google-sub",
		Email:          "G@Example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "g@example.com", user.Email)
	require.Equal(t, model.ProviderGoogle, user.Provider)

	again, _, err := oauthSvc.LoginOrCreate(ctx, &oauth.Profile{
		Provider:       model.ProviderGoogle,
		ProviderUserID: "google-sub",
		Email:          "g@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
}

func TestGoogleLoginRequiresEmail(t *testing.T) {
	ctx := context.Background()
	oauthSvc := NewOAuthService(repo.NewMemoryUserRepo(), testSecret, time.Hour, nil)

	_, _, err := oauthSvc.LoginOrCreate(ctx, &oauth.Profile{Provider: model.ProviderGoogle})
	require.Equal(t, appErr.ErrInvalid, err)
}

package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/jotbox/jotbox/internal/model"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
	"github.com/jotbox/jotbox/internal/pkg/jwt"
	"github.com/jotbox/jotbox/internal/pkg/timeutil"
	"github.com/jotbox/jotbox/internal/repo"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type SignupProfile struct {
	FullName    string
	DateOfBirth string
}

type AuthService struct {
	users     repo.UserRepository
	otp       *OtpService
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users repo.UserRepository, otp *OtpService, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, otp: otp, jwtSecret: secret, jwtTTL: ttl}
}

// RequestCode issues a one-time code for the email. On the signup path the
// profile fields are validated up front so the user is not asked for a code
// they can never redeem.
func (s *AuthService) RequestCode(ctx context.Context, email string, profile *SignupProfile) (string, error) {
	email = NormalizeEmail(email)
	if !emailRegex.MatchString(email) {
		return "", appErr.ErrInvalid
	}
	if profile != nil {
		if err := validateProfile(profile); err != nil {
			return "", err
		}
	}
	return s.otp.Issue(ctx, email)
}

// VerifyCode redeems a code and returns the account plus a session token.
// Signin against an unknown email reports not-found; signup creates the
// account with the submitted profile fields.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string, profile *SignupProfile) (*model.User, string, error) {
	email = NormalizeEmail(email)
	if !emailRegex.MatchString(email) || len(code) != 6 {
		return nil, "", appErr.ErrInvalid
	}
	if err := s.otp.Verify(ctx, email, code); err != nil {
		return nil, "", err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !appErr.IsNotFound(err) {
			return nil, "", err
		}
		if profile == nil {
			return nil, "", appErr.ErrNotFound
		}
		user, err = s.createUser(ctx, email, profile)
		if err != nil {
			return nil, "", err
		}
	} else if user.LastProvider != model.ProviderOTP {
		if err := s.users.UpdateLastProvider(ctx, user.ID, model.ProviderOTP, timeutil.NowUnix()); err != nil {
			return nil, "", err
		}
		user.LastProvider = model.ProviderOTP
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Provider, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) createUser(ctx context.Context, email string, profile *SignupProfile) (*model.User, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		FullName:     strings.TrimSpace(profile.FullName),
		DateOfBirth:  strings.TrimSpace(profile.DateOfBirth),
		Provider:     model.ProviderOTP,
		LastProvider: model.ProviderOTP,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent first logins for the same email; the loser reuses
		// the winner's account.
		if appErr.IsConflict(err) {
			return s.users.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}

func validateProfile(profile *SignupProfile) error {
	if len(strings.TrimSpace(profile.FullName)) < 2 {
		return appErr.ErrInvalid
	}
	if len(strings.TrimSpace(profile.DateOfBirth)) < 4 {
		return appErr.ErrInvalid
	}
	return nil
}

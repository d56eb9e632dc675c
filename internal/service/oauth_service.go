package service

import (
	"context"
	"strings"
	"time"

	"github.com/jotbox/jotbox/internal/model"
	"github.com/jotbox/jotbox/internal/oauth"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
	"github.com/jotbox/jotbox/internal/pkg/jwt"
	"github.com/jotbox/jotbox/internal/pkg/timeutil"
	"github.com/jotbox/jotbox/internal/repo"
)

type OAuthService struct {
	users     repo.UserRepository
	jwtSecret []byte
	jwtTTL    time.Duration
	providers map[string]oauth.Provider
}

func NewOAuthService(users repo.UserRepository, secret []byte, ttl time.Duration, providers map[string]oauth.Provider) *OAuthService {
	if providers == nil {
		providers = map[string]oauth.Provider{}
	}
	return &OAuthService{users: users, jwtSecret: secret, jwtTTL: ttl, providers: providers}
}

func (s *OAuthService) GetAuthURL(provider, state string) (string, error) {
	impl := s.providers[strings.ToLower(provider)]
	if impl == nil {
		return "", appErr.ErrInvalid
	}
	return impl.AuthURL(state)
}

func (s *OAuthService) ExchangeCode(ctx context.Context, provider, code string) (*oauth.Profile, error) {
	impl := s.providers[strings.ToLower(provider)]
	if impl == nil {
		return nil, appErr.ErrInvalid
	}
	return impl.ExchangeCode(ctx, code)
}

// LoginOrCreate maps a verified identity-provider profile onto an account.
// The email is the sole identity key: an account created through the OTP path
// can log in through Google and vice versa. The founding provider is kept and
// last_provider records the method actually used.
func (s *OAuthService) LoginOrCreate(ctx context.Context, profile *oauth.Profile) (*model.User, string, error) {
	if profile == nil || profile.Provider == "" || profile.Email == "" {
		return nil, "", appErr.ErrInvalid
	}
	email := NormalizeEmail(profile.Email)
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.LastProvider != profile.Provider {
			if err := s.users.UpdateLastProvider(ctx, user.ID, profile.Provider, timeutil.NowUnix()); err != nil {
				return nil, "", err
			}
			user.LastProvider = profile.Provider
		}
	case appErr.IsNotFound(err):
		now := timeutil.NowUnix()
		user = &model.User{
			ID:           newID(),
			Email:        email,
			FullName:     strings.TrimSpace(profile.Name),
			Provider:     profile.Provider,
			LastProvider: profile.Provider,
			Ctime:        now,
			Mtime:        now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if appErr.IsConflict(err) {
				user, err = s.users.GetByEmail(ctx, email)
				if err != nil {
					return nil, "", err
				}
			} else {
				return nil, "", err
			}
		}
	default:
		return nil, "", err
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Provider, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

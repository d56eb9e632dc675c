package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jotbox/jotbox/internal/model"
	"github.com/jotbox/jotbox/internal/pkg/codehash"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
	"github.com/jotbox/jotbox/internal/pkg/timeutil"
	"github.com/jotbox/jotbox/internal/repo"
)

type OtpService struct {
	codes         repo.OtpRepository
	sender        EmailSender
	ttl           time.Duration
	cooldown      time.Duration
	maxAttempts   int
	exposeDevCode bool
}

func NewOtpService(codes repo.OtpRepository, sender EmailSender, ttl, cooldown time.Duration, maxAttempts int, exposeDevCode bool) *OtpService {
	return &OtpService{
		codes:         codes,
		sender:        sender,
		ttl:           ttl,
		cooldown:      cooldown,
		maxAttempts:   maxAttempts,
		exposeDevCode: exposeDevCode,
	}
}

// Issue stores a fresh 6-digit code for the email, replacing any pending one,
// and hands it to the mail sender. Delivery failure fails the whole call: the
// user must not be told a code is on its way when it is not. The returned
// string is empty unless expose_dev_code is configured.
func (s *OtpService) Issue(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", appErr.ErrInvalid
	}
	if err := s.ensureCooldown(ctx, email); err != nil {
		return "", err
	}
	code := s.generateCode()
	hash, err := codehash.Hash(code)
	if err != nil {
		return "", err
	}
	now := timeutil.NowUnix()
	item := &model.OtpCode{
		ID:        newID(),
		Email:     email,
		CodeHash:  hash,
		Attempts:  0,
		Ctime:     now,
		ExpiresAt: now + int64(s.ttl/time.Second),
	}
	if err := s.codes.Save(ctx, item); err != nil {
		return "", err
	}
	minutes := int(s.ttl / time.Minute)
	if err := s.sender.Send(email, "Your one-time password",
		fmt.Sprintf("Your OTP is %s. It is valid for %d minutes.", code, minutes)); err != nil {
		return "", err
	}
	if s.exposeDevCode {
		return code, nil
	}
	return "", nil
}

// Verify checks the submitted code and consumes it on success. Every failure
// mode (no pending code, expired, mismatch, attempt limit reached, lost race
// on consumption) collapses into ErrUnauthorized.
func (s *OtpService) Verify(ctx context.Context, email, submitted string) error {
	email = NormalizeEmail(email)
	submitted = strings.TrimSpace(submitted)
	if email == "" || submitted == "" {
		return appErr.ErrInvalid
	}
	item, err := s.codes.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrUnauthorized
		}
		return err
	}
	now := timeutil.NowUnix()
	if item.ExpiresAt <= now {
		return appErr.ErrUnauthorized
	}
	if item.Attempts >= s.maxAttempts {
		return appErr.ErrUnauthorized
	}
	if err := codehash.Compare(item.CodeHash, submitted); err != nil {
		attempts, incErr := s.codes.IncrementAttempts(ctx, email, item.ID)
		if incErr == nil && attempts >= s.maxAttempts {
			// Locked out: invalidate the code so it cannot be brute-forced.
			_ = s.codes.Consume(ctx, email, item.ID)
		}
		return appErr.ErrUnauthorized
	}
	if err := s.codes.Consume(ctx, email, item.ID); err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrUnauthorized
		}
		return err
	}
	return nil
}

func (s *OtpService) ensureCooldown(ctx context.Context, email string) error {
	item, err := s.codes.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if item.Ctime+int64(s.cooldown/time.Second) > timeutil.NowUnix() {
		return appErr.ErrTooMany
	}
	return nil
}

func (s *OtpService) generateCode() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("%06d", 100000+rng.Intn(900000))
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

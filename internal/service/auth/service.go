package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/myanmatch/backend/internal/app"
	svcErr "github.com/myanmatch/backend/internal/errors"
	"github.com/myanmatch/backend/internal/repository"
)

const (
	otpDigits      = 6
	otpTTL         = 10 * time.Minute
	maxOTPAttempts = 5
	minPasswordLen = 8
)

// Service owns the forgot-password OTP flow: generate and deliver a
// short-lived code, verify it, and reset the credential.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
}

// NewService creates the auth service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
	}
}

// SendOTP generates a reset code for the account and delivers it.
//
// Behavior:
//   - The code lives in Redis with a 10-minute TTL; re-sending replaces
//     it and clears the failed-attempt counter.
//   - Delivery goes to email via the SMTP relay; when an SMS sender is
//     configured it is attempted as well, but its absence or failure
//     never blocks the email path.
//   - A relay failure surfaces as 502 so the client can tell the user.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return svcErr.InvalidArgument("email is required")
	}

	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.New(http.StatusNotFound, "account not found")
		}
		return err
	}

	code, err := randomCode(otpDigits)
	if err != nil {
		return err
	}

	if err := s.appCtx.RedisCache.StoreOTP(ctx, email, code, otpTTL); err != nil {
		return err
	}

	if s.appCtx.Mailer == nil {
		return svcErr.New(http.StatusBadGateway, "mail relay is not configured")
	}
	if err := s.appCtx.Mailer.SendOTP(email, code); err != nil {
		s.appCtx.Logger.Error("otp mail delivery failed", "err", err)
		return svcErr.New(http.StatusBadGateway, "failed to send verification code")
	}

	if s.appCtx.SMS != nil && profile.Phone != "" {
		// phone delivery is best-effort; the email already went out
		if err := s.appCtx.SMS.SendOTP(ctx, profile.Phone, code); err != nil {
			s.appCtx.Logger.Warn("otp sms delivery failed", "err", err)
		}
	}

	s.appCtx.Logger.Debug("otp issued", "email", email)
	return nil
}

// VerifyOTP checks a submitted code against the stored one.
//
// Behavior:
//   - Wrong or expired codes are indistinguishable to the caller (400).
//   - Five failed attempts invalidate the code entirely.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return svcErr.InvalidArgument("email and otp_code are required")
	}

	stored, err := s.appCtx.RedisCache.GetOTP(ctx, email)
	if err != nil {
		return err
	}
	if stored == "" {
		return svcErr.InvalidArgument("invalid or expired code")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		attempts, aerr := s.appCtx.RedisCache.IncrOTPAttempts(ctx, email, otpTTL)
		if aerr == nil && attempts >= maxOTPAttempts {
			_ = s.appCtx.RedisCache.BurnOTP(ctx, email)
		}
		return svcErr.InvalidArgument("invalid or expired code")
	}

	return nil
}

// Reset re-verifies the code, replaces the credential and burns the code.
func (s *Service) Reset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return svcErr.InvalidArgument(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	if err := s.VerifyOTP(ctx, email, code); err != nil {
		return err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.New(http.StatusNotFound, "account not found")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.profileRepo.UpdatePassword(ctx, profile.UserID, string(hash)); err != nil {
		return err
	}

	_ = s.appCtx.RedisCache.BurnOTP(ctx, email)

	s.appCtx.Logger.Info("password reset completed", "user", profile.UserID)
	return nil
}

// randomCode draws a uniform numeric code of the given length.
func randomCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

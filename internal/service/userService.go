package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mk1945/cloudvault/internal/domain"
	"github.com/mk1945/cloudvault/internal/platform/crypto"
	"github.com/mk1945/cloudvault/internal/platform/email"
	"github.com/mk1945/cloudvault/internal/store"
)

// Errors returned by the user service.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotVerified = errors.New("account is not verified yet")
	ErrInvalidUserToken   = errors.New("invalid or expired token")
)

const (
	activationTokenTTL = 24 * time.Hour
	resetTokenTTL      = 10 * time.Minute
)

// UserService defines the interface for account-related business logic.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Activate(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// userService is the concrete implementation of the UserService interface.
type userService struct {
	userStore store.UserStore
	tokenSvc  crypto.TokenGenerator
	passSvc   crypto.PasswordManager
	emailSvc  email.EmailService
}

// NewUserService creates a new instance of the user service.
func NewUserService(
	userStore store.UserStore,
	ts crypto.TokenGenerator,
	ps crypto.PasswordManager,
	es email.EmailService,
) UserService {
	return &userService{
		userStore: userStore,
		tokenSvc:  ts,
		passSvc:   ps,
		emailSvc:  es,
	}
}

// newUserToken generates a random one-time token and the SHA-256 hash under
// which it is stored. Only the hash ever reaches the database; the raw value
// goes into the emailed link.
func newUserToken() (raw, hashed string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}

func hashUserToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Register creates an unverified account and mails an activation link. The
// registration succeeds even when the email cannot be sent; the activation
// token stays valid so the link can be recovered from server logs.
func (s *userService) Register(ctx context.Context, username, emailAddr, password string) (*domain.User, error) {
	if _, err := s.userStore.FindByEmail(ctx, emailAddr); !errors.Is(err, store.ErrNotFound) {
		if err == nil {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	if _, err := s.userStore.FindByUsername(ctx, username); !errors.Is(err, store.ErrNotFound) {
		if err == nil {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	hashedPassword, err := s.passSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rawToken, hashedToken, err := newUserToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expire := now.Add(activationTokenTTL)
	user := &domain.User{
		Username:                username,
		Email:                   emailAddr,
		PasswordHash:            hashedPassword,
		VerificationToken:       hashedToken,
		VerificationTokenExpire: &expire,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	// Sending email can be slow, so it runs in a background goroutine and
	// never fails the registration.
	go func() {
		if err := s.emailSvc.SendActivationEmail(user, rawToken); err != nil {
			fmt.Printf("Failed to send activation email to %s: %v\n", user.Email, err)
		}
	}()

	return user, nil
}

// Activate marks the account holding the given activation token as verified
// and consumes the token.
func (s *userService) Activate(ctx context.Context, token string) error {
	user, err := s.userStore.FindByVerificationToken(ctx, hashUserToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidUserToken
		}
		return err
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationTokenExpire = nil
	user.UpdatedAt = time.Now()

	return s.userStore.Update(ctx, user)
}

// Login authenticates a verified account and issues a JWT pair.
func (s *userService) Login(ctx context.Context, emailAddr, password string) (*domain.User, string, string, error) {
	user, err := s.userStore.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if err := s.passSvc.Compare(user.PasswordHash, password); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, "", "", ErrAccountNotVerified
	}

	accessToken, refreshToken, err := s.tokenSvc.NewPair(user)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to create token pair: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

// ForgotPassword issues a short-lived reset token and mails the reset link.
func (s *userService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userStore.FindByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}

	rawToken, hashedToken, err := newUserToken()
	if err != nil {
		return err
	}

	expire := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = hashedToken
	user.ResetPasswordExpire = &expire
	user.UpdatedAt = time.Now()

	if err := s.userStore.Update(ctx, user); err != nil {
		return err
	}

	go func() {
		if err := s.emailSvc.SendPasswordResetEmail(user, rawToken); err != nil {
			fmt.Printf("Failed to send password reset email to %s: %v\n", user.Email, err)
		}
	}()

	return nil
}

// ResetPassword sets a new password for the account holding the given reset
// token and consumes the token.
func (s *userService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.userStore.FindByResetToken(ctx, hashUserToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidUserToken
		}
		return err
	}

	hashedPassword, err := s.passSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	user.PasswordHash = hashedPassword
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	user.UpdatedAt = time.Now()

	return s.userStore.Update(ctx, user)
}

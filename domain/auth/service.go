package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/mailer"
	"github.com/tirzah-studio/site-api/pkg/metrics"
	"github.com/tirzah-studio/site-api/pkg/token"
	"github.com/tirzah-studio/site-api/utils"
)

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, r mailer.PasswordReset) error
}

type Config struct {
	SessionTTL        time.Duration
	ResetTTL          time.Duration
	MaxAttempts       int
	BlockDuration     time.Duration
	AllowRegistration bool
}

type Service struct {
	store  Store
	tokens *token.Issuer
	mail   ResetMailer
	cfg    Config
	log    logger.Logger
	now    func() time.Time
}

func NewService(store Store, tokens *token.Issuer, mail ResetMailer, cfg Config, log logger.Logger) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = 15 * time.Minute
	}
	return &Service{
		store:  store,
		tokens: tokens,
		mail:   mail,
		cfg:    cfg,
		log:    log.WithComponent("auth"),
		now:    time.Now,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// checkPassword compares against a fixed hash when the admin is unknown so
// both failure paths cost one bcrypt comparison.
func checkPassword(a *Admin, password string) bool {
	if a == nil {
		dummyHashOnce.Do(func() {
			dummyHash, _ = utils.HashPassword("not-a-real-password")
		})
		utils.CheckPasswordHash(password, dummyHash)
		return false
	}
	return utils.CheckPasswordHash(password, a.Password)
}

func internal(err error) *apperrors.AppError {
	return apperrors.NewInternal(apperrors.ErrCodeDatabaseError, msgInternal, err)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	log := s.log.WithContext(ctx)
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingField, msgCredentialsRequired)
	}

	now := s.now()
	key := AttemptKey{Email: email, IP: req.IP}
	att, err := s.store.Attempts(ctx, key)
	if err != nil {
		log.Error("Failed to fetch login attempts", err, logger.Email(email))
		return nil, internal(err)
	}
	if att.BlockedUntil.Valid {
		if att.BlockedUntil.Time.After(now) {
			metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
			log.Warn("Login attempt while locked", logger.Email(email), logger.RemoteIP(req.IP))
			return nil, lockedError(att.BlockedUntil.Time.Sub(now))
		}
		if err := s.store.ClearAttempts(ctx, key); err != nil {
			log.Error("Failed to reset login attempts after block period", err, logger.Email(email))
			return nil, internal(err)
		}
	}

	admin, err := s.store.AdminByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrAdminNotFound) {
		log.Error("Failed to fetch admin", err, logger.Email(email))
		return nil, internal(err)
	}
	if !checkPassword(admin, req.Password) {
		return nil, s.failedAttempt(ctx, log, key, now)
	}

	if att.FailedAttempts > 0 {
		if err := s.store.ClearAttempts(ctx, key); err != nil {
			log.Warn("Failed to reset login attempts on success", logger.Email(email), logger.Err(err))
		}
	}

	signed, err := s.tokens.IssueSession(admin.ID, admin.TokenVersion, s.cfg.SessionTTL)
	if err != nil {
		log.Error("Failed to issue session token", err, logger.AdminID(admin.ID))
		return nil, apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, msgInternal, err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultOK).Inc()
	log.Info("Admin logged in", logger.AdminID(admin.ID), logger.Email(admin.Email))
	return &SessionResponse{Token: signed, Admin: admin.Response()}, nil
}

// failedAttempt records a wrong password. The attempt that reaches the
// limit still answers 401; only later attempts from the same client see 429.
func (s *Service) failedAttempt(ctx context.Context, log logger.Logger, key AttemptKey, now time.Time) error {
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultRejected).Inc()
	invalid := apperrors.NewUnauthorized(apperrors.ErrCodeInvalidCredentials, msgInvalidCredentials)

	n, err := s.store.RecordFailure(ctx, key, now)
	if err != nil {
		log.Error("Failed to record login attempt", err, logger.Email(key.Email))
		return invalid
	}
	if n < s.cfg.MaxAttempts {
		log.Debug("Failed login attempt", logger.Email(key.Email), logger.Int("attempts", n))
		return invalid
	}

	if err := s.store.Block(ctx, key, now.Add(s.cfg.BlockDuration)); err != nil {
		log.Error("Failed to block client", err, logger.Email(key.Email), logger.RemoteIP(key.IP))
		return invalid
	}
	log.Warn("Client blocked after too many failed logins",
		logger.Email(key.Email), logger.RemoteIP(key.IP), logger.Int("attempts", n))
	return invalid
}

func lockedError(remaining time.Duration) *apperrors.AppError {
	minutes := int(math.Ceil(remaining.Minutes()))
	return apperrors.NewTooManyRequests(apperrors.ErrCodeAccountLocked,
		fmt.Sprintf("Too many failed login attempts. Please try again in %d minutes.", minutes))
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	log := s.log.WithContext(ctx)
	if !s.cfg.AllowRegistration {
		return nil, apperrors.NewForbidden(apperrors.ErrCodeRegistrationClosed, msgRegistrationClosed)
	}

	email := strings.TrimSpace(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingField, msgAllFieldsRequired)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, msgInternal, err)
	}
	admin := &Admin{ID: uuid.NewString(), Email: email, Password: hash, Name: name}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, ErrAdminExists) {
			return nil, apperrors.NewConflict(apperrors.ErrCodeResourceExists, msgAdminExists)
		}
		log.Error("Failed to create admin", err, logger.Email(email))
		return nil, internal(err)
	}

	signed, err := s.tokens.IssueSession(admin.ID, admin.TokenVersion, s.cfg.SessionTTL)
	if err != nil {
		return nil, apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, msgInternal, err)
	}

	log.Info("Admin registered", logger.AdminID(admin.ID), logger.Email(admin.Email))
	return &SessionResponse{Token: signed, Admin: admin.Response()}, nil
}

// Verify resolves the bearer header to its admin. An unknown admin is a 404.
func (s *Service) Verify(ctx context.Context, header string) (*VerifyResponse, error) {
	admin, err := s.session(ctx, header,
		apperrors.NewNotFound(apperrors.ErrCodeAdminNotFound, msgAdminNotFound))
	if err != nil {
		return nil, err
	}
	return &VerifyResponse{Admin: admin.Response()}, nil
}

// Authenticate resolves the bearer header for protected routes. An unknown
// admin is treated as an invalid token.
func (s *Service) Authenticate(ctx context.Context, header string) (*Admin, error) {
	return s.session(ctx, header,
		apperrors.NewForbidden(apperrors.ErrCodeTokenInvalid, msgInvalidToken))
}

func (s *Service) session(ctx context.Context, header string, missing *apperrors.AppError) (*Admin, error) {
	credential, ok := token.FromHeader(header)
	if !ok {
		return nil, apperrors.NewUnauthorized(apperrors.ErrCodeTokenMissing, msgTokenRequired)
	}
	invalid := apperrors.NewForbidden(apperrors.ErrCodeTokenInvalid, msgInvalidToken)

	claims, err := s.tokens.Verify(credential, token.KindSession)
	if err != nil {
		s.log.WithContext(ctx).Debug("Rejected session token", logger.Err(err))
		return nil, invalid
	}
	admin, err := s.store.AdminByID(ctx, claims.AdminID())
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, missing
		}
		s.log.WithContext(ctx).Error("Failed to fetch admin", err, logger.AdminID(claims.AdminID()))
		return nil, internal(err)
	}
	if admin.TokenVersion != claims.TokenVersion {
		s.log.WithContext(ctx).Debug("Rejected stale session token", logger.AdminID(admin.ID))
		return nil, invalid
	}
	return admin, nil
}

// ForgotPassword emails a reset link. The response does not reveal whether
// the email belongs to an admin.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	log := s.log.WithContext(ctx)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingField, msgEmailRequired)
	}
	generic := &MessageResponse{Message: msgResetSent}

	admin, err := s.store.AdminByEmail(ctx, email)
	if errors.Is(err, ErrAdminNotFound) {
		log.Debug("Password reset requested for unknown email", logger.Email(email))
		return generic, nil
	}
	if err != nil {
		log.Error("Failed to fetch admin", err, logger.Email(email))
		return nil, internal(err)
	}

	reset := &PasswordReset{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		ExpiresAt: s.now().Add(s.cfg.ResetTTL),
	}
	if err := s.store.CreateReset(ctx, reset); err != nil {
		log.Error("Failed to store password reset", err, logger.AdminID(admin.ID))
		return nil, internal(err)
	}

	signed, _, err := s.tokens.IssueReset(admin.ID, reset.ID, s.cfg.ResetTTL)
	if err != nil {
		return nil, apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, msgInternal, err)
	}

	err = s.mail.SendPasswordReset(ctx, mailer.PasswordReset{
		Email:     admin.Email,
		Name:      admin.Name,
		Token:     signed,
		ExpiresIn: s.cfg.ResetTTL,
	})
	if err != nil {
		log.Error("Failed to send password reset email", err, logger.AdminID(admin.ID))
		return nil, apperrors.NewInternal(apperrors.ErrCodeEmailSendFailed, msgInternal, err)
	}

	log.Info("Password reset link sent", logger.AdminID(admin.ID))
	return generic, nil
}

// ResetPassword sets a new password with a reset token. Each token works
// once and every existing session is revoked.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	log := s.log.WithContext(ctx)
	if req.Token == "" || req.Password == "" {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeMissingField, msgResetFieldsRequired)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeInvalidPassword, msgPasswordTooShort)
	}

	invalid := apperrors.NewForbidden(apperrors.ErrCodeTokenInvalid, msgInvalidToken)
	claims, err := s.tokens.Verify(req.Token, token.KindReset)
	if err != nil {
		log.Debug("Rejected reset token", logger.Err(err))
		return nil, invalid
	}

	adminID := claims.AdminID()
	if _, err := s.store.AdminByID(ctx, adminID); err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, apperrors.NewNotFound(apperrors.ErrCodeAdminNotFound, msgAdminNotFound)
		}
		log.Error("Failed to fetch admin", err, logger.AdminID(adminID))
		return nil, internal(err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, msgInternal, err)
	}

	err = s.store.ConsumeReset(ctx, claims.ID, adminID, hash, s.now())
	switch {
	case errors.Is(err, ErrResetUnavailable):
		log.Warn("Password reset token already used or superseded", logger.AdminID(adminID))
		return nil, invalid
	case errors.Is(err, ErrAdminNotFound):
		return nil, apperrors.NewNotFound(apperrors.ErrCodeAdminNotFound, msgAdminNotFound)
	case err != nil:
		log.Error("Failed to reset password", err, logger.AdminID(adminID))
		return nil, internal(err)
	}

	log.Info("Password reset completed", logger.AdminID(adminID))
	return &MessageResponse{Message: msgPasswordUpdated}, nil
}

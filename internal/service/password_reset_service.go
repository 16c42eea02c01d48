package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/config"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

const (
	// GenericResetMessage is returned by every RequestReset call, whatever happened.
	GenericResetMessage = "If an account with that email exists, a password reset link has been sent."

	msgResetSuccess      = "Your password has been reset successfully."
	msgPasswordsMismatch = "Passwords do not match."
	msgPasswordTooShort  = "Password must be at least %d characters long."
	msgPasswordTooLong   = "Password must be at most %d bytes long."
	msgInvalidToken      = "Invalid or expired reset token."
	msgGenericFailure    = "Unable to reset password at this time. Please try again later."

	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	// Never accept a policy weaker than this.
	minPasswordFloor = 8
)

var _ PasswordResetter = (*PasswordResetService)(nil)

// errTokenNotClaimed aborts a credential change whose token was consumed by someone else.
var errTokenNotClaimed = errors.New("password reset token already consumed or expired")

// ResetPolicy holds the tunables of the reset flow.
type ResetPolicy struct {
	TokenTTL          time.Duration
	RateLimit         int
	RateWindow        time.Duration
	MinPasswordLength int
	MailTimeout       time.Duration
	ResetURLBase      string
	AppName           string
}

// NewResetPolicy builds a ResetPolicy from the loaded configuration.
func NewResetPolicy(cfg *config.Config) ResetPolicy {
	return ResetPolicy{
		TokenTTL:          cfg.Security.PasswordResetTokenExpiry,
		RateLimit:         cfg.Security.ResetRateLimit,
		RateWindow:        cfg.Security.ResetRateWindow,
		MinPasswordLength: cfg.Security.MinPasswordLength,
		MailTimeout:       cfg.SMTP.Timeout,
		ResetURLBase:      cfg.ResetURLBase,
		AppName:           cfg.AppName,
	}
}

// PasswordResetService runs the reset request and reset submission flows.
type PasswordResetService struct {
	users   repository.UserRepository
	tokens  TokenStore
	limiter RateLimiter
	mailer  Mailer
	hasher  CredentialHasher
	// Optional. When set, credential update and token consumption share one transaction.
	tx     repository.Transactor
	policy ResetPolicy
}

// NewPasswordResetService creates a new PasswordResetService. tx may be nil.
func NewPasswordResetService(
	users repository.UserRepository,
	tokens TokenStore,
	limiter RateLimiter,
	mailer Mailer,
	hasher CredentialHasher,
	tx repository.Transactor,
	policy ResetPolicy,
) *PasswordResetService {
	if policy.MinPasswordLength < minPasswordFloor {
		policy.MinPasswordLength = minPasswordFloor
	}
	return &PasswordResetService{
		users:   users,
		tokens:  tokens,
		limiter: limiter,
		mailer:  mailer,
		hasher:  hasher,
		tx:      tx,
		policy:  policy,
	}
}

// RequestReset issues a token for email and mails the reset link.
// The response never reveals whether the account exists or the requester was throttled.
func (s *PasswordResetService) RequestReset(ctx context.Context, requester, email string) models.RequestResetResponse {
	ack := models.RequestResetResponse{Message: GenericResetMessage}
	email = strings.ToLower(strings.TrimSpace(email))

	admitted, err := s.limiter.Admit(ctx, requester, s.policy.RateLimit, s.policy.RateWindow)
	if err != nil {
		log.Error().Err(err).Str("requester", requester).Msg("Rate limiter unavailable, dropping reset request")
		return ack
	}
	if !admitted {
		log.Warn().Str("requester", requester).Str("outcome", string(models.ResultRateLimited)).Msg("Password reset request rate limited")
		return ack
	}

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Info().Str("requester", requester).Str("outcome", string(models.ResultAccountNotFound)).Msg("Password reset requested for unknown email")
		} else {
			log.Error().Err(err).Str("requester", requester).Str("outcome", string(models.ResultPersistenceError)).Msg("Failed to look up account for password reset")
		}
		return ack
	}

	token, err := s.tokens.Issue(ctx, account.Email, s.policy.TokenTTL)
	if err != nil {
		log.Error().Err(err).Str("email", account.Email).Str("outcome", string(models.ResultPersistenceError)).Msg("Failed to issue password reset token")
		return ack
	}

	link, err := s.resetLink(token.Secret)
	if err != nil {
		log.Error().Err(err).Str("tokenID", token.ID.String()).Msg("Failed to build password reset link")
		return ack
	}

	if err := s.sendResetMail(ctx, account.Email, link); err != nil {
		log.Error().Err(err).Str("email", account.Email).Str("tokenID", token.ID.String()).Str("outcome", string(models.ResultMailError)).Msg("Failed to send password reset email")
		return ack
	}

	log.Info().Str("email", account.Email).Str("tokenID", token.ID.String()).Msg("Password reset token issued")
	return ack
}

func (s *PasswordResetService) resetLink(secret string) (string, error) {
	u, err := url.Parse(s.policy.ResetURLBase)
	if err != nil {
		return "", fmt.Errorf("invalid reset url base: %w", err)
	}
	q := u.Query()
	q.Set("token", secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *PasswordResetService) sendResetMail(ctx context.Context, toEmail, link string) error {
	if s.policy.MailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.policy.MailTimeout)
		defer cancel()
	}

	subject := fmt.Sprintf("Reset your %s password", s.policy.AppName)
	body := fmt.Sprintf("Hello,\n\nWe received a request to reset the password for your %s account.\n\n"+
		"Open the link below to choose a new password:\n\n%s\n\n"+
		"This link expires in %s and can be used only once.\n\n"+
		"If you did not request this, please ignore this email.",
		s.policy.AppName, link, s.policy.TokenTTL)

	return s.mailer.Send(ctx, toEmail, subject, body)
}

// CheckToken reports whether secret can still be used to reset a password.
func (s *PasswordResetService) CheckToken(ctx context.Context, secret string) models.ValidateTokenResponse {
	token, ok, err := s.tokens.Validate(ctx, secret)
	if err != nil {
		log.Error().Err(err).Msg("Failed to validate password reset token")
		return models.ValidateTokenResponse{Valid: false}
	}
	if !ok && token != nil {
		log.Debug().Str("tokenID", token.ID.String()).Msg("Password reset token no longer usable")
	}
	return models.ValidateTokenResponse{Valid: ok}
}

// Submit replaces the credential of the token's owner and burns the token.
func (s *PasswordResetService) Submit(ctx context.Context, secret, newPassword, confirmPassword string) models.SubmitResetResult {
	if newPassword != confirmPassword {
		return failure(models.ResultPasswordsMismatch, msgPasswordsMismatch)
	}
	if utf8.RuneCountInString(newPassword) < s.policy.MinPasswordLength {
		return failure(models.ResultPasswordTooShort, fmt.Sprintf(msgPasswordTooShort, s.policy.MinPasswordLength))
	}
	if len(newPassword) > maxPasswordBytes {
		return failure(models.ResultPasswordTooLong, fmt.Sprintf(msgPasswordTooLong, maxPasswordBytes))
	}

	token, ok, err := s.tokens.Validate(ctx, secret)
	if err != nil {
		log.Error().Err(err).Str("outcome", string(models.ResultPersistenceError)).Msg("Failed to validate password reset token")
		return failure(models.ResultPersistenceError, msgGenericFailure)
	}
	if !ok {
		return failure(models.ResultInvalidOrExpired, msgInvalidToken)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Error().Err(err).Str("tokenID", token.ID.String()).Msg("Failed to hash new password")
		return failure(models.ResultPersistenceError, msgGenericFailure)
	}

	if s.tx != nil {
		err = s.tx.WithinTx(ctx, func(ctx context.Context, stores repository.Stores) error {
			return s.updateThenConsume(ctx, stores.Users, s.tokens.WithRepository(stores.Tokens), token, secret, hash)
		})
	} else {
		err = s.consumeThenUpdate(ctx, token, secret, hash)
	}

	switch {
	case err == nil:
		log.Info().Str("email", token.Owner).Str("tokenID", token.ID.String()).Msg("Password reset completed")
		return models.SubmitResetResult{Kind: models.ResultSuccess, Success: true, Message: msgResetSuccess}
	case errors.Is(err, errTokenNotClaimed), errors.Is(err, repository.ErrUserNotFound):
		log.Warn().Err(err).Str("tokenID", token.ID.String()).Msg("Password reset rejected")
		return failure(models.ResultInvalidOrExpired, msgInvalidToken)
	default:
		log.Error().Err(err).Str("tokenID", token.ID.String()).Str("outcome", string(models.ResultPersistenceError)).Msg("Failed to complete password reset")
		return failure(models.ResultPersistenceError, msgGenericFailure)
	}
}

// updateThenConsume runs inside a transaction: any error undoes the credential update.
func (s *PasswordResetService) updateThenConsume(ctx context.Context, users repository.UserRepository, tokens TokenStore, token *models.ResetToken, secret, hash string) error {
	account, err := users.FindByEmail(ctx, token.Owner)
	if err != nil {
		return err
	}
	if err := users.UpdateCredential(ctx, account.ID, hash); err != nil {
		return err
	}
	won, err := tokens.Consume(ctx, secret)
	if err != nil {
		return err
	}
	if !won {
		return errTokenNotClaimed
	}
	return nil
}

// consumeThenUpdate claims the token before touching the credential, so a losing
// concurrent submission never overwrites the winner's password. A failed update
// after a successful claim leaves the token burned.
func (s *PasswordResetService) consumeThenUpdate(ctx context.Context, token *models.ResetToken, secret, hash string) error {
	account, err := s.users.FindByEmail(ctx, token.Owner)
	if err != nil {
		return err
	}
	won, err := s.tokens.Consume(ctx, secret)
	if err != nil {
		return err
	}
	if !won {
		return errTokenNotClaimed
	}
	if err := s.users.UpdateCredential(ctx, account.ID, hash); err != nil {
		return fmt.Errorf("token %s consumed but credential update failed: %w", token.ID, err)
	}
	return nil
}

func failure(kind models.ResultKind, message string) models.SubmitResetResult {
	return models.SubmitResetResult{Kind: kind, Success: false, Message: message}
}

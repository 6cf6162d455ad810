package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
	"github.com/MKhiriev/go-assembly-sync/models"
)

var (
	ErrAuthDisabled            = errors.New("authentication is disabled")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrUnknownUser             = errors.New("user does not exist")
)

// AuthService issues and verifies the bearer tokens of the reference
// server. A user is identified by the id of its "user" model.
type AuthService struct {
	repo store.ModelsRepository

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs an AuthService from the server's app config.
func NewAuthService(repo store.ModelsRepository, cfg config.App, log *logger.Logger) *AuthService {
	return &AuthService{
		repo:          repo,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        log,
	}
}

// Enabled reports whether a sign key is configured.
func (a *AuthService) Enabled() bool {
	return a.tokenSignKey != ""
}

// CreateToken issues a signed JWT for an existing user.
func (a *AuthService) CreateToken(ctx context.Context, userID int64) (models.Token, error) {
	if !a.Enabled() {
		return models.Token{}, ErrAuthDisabled
	}

	users, err := a.repo.GetModels(ctx, models.CollectionUser, []int{int(userID)})
	if err != nil {
		return models.Token{}, fmt.Errorf("look up user %d: %w", userID, err)
	}
	if len(users) == 0 {
		return models.Token{}, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, userID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	logger.FromContext(ctx).Info().Int64("user_id", userID).Msg("token issued")
	return token, nil
}

// ParseToken validates a raw JWT. Every validation failure is reported as
// [ErrTokenIsExpiredOrInvalid].
func (a *AuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("token rejected")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}
	return token, nil
}

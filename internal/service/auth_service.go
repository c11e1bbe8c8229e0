package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"authgate/internal/auth"
	apperrors "authgate/internal/errors"
	"authgate/internal/model"
	"authgate/internal/repository"
)

// DefaultBcryptCost is used when the configured cost is out of range.
const DefaultBcryptCost = 10

// TokenPair bundles the two credentials issued per authentication event.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration and the token lifecycle.
type AuthService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	users      repository.UserRepository
	tokens     repository.RefreshTokenRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	bcryptCost int
}

// NewAuthService creates the authentication service.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	bcryptCost int,
) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	return &authService{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		tokenStore: tokenStore,
		bcryptCost: bcryptCost,
	}
}

// Register creates a customer account and issues both tokens. The email is
// assumed normalized (trimmed, lowercased) by the caller. The duplicate
// pre-check and the insert are not wrapped in a transaction: two concurrent
// registrations can both pass the pre-check, and the unique index on email
// decides the winner. The loser surfaces as ErrEmailTaken either way.
func (s *authService) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, *TokenPair, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         model.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			return nil, nil, apperrors.ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		// The user row stays; it is valid and the owner can log in later.
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// issueTokens mints both JWTs, records the refresh token durably and mirrors
// its jti in redis for the fast revocation path.
func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.jwtService.RefreshTokenTTL())
	record := &model.RefreshToken{
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Role, s.jwtService.RefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("mirror refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh validates a refresh token, confirms the jti is still live, and
// mints a new access token. The refresh token itself is not rotated.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", apperrors.ErrInvalidRefreshToken
	}

	userID, role, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		// Redis miss: fall back to the durable record.
		record, dbErr := s.tokens.FindByTokenID(ctx, claims.ID)
		if dbErr != nil || time.Now().After(record.ExpiresAt) {
			return "", apperrors.ErrInvalidRefreshToken
		}
		userID, role = record.UserID, claims.Role
	}
	if userID != claims.UserID || role != claims.Role {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the presented refresh token: the durable row is deleted and
// the redis mirror dropped.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}

	if err := s.tokens.DeleteByTokenID(ctx, tokenID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}

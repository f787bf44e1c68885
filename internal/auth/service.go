package auth

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Register(ctx context.Context, params user.RegisterParams, today time.Time) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Service is the main auth service with dependencies
type Service struct {
	users          UserStore
	tokenGenerator TokenGenerator
	revoked        *Revocations
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(users UserStore, tokenGen TokenGenerator, revoked *Revocations, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		revoked:        revoked,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		Now:                time.Now,
	}
}

// Signup registers the user with the default ledger state and signs them in.
func (s *Service) Signup(ctx context.Context, dto SignupDTO, today time.Time) (*user.User, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, AuthTokens{}, errors.NewInternalError("failed to hash password", err)
	}

	u, err := s.users.Register(ctx, user.RegisterParams{
		Email:        dto.Email,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		PasswordHash: hash,
	}, today)
	if err != nil {
		return nil, AuthTokens{}, err
	}

	tokens, err := s.issue(u)
	if err != nil {
		return nil, AuthTokens{}, err
	}
	return u, tokens, nil
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		if stdErrors.Is(err, errors.ErrUserNotFound) {
			return AuthTokens{}, errors.ErrInvalidCredentials
		}
		return AuthTokens{}, err
	}
	if !u.IsActive {
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	s.logger.Info("user authenticated", "user_id", u.ID)
	return s.issue(u)
}

// RefreshTokens rotates a refresh token: the presented one is revoked and a
// new pair is issued.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}
	if s.revoked.IsRevoked(claims) {
		return AuthTokens{}, errors.ErrInvalidToken
	}

	u, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}

	s.revoked.Revoke(claims, time.Now())
	return s.issue(u)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revoked.IsRevoked(claims) {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the access token and, when given, the refresh token.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.ValidateAccessToken(accessToken)
	if err != nil {
		return err
	}
	now := time.Now()
	s.revoked.Revoke(claims, now)

	if refreshToken != "" {
		refreshClaims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
		if err == nil && refreshClaims.UserID == claims.UserID {
			s.revoked.Revoke(refreshClaims, now)
		}
	}

	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) userFromClaims(ctx context.Context, claims *Claims) (*user.User, error) {
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, errors.ErrInvalidToken
	}
	return u, nil
}

func (s *Service) issue(u *user.User) (AuthTokens, error) {
	userID := strconv.FormatInt(u.ID, 10)

	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, u.Email)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to sign access token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, u.Email)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to sign refresh token", err)
	}

	var expiresIn int64
	if gen, ok := s.tokenGenerator.(*JWTTokenGenerator); ok {
		expiresIn = int64(gen.AccessTokenTTL.Seconds())
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID string, email string) (string, error) {
	return j.sign(userID, email, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID string, email string) (string, error) {
	return j.sign(userID, email, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTTokenGenerator) sign(userID, email string, tokenType TokenType, ttl time.Duration, secret []byte) (string, error) {
	now := j.now()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (j *JWTTokenGenerator) validate(tokenString string, want TokenType, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		if stdErrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != want {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

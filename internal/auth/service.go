package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"figurevault/internal/config"
	"figurevault/internal/logging"
	"figurevault/internal/models"
)

// UserStore defines the persistence operations the auth service needs
type UserStore interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID string) error
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error
}

// Service handles authentication operations
type Service struct {
	config    config.AuthConfig
	userStore UserStore
	logger    *logging.Logger
}

// NewService creates a new auth service
func NewService(userStore UserStore, cfg config.AuthConfig, logger *logging.Logger) *Service {
	return &Service{
		config:    cfg,
		userStore: userStore,
		logger:    logger,
	}
}

// Signup creates a new user with email/password
func (s *Service) Signup(ctx context.Context, params models.SignupParams) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if email == "" {
		return nil, &AuthError{Code: "invalid_input", Message: "email is required"}
	}
	if params.Password == "" {
		return nil, &AuthError{Code: "invalid_input", Message: "password is required"}
	}
	if len(params.Password) < 8 {
		return nil, &AuthError{Code: "invalid_input", Message: "password must be at least 8 characters"}
	}

	existing, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, &AuthError{Code: "user_exists", Message: "a user with this email already exists"}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userStore.Create(ctx, models.CreateUserParams{
		Email:       email,
		Password:    string(passwordHash),
		DisplayName: strings.TrimSpace(params.DisplayName),
		Status:      models.UserStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("User signed up", logging.WithFields(map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
	}))

	return &models.AuthResponse{
		User:      user,
		Tokens:    tokens,
		IsNewUser: true,
	}, nil
}

// Login authenticates a user with email/password
func (s *Service) Login(ctx context.Context, params models.LoginParams) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if email == "" || params.Password == "" {
		return nil, &AuthError{Code: "invalid_input", Message: "email and password are required"}
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &AuthError{Code: "invalid_credentials", Message: "invalid email or password"}
	}

	if user.Status != models.UserStatusActive {
		return nil, &AuthError{Code: "account_disabled", Message: "account is disabled"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return nil, &AuthError{Code: "invalid_credentials", Message: "invalid email or password"}
	}

	if err := s.userStore.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last login", logging.WithField("error", err.Error()))
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("User logged in", logging.WithFields(map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
	}))

	return &models.AuthResponse{
		User:   user,
		Tokens: tokens,
	}, nil
}

// RefreshTokens rotates the refresh token and issues a new access token
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	tokenHash := hashToken(refreshToken)

	storedToken, err := s.userStore.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if storedToken == nil {
		return nil, &AuthError{Code: "invalid_token", Message: "invalid or expired refresh token"}
	}

	user, err := s.userStore.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Status != models.UserStatusActive {
		return nil, &AuthError{Code: "invalid_token", Message: "user not found or disabled"}
	}

	if err := s.userStore.RevokeRefreshToken(ctx, storedToken.ID); err != nil {
		s.logger.Warn("Failed to revoke old refresh token", logging.WithField("error", err.Error()))
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// Logout revokes all refresh tokens for a user
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.userStore.RevokeAllUserRefreshTokens(ctx, userID)
}

// ValidateAccessToken validates a JWT access token and returns the user ID
func (s *Service) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return "", &AuthError{Code: "invalid_token", Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token claims"}
	}

	if iss, _ := claims["iss"].(string); iss != s.config.JWTIssuer {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token issuer"}
	}
	if aud, _ := claims["aud"].(string); aud != s.config.JWTAudience {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token audience"}
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token subject"}
	}

	return userID, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// generateTokens generates an access token and a stored refresh token
func (s *Service) generateTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.DisplayName,
		"iss":   s.config.JWTIssuer,
		"aud":   s.config.JWTAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.config.AccessTokenTTL).Unix(),
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshTokenBytes := make([]byte, 32)
	if _, err := rand.Read(refreshTokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshTokenString := base64.URLEncoding.EncodeToString(refreshTokenBytes)

	// Only the hash of the refresh token is stored
	refreshTokenHash := hashToken(refreshTokenString)
	expiresAt := now.Add(s.config.RefreshTokenTTL)

	if _, err := s.userStore.CreateRefreshToken(ctx, user.ID, refreshTokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	return e.Message
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"figurevault/internal/models"
)

// UserStore handles user, role and refresh token database operations
type UserStore struct {
	db *DB
}

// NewUserStore creates a new user store
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `u.id, u.email, u.password_hash, u.display_name, u.avatar_url,
	   u.birth_date, u.country, u.language, u.currency, u.status,
	   u.created_at, u.updated_at, u.last_login_at,
	   EXISTS (SELECT 1 FROM user_roles r WHERE r.user_id = u.id AND r.role = 'admin')`

// Create inserts a new user
func (s *UserStore) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	user := &models.User{
		Email:       params.Email,
		DisplayName: params.DisplayName,
		Status:      params.Status,
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, display_name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, params.Email, nullString(params.Password), params.DisplayName, user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = params.Password
	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users u WHERE u.id = $1", userColumns)
	return s.getUser(ctx, query, id)
}

// GetByEmail retrieves a user by email (case-insensitive)
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users u WHERE LOWER(u.email) = LOWER($1)", userColumns)
	return s.getUser(ctx, query, email)
}

func (s *UserStore) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	var passwordHash, avatarURL, country, language, currency sql.NullString
	var birthDate, lastLoginAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &passwordHash, &user.DisplayName, &avatarURL,
		&birthDate, &country, &language, &currency, &user.Status,
		&user.CreatedAt, &user.UpdatedAt, &lastLoginAt, &user.IsAdmin,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PasswordHash = passwordHash.String
	user.AvatarURL = avatarURL.String
	user.Country = country.String
	user.Language = language.String
	user.Currency = currency.String
	if birthDate.Valid {
		user.BirthDate = &birthDate.Time
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return user, nil
}

// UpdateLastLogin stamps the user's last login time
func (s *UserStore) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login_at = NOW() WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdateProfile patches a user's profile fields
func (s *UserStore) UpdateProfile(ctx context.Context, userID string, params models.UpdateProfileParams) (*models.User, error) {
	var sets []string
	var args []interface{}
	argIndex := 1

	if params.DisplayName != nil {
		sets = append(sets, fmt.Sprintf("display_name = $%d", argIndex))
		args = append(args, strings.TrimSpace(*params.DisplayName))
		argIndex++
	}
	if params.BirthDate != nil {
		sets = append(sets, fmt.Sprintf("birth_date = $%d", argIndex))
		args = append(args, models.ParseDatePtr(*params.BirthDate))
		argIndex++
	}
	if params.Country != nil {
		sets = append(sets, fmt.Sprintf("country = $%d", argIndex))
		args = append(args, nullString(strings.ToUpper(strings.TrimSpace(*params.Country))))
		argIndex++
	}
	if params.Language != nil {
		sets = append(sets, fmt.Sprintf("language = $%d", argIndex))
		args = append(args, nullString(strings.TrimSpace(*params.Language)))
		argIndex++
	}
	if params.Currency != nil {
		sets = append(sets, fmt.Sprintf("currency = $%d", argIndex))
		args = append(args, nullString(strings.ToUpper(strings.TrimSpace(*params.Currency))))
		argIndex++
	}

	if len(sets) == 0 {
		return s.GetByID(ctx, userID)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(sets, ", "), argIndex)
	args = append(args, userID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("user not found: %s", userID)
	}

	return s.GetByID(ctx, userID)
}

// SetAvatarURL updates the user's avatar URL
func (s *UserStore) SetAvatarURL(ctx context.Context, userID, url string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2",
		nullString(url), userID)
	if err != nil {
		return fmt.Errorf("failed to set avatar url: %w", err)
	}
	return nil
}

// GrantRole assigns a role to a user (idempotent)
func (s *UserStore) GrantRole(ctx context.Context, userID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`, userID, role)
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

// HasRole reports whether a user has the given role
func (s *UserStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2
		)
	`, userID, role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return exists, nil
}

// CreateRefreshToken stores a hashed refresh token
func (s *UserStore) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.RefreshToken, error) {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, userID, tokenHash, expiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return token, nil
}

// GetRefreshTokenByHash returns a live (unexpired, unrevoked) refresh token
func (s *UserStore) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	var revokedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW() AND revoked_at IS NULL
	`, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash,
		&token.ExpiresAt, &token.CreatedAt, &revokedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if revokedAt.Valid {
		token.RevokedAt = &revokedAt.Time
	}

	return token, nil
}

// RevokeRefreshToken revokes a single refresh token
func (s *UserStore) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE id = $1", tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllUserRefreshTokens revokes every live refresh token for a user
func (s *UserStore) RevokeAllUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL",
		userID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

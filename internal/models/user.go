package models

import "time"

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// RoleAdmin gates the administrative catalog and import endpoints
const RoleAdmin = "admin"

// User represents a registered collector
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"displayName"`
	AvatarURL    string     `json:"avatarUrl,omitempty"`
	BirthDate    *time.Time `json:"birthDate,omitempty"`
	Country      string     `json:"country,omitempty"`
	// Language and Currency are display preferences; Language also drives
	// locale-aware catalog sorting
	Language    string     `json:"language,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Status      UserStatus `json:"status"`
	IsAdmin     bool       `json:"isAdmin"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// CreateUserParams represents the parameters for creating a user
type CreateUserParams struct {
	Email       string
	Password    string // already hashed
	DisplayName string
	Status      UserStatus
}

// SignupParams represents an email/password signup request
type SignupParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginParams represents an email/password login request
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileParams represents profile update parameters; nil fields are
// left untouched. Date fields use YYYY-MM-DD.
type UpdateProfileParams struct {
	DisplayName *string `json:"displayName,omitempty"`
	BirthDate   *string `json:"birthDate,omitempty"`
	Country     *string `json:"country,omitempty"`
	Language    *string `json:"language,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}

// AuthTokens holds an issued access/refresh token pair
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// AuthResponse is returned from signup and login
type AuthResponse struct {
	User      *User       `json:"user"`
	Tokens    *AuthTokens `json:"tokens"`
	IsNewUser bool        `json:"isNewUser,omitempty"`
}

// RefreshToken is a stored (hashed) refresh token
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

package domain

import "time"

// ============================================================
// Identity
// ============================================================

// Identity is the authenticated actor of an operation.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ============================================================
// Users
// ============================================================

// User is a dashboard account managed by the finance administrator.
// PasswordHash is only used until the first login moves the account to
// the identity provider.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsAdmin      bool      `json:"isAdmin"`
	IsLoggedIn   bool      `json:"isLoggedIn"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips credentials before the user leaves the service.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// CreateUserRequest is the body of POST /v1/admin/users.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required"`
}

// IdentityMetadata is attached to the identity-provider account.
type IdentityMetadata struct {
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// ProviderSession is what the identity provider returns on sign-in.
type ProviderSession struct {
	AccessToken string           `json:"access_token"`
	ExpiresIn   int              `json:"expires_in"`
	Email       string           `json:"email"`
	Metadata    IdentityMetadata `json:"user_metadata"`
}

// ============================================================
// Auth API
// ============================================================

// LoginRequest is the body of POST /v1/auth/login. DisplayName is only
// required on the first login of an account.
type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Role        Role   `json:"role" validate:"required"`
	DisplayName string `json:"displayName,omitempty"`
}

// LoginResponse carries the BFA access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Redirect    string `json:"redirect"`
}

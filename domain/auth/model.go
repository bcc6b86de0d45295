package auth

import (
	"database/sql"
	"time"
)

// Admin is a back-office account.
type Admin struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Password     string    `db:"password"`
	Name         string    `db:"name"`
	TokenVersion int64     `db:"token_version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AdminResponse is the public view of an admin.
type AdminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a *Admin) Response() AdminResponse {
	return AdminResponse{ID: a.ID, Email: a.Email, Name: a.Name}
}

// AttemptKey scopes lockout to one email from one client address.
type AttemptKey struct {
	Email string
	IP    string
}

// LoginAttempts tracks consecutive failed logins for an AttemptKey.
type LoginAttempts struct {
	Email          string       `db:"email"`
	IP             string       `db:"ip"`
	FailedAttempts int          `db:"failed_attempts"`
	BlockedUntil   sql.NullTime `db:"blocked_until"`
	LastAttemptAt  time.Time    `db:"last_attempt_at"`
}

// PasswordReset is a reset credential record. The signed token carries its
// id; the row is what makes the token single-use.
type PasswordReset struct {
	ID        string       `db:"id"`
	AdminID   string       `db:"admin_id"`
	ExpiresAt time.Time    `db:"expires_at"`
	UsedAt    sql.NullTime `db:"used_at"`
	CreatedAt time.Time    `db:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	// IP is the client address, set by the handler.
	IP string `json:"-" form:"-"`
}

type RegisterRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" form:"token"`
	Password string `json:"password" form:"password"`
}

// SessionResponse is returned by login and register.
type SessionResponse struct {
	Token string        `json:"token"`
	Admin AdminResponse `json:"admin"`
}

type VerifyResponse struct {
	Admin AdminResponse `json:"admin"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// MinPasswordLength applies to passwords set through a reset.
const MinPasswordLength = 8

// Response messages.
const (
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid credentials"
	msgAllFieldsRequired   = "All fields are required"
	msgAdminExists         = "Admin already exists"
	msgRegistrationClosed  = "Registration is disabled"
	msgTokenRequired       = "Access token required"
	msgInvalidToken        = "Invalid or expired token"
	msgAdminNotFound       = "Admin not found"
	msgEmailRequired       = "Email is required"
	msgResetSent           = "If that email exists, a reset link was sent"
	msgResetFieldsRequired = "Token and new password are required"
	msgPasswordTooShort    = "Password must be at least 8 characters"
	msgPasswordUpdated     = "Password updated successfully"
	msgInternal            = "Internal server error"
)

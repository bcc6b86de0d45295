package apperrors

// Error codes - organized by domain

// Authentication errors (AUTH_*)
const (
	ErrCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrCodeTokenMissing       = "AUTH_TOKEN_MISSING"
	ErrCodeTokenInvalid       = "AUTH_TOKEN_INVALID"
	ErrCodeAccountLocked      = "AUTH_ACCOUNT_LOCKED"
	ErrCodeRegistrationClosed = "AUTH_REGISTRATION_CLOSED"
)

// Validation errors (VALIDATION_*)
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     = "VALIDATION_INVALID_EMAIL"
	ErrCodeInvalidPassword  = "VALIDATION_INVALID_PASSWORD"
	ErrCodeInvalidInput     = "VALIDATION_INVALID_INPUT"
	ErrCodeMissingField     = "VALIDATION_MISSING_FIELD"
	ErrCodeMissingFile      = "VALIDATION_MISSING_FILE"
)

// Upload errors (UPLOAD_*)
const (
	ErrCodeFileType     = "UPLOAD_INVALID_TYPE"
	ErrCodeFileTooLarge = "UPLOAD_TOO_LARGE"
)

// Resource errors (RESOURCE_*)
const (
	ErrCodeAdminNotFound  = "RESOURCE_ADMIN_NOT_FOUND"
	ErrCodeRecordNotFound = "RESOURCE_NOT_FOUND"
	ErrCodeResourceExists = "RESOURCE_ALREADY_EXISTS"
)

// Rate limiting errors (RATE_*)
const (
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// Internal errors (INTERNAL_*)
const (
	ErrCodeDatabaseError   = "INTERNAL_DATABASE_ERROR"
	ErrCodeStorageError    = "INTERNAL_STORAGE_ERROR"
	ErrCodeEmailSendFailed = "INTERNAL_EMAIL_SEND_FAILED"
	ErrCodeUnexpectedError = "INTERNAL_UNEXPECTED_ERROR"
)

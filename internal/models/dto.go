package models

// ResultKind enumerates reset outcomes. Only some kinds are ever shown to a caller verbatim.
type ResultKind string

const (
	ResultSuccess           ResultKind = "SUCCESS"
	ResultRateLimited       ResultKind = "RATE_LIMITED"
	ResultAccountNotFound   ResultKind = "ACCOUNT_NOT_FOUND"
	ResultPasswordsMismatch ResultKind = "PASSWORDS_MISMATCH"
	ResultPasswordTooShort  ResultKind = "PASSWORD_TOO_SHORT"
	ResultPasswordTooLong   ResultKind = "PASSWORD_TOO_LONG"
	ResultInvalidOrExpired  ResultKind = "INVALID_OR_EXPIRED_TOKEN"
	ResultPersistenceError  ResultKind = "PERSISTENCE_ERROR"
	ResultMailError         ResultKind = "MAIL_ERROR"
)

// RequestResetRequest is the body of a reset request.
type RequestResetRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// RequestResetResponse is identical for every outcome of a reset request.
type RequestResetResponse struct {
	Message string `json:"message"`
}

// SubmitResetRequest carries the new credential for a reset token.
// Password rules are enforced by the reset service so its result kinds reach the caller.
type SubmitResetRequest struct {
	Token           string `json:"token" validate:"required,max=128"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SubmitResetResult is what Submit returns to its caller.
type SubmitResetResult struct {
	Kind    ResultKind `json:"-"`
	Success bool       `json:"success"`
	Message string     `json:"message"`
}

type ValidateTokenResponse struct {
	Valid bool `json:"valid"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error string `json:"error"`
}

package constants

const (
	ErrCodeAuthFailed      = "AUTH_FAILED"
	ErrCodeAuthExpired     = "AUTH_EXPIRED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeProfileRequired = "PROFILE_REQUIRED"

	// Upstream AI collaborator errors, surfaced verbatim so the client can
	// distinguish "fix your key" from "come back later".
	ErrCodeUpstreamAuth  = "UPSTREAM_AUTH_FAILED"
	ErrCodeUpstreamQuota = "UPSTREAM_QUOTA_EXCEEDED"
)

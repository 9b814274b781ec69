package response

// ExceptionResponse is the failure envelope every handler returns
type ExceptionResponse struct {
	Exception     string `json:"exception"`      // stable machine-readable code
	DisplayString string `json:"display_string"` // human-readable message
}

// Exception codes shared across packages
const (
	CodeUserAuthenticationFailed = "USER_AUTHENTICATION_FAILED"
	CodePermissionDenied         = "PERMISSION_DENIED"
	CodeInvalidRequest           = "INVALID_REQUEST"
	CodeInternalException        = "INTERNAL_EXCEPTION"
	CodeRateLimited              = "RATE_LIMITED"
	CodeNotFound                 = "NOT_FOUND"
)

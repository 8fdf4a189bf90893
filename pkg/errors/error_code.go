package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter       ErrorCode = 100
	ErrCodeInvalidConfiguration   ErrorCode = 101
	ErrCodeMissingParameter       ErrorCode = 102
	ErrCodeInvalidProvider        ErrorCode = 103
	ErrCodeInvalidPeriodicity     ErrorCode = 104
	ErrCodeUnsupportedPeriodicity ErrorCode = 105
	ErrCodeInvalidVersion         ErrorCode = 106

	// Series errors (200-299)
	ErrCodeSeriesNotFound   ErrorCode = 200
	ErrCodeRangeUnavailable ErrorCode = 201

	// Transport errors (300-399)
	ErrCodeProviderUnreachable ErrorCode = 300
	ErrCodeProviderRejected    ErrorCode = 301
	ErrCodeResponseParseFailed ErrorCode = 302

	// Export errors (400-499)
	ErrCodeWriteFailed       ErrorCode = 400
	ErrCodeUnsupportedWriter ErrorCode = 401
)

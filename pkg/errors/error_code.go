package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeInvalidSeries        ErrorCode = 104

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound        ErrorCode = 200
	ErrCodeInsufficientHistory ErrorCode = 201

	// Market data errors (300-399)
	ErrCodeMarketDataFetchFailed ErrorCode = 300
	ErrCodeMarketDataParseFailed ErrorCode = 301
	ErrCodeUniverseFetchFailed   ErrorCode = 302

	// Confirmation source errors (400-499)
	ErrCodeOnChainFetchFailed     ErrorCode = 400
	ErrCodeDerivativesFetchFailed ErrorCode = 401

	// Notification errors (500-599)
	ErrCodeNotificationFailed    ErrorCode = 500
	ErrCodeNotifierNotConfigured ErrorCode = 501
	ErrCodeNotificationBadStatus ErrorCode = 502
)

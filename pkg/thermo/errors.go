package thermo

import "errors"

// Failure classes surfaced by the ingestion gates and the query/config
// operations. Callers branch on these with errors.Is; transports map
// them to their own status codes.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRateLimited          = errors.New("rate limited")
	ErrQuotaExceeded        = errors.New("storage quota exceeded")
	ErrValidation           = errors.New("validation failed")
	ErrStorageUnavailable   = errors.New("storage unavailable")

	ErrDeviceNotFound     = errors.New("device not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrSerialTaken        = errors.New("serial registered to another owner")
)

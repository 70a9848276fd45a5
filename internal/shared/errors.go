package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Token exchange errors
	ErrMissingField  = fmt.Errorf("missing field in response")
	ErrMalformedBody = fmt.Errorf("malformed response body")

	// API errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrUnexpectedStatus = fmt.Errorf("unexpected status code")
	ErrMissingItems     = fmt.Errorf("response has no items")
	ErrSnapshotNotFound = fmt.Errorf("snapshot not found")

	// Input validation errors
	ErrInvalidFormat   = fmt.Errorf("invalid playlist URL format")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

package llm

import "errors"

var (
	// ErrOracleNotConfigured means no provider credential is present.
	ErrOracleNotConfigured = errors.New("oracle not configured")

	// ErrOracleUnavailable covers transport and provider API failures.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	ErrOracleTimeout = errors.New("oracle request timed out")

	// ErrOracleMalformedResponse means the reply did not contain the
	// requested JSON object, or the object failed validation.
	ErrOracleMalformedResponse = errors.New("oracle response malformed")
)

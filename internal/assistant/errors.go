package assistant

import "errors"

var (
	// ErrConfigMissing means no API credential is configured. No network
	// call is attempted when this is returned.
	ErrConfigMissing = errors.New("assistant: api key missing")

	// ErrNetwork covers transport failures, timeouts and non-auth API errors.
	ErrNetwork = errors.New("assistant: request failed")

	// ErrAuth means the remote service rejected the credential.
	ErrAuth = errors.New("assistant: unauthorized")

	// ErrEmptyResponse means the service answered with no text.
	ErrEmptyResponse = errors.New("assistant: empty response")
)

package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is wrapped by the [*ConfigError] returned when a cloud
// provider is used without credentials.
var ErrMissingAPIKey = errors.New("chatbridge: API key is not set")

// ConfigError is returned before any network call when the connection
// configuration cannot work.
type ConfigError struct {
	Provider ProviderKind
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s configuration error: %s", e.Provider.DisplayName(), e.Message)
}

// Unwrap returns the underlying sentinel, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError wraps connection-level failures: refused connections,
// timeouts, TLS failures and body read errors.
type TransportError struct {
	Provider ProviderKind
	Op       string
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider.DisplayName(), e.Op, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a non-2xx HTTP status. Message carries the vendor's
// human-readable error when one could be extracted from the body.
type ProtocolError struct {
	Provider   ProviderKind
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Provider.DisplayName(), e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider.DisplayName(), e.StatusCode, e.Message)
}

// IsAuthError reports whether err is a ProtocolError caused by rejected
// credentials or missing account privileges (401/403).
func IsAuthError(err error) bool {
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		return false
	}
	return protocolErr.StatusCode == http.StatusUnauthorized || protocolErr.StatusCode == http.StatusForbidden
}

package domain

import "fmt"

// AuthError means the credential exchange with the table service failed.
type AuthError struct {
	Code int    // remote status code, 0 when the call itself failed
	Msg  string // remote message
	Err  error  // transport or decoding error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tenant access token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("tenant access token exchange failed: code=%d msg=%s", e.Code, e.Msg)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteAPIError is a non-zero status code returned by the table service.
type RemoteAPIError struct {
	Op   string
	Code int
	Msg  string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s: table service returned code=%d msg=%s", e.Op, e.Code, e.Msg)
}

// ValidationError rejects a client payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProxyError wraps any failure of the favicon proxy.
type ProxyError struct {
	Host string
	Err  error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("favicon proxy for %s: %v", e.Host, e.Err)
}

func (e *ProxyError) Unwrap() error { return e.Err }

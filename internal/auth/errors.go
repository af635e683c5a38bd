package auth

import "fmt"

// Reason categorizes a credential exchange failure.
type Reason string

const (
	ReasonTokenUnavailable    Reason = "token-unavailable"
	ReasonIdentityUnavailable Reason = "identity-unavailable"
	ReasonKeyCreationFailed   Reason = "key-creation-failed"
)

// AuthError is returned when a session cookie cannot be exchanged for an access key.
// StatusCode and Body carry the upstream response when there was one.
type AuthError struct {
	Reason     Reason
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	msg := string(e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

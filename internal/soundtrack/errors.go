package soundtrack

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotAuthenticated is returned in user mode when no usable token exists
// and no refresh token is available. Callers must re-authenticate.
var ErrNotAuthenticated = errors.New("soundtrack: not authenticated")

// TransportError is a non-2xx response or network failure. It is retried
// up to the configured attempt budget.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("soundtrack: request failed: %v", e.Err)
	}
	return fmt.Sprintf("soundtrack: request returned unexpected status: %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError is a missing or rejected credential. It is never retried.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("soundtrack: authentication failed with status %d", e.StatusCode)
}

// GraphQLError is one entry of the structured errors array in an otherwise
// well-formed response.
type GraphQLError struct {
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

func (e GraphQLError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s (path: %s)", e.Message, strings.Join(e.Path, "."))
	}
	return e.Message
}

// ResponseError aborts a call whose response carried structured errors
// under the default error policy.
type ResponseError struct {
	Errors []GraphQLError
}

func (e *ResponseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, gqlErr := range e.Errors {
		msgs[i] = gqlErr.Error()
	}
	return "soundtrack: request returned errors: " + strings.Join(msgs, "; ")
}

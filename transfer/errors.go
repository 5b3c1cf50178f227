package transfer

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

const (
	EndpointVerify = "verify"
	EndpointAssess = "assess"

	DefaultVerifyErrorMessage = "An error occurred during date verification."
	DefaultAssessErrorMessage = "An error occurred during damage assessment."
)

var ErrEmptyResponse = errors.New("empty response body")

// BackendError is a non-2xx answer from the claim backend. Message is the
// server-supplied text the error banner shows.
type BackendError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// newBackendError reads the first usable message out of body, walking paths
// in order, and falls back to def.
func newBackendError(endpoint string, status int, body []byte, def string, paths ...[]any) *BackendError {
	return &BackendError{
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    extractMessage(body, def, paths...),
	}
}

func extractMessage(body []byte, def string, paths ...[]any) string {
	if len(body) == 0 {
		return def
	}
	for _, p := range paths {
		node, err := sonic.Get(body, p...)
		if err != nil || !node.Exists() {
			continue
		}
		switch node.TypeSafe() {
		case ast.V_STRING:
			if s, err := node.String(); err == nil && s != "" {
				return s
			}
		case ast.V_ARRAY, ast.V_OBJECT:
			// FastAPI validation errors put a list under detail.
			if raw, err := node.Raw(); err == nil && raw != "" {
				return raw
			}
		}
	}
	return def
}

package tool

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildBackendURL joins the backend base URL with an endpoint path, keeping
// the trailing slash the backend routes are registered with.
func BuildBackendURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("failed to parse backend URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("backend URL must be absolute: %q", base)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return u.String() + path, nil
}

// BuildMediaURL builds the local raw-media URL a preview uses as its source.
func BuildMediaURL(sessionId, slot, fileName string) string {
	return fmt.Sprintf("/api/self/v1/sessions/%s/slots/%s/files/%s",
		url.PathEscape(sessionId), url.PathEscape(slot), url.PathEscape(fileName))
}

package tool

import (
	"net/http"
	"time"
)

var ConnectionHttpClient = NewHTTPClient(0)

// NewHTTPClient creates the client used for backend calls. A zero timeout
// leaves requests unbounded; the claim backend can take a while on video.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// InitHTTPClients (re)initializes the shared client with the configured timeout.
func InitHTTPClients(timeout time.Duration) {
	ConnectionHttpClient = NewHTTPClient(timeout)
}

func GetHttpClient() *http.Client {
	return ConnectionHttpClient
}

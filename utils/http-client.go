package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient builds the shared client for outbound calls to other
// services. Timeouts are set here so no caller waits forever on a dead
// collaborator.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

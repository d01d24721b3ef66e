package config

import (
	"os"
	"strings"
)

const (
	// EnvAPIURL overrides the API base URL.
	EnvAPIURL     = "USER_API_URL"
	defaultAPIURL = "http://localhost:8080"
)

// APIURL returns the base URL for the User API without a trailing slash.
func APIURL() string {
	if v := os.Getenv(EnvAPIURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

package gcal

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// Scopes are the OAuth scopes requested for the service account.
var Scopes = []string{
	calendar.CalendarScope,
}

// Credentials points at a service-account key, either inline or on disk.
type Credentials struct {
	JSON string // inline key, takes precedence
	File string
}

// loadCredentials reads the service-account key from the inline JSON or the file.
func loadCredentials(creds Credentials) ([]byte, error) {
	if creds.JSON != "" {
		return []byte(creds.JSON), nil
	}

	if creds.File != "" {
		data, err := os.ReadFile(creds.File)
		if err == nil {
			return data, nil
		}
		return nil, fmt.Errorf("failed to read credentials file %s: %w", creds.File, err)
	}

	return nil, fmt.Errorf("no credentials found - set GOOGLE_CREDENTIALS or GOOGLE_CREDENTIALS_FILE")
}

// serviceAccountClient returns an HTTP client that signs requests as the service account.
func serviceAccountClient(ctx context.Context, creds Credentials) (*http.Client, string, error) {
	data, err := loadCredentials(creds)
	if err != nil {
		return nil, "", err
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse service account key: %w", err)
	}

	return jwtConfig.Client(ctx), jwtConfig.Email, nil
}

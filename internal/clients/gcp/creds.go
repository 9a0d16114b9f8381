package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions turns a GOOGLE_APPLICATION_CREDENTIALS(_JSON) value into client options.
// Inline JSON and file paths are both accepted; empty means application default credentials.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}
